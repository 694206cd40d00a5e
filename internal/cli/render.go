package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"regsync/internal/registration/models"
	"regsync/internal/registration/reconcile"
)

func badge(c models.BadgeColor, text string) string {
	switch c {
	case models.BadgeGreen:
		return color.New(color.FgHiGreen).Sprint(text)
	case models.BadgeBlue:
		return color.New(color.FgHiBlue).Sprint(text)
	case models.BadgeYellow:
		return color.New(color.FgYellow).Sprint(text)
	default:
		return color.New(color.FgHiBlack).Sprint(text)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderRecords prints one row per record. The colored status goes last so
// escape codes do not disturb column alignment.
func renderRecords(out io.Writer, records []models.ClassifiedRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No registrations found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKET\tSERVICE\tSOURCE\tBUCKET\tCREATED\tSTATUS")
	fmt.Fprintln(w, "------\t-------\t------\t------\t-------\t------")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			dash(rec.IdentityKey()),
			rec.ServiceType,
			rec.Source,
			rec.Bucket,
			dash(rec.CreatedAt),
			badge(rec.Badge, dash(rec.DisplayStatus)),
		)
	}
	w.Flush()
}

func renderSummary(out io.Writer, latest map[models.Bucket]models.ClassifiedRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tTICKET\tSERVICE\tSTATUS")
	fmt.Fprintln(w, "------\t------\t-------\t------")
	for _, b := range models.Buckets {
		rec, ok := latest[b]
		if !ok {
			fmt.Fprintf(w, "%s\t-\t-\t-\n", b)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b,
			dash(rec.IdentityKey()),
			rec.ServiceType,
			badge(rec.Badge, dash(rec.DisplayStatus)),
		)
	}
	w.Flush()
}

func renderSources(out io.Writer, reports []reconcile.SourceReport) {
	for _, r := range reports {
		if r.OK {
			continue
		}
		fmt.Fprintln(out, color.New(color.FgRed).Sprintf("! %s unavailable (%s)", r.Source, r.Error))
	}
}

func renderJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
