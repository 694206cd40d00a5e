package reconcile

import (
	"sort"
	"strings"
	"time"

	"regsync/internal/registration/models"
)

// timestampLayouts are the formats seen across sources, most common first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// ParseTimestamp parses a source timestamp. ok is false for missing or
// unparsable values.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	// Strip a trailing zone name such as "(India Standard Time)".
	if i := strings.Index(s, " ("); i > 0 {
		s = s[:i]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// newerThan orders by creation time descending. Records without a usable
// date are older than every dated record, however old.
func newerThan(a, b time.Time, aOK, bOK bool) bool {
	if aOK != bOK {
		return aOK
	}
	return aOK && a.After(b)
}

// SortNewestFirst returns a copy of records ordered by CreatedAt descending.
// Records with missing or unparsable dates go last. The sort is stable, so
// records with equal (or equally missing) timestamps keep their input order.
func SortNewestFirst(records []models.RegistrationRecord) []models.RegistrationRecord {
	type keyed struct {
		rec   models.RegistrationRecord
		at    time.Time
		valid bool
	}

	items := make([]keyed, len(records))
	for i, rec := range records {
		at, valid := ParseTimestamp(rec.CreatedAt)
		items[i] = keyed{rec: rec, at: at, valid: valid}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return newerThan(items[i].at, items[j].at, items[i].valid, items[j].valid)
	})

	result := make([]models.RegistrationRecord, len(items))
	for i, item := range items {
		result[i] = item.rec
	}
	return result
}
