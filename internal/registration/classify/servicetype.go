package classify

import (
	"strings"

	"regsync/internal/registration/models"
)

const (
	LabelGST            = "GST Registration"
	LabelStartupIndia   = "Startup India"
	LabelProprietorship = "Proprietorship"
	LabelPrivateLimited = "Private Limited"
	LabelOPC            = "OPC Registration"
	LabelLLP            = "LLP Registration"
	LabelFallback       = "Registration"
)

// Rule maps a match string to a service type label.
type Rule struct {
	Match string
	Label string
}

// TicketPrefixRules are checked first, case-sensitively. Prefixes are
// assigned by the originating service, so they win over free-text package
// names; a ticket id like "gst_7" does not follow the convention and falls
// through to the name rules.
var TicketPrefixRules = []Rule{
	{Match: "GST_", Label: LabelGST},
	{Match: "SI_", Label: LabelStartupIndia},
	{Match: "PROP_", Label: LabelProprietorship},
	{Match: "PVT_", Label: LabelPrivateLimited},
	{Match: "OPC_", Label: LabelOPC},
	{Match: "LLP_", Label: LabelLLP},
}

// NameRules are lower-case substrings searched in the package and business
// names, in priority order.
var NameRules = []Rule{
	{Match: "opc", Label: LabelOPC},
	{Match: "llp", Label: LabelLLP},
	{Match: "gst", Label: LabelGST},
	{Match: "startup", Label: LabelStartupIndia},
	{Match: "proprietorship", Label: LabelProprietorship},
	{Match: "private limited", Label: LabelPrivateLimited},
}

// ServiceType infers the human-readable service type of a record.
// Rule priority:
//  1. Ticket id prefix
//  2. Substring of package or business name
//  3. Package name as given, else "Registration"
func ServiceType(rec models.RegistrationRecord) string {
	if label, ok := matchTicketPrefix(rec.TicketID); ok {
		return label
	}
	if label, ok := matchName(rec.PackageName, rec.BusinessName); ok {
		return label
	}
	if rec.PackageName != "" {
		return rec.PackageName
	}
	return LabelFallback
}

func matchTicketPrefix(ticketID string) (string, bool) {
	if ticketID == "" {
		return "", false
	}
	for _, rule := range TicketPrefixRules {
		if strings.HasPrefix(ticketID, rule.Match) {
			return rule.Label, true
		}
	}
	return "", false
}

func matchName(names ...string) (string, bool) {
	var parts []string
	for _, n := range names {
		if n != "" {
			parts = append(parts, strings.ToLower(n))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	haystack := strings.Join(parts, "\n")
	for _, rule := range NameRules {
		if strings.Contains(haystack, rule.Match) {
			return rule.Label, true
		}
	}
	return "", false
}
