package classify

import (
	"strings"

	"regsync/internal/registration/models"
)

// DefaultStatus is used when a record carries no status signal at all.
const DefaultStatus = "Open"

var inProgressStatuses = setOf(
	"wip",
	"data received",
	"awaiting confirmation from the govt",
	"awaiting confirmation from the government",
	"data pending from client",
	"in progress",
	"submitted",
	"registered",
	"technical issue",
	"payment pending",
)

// Badge colors have their own table and do not follow the bucket mapping:
// "submitted" is In progress but gray.
var badgeColors = map[string]models.BadgeColor{
	"completed":                           models.BadgeGreen,
	"payment completed":                   models.BadgeGreen,
	"wip":                                 models.BadgeBlue,
	"data received":                       models.BadgeBlue,
	"awaiting confirmation from the govt": models.BadgeBlue,
	"data pending from client":            models.BadgeBlue,
	"technical issue":                     models.BadgeYellow,
	"payment pending":                     models.BadgeYellow,
}

// EffectiveStatus picks the status string shown to the user: the service
// status, else the generic status, else the payment status, else "Open".
func EffectiveStatus(rec models.RegistrationRecord) string {
	for _, s := range []string{rec.ServiceStatus, rec.Status, rec.PaymentStatus} {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return DefaultStatus
}

// Bucket maps a status string to its lifecycle bucket. Unknown and empty
// strings are Open.
func Bucket(status string) models.Bucket {
	key := normalizeStatus(status)
	if key == "completed" {
		return models.BucketResolved
	}
	if _, ok := inProgressStatuses[key]; ok {
		return models.BucketInProgress
	}
	return models.BucketOpen
}

// Badge maps a status string to its display color. Unknown and empty strings
// are gray.
func Badge(status string) models.BadgeColor {
	if color, ok := badgeColors[normalizeStatus(status)]; ok {
		return color
	}
	return models.BadgeGray
}

func setOf(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
