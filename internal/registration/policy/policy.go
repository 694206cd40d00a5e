// Package policy decides which normalized registration records a user may
// see. These checks run before deduplication and are the only place that
// enforces record ownership.
package policy

import (
	"strings"

	"regsync/internal/registration/models"
)

// OwnedBy reports whether the record belongs to userID. Both sides are
// compared as trimmed strings so numeric and string ids from different sources
// match. A blank userID owns nothing.
func OwnedBy(rec models.RegistrationRecord, userID string) bool {
	target := strings.TrimSpace(userID)
	if target == "" {
		return false
	}
	return strings.TrimSpace(rec.OwnerUserID) == target
}

// Visible reports whether an owned record is a real registration: paid, or
// pending with a ticket already issued by an admin. Pending rows without a
// ticket are abandoned drafts.
func Visible(rec models.RegistrationRecord) bool {
	return IsPaid(rec) || IsAdminPending(rec)
}

// IsPaid holds when a payment id is present or the payment status is "paid".
func IsPaid(rec models.RegistrationRecord) bool {
	if rec.HasPaymentID() {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(rec.PaymentStatus), "paid")
}

// IsAdminPending holds for ticketed records still waiting on payment.
func IsAdminPending(rec models.RegistrationRecord) bool {
	if rec.TicketID == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(rec.PaymentStatus)) {
	case "pending", "unpaid":
		return true
	default:
		return false
	}
}

// IsSubscription is the stricter predicate behind the subscriptions view: a
// merely pending record never qualifies.
func IsSubscription(rec models.RegistrationRecord) bool {
	if rec.HasPaymentID() {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(rec.PaymentStatus), "paid") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(rec.ServiceStatus), "payment completed")
}

// Filter keeps the records owned by userID that are visible.
func Filter(records []models.RegistrationRecord, userID string) []models.RegistrationRecord {
	result := make([]models.RegistrationRecord, 0, len(records))
	for _, rec := range records {
		if OwnedBy(rec, userID) && Visible(rec) {
			result = append(result, rec)
		}
	}
	return result
}
