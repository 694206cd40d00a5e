package audit

import (
	"context"
	"errors"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers changes made to a client's registrations.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers failed mutations and ownership violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine admin access.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	// Status mutation events
	EventRegistrationStatusUpdated      AuditEvent = "registration_status_updated"
	EventRegistrationStatusUpdateFailed AuditEvent = "registration_status_update_failed"

	// A source returned records owned by someone other than the requested user
	EventForeignRecordsFiltered AuditEvent = "foreign_records_filtered"

	// Admin client overview
	EventAdminRegistrationsViewed AuditEvent = "admin_registrations_viewed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRegistrationStatusUpdated:      CategoryCompliance,
	EventRegistrationStatusUpdateFailed: CategorySecurity,
	EventForeignRecordsFiltered:         CategorySecurity,
	EventAdminRegistrationsViewed:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// UserID is the client whose registrations the event concerns.
	UserID   string `json:"user_id"`
	Action   string `json:"action"`
	TicketID string `json:"ticket_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Reason   string `json:"reason,omitempty"`
	// ActorID is who performed the action when different from UserID.
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists persisted events.
type Reader interface {
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}

// ErrInvalidEvent is returned for events missing required fields.
var ErrInvalidEvent = errors.New("invalid audit event")

// Tee appends to every store and joins their errors. A failing store does not
// stop the others.
func Tee(stores ...Store) Store {
	return tee(stores)
}

type tee []Store

func (t tee) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range t {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
