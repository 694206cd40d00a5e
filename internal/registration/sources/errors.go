package sources

import (
	"context"
	"errors"
	"fmt"
	"net"

	"regsync/internal/registration/models"
)

// ErrorCategory is the normalized failure taxonomy for source fetches. It is
// used for log fields and metric labels; a failed fetch is never surfaced to
// the caller of a reconciliation run.
type ErrorCategory string

const (
	// ErrorTimeout indicates the source did not answer within its deadline
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorTransport indicates the request could not be sent or read
	ErrorTransport ErrorCategory = "transport"

	// ErrorBadStatus indicates a non-2xx HTTP status
	ErrorBadStatus ErrorCategory = "bad_status"

	// ErrorBadData indicates an unreadable response body
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorInternal indicates an unexpected failure
	ErrorInternal ErrorCategory = "internal"
)

// SourceError wraps a fetch failure with its category.
type SourceError struct {
	Category   ErrorCategory
	Source     models.SourceKind
	Message    string
	StatusCode int
	Underlying error
}

func (e *SourceError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("source %s [%s]: %s: %v", e.Source, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("source %s [%s]: %s", e.Source, e.Category, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Underlying
}

// NewSourceError creates a categorized fetch error.
func NewSourceError(category ErrorCategory, source models.SourceKind, message string, underlying error) *SourceError {
	return &SourceError{
		Category:   category,
		Source:     source,
		Message:    message,
		Underlying: underlying,
	}
}

// Category extracts the error category, classifying bare context and network
// errors when the error was not produced by a Source.
func Category(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	var se *SourceError
	if errors.As(err, &se) {
		return se.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorTimeout
		}
		return ErrorTransport
	}
	return ErrorInternal
}

var (
	ErrSourceRegistered = errors.New("source already registered")
	ErrUnknownSource    = errors.New("unknown source kind")
)
