// Package requesttime pins one "now" per HTTP request so audit events and
// response timestamps written during the request agree.
package requesttime

import (
	"net/http"
	"time"

	"regsync/pkg/requestcontext"
)

// Middleware stamps each request with the wall clock in UTC.
var Middleware = WithClock(time.Now)

// WithClock stamps each request with now().UTC().
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), now().UTC())))
		})
	}
}
