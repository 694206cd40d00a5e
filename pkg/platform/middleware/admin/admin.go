package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	dErrors "regsync/pkg/domain-errors"
	"regsync/pkg/platform/httputil"
	request "regsync/pkg/platform/middleware/request"
	"regsync/pkg/requestcontext"
)

// HeaderAdminToken carries the shared admin secret.
const HeaderAdminToken = "X-Admin-Token"

func tokenMatches(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// RequireAdminToken guards the /admin routes. With no token configured the
// admin surface stays closed.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenMatches(r.Header.Get(HeaderAdminToken), expected) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			logger.WarnContext(ctx, "admin request rejected",
				"configured", expected != "",
				"path", r.URL.Path,
				"client_ip", requestcontext.ClientIP(ctx),
				"request_id", request.GetRequestID(ctx),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
		})
	}
}
