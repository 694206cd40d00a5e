package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "regsync/pkg/domain-errors"
	"regsync/pkg/platform/httputil"
	request "regsync/pkg/platform/middleware/request"
	"regsync/pkg/requestcontext"
)

// Principal is the caller a bearer token resolves to.
type Principal struct {
	UserID string
	Role   string
}

// Authenticator resolves a bearer token to a Principal.
type Authenticator interface {
	Authenticate(token string) (Principal, error)
}

// AuthenticatorFunc adapts a plain function to Authenticator.
type AuthenticatorFunc func(token string) (Principal, error)

func (f AuthenticatorFunc) Authenticate(token string) (Principal, error) {
	return f(token)
}

// GetUserID returns the authenticated user id, or "" outside RequireAuth.
func GetUserID(ctx context.Context) string {
	return requestcontext.UserID(ctx)
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// RequireAuth rejects requests without a valid bearer token. The token's
// subject becomes the user id every /me route reconciles for.
func RequireAuth(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			reject := func(reason string, err error) {
				logger.WarnContext(ctx, "request rejected by auth",
					"reason", reason,
					"error", err,
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "a valid bearer token is required"))
			}

			token, ok := bearerToken(r)
			if !ok {
				reject("missing_token", nil)
				return
			}
			principal, err := authn.Authenticate(token)
			if err != nil {
				reject("invalid_token", err)
				return
			}
			if strings.TrimSpace(principal.UserID) == "" {
				reject("missing_subject", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(ctx, principal.UserID)))
		})
	}
}
