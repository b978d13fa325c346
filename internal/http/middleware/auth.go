package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/auth"
	"github.com/aguacoop/aguacoop/internal/http/respond"
)

// TokenCookie is the cookie the web client stores its token in.
const TokenCookie = "token"

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	Validate(token string) (auth.Identity, error)
}

// Authenticate rejects requests without a valid token and stores the caller's
// identity in the request context.
func Authenticate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				respond.Error(w, r, apperr.Unauthorized("missing token"))
				return
			}

			id, err := tokens.Validate(raw)
			if err != nil {
				respond.Error(w, r, apperr.Unauthorized("invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole only lets callers with one of roles through. It must run after Authenticate.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				respond.Error(w, r, apperr.Unauthorized("missing token"))
				return
			}

			if !slices.Contains(roles, id.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}

		return ""
	}

	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}

	return ""
}
