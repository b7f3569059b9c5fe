package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/token"
)

type contextKey string

const (
	subjectKey contextKey = "subject"
	nameKey    contextKey = "name"
)

// TokenVerifier checks a bearer token; *token.Issuer implements it.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Authenticate reads a bearer token from the Authorization header and, when
// it verifies, puts the subject and name into the request context.
// It does NOT reject requests; use RequireAuth for that.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, subjectKey, claims.Subject)
			ctx = context.WithValue(ctx, nameKey, claims.Name)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without a verified token with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSubject(r.Context()) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="meowv"`)
			model.ErrorResponse(w, model.NewDomainError(model.ErrUnauthorized, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, rest, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

// GetSubject returns the authenticated subject, or "" for anonymous requests.
func GetSubject(ctx context.Context) string {
	v, _ := ctx.Value(subjectKey).(string)
	return v
}

// GetName returns the authenticated display name.
func GetName(ctx context.Context) string {
	v, _ := ctx.Value(nameKey).(string)
	return v
}
