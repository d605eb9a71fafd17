// Package authadapter authenticates inbound requests against the external
// identity collaborator described by the API contract: callers present a
// bearer token, the collaborator vouches for an email address, and the
// adapter resolves that email to a durable user record. It intentionally
// does not reimplement OIDC, sessions, personal access tokens, or API keys —
// those concerns live outside this service.
package authadapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Identity is the authenticated caller for the current request.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type ctxKey string

const identityKey ctxKey = "auth_identity"

// NewContext stores the identity in the context.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the identity from the context. Returns nil if absent.
func FromContext(ctx context.Context) *Identity {
	v, _ := ctx.Value(identityKey).(*Identity)
	return v
}

// Verifier validates a bearer token and resolves it to a durable Identity,
// provisioning a user record on first sight if necessary.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Middleware authenticates every request via the Authorization: Bearer
// header and stores the resulting Identity in the request context.
func Middleware(verifier Verifier, logger interface {
	Warn(msg string, args ...any)
}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respondUnauthorized(w, "missing bearer token")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token == "" {
				respondUnauthorized(w, "missing bearer token")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("bearer token verification failed", "error", err)
				respondUnauthorized(w, "invalid bearer token")
				return
			}

			ctx := NewContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
