package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tasktrack/tasktrack-go/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier decodes a credential into an identity.
type TokenVerifier interface {
	Verify(token string) (model.Identity, bool)
}

// Gate resolves request headers to an authenticated identity.
type Gate struct {
	verifier TokenVerifier
}

// NewGate creates a Gate backed by verifier.
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Authenticate extracts a credential from the Authorization or Cookie header
// and verifies it. A false result is the only failure signal.
func (g *Gate) Authenticate(h http.Header) (model.Identity, bool) {
	token, ok := ResolveCredential(h.Get("Authorization"), h.Get("Cookie"))
	if !ok {
		return model.Identity{}, false
	}
	return g.verifier.Verify(token)
}

// RequireAuth returns middleware that rejects requests without a valid credential.
func RequireAuth(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := gate.Authenticate(r.Header)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
