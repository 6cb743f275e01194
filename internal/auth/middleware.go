package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/shared"
)

// Middleware guards routes with bearer tokens.
type Middleware struct {
	tokens *TokenIssuer
}

// NewMiddleware constructs auth middleware.
func NewMiddleware(tokens *TokenIssuer) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireToken rejects requests without a valid bearer token and stores the
// caller in the request context.
func (m *Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			httpx.RespondError(w, fmt.Errorf("not authenticated: %w", httpx.ErrUnauthorized))
			return
		}
		principal, err := m.tokens.Verify(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("could not validate credentials: %w", httpx.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
