package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"classroom-ledger/internal/domain"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	roleKey   ctxKey = "role"
)

var ErrNoUser = errors.New("userID not found in context")

type TokenFinder interface {
	FindByPlainToken(ctx context.Context, plain string) (domain.AccessToken, error)
}

// bearer extracts the token from the Authorization header, falling back to
// the token query parameter used by websocket clients.
func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// TokenMiddleware rejects requests without a valid, unexpired access token and
// stores the token's user in the request context.
func TokenMiddleware(tokens TokenFinder, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plain := bearer(r)
			if plain == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tok, err := tokens.FindByPlainToken(r.Context(), plain)
			if err != nil {
				log.Printf("[AUTH] %s %s: token lookup failed: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if tok.Expired(now()) {
				log.Printf("[AUTH] token %d expired at %v", tok.ID, tok.ExpiresAt)
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), tok.UserID, tok.Role)))
		})
	}
}

func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}

func GetRole(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
