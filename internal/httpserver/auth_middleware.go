package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/c-pro/geche"

	"devconnect/internal/domain"
	"devconnect/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// Authenticator validates bearer tokens and resolves them to users, with a
// short TTL cache in front of the user store so every request does not hit
// the database.
type Authenticator struct {
	tokens *security.TokenService
	users  domain.UserRepository
	cache  geche.Geche[string, *domain.User]
}

func NewAuthenticator(ctx context.Context, tokens *security.TokenService, users domain.UserRepository, cacheTTL time.Duration) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
		cache:  geche.NewMapTTLCache[string, *domain.User](ctx, cacheTTL, time.Minute),
	}
}

// Middleware rejects requests without a valid bearer token and attaches the
// resolved user to the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

		user, err := a.Resolve(r.Context(), tokenStr)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Resolve turns a raw token into an active user, consulting the cache first.
func (a *Authenticator) Resolve(ctx context.Context, tokenStr string) (*domain.User, error) {
	if user, err := a.cache.Get(tokenStr); err == nil && user != nil {
		return user, nil
	}

	userID, err := a.tokens.Parse(tokenStr)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("auth: lookup user %d: %v", userID, err)
		return nil, domain.ErrUnauthorized
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}

	a.cache.Set(tokenStr, user)
	return user, nil
}

// Forget drops a token from the cache, used on logout.
func (a *Authenticator) Forget(tokenStr string) {
	_ = a.cache.Del(tokenStr)
}
