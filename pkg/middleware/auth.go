package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/motomart/pkg/auth"
	"github.com/shashiranjanraj/motomart/pkg/logger"
	"github.com/shashiranjanraj/motomart/pkg/response"
)

// Identity is the minimal caller identity attached to the request context
// once the bearer token has been verified and resolved to a live user.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// UserResolver turns a verified token subject into a live user identity.
// Implemented by the auth service; a deleted user means the token no longer
// authenticates even though its signature is still valid.
type UserResolver interface {
	ResolveUser(ctx context.Context, id string) (Identity, error)
}

type identityKey struct{}

// IdentityFromCtx returns the authenticated caller stored by Auth.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// WithIdentity stores an identity in ctx. Exported for handler tests.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// Auth is the bearer-token gate for protected routes. It fails closed:
// missing, malformed, or expired credentials and unresolvable subjects all
// end the request with a 401.
func Auth(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Unauthorized(w, "No token provided")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Not authorized: "+err.Error())
				return
			}

			identity, err := users.ResolveUser(r.Context(), claims.UserID)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("auth: subject did not resolve",
					"user_id", claims.UserID, "error", err)
				response.Unauthorized(w, "Not authorized: user not found")
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
