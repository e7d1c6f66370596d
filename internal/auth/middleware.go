package auth

import (
	"context"
	"fmt"
	"net/http"
)

// Context keys
type contextKey string

const userClaimsKey contextKey = "user_claims"

// WithUserClaims adds user claims to the context.
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims extracts user claims from context.
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context.
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}

// RequireAuth extracts user claims from context or returns an error.
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}
	return claims, nil
}

// Middleware verifies the Firebase bearer token on every request and
// stores the resulting claims on the request context. Public endpoints
// pass through unauthenticated.
func Middleware(firebaseAuth *FirebaseAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			claims, err := firebaseAuth.VerifyToken(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

// LocalDevMiddleware injects a mock user for local development, with
// optional impersonation via header. Never use in production.
func LocalDevMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims := &UserClaims{
				UID:         "local-dev-user",
				Email:       "dev@localhost",
				DisplayName: "Local Dev User",
				Verified:    true,
			}
			if impersonate := r.Header.Get("X-Debug-Impersonate-User"); impersonate != "" {
				claims = &UserClaims{
					UID:   impersonate,
					Email: impersonate + "@debug.local",
				}
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

// isPublicEndpoint checks if an endpoint should be accessible without authentication
func isPublicEndpoint(path string) bool {
	publicEndpoints := []string{
		"/health",
		"/ping",
	}

	for _, endpoint := range publicEndpoints {
		if path == endpoint {
			return true
		}
	}

	return false
}
