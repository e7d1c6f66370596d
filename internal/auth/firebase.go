package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// FirebaseAuth verifies Firebase ID tokens.
type FirebaseAuth struct {
	client *auth.Client
}

// UserClaims represents the authenticated user information
type UserClaims struct {
	UID         string
	Email       string
	DisplayName string
	Verified    bool
}

// NewFirebaseAuth creates a token verifier backed by the given Firebase app.
func NewFirebaseAuth(ctx context.Context, app *firebase.App) (*FirebaseAuth, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %v", err)
	}
	return &FirebaseAuth{client: client}, nil
}

// VerifyToken verifies a Firebase ID token and returns user claims.
func (f *FirebaseAuth) VerifyToken(ctx context.Context, idToken string) (*UserClaims, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	verified, _ := token.Claims["email_verified"].(bool)
	claims := &UserClaims{
		UID:      token.UID,
		Verified: verified,
	}
	if email, ok := token.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		claims.DisplayName = name
	}

	return claims, nil
}

// ExtractTokenFromHeader extracts the Bearer token from Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("authorization header must be Bearer token")
	}

	return parts[1], nil
}

// ServiceAccountPath returns the path to a service account key file if one
// is configured in the environment.
func ServiceAccountPath() string {
	for _, envVar := range []string{"GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_KEY"} {
		if path := os.Getenv(envVar); path != "" {
			return path
		}
	}
	return ""
}
