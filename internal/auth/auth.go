// Package auth authenticates API callers with self-issued JWT bearer tokens
// and verifies login credentials.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// AuthMethod names how a caller proved its identity.
type AuthMethod string

// AuthMethodBearer is a signed token sent as a bearer credential.
const AuthMethodBearer AuthMethod = "bearer"

// AuthInfo identifies an authenticated caller for the lifetime of a request.
type AuthInfo struct {
	Method    AuthMethod
	Subject   string
	Name      string
	ExpiresAt time.Time
}

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*AuthInfo, error)
	Method() AuthMethod
}

// Sentinel errors for authentication failures.
var (
	ErrUnauthenticated    = errors.New("unauthenticated: no credentials provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type authInfoKey struct{}

// WithAuthInfo returns a copy of ctx carrying info.
func WithAuthInfo(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoKey{}, info)
}

// FromContext returns the caller stored by WithAuthInfo.
func FromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authInfoKey{}).(*AuthInfo)
	return info, ok && info != nil
}

// Subject returns the authenticated subject of ctx, or "anonymous".
func Subject(ctx context.Context) string {
	if info, ok := FromContext(ctx); ok {
		return info.Subject
	}
	return "anonymous"
}
