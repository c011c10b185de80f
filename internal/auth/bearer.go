package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AccessTokenParam is the query parameter carrying the token on WebSocket
// upgrade requests, where browsers cannot set an Authorization header.
const AccessTokenParam = "access_token"

// TokenVerifier verifies JWT tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*TokenClaims, error)
}

// TokenClaims holds the claims from a verified token.
type TokenClaims struct {
	Subject  string
	Audience []string
	Issuer   string
	Expiry   time.Time
	Name     string
}

// BearerAuthenticator authenticates requests carrying a bearer token.
type BearerAuthenticator struct {
	verifier TokenVerifier
}

// NewBearerAuthenticator creates a new bearer authenticator backed by the
// given token verifier.
func NewBearerAuthenticator(verifier TokenVerifier) *BearerAuthenticator {
	return &BearerAuthenticator{verifier: verifier}
}

// Authenticate extracts the bearer token, verifies it, and returns the
// authenticated identity.
func (a *BearerAuthenticator) Authenticate(
	r *http.Request,
) (*AuthInfo, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, ErrUnauthenticated
	}

	claims, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &AuthInfo{
		Method:    AuthMethodBearer,
		Subject:   claims.Subject,
		Name:      claims.Name,
		ExpiresAt: claims.Expiry,
	}, nil
}

// Method returns the authentication method type.
func (a *BearerAuthenticator) Method() AuthMethod {
	return AuthMethodBearer
}

// bearerToken reads the token from the Authorization header, or from the
// access_token query parameter of a WebSocket upgrade.
func bearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		token := r.URL.Query().Get(AccessTokenParam)
		return token, token != ""
	}

	return "", false
}
