package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/auth"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// mockCredentials accepts a single username/password pair.
type mockCredentials struct {
	username, password string
	err                error
}

func (m *mockCredentials) Verify(username, password string) error {
	if m.err != nil {
		return m.err
	}
	if username != m.username || password != m.password {
		return fmt.Errorf("%w: mismatch", auth.ErrInvalidCredentials)
	}
	return nil
}

// mockIssuer returns a token derived from the username.
type mockIssuer struct {
	err error
}

func (m *mockIssuer) Issue(username string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "token-for-" + username, nil
}

func TestLoginHandler_Login(t *testing.T) {
	tests := []struct {
		name        string
		credentials *mockCredentials
		issuer      *mockIssuer
		body        string
		wantStatus  int
		wantToken   string
		wantMessage string
	}{
		{
			name:        "valid credentials",
			credentials: &mockCredentials{username: "admin", password: "123"},
			issuer:      &mockIssuer{},
			body:        `{"username":"admin","password":"123"}`,
			wantStatus:  http.StatusOK,
			wantToken:   "token-for-admin",
		},
		{
			name:        "wrong password",
			credentials: &mockCredentials{username: "admin", password: "123"},
			issuer:      &mockIssuer{},
			body:        `{"username":"admin","password":"nope"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid credentials",
		},
		{
			name:        "empty body object",
			credentials: &mockCredentials{username: "admin", password: "123"},
			issuer:      &mockIssuer{},
			body:        `{}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid credentials",
		},
		{
			name:        "invalid json",
			credentials: &mockCredentials{username: "admin", password: "123"},
			issuer:      &mockIssuer{},
			body:        `username=admin`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: msgInvalidBody,
		},
		{
			name:        "credential backend failure",
			credentials: &mockCredentials{err: errors.New("backend down")},
			issuer:      &mockIssuer{},
			body:        `{"username":"admin","password":"123"}`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: msgInternal,
		},
		{
			name:        "token signing failure",
			credentials: &mockCredentials{username: "admin", password: "123"},
			issuer:      &mockIssuer{err: errors.New("no key")},
			body:        `{"username":"admin","password":"123"}`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: msgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			router := mux.NewRouter()
			NewLoginHandler(tt.credentials, tt.issuer, zap.NewNop()).RegisterRoutes(router)

			// Act
			rr := serve(router, http.MethodPost, LoginPath, []byte(tt.body))

			// Assert
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}

			if tt.wantToken != "" {
				resp := decodeBody[model.TokenResponse](t, rr)
				if resp.Token != tt.wantToken {
					t.Errorf("token = %q, want %q", resp.Token, tt.wantToken)
				}
				return
			}

			resp := decodeBody[model.ErrorResponse](t, rr)
			if resp.Code != tt.wantStatus || resp.Message != tt.wantMessage {
				t.Errorf("response = %+v, want {%d %q}", resp, tt.wantStatus, tt.wantMessage)
			}
		})
	}
}

func TestLoginHandler_WithJWTService(t *testing.T) {
	// Arrange
	credentials, err := auth.NewDemoCredentialStore("admin", "123", 4)
	if err != nil {
		t.Fatalf("NewDemoCredentialStore() error = %v", err)
	}
	tokens, err := auth.NewJWTService(auth.TokenConfig{
		Key:      []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "VueNetCrud.Server",
		Audience: "VueNetCrud.Client",
		TTL:      time.Minute,
	})
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}

	router := mux.NewRouter()
	NewLoginHandler(credentials, tokens, zap.NewNop()).RegisterRoutes(router)

	// Act
	rr := serve(router, http.MethodPost, LoginPath, []byte(`{"username":"admin","password":"123"}`))

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeBody[model.TokenResponse](t, rr)
	claims, err := tokens.Verify(t.Context(), resp.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "admin" {
		t.Errorf("Subject = %q, want admin", claims.Subject)
	}
}

func TestLoginHandler_Options(t *testing.T) {
	for _, path := range []string{AuthBasePath, LoginPath} {
		t.Run(path, func(t *testing.T) {
			// Arrange
			router := mux.NewRouter()
			NewLoginHandler(&mockCredentials{}, &mockIssuer{}, zap.NewNop()).RegisterRoutes(router)

			// Act
			rr := serve(router, http.MethodOptions, path, nil)

			// Assert
			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
			}
			if rr.Body.Len() != 0 {
				t.Errorf("body = %q, want empty", rr.Body.String())
			}
		})
	}
}
