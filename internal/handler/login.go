package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/auth"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// Auth API paths.
const (
	AuthBasePath = "/api/auth"
	LoginPath    = AuthBasePath + "/login"
)

// CredentialVerifier checks a username and password.
type CredentialVerifier interface {
	Verify(username, password string) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// LoginHandler exchanges credentials for a bearer token.
type LoginHandler struct {
	credentials CredentialVerifier
	tokens      TokenIssuer
	logger      *zap.Logger
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(credentials CredentialVerifier, tokens TokenIssuer, logger *zap.Logger) *LoginHandler {
	return &LoginHandler{
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
	}
}

// RegisterRoutes registers the login route with the router.
func (h *LoginHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(LoginPath, h.Login).Methods(http.MethodPost)
	router.HandleFunc(AuthBasePath, h.Options).Methods(http.MethodOptions)
	router.HandleFunc(LoginPath, h.Options).Methods(http.MethodOptions)
}

// Options answers OPTIONS /api/auth and /api/auth/login with 200 and an
// empty body. CORS preflights are answered by the CORS middleware.
func (h *LoginHandler) Options(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "OPTIONS, POST")
	w.WriteHeader(http.StatusOK)
}

// Login handles POST /api/auth/login requests.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input model.LoginRequest
	if !decodeJSON(h.logger, w, r, &input) {
		return
	}

	if err := h.credentials.Verify(input.Username, input.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("credential check failed", zap.Error(err))
			writeError(h.logger, w, http.StatusInternalServerError, msgInternal)
			return
		}

		h.logger.Warn("login rejected",
			zap.String("username", input.Username),
			zap.String("remote_addr", r.RemoteAddr),
		)
		writeError(h.logger, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(input.Username)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		writeError(h.logger, w, http.StatusInternalServerError, msgInternal)
		return
	}

	h.logger.Info("login succeeded", zap.String("username", input.Username))
	writeJSON(h.logger, w, http.StatusOK, model.TokenResponse{Token: token})
}
