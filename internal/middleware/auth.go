package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/auth"
)

// Auth returns a middleware that authenticates requests. CORS preflight
// requests are passed through unauthenticated.
func Auth(
	authenticator auth.Authenticator,
	logger *zap.Logger,
) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(
			w http.ResponseWriter,
			r *http.Request,
		) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			info, err := authenticator.Authenticate(r)
			if err != nil {
				logger.Warn("authentication failed",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("request_id", getRequestID(r)),
					zap.Error(err),
				)
				writeAuthError(w, err)
				return
			}

			logger.Debug("authentication successful",
				zap.String("subject", info.Subject),
				zap.String("method", string(info.Method)),
				zap.String("path", r.URL.Path),
			)

			ctx := auth.WithAuthInfo(r.Context(), info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes a 401 with a WWW-Authenticate challenge matching
// the failure.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	default:
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	writeJSONError(w, http.StatusUnauthorized, err.Error())
}
