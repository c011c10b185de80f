package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// CORS request and response headers.
const (
	headerOrigin           = "Origin"
	headerVary             = "Vary"
	headerAllowOrigin      = "Access-Control-Allow-Origin"
	headerAllowCredentials = "Access-Control-Allow-Credentials"
	headerAllowMethods     = "Access-Control-Allow-Methods"
	headerAllowHeaders     = "Access-Control-Allow-Headers"
	headerMaxAge           = "Access-Control-Max-Age"
	headerRequestMethod    = "Access-Control-Request-Method"
	headerRequestHeaders   = "Access-Control-Request-Headers"
)

// CORSOptions configures the CORS middleware.
type CORSOptions struct {
	// AllowedOrigins lists the exact origins that may call the API.
	AllowedOrigins []string
	// MaxAge is how long browsers may cache a preflight response.
	MaxAge time.Duration
}

// CORS returns a middleware implementing a named-origin policy. Requests from
// a listed origin get the origin echoed back with credentials allowed, and
// preflight requests are answered with 204 allowing whatever method and
// headers were asked for. Requests from other origins pass through without
// CORS headers.
//
// Gorilla mux only runs middleware on matched routes, so the returned
// middleware is meant to wrap the router itself.
func CORS(opts CORSOptions) Middleware {
	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		origins[origin] = struct{}{}
	}

	maxAge := strconv.Itoa(int(opts.MaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get(headerOrigin)
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add(headerVary, headerOrigin)

			_, allowed := origins[origin]
			preflight := r.Method == http.MethodOptions &&
				r.Header.Get(headerRequestMethod) != ""

			if allowed {
				w.Header().Set(headerAllowOrigin, origin)
				w.Header().Set(headerAllowCredentials, "true")
			}

			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			if allowed {
				w.Header().Set(headerAllowMethods, r.Header.Get(headerRequestMethod))
				if reqHeaders := r.Header.Get(headerRequestHeaders); reqHeaders != "" {
					w.Header().Set(headerAllowHeaders, reqHeaders)
				}
				if opts.MaxAge > 0 {
					w.Header().Set(headerMaxAge, maxAge)
				}
			}

			w.WriteHeader(http.StatusNoContent)
		})
	}
}
