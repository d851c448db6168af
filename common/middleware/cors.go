package middleware

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET, POST, PATCH, OPTIONS"
	corsHeaders = "Content-Type, X-Request-ID"
)

// CORS returns a middleware allowing cross-origin requests from the given
// origins. An entry of "*" allows any origin; entries of the form
// "*.example.com" match any subdomain.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && originAllowed(origin, allowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", corsMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		switch {
		case a == "*":
			return true
		case strings.HasPrefix(a, "*."):
			if strings.HasSuffix(origin, strings.TrimPrefix(a, "*")) {
				return true
			}
		case origin == a:
			return true
		}
	}
	return false
}
