package middleware

import (
	"net/http"
	"strings"
)

// CORS allows the configured frontend origin to call the API with
// credentials. An empty or "*" origin allows any origin without credentials.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	allowedOrigin = normalizeOrigin(allowedOrigin)
	wildcard := allowsAny(allowedOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && OriginAllowed(allowedOrigin, origin) {
				header := w.Header()
				if wildcard {
					header.Set("Access-Control-Allow-Origin", "*")
				} else {
					header.Set("Access-Control-Allow-Origin", origin)
					header.Set("Access-Control-Allow-Credentials", "true")
					header.Add("Vary", "Origin")
				}

				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
					if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
						header.Set("Access-Control-Allow-Headers", requested)
					}
					header.Set("Access-Control-Max-Age", "600")
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OriginAllowed reports whether a request from origin may use the API
// configured for allowed.
func OriginAllowed(allowed, origin string) bool {
	allowed = normalizeOrigin(allowed)
	if allowsAny(allowed) {
		return true
	}
	return strings.EqualFold(allowed, normalizeOrigin(origin))
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}

func allowsAny(allowed string) bool {
	return allowed == "" || allowed == "*"
}
