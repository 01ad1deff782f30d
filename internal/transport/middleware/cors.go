package middleware

import (
	"net/http"
	"strings"
)

// CORS answers preflight requests for browser clients. The allowed origin
// list comes from server config as a comma-separated string; "*" opens the
// API to any origin.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	var origins []string
	allowAny := false
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAny = true
		}
		if o != "" {
			origins = append(origins, o)
		}
	}

	allowed := func(origin string) string {
		if allowAny {
			return "*"
		}
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return origin
			}
		}
		return ""
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowed(r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Trace-ID")
				w.Header().Set("Access-Control-Max-Age", "300")
				if origin != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
