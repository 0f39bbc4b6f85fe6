package httpapi

import (
	"crypto/subtle"
	"net/http"
)

// apiKeyHeader is the single header this service accepts a key from.
const apiKeyHeader = "x-api-key"

// requireAPIKey gates every request behind one of keys, compared in
// constant time. When keys is empty, authentication is disabled and every
// request passes -- the boundary glue wires this from Config.APIKeys.
func requireAPIKey(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(apiKeyHeader)
			if !authorized(got, keys) {
				writeError(w, http.StatusUnauthorized, "missing or invalid x-api-key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authorized(got string, keys []string) bool {
	if got == "" {
		return false
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(k)) == 1 {
			return true
		}
	}
	return false
}
