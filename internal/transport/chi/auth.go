package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// protectedPrefix is the API surface that requires a key. Health probes, the
// metrics scraper and anything outside the API stay open.
const protectedPrefix = "/api/"

// BearerAuthMiddleware guards the session API with static API keys. If apiKeys is
// empty, authentication is disabled (pass-through). CORS preflights from the map
// client are never challenged.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresKey(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != "" {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, err)
				return
			}
			if !knownKey(keys, token) {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresKey(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return false
	}
	return strings.HasPrefix(r.URL.Path, protectedPrefix)
}

// bearerToken extracts the token. The scheme is case-insensitive. A non-empty
// second value is the client-facing reason for rejecting the header.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// knownKey compares against every key in constant time.
func knownKey(keys [][]byte, token string) bool {
	t := []byte(token)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, t)
	}
	return found == 1
}
