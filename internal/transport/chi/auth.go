package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Probes and scrapes stay reachable without a key.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const authChallenge = `Bearer realm="symptodex"`

// BearerAuthMiddleware validates "Authorization: Bearer <key>" against apiKeys.
// Blank keys are ignored. With no usable key, authentication is disabled.
// Keys are compared in constant time.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r.Header.Get("Authorization"))
			if msg == "" && !knownKey(keys, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", authChallenge)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credential; the scheme is case-insensitive.
// A non-empty second result is the rejection message.
func bearerToken(header string) ([]byte, string) {
	if header == "" {
		return nil, "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, "authorization header must use Bearer scheme"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "empty bearer token"
	}
	return []byte(token), ""
}

func knownKey(keys [][]byte, token []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, token)
	}
	return found == 1
}
