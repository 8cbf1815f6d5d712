package chi

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// apiKey is a configured key and the fingerprint logged in its place.
type apiKey struct {
	secret      []byte
	fingerprint string
}

func newAPIKeys(raw []string) []apiKey {
	keys := make([]apiKey, 0, len(raw))
	for _, k := range raw {
		if k == "" {
			continue
		}
		sum := sha256.Sum256([]byte(k))
		keys = append(keys, apiKey{secret: []byte(k), fingerprint: hex.EncodeToString(sum[:4])})
	}
	return keys
}

// BearerAuthMiddleware validates Bearer tokens against apiKeys. With no
// non-empty key it passes every request through. The matching key's
// fingerprint is attached to the request log line as "caller".
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := newAPIKeys(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="matchdex"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing or malformed bearer token")
				return
			}

			key, ok := matchKey(keys, token)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="matchdex", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}

			setCaller(r.Context(), key.fingerprint)
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credentials of a Bearer authorization header.
// The scheme is case-insensitive.
func bearerToken(header string) ([]byte, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return nil, false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}
	return []byte(token), true
}

// matchKey compares token against every key in constant time.
func matchKey(keys []apiKey, token []byte) (apiKey, bool) {
	var hit apiKey
	found := 0
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k.secret, token) == 1 {
			hit, found = k, 1
		}
	}
	return hit, found == 1
}

type requestEventKey struct{}

// requestEvent collects fields set by inner middleware for the wide event.
type requestEvent struct {
	caller string
}

func withRequestEvent(ctx context.Context, ev *requestEvent) context.Context {
	return context.WithValue(ctx, requestEventKey{}, ev)
}

func setCaller(ctx context.Context, fingerprint string) {
	if ev, ok := ctx.Value(requestEventKey{}).(*requestEvent); ok {
		ev.caller = fingerprint
	}
}
