package middleware

import (
	"crypto/subtle"
	"net/http"
)

// secretTokenHeader is set by the Bot API on every webhook delivery
// when the webhook was registered with a secret token.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookAuth rejects webhook deliveries whose secret token does not
// match. An empty configured secret disables the check.
func WebhookAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				got := r.Header.Get(secretTokenHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
