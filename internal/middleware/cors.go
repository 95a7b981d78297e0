package middleware

import (
	"net/http"
	"strings"
)

// corsPolicy は演習用フロントエンドに許可するCORSの内容。
// APIは読み取り専用でCookieも使わないため、GETのみを許可しcredentialsは送らせない。
// X-Request-IDとRetry-Afterはクライアントが問い合わせやリトライに使うので公開する。
type corsPolicy struct {
	origin        string
	methods       string
	allowHeaders  string
	exposeHeaders string
	maxAgeSeconds string
}

func newCORSPolicy(origin string) corsPolicy {
	return corsPolicy{
		origin:        origin,
		methods:       strings.Join([]string{http.MethodGet, http.MethodOptions}, ", "),
		allowHeaders:  strings.Join([]string{"Content-Type", RequestIDHeader}, ", "),
		exposeHeaders: strings.Join([]string{RequestIDHeader, "Retry-After"}, ", "),
		maxAgeSeconds: "86400",
	}
}

func (p corsPolicy) apply(h http.Header) {
	h.Set("Access-Control-Allow-Origin", p.origin)
	h.Set("Access-Control-Allow-Methods", p.methods)
	h.Set("Access-Control-Allow-Headers", p.allowHeaders)
	h.Set("Access-Control-Expose-Headers", p.exposeHeaders)
	h.Set("Access-Control-Max-Age", p.maxAgeSeconds)
	h.Add("Vary", "Origin")
}

// NewCORSMiddleware はCORS_ALLOWED_ORIGINに対するCORSミドルウェアを返す。
// プリフライト(OPTIONS)は後続のハンドラーに渡さず204で終える。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigin)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.apply(w.Header())
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
