package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy declares which browser origins may call the API and what the
// preflight response advertises.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// corsResponder holds the policy precomputed into ready-to-emit header
// values, so the per-request path only matches the origin.
type corsResponder struct {
	origins     []string
	methods     string
	headers     string
	maxAge      string
	credentials bool
}

// WithCORS handles cross-origin requests for the configured origins.
// An empty origin list disables the middleware entirely.
func WithCORS(policy CORSPolicy) Middleware {
	if len(policy.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	responder := &corsResponder{
		origins:     cleanList(policy.AllowedOrigins),
		methods:     strings.Join(cleanList(policy.AllowedMethods), ", "),
		headers:     strings.Join(cleanList(policy.AllowedHeaders), ", "),
		credentials: policy.AllowCredentials,
	}
	if secs := int(policy.MaxAge.Seconds()); secs > 0 {
		responder.maxAge = strconv.Itoa(secs)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allow, ok := responder.matchOrigin(origin)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			responder.apply(w.Header(), allow)

			// Preflight stops here; actual requests continue inward.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// matchOrigin returns the Allow-Origin value to emit. A "*" entry echoes
// the caller's origin when credentials are allowed, since the wildcard is
// invalid in that combination.
func (c *corsResponder) matchOrigin(origin string) (string, bool) {
	for _, candidate := range c.origins {
		switch {
		case candidate == "*" && c.credentials:
			return origin, true
		case candidate == "*":
			return "*", true
		case strings.EqualFold(candidate, origin):
			return origin, true
		}
	}
	return "", false
}

func (c *corsResponder) apply(h http.Header, allowOrigin string) {
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	if c.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if c.methods != "" {
		h.Set("Access-Control-Allow-Methods", c.methods)
	}
	if c.headers != "" {
		h.Set("Access-Control-Allow-Headers", c.headers)
	}
	if c.maxAge != "" {
		h.Set("Access-Control-Max-Age", c.maxAge)
	}
	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
