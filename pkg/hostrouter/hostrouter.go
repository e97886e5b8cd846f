// Package hostrouter dispatches requests to handlers by Host header, with
// exact hostnames and *.domain wildcards. It backs multi-domain serving in
// the application runner.
package hostrouter

import (
	"net/http"
	"strings"
)

// Routes maps host patterns to handlers. A pattern is either an exact host
// ("api.example.com") or a wildcard ("*.example.com").
type Routes map[string]http.Handler

// Router matches the request Host against registered patterns. Exact
// matches win over wildcards; unmatched hosts go to the fallback.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler // keyed by base domain, "*." stripped
	fallback http.Handler
}

// New builds a Router. Patterns are normalized to lowercase; empty patterns
// are skipped.
func New(routes Routes, fallback http.Handler) *Router {
	r := &Router{
		exact:    make(map[string]http.Handler),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}
	for pattern, handler := range routes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "":
		case strings.HasPrefix(pattern, "*."):
			r.wildcard[pattern[2:]] = handler
		default:
			r.exact[pattern] = handler
		}
	}
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	host := normalizeHost(req.Host)

	if h, ok := r.exact[host]; ok {
		h.ServeHTTP(w, req)
		return
	}

	if _, domain, ok := strings.Cut(host, "."); ok {
		if h, ok := r.wildcard[domain]; ok {
			h.ServeHTTP(w, req)
			return
		}
	}

	r.fallback.ServeHTTP(w, req)
}

// normalizeHost lowercases the host and strips a trailing port, leaving
// IPv6 literals intact.
func normalizeHost(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return strings.ToLower(host)
}
