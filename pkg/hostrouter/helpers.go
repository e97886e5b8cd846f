package hostrouter

import (
	"net/http"
	"strings"
)

// Domain returns the normalized host of the request: lowercased, port
// stripped, IPv6 literals preserved.
func Domain(r *http.Request) string {
	return normalizeHost(r.Host)
}

// Subdomain returns the part of the request host in front of base, or ""
// when the host is the base itself or belongs to another domain.
//
//	Subdomain(req, "example.com") // "foo.example.com" -> "foo"
//	Subdomain(req, "example.com") // "a.b.example.com" -> "a.b"
func Subdomain(r *http.Request, base string) string {
	host := normalizeHost(r.Host)
	base = strings.ToLower(base)

	if host == base {
		return ""
	}
	suffix := "." + base
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	return strings.TrimSuffix(host, suffix)
}
