// Package sanitizer cleans untrusted input: bluemonday-backed HTML
// sanitization plus a tag-driven struct pass used by request binding.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	policiesOnce sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policiesOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		ugcPolicy = bluemonday.NewPolicy()
		ugcPolicy.AllowStandardURLs()
		ugcPolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		ugcPolicy.AllowAttrs("href").OnElements("a")
		ugcPolicy.RequireNoFollowOnLinks(true)
	})
	return strictPolicy, ugcPolicy
}

// StripHTML removes every tag and returns plain text. Use for fields that
// must never contain markup.
func StripHTML(s string) string {
	strict, _ := policies()
	return strict.Sanitize(s)
}

// SanitizeHTML keeps a small whitelist of formatting tags (p, a, strong,
// em, lists, code) and drops scripts, event handlers, and javascript: URLs.
// Use for user-generated content that may carry basic formatting.
func SanitizeHTML(s string) string {
	_, ugc := policies()
	return ugc.Sanitize(s)
}

// SanitizeHTMLCustom applies a caller-supplied bluemonday policy. A nil
// policy returns the input unchanged.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
