package storage

import "time"

type putConfig struct {
	key         string
	prefix      string
	tenant      string
	contentType string
	visibility  Visibility
	rules       []Rule
}

// PutOption customizes a single upload.
type PutOption func(*putConfig)

// WithKey stores the object under an explicit key instead of a
// generated one. Use it to overwrite a known location.
func WithKey(key string) PutOption {
	return func(c *putConfig) { c.key = key }
}

// WithPrefix prepends a path segment to the generated key, after the
// tenant segment if one is set.
func WithPrefix(prefix string) PutOption {
	return func(c *putConfig) { c.prefix = prefix }
}

// WithTenant prepends a tenant segment to the generated key, isolating
// uploads per tenant.
func WithTenant(id string) PutOption {
	return func(c *putConfig) { c.tenant = id }
}

// WithContentType skips magic-byte detection and uses the given type.
func WithContentType(ct string) PutOption {
	return func(c *putConfig) { c.contentType = ct }
}

// WithVisibility overrides the configured default visibility.
func WithVisibility(v Visibility) PutOption {
	return func(c *putConfig) { c.visibility = v }
}

// WithRules validates the upload before it is stored. The first
// failing rule aborts the upload.
func WithRules(rules ...Rule) PutOption {
	return func(c *putConfig) { c.rules = append(c.rules, rules...) }
}

type urlConfig struct {
	downloadName string
	expiry       time.Duration
	public       bool
}

// URLOption customizes URL generation.
type URLOption func(*urlConfig)

// WithExpiry sets the signed URL lifetime. Defaults to 15 minutes.
func WithExpiry(d time.Duration) URLOption {
	return func(c *urlConfig) {
		if d > 0 {
			c.expiry = d
		}
	}
}

// WithDownloadName serves the object as an attachment with the given
// filename. Implies a signed URL.
func WithDownloadName(filename string) URLOption {
	return func(c *urlConfig) { c.downloadName = filename }
}

// WithPublicURL returns the unsigned public URL. The object must have
// been stored with PublicRead visibility, or the bucket must allow
// public reads.
func WithPublicURL() URLOption {
	return func(c *urlConfig) { c.public = true }
}
