package slug

type options struct {
	replacements map[string]string
	reserved     []string
	separator    string
	stripChars   string
	maxLength    int
	minLength    int
	suffixLength int
	lowercase    bool
}

// Option configures slug generation.
type Option func(*options)

func newOptions(opts ...Option) options {
	o := options{
		separator: "-",
		lowercase: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Lowercase controls case folding of the result. Enabled by default.
func Lowercase(enabled bool) Option {
	return func(o *options) { o.lowercase = enabled }
}

// Separator sets the string placed between words. May be empty.
func Separator(sep string) Option {
	return func(o *options) { o.separator = sep }
}

// MaxLength caps the slug length in bytes. Zero means unlimited.
func MaxLength(n int) Option {
	return func(o *options) { o.maxLength = n }
}

// MinLength pads short slugs with a random suffix to reach n bytes.
func MinLength(n int) Option {
	return func(o *options) { o.minLength = n }
}

// StripChars removes the given characters before slugification.
func StripChars(chars string) Option {
	return func(o *options) { o.stripChars = chars }
}

// CustomReplace applies string substitutions before slugification.
func CustomReplace(replacements map[string]string) Option {
	return func(o *options) { o.replacements = replacements }
}

// WithSuffix appends a random alphanumeric suffix of n characters, useful
// for collision resistance when slugs become identifiers.
func WithSuffix(n int) Option {
	return func(o *options) { o.suffixLength = n }
}

// ReservedSlugs forces a random suffix whenever the generated slug matches
// one of the given values, compared case-insensitively.
func ReservedSlugs(slugs ...string) Option {
	return func(o *options) { o.reserved = slugs }
}
