package slug

import (
	"crypto/rand"
	mrand "math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultSuffixLength = 6

const (
	suffixCharsLower = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixCharsMixed = suffixCharsLower + "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Make converts input into a URL-safe slug. Defaults: lowercase output,
// "-" separator, no length limits.
func Make(input string, opts ...Option) string {
	o := newOptions(opts...)
	result := slugify(input, o)

	switch {
	case o.suffixLength > 0:
		result = appendSuffix(result, o.suffixLength, o)
	case isReserved(result, o.reserved):
		result = appendAutoSuffix(result, o)
	case o.maxLength > 0 && len(result) > o.maxLength:
		result = trimSep(result[:o.maxLength], o.separator)
	}

	if o.minLength > 0 && len(result) < o.minLength {
		result = padToMin(result, o)
	}
	return result
}

// slugify runs the text pipeline: custom replacements, char stripping,
// diacritic folding, then tokenization on non-alphanumeric runes.
func slugify(input string, o options) string {
	s := input
	for from, to := range o.replacements {
		s = strings.ReplaceAll(s, from, to)
	}
	if o.stripChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(o.stripChars, r) {
				return -1
			}
			return r
		}, s)
	}
	s = foldDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		if isAlnum(r) {
			if gap && b.Len() > 0 {
				b.WriteString(o.separator)
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}

	out := b.String()
	if o.lowercase {
		out = strings.ToLower(out)
	}
	return out
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// foldLigatures covers Latin letters that do not decompose under NFD.
var foldLigatures = strings.NewReplacer(
	"ß", "s", "ẞ", "S",
	"æ", "a", "Æ", "A",
	"œ", "o", "Œ", "O",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
)

var markRemover = runes.Remove(runes.In(unicode.Mn))

// foldDiacritics reduces accented Latin characters to ASCII. Characters
// outside the Latin range survive here and are dropped during tokenization.
func foldDiacritics(s string) string {
	s = foldLigatures.Replace(s)
	// The chain buffers internally, so build it per call for goroutine safety.
	out, _, err := transform.String(transform.Chain(norm.NFD, markRemover, norm.NFC), s)
	if err != nil {
		return s
	}
	return out
}

func isReserved(s string, reserved []string) bool {
	for _, r := range reserved {
		if strings.EqualFold(s, r) {
			return true
		}
	}
	return false
}

// appendSuffix attaches a random suffix of exactly n characters; when a max
// length is set the base is truncated to make room, never the suffix.
func appendSuffix(base string, n int, o options) string {
	suffix := randomSuffix(n, o.lowercase)
	if base == "" {
		return capLength(suffix, o.maxLength)
	}
	if o.maxLength > 0 {
		avail := o.maxLength - len(o.separator) - n
		if avail <= 0 {
			return capLength(suffix, o.maxLength)
		}
		if len(base) > avail {
			base = trimSep(base[:avail], o.separator)
		}
	}
	return base + o.separator + suffix
}

// appendAutoSuffix attaches a collision suffix to a reserved slug; here the
// base is kept intact and the suffix shrinks to whatever space remains.
func appendAutoSuffix(base string, o options) string {
	n := defaultSuffixLength
	if o.maxLength > 0 {
		if len(base) > o.maxLength {
			base = trimSep(base[:o.maxLength], o.separator)
		}
		if avail := o.maxLength - len(base) - len(o.separator); avail < n {
			n = avail
		}
	}
	if n <= 0 {
		return base
	}
	return base + o.separator + randomSuffix(n, o.lowercase)
}

// padToMin appends a random suffix when the slug falls short of the minimum
// length. The suffix is a fixed six characters, shrunk only to respect an
// explicit max length.
func padToMin(result string, o options) string {
	sep := o.separator
	if result == "" {
		sep = ""
	}
	n := defaultSuffixLength
	if o.maxLength > 0 {
		if avail := o.maxLength - len(result) - len(sep); avail < n {
			n = avail
		}
	}
	if n <= 0 {
		return result
	}
	return result + sep + randomSuffix(n, o.lowercase)
}

func capLength(s string, maxLen int) string {
	if maxLen > 0 && len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

// trimSep removes trailing separator characters left by truncation.
func trimSep(s, sep string) string {
	if sep == "" {
		return s
	}
	return strings.TrimRight(s, sep)
}

func randomSuffix(n int, lowercase bool) string {
	if n <= 0 {
		return ""
	}
	charset := suffixCharsMixed
	if lowercase {
		charset = suffixCharsLower
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = charset[mrand.IntN(len(charset))]
		}
		return string(buf)
	}
	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}
	return string(buf)
}
