// Package cookie reads and writes plain, HMAC-signed, and AES-GCM-encrypted
// cookies, plus encrypted one-shot flash messages.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound    = errors.New("cookie: not found")
	ErrNoSecret    = errors.New("cookie: secret required")
	ErrWeakSecret  = errors.New("cookie: secret must be at least 32 bytes")
	ErrInvalidSig  = errors.New("cookie: invalid signature")
	ErrDecryptFail = errors.New("cookie: decryption failed")
)

// Jar writes cookies with shared attributes and holds the secret used for
// signing and sealing. A nil secret disables the signed/encrypted variants.
type Jar struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures a Jar.
type Option func(*Jar)

// New builds a Jar. Defaults: path "/", HttpOnly, SameSite=Lax.
func New(opts ...Option) *Jar {
	j := &Jar{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// WithSecret enables signing and encryption. Secrets shorter than 32 bytes
// are rejected silently; use Validate to surface the misconfiguration.
func WithSecret(secret string) Option {
	return func(j *Jar) {
		if len(secret) >= 32 {
			j.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie Domain attribute.
func WithDomain(domain string) Option { return func(j *Jar) { j.domain = domain } }

// WithPath sets the cookie Path attribute.
func WithPath(path string) Option { return func(j *Jar) { j.path = path } }

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option { return func(j *Jar) { j.secure = secure } }

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option { return func(j *Jar) { j.httpOnly = httpOnly } }

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option { return func(j *Jar) { j.sameSite = ss } }

// Validate reports whether the jar can sign and encrypt.
func (j *Jar) Validate() error {
	if j.secret == nil {
		return ErrNoSecret
	}
	return nil
}

// Get returns a plain cookie value.
func (j *Jar) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie. maxAge follows http.Cookie semantics: 0 means
// session-scoped, negative deletes.
func (j *Jar) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, j.build(name, value, maxAge))
}

// Delete expires a cookie.
func (j *Jar) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, j.build(name, "", -1))
}

// SetSigned writes value with an HMAC-SHA256 signature appended, encoded as
// base64(value).base64(sig).
func (j *Jar) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if j.secret == nil {
		return ErrNoSecret
	}

	mac := hmac.New(sha256.New, j.secret)
	mac.Write([]byte(value))

	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	http.SetCookie(w, j.build(name, encoded, maxAge))
	return nil
}

// GetSigned verifies and returns a cookie written by SetSigned.
func (j *Jar) GetSigned(r *http.Request, name string) (string, error) {
	if j.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := j.Get(r, name)
	if err != nil {
		return "", err
	}

	payload, sigPart, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrInvalidSig
	}

	value, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return "", ErrInvalidSig
	}

	mac := hmac.New(sha256.New, j.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrInvalidSig
	}

	return string(value), nil
}

// SetEncrypted seals value with AES-GCM before writing.
func (j *Jar) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if j.secret == nil {
		return ErrNoSecret
	}

	sealed, err := seal(j.secret, []byte(value))
	if err != nil {
		return err
	}

	http.SetCookie(w, j.build(name, base64.RawURLEncoding.EncodeToString(sealed), maxAge))
	return nil
}

// GetEncrypted opens a cookie written by SetEncrypted.
func (j *Jar) GetEncrypted(r *http.Request, name string) (string, error) {
	if j.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := j.Get(r, name)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecryptFail
	}

	plain, err := open(j.secret, data)
	if err != nil {
		return "", ErrDecryptFail
	}
	return string(plain), nil
}

// SetFlash stores a JSON-encoded one-shot value under an encrypted
// "flash_<key>" cookie.
func (j *Jar) SetFlash(w http.ResponseWriter, key string, value any) error {
	if j.secret == nil {
		return ErrNoSecret
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return j.SetEncrypted(w, "flash_"+key, string(data), 0)
}

// Flash reads a flash value into dest and deletes the cookie.
func (j *Jar) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	if j.secret == nil {
		return ErrNoSecret
	}

	name := "flash_" + key
	raw, err := j.GetEncrypted(r, name)
	if err != nil {
		return err
	}

	j.Delete(w, name)

	return json.Unmarshal([]byte(raw), dest)
}

func (j *Jar) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.path,
		Domain:   j.domain,
		MaxAge:   maxAge,
		Secure:   j.secure,
		HttpOnly: j.httpOnly,
		SameSite: j.sameSite,
	}
}
