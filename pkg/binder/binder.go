// Package binder fills structs from request payloads: JSON bodies, form
// posts, and query strings. Form and query binding is tag-driven
// reflection; field names resolve from the `form`/`query` tag, then the
// `json` tag, then the lowercased field name.
package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrInvalidTarget   = errors.New("binder: target must be a non-nil struct pointer")
	ErrInvalidJSON     = errors.New("binder: invalid JSON body")
	ErrUnsupportedType = errors.New("binder: unsupported field type")
)

// maxMultipartMemory bounds in-memory parsing of multipart forms; larger
// file parts spill to disk per net/http semantics.
const maxMultipartMemory = 10 << 20

// JSON returns a binder that decodes the request body into the target.
// An empty body leaves the target untouched.
func JSON() func(*http.Request, any) error {
	return func(r *http.Request, v any) error {
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return nil
	}
}

// Form returns a binder for url-encoded and multipart form bodies, keyed by
// the `form` tag.
func Form() func(*http.Request, any) error {
	return func(r *http.Request, v any) error {
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				return err
			}
		} else if err := r.ParseForm(); err != nil {
			return err
		}
		return bindValues(r.PostForm, v, "form")
	}
}

// Query returns a binder for URL query parameters, keyed by the `query` tag.
func Query() func(*http.Request, any) error {
	return func(r *http.Request, v any) error {
		return bindValues(r.URL.Query(), v, "query")
	}
}
