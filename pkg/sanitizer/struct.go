package sanitizer

import (
	"errors"
	"reflect"
	"strings"
)

// ErrNotStructPointer is returned when SanitizeStruct receives anything but
// a non-nil pointer to a struct.
var ErrNotStructPointer = errors.New("sanitizer: expected a non-nil struct pointer")

// SanitizeStruct rewrites string fields in place according to their
// `sanitize` tag. Directives are comma-separated and applied in order:
//
//	trim    strings.TrimSpace
//	lower   strings.ToLower
//	upper   strings.ToUpper
//	strip   StripHTML
//	html    SanitizeHTML
//
// Unknown directives are ignored. Nested structs, struct pointers, and
// string slices are walked recursively.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	sanitizeValue(rv.Elem())
	return nil
}

func sanitizeValue(rv reflect.Value) {
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		fv := rv.Field(i)
		directives := field.Tag.Get("sanitize")

		switch fv.Kind() {
		case reflect.String:
			if directives != "" && fv.CanSet() {
				fv.SetString(apply(fv.String(), directives))
			}
		case reflect.Struct:
			sanitizeValue(fv)
		case reflect.Pointer:
			if !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
				sanitizeValue(fv.Elem())
			} else if !fv.IsNil() && fv.Elem().Kind() == reflect.String && directives != "" {
				fv.Elem().SetString(apply(fv.Elem().String(), directives))
			}
		case reflect.Slice:
			if fv.Type().Elem().Kind() == reflect.String && directives != "" {
				for j := range fv.Len() {
					fv.Index(j).SetString(apply(fv.Index(j).String(), directives))
				}
			}
		}
	}
}

func apply(s, directives string) string {
	for _, d := range strings.Split(directives, ",") {
		switch strings.TrimSpace(d) {
		case "trim":
			s = strings.TrimSpace(s)
		case "lower":
			s = strings.ToLower(s)
		case "upper":
			s = strings.ToUpper(s)
		case "strip":
			s = StripHTML(s)
		case "html":
			s = SanitizeHTML(s)
		}
	}
	return s
}
