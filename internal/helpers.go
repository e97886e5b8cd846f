package internal

import "strconv"

// Parseable lists the types Param, Query, and QueryDefault can decode
// from a request string.
type Parseable interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue reads a typed value stored with Context.Set. Returns the
// zero value when the key is absent or holds a different type.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param reads a typed URL parameter. Unparseable values yield the zero
// value.
func Param[T Parseable](c Context, name string) T {
	v, _ := parseValue[T](c.Param(name))
	return v
}

// Query reads a typed query parameter. Unparseable values yield the
// zero value.
func Query[T Parseable](c Context, name string) T {
	v, _ := parseValue[T](c.Query(name))
	return v
}

// QueryDefault reads a typed query parameter, falling back to def when
// the parameter is absent or unparseable.
func QueryDefault[T Parseable](c Context, name string, def T) T {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, ok := parseValue[T](raw)
	if !ok {
		return def
	}
	return v
}

func parseValue[T Parseable](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
