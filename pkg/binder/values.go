package binder

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// bindValues assigns url.Values onto struct fields matched by tag. Fields
// missing from the input keep their current value.
func bindValues(values url.Values, v any, tag string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}
	return bindStruct(values, rv.Elem(), tag)
}

func bindStruct(values url.Values, rv reflect.Value, tag string) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		// Embedded structs flatten into the parent namespace.
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(values, rv.Field(i), tag); err != nil {
				return err
			}
			continue
		}

		name := fieldName(field, tag)
		if name == "-" {
			continue
		}
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}

		if err := setField(rv.Field(i), vals); err != nil {
			return fmt.Errorf("binder: field %q: %w", name, err)
		}
	}
	return nil
}

func fieldName(field reflect.StructField, tag string) string {
	for _, t := range []string{tag, "json"} {
		if name, _, _ := strings.Cut(field.Tag.Get(t), ","); name != "" {
			return name
		}
	}
	return strings.ToLower(field.Name)
}

func setField(fv reflect.Value, vals []string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return setField(fv.Elem(), vals)
	}

	if fv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(fv.Type(), len(vals), len(vals))
		for i, s := range vals {
			if err := setScalar(out.Index(i), s); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	}

	return setScalar(fv, vals[0])
}

func setScalar(fv reflect.Value, s string) error {
	if fv.Type() == reflect.TypeOf(time.Time{}) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if fv.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(s)
			if err != nil {
				return err
			}
			fv.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, fv.Type())
	}
	return nil
}
