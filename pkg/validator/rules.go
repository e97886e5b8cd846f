package validator

import "fmt"

// Rule is the outcome of one field check. A passing rule has a nil Error.
type Rule struct {
	Error *ValidationError
}

// Apply collects failed rules into ValidationErrors, preserving order.
// Returns nil when every rule passed.
func Apply(rules ...Rule) error {
	var ve ValidationErrors
	for _, r := range rules {
		if r.Error != nil {
			ve = append(ve, *r.Error)
		}
	}
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func pass() Rule { return Rule{} }

func fail(field, message, key string, values map[string]any) Rule {
	return Rule{Error: &ValidationError{
		Field:             field,
		Message:           message,
		TranslationKey:    key,
		TranslationValues: values,
	}}
}

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// RequiredString fails on the empty string.
func RequiredString(field, value string) Rule {
	if value != "" {
		return pass()
	}
	return fail(field, "is required", "validation.required", map[string]any{"field": field})
}

// RequiredSlice fails on an empty slice.
func RequiredSlice[T any](field string, value []T) Rule {
	if len(value) > 0 {
		return pass()
	}
	return fail(field, "is required", "validation.required", map[string]any{"field": field})
}

// RequiredMap fails on an empty map.
func RequiredMap[K comparable, V any](field string, value map[K]V) Rule {
	if len(value) > 0 {
		return pass()
	}
	return fail(field, "is required", "validation.required", map[string]any{"field": field})
}

// RequiredNum fails on the numeric zero value.
func RequiredNum[T number](field string, value T) Rule {
	if value != 0 {
		return pass()
	}
	return fail(field, "is required", "validation.required", map[string]any{"field": field})
}

// MinLenString enforces a minimum length in bytes.
func MinLenString(field, value string, minLen int) Rule {
	if len(value) >= minLen {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must be at least %d characters", minLen),
		"validation.min_length",
		map[string]any{"field": field, "min": minLen})
}

// MaxLenString enforces a maximum length in bytes.
func MaxLenString(field, value string, maxLen int) Rule {
	if len(value) <= maxLen {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must not exceed %d characters", maxLen),
		"validation.max_length",
		map[string]any{"field": field, "max": maxLen})
}

// LenString enforces an exact length in bytes.
func LenString(field, value string, length int) Rule {
	if len(value) == length {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must be exactly %d characters", length),
		"validation.exact_length",
		map[string]any{"field": field, "length": length})
}

// MinNum enforces a lower bound.
func MinNum[T number](field string, value, minVal T) Rule {
	if value >= minVal {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must be at least %v", minVal),
		"validation.min",
		map[string]any{"field": field, "min": minVal})
}

// MaxNum enforces an upper bound.
func MaxNum[T number](field string, value, maxVal T) Rule {
	if value <= maxVal {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must not exceed %v", maxVal),
		"validation.max",
		map[string]any{"field": field, "max": maxVal})
}

// MinLenSlice enforces a minimum item count.
func MinLenSlice[T any](field string, value []T, minLen int) Rule {
	if len(value) >= minLen {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must contain at least %d items", minLen),
		"validation.min_items",
		map[string]any{"field": field, "min": minLen})
}

// MaxLenSlice enforces a maximum item count.
func MaxLenSlice[T any](field string, value []T, maxLen int) Rule {
	if len(value) <= maxLen {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must not contain more than %d items", maxLen),
		"validation.max_items",
		map[string]any{"field": field, "max": maxLen})
}

// LenSlice enforces an exact item count.
func LenSlice[T any](field string, value []T, count int) Rule {
	if len(value) == count {
		return pass()
	}
	return fail(field,
		fmt.Sprintf("must contain exactly %d items", count),
		"validation.exact_items",
		map[string]any{"field": field, "count": count})
}
