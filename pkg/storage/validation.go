package storage

import (
	"fmt"
	"mime/multipart"
)

// Rule is a pre-upload validation check. The size is the declared
// upload size and contentType the MIME type detected from magic bytes.
type Rule func(size int64, contentType string) error

// Validate runs rules in order and returns the first failure. Every
// returned error wraps one of the package sentinels, so callers can
// branch with errors.Is.
func Validate(size int64, contentType string, rules ...Rule) error {
	for _, rule := range rules {
		if err := rule(size, contentType); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFile is Validate for multipart uploads.
func ValidateFile(fh *multipart.FileHeader, contentType string, rules ...Rule) error {
	if fh == nil || fh.Size == 0 {
		return ErrEmptyFile
	}
	return Validate(fh.Size, contentType, rules...)
}

// MaxSize rejects uploads larger than limit bytes.
func MaxSize(limit int64) Rule {
	return func(size int64, _ string) error {
		if size > limit {
			return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, limit)
		}
		return nil
	}
}

// MinSize rejects uploads smaller than limit bytes.
func MinSize(limit int64) Rule {
	return func(size int64, _ string) error {
		if size < limit {
			return fmt.Errorf("%w: %d < %d bytes", ErrFileTooSmall, size, limit)
		}
		return nil
	}
}

// NotEmpty rejects zero-byte uploads.
func NotEmpty() Rule {
	return func(size int64, _ string) error {
		if size == 0 {
			return ErrEmptyFile
		}
		return nil
	}
}

// AllowedTypes accepts only uploads whose detected MIME type matches
// one of the patterns. Patterns may use a trailing wildcard, as in
// "image/*".
func AllowedTypes(patterns ...string) Rule {
	return func(_ int64, contentType string) error {
		if !matchesMIME(contentType, patterns) {
			return fmt.Errorf("%w: %q", ErrInvalidType, contentType)
		}
		return nil
	}
}

// ImagesOnly accepts image uploads of any subtype.
func ImagesOnly() Rule {
	return AllowedTypes("image/*")
}

// DocumentsOnly accepts common document formats: PDF, Office files,
// plain text, CSV and RTF.
func DocumentsOnly() Rule {
	return AllowedTypes(
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
		"text/csv",
		"application/rtf",
	)
}
