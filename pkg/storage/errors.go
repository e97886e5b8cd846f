package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrNotConfigured is returned when storage features are used without
	// configuring a backend on the app.
	ErrNotConfigured = errors.New("storage: not configured")

	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrEmptyFile     = errors.New("storage: file is empty")

	ErrFileTooLarge = errors.New("storage: file exceeds size limit")
	ErrFileTooSmall = errors.New("storage: file below minimum size")
	ErrInvalidType  = errors.New("storage: file type not allowed")

	ErrNotFound      = errors.New("storage: object not found")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrPresignFailed = errors.New("storage: presign failed")

	ErrInvalidURL       = errors.New("storage: invalid source URL")
	ErrDownloadFailed   = errors.New("storage: download failed")
	ErrDownloadTooLarge = errors.New("storage: download exceeds size limit")
)

// wrapS3Error maps AWS errors onto package sentinels. The original
// error is flattened with %v so callers match with errors.Is against
// sentinels rather than errors.As against SDK types.
func wrapS3Error(err, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
