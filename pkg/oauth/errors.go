package oauth

import "errors"

var (
	ErrMissingClientID     = errors.New("oauth: missing client id")
	ErrMissingClientSecret = errors.New("oauth: missing client secret")
	ErrEmailNotVerified    = errors.New("oauth: email not verified")
	ErrFetchFailed         = errors.New("oauth: provider request failed")
	ErrDecodeFailed        = errors.New("oauth: decode provider response")
)
