package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

const downloadTimeout = 30 * time.Second

// PutFile uploads a multipart form file. The MIME type is detected
// from magic bytes, never from the client-supplied filename.
func PutFile(ctx context.Context, s Storage, fh *multipart.FileHeader, opts ...PutOption) (*File, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}

	// Sniff once here so Put skips re-detection and the rules see the
	// same type the object is stored with.
	contentType := DetectMIME(fh)
	opts = append(opts, WithContentType(contentType))

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer f.Close()

	return s.Put(ctx, f, fh.Size, opts...)
}

// PutBytes uploads an in-memory payload.
func PutBytes(ctx context.Context, s Storage, data []byte, opts ...PutOption) (*File, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
}

// PutFromURL downloads an http(s) resource and stores it. maxSize
// bounds the download; zero applies DefaultMaxDownloadSize.
func PutFromURL(ctx context.Context, s Storage, sourceURL string, maxSize int64, opts ...PutOption) (*File, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxDownloadSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}
	if resp.ContentLength > maxSize {
		return nil, ErrDownloadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrDownloadTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	return s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
}
