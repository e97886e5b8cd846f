package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// MIMEOctetStream is the fallback type when detection fails.
const MIMEOctetStream = "application/octet-stream"

// http.DetectContentType inspects at most 512 bytes.
const sniffLen = 512

// Preferred extension per MIME type, used when generating object keys.
var mimeExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/x-icon":  ".ico",
	"image/avif":    ".avif",

	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.ms-powerpoint":                                             ".ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"text/plain":      ".txt",
	"text/csv":        ".csv",
	"text/html":       ".html",
	"application/rtf": ".rtf",

	"application/json": ".json",
	"application/xml":  ".xml",

	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",

	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"audio/aac":  ".aac",
	"audio/flac": ".flac",

	"application/zip":   ".zip",
	"application/gzip":  ".gz",
	"application/x-tar": ".tar",
}

// DetectMIME sniffs the MIME type of a multipart upload from its
// leading bytes, never from the client-supplied filename or header.
func DetectMIME(fh *multipart.FileHeader) string {
	if fh == nil {
		return MIMEOctetStream
	}
	f, err := fh.Open()
	if err != nil {
		return MIMEOctetStream
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if n == 0 || (err != nil && err != io.EOF) {
		return MIMEOctetStream
	}
	return http.DetectContentType(buf[:n])
}

// ExtFromMIME returns the preferred file extension for a MIME type, or
// "" when unknown.
func ExtFromMIME(contentType string) string {
	return mimeExtensions[normalizeMIME(contentType)]
}

// IsImage reports whether the upload sniffs as an image.
func IsImage(fh *multipart.FileHeader) bool {
	return strings.HasPrefix(normalizeMIME(DetectMIME(fh)), "image/")
}

// IsVideo reports whether the upload sniffs as a video.
func IsVideo(fh *multipart.FileHeader) bool {
	return strings.HasPrefix(normalizeMIME(DetectMIME(fh)), "video/")
}

// IsAudio reports whether the upload sniffs as audio.
func IsAudio(fh *multipart.FileHeader) bool {
	return strings.HasPrefix(normalizeMIME(DetectMIME(fh)), "audio/")
}

// sniffReader detects the MIME type of r and returns a seekable reader
// positioned at the start. The AWS SDK needs io.ReadSeeker to compute
// the payload hash, so non-seekable input is buffered in full.
func sniffReader(r io.Reader) (string, io.ReadSeeker) {
	if rs, ok := r.(io.ReadSeeker); ok {
		buf := make([]byte, sniffLen)
		n, _ := rs.Read(buf)
		_, _ = rs.Seek(0, io.SeekStart)
		if n == 0 {
			return MIMEOctetStream, rs
		}
		return http.DetectContentType(buf[:n]), rs
	}

	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return MIMEOctetStream, bytes.NewReader(nil)
	}
	return http.DetectContentType(data), bytes.NewReader(data)
}

// normalizeMIME lowercases the type and strips parameters like charset.
func normalizeMIME(contentType string) string {
	contentType, _, _ = strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(contentType))
}

func matchesMIME(contentType string, patterns []string) bool {
	contentType = normalizeMIME(contentType)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(strings.ToLower(pattern))
		if contentType == pattern {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
