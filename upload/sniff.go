// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultAllowedMIMEs is used when no allow list is configured.
var DefaultAllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Sniffer classifies raw field bytes as an allowed file type or as text.
// Client supplied metadata (filename, part Content-Type) is never consulted.
type Sniffer struct {
	allowed []string
}

func NewSniffer(allowed []string) *Sniffer {
	if len(allowed) == 0 {
		allowed = DefaultAllowedMIMEs
	}
	return &Sniffer{allowed: allowed}
}

// Sniff returns the detected MIME type and true when data starts with the
// signature of an allowed format. Anything else, including binary data of a
// format outside the allow list, is reported as not a file.
func (s *Sniffer) Sniff(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	detected := mimetype.Detect(data)
	for _, m := range s.allowed {
		if detected.Is(m) {
			return m, true
		}
	}
	return "", false
}

// Extension returns the label used in stored names for a MIME type:
// the subtype, so "image/jpeg" becomes "jpeg".
func Extension(mimeType string) string {
	if i := strings.IndexByte(mimeType, '/'); i >= 0 {
		mimeType = mimeType[i+1:]
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}

// ContentType maps a stored name back to a MIME type for serving.
func ContentType(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension(name[i:]); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
