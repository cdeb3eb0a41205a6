package entities

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// AttachmentType distinguishes before/after repair photos.
type AttachmentType string

const (
	AttachmentTypeBefore AttachmentType = "before"
	AttachmentTypeAfter  AttachmentType = "after"
)

// ParseAttachmentType maps the API spelling to a type, failing closed.
func ParseAttachmentType(s string) (AttachmentType, error) {
	switch AttachmentType(strings.ToLower(strings.TrimSpace(s))) {
	case AttachmentTypeBefore:
		return AttachmentTypeBefore, nil
	case AttachmentTypeAfter:
		return AttachmentTypeAfter, nil
	default:
		return "", NewValidationError("type", fmt.Sprintf("unknown attachment type %q", s))
	}
}

// MaxAttachmentSizeBytes is the upload ceiling (5 MiB).
const MaxAttachmentSizeBytes = 5 * 1024 * 1024

var (
	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
	allowedExtensions = map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
	}
)

// Attachment is a before/after photo stored for a service order. Created
// once when a validated file is written; never mutated afterwards.
type Attachment struct {
	ID             string         `json:"id"`
	ServiceOrderID string         `json:"service_order_id"`
	Type           AttachmentType `json:"type"`
	FileName       string         `json:"file_name"`
	ContentType    string         `json:"content_type"`
	SizeBytes      int64          `json:"size_bytes"`
	StoragePath    string         `json:"storage_path"`
	UploadedAt     time.Time      `json:"uploaded_at"`
}

// ValidateAttachmentPolicy checks declared file metadata before any byte is
// written. Checks are independent; the first failing rule is reported.
func ValidateAttachmentPolicy(contentType, fileName string, sizeBytes int64) error {
	if _, ok := allowedContentTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("content type %q: %w", contentType, ErrUnsupportedAttachmentType)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("extension %q: %w", ext, ErrUnsupportedAttachmentType)
	}

	if sizeBytes <= 0 {
		return fmt.Errorf("file is empty: %w", ErrInvalidAttachmentSize)
	}
	if sizeBytes > MaxAttachmentSizeBytes {
		return fmt.Errorf("file exceeds %d bytes: %w", MaxAttachmentSizeBytes, ErrInvalidAttachmentSize)
	}

	return nil
}

// invalid in file names on the filesystems we store to
var invalidFileNameChars = `/\:*?"<>|` + "\x00"

// SanitizeFileName strips characters illegal in storage paths, joining the
// surviving runs with underscores, and truncates to at most 255 bytes on a
// rune boundary. Applied after policy validation; the result is what gets
// persisted.
func SanitizeFileName(fileName string) string {
	parts := strings.FieldsFunc(fileName, func(r rune) bool {
		return strings.ContainsRune(invalidFileNameChars, r) || r < 0x20
	})
	sanitized := strings.Join(parts, "_")
	if len(sanitized) > 255 {
		cut := 255
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		sanitized = sanitized[:cut]
	}
	return sanitized
}
