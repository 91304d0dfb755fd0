package chat

import (
	"encoding/base64"
	"path/filepath"
	"strings"

	"mentorchat/internal/pkg/errs"
)

const (
	// MaxAttachmentSizeMB is the maximum allowed file size in megabytes.
	MaxAttachmentSizeMB = 5

	// MaxAttachmentSize is the maximum allowed file size in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024

	// MaxContentBytes is the maximum allowed size for text message content.
	MaxContentBytes = 5000
)

// ImageMIMETypes defines the MIME types rendered inline in the transcript.
// Any other attachment type renders as a download link instead.
var ImageMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps common file extensions to their MIME types, used to infer a
// type for staged files whose MIME type the caller does not know.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".zip":  "application/zip",
}

// Attachment is the file reference carried by a received or echoed message.
type Attachment struct {
	// URL locates the file: a server-hosted URL on inbound messages, or the
	// encoded data URI on locally echoed sends.
	URL string

	// MimeType decides inline-vs-link rendering.
	MimeType string
}

// Inline reports whether the attachment should render inline (image types)
// rather than as a download link. Never both.
func (a *Attachment) Inline() bool {
	if a == nil {
		return false
	}
	_, ok := ImageMIMETypes[strings.ToLower(a.MimeType)]
	return ok
}

// StagedAttachment is a local file staged for sending: name, declared MIME
// type, and the raw bytes read from disk.
type StagedAttachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// Validate checks the staged attachment before encoding. It enforces the size
// cap, requires a name and MIME type, and rejects files whose extension maps
// to a different MIME type than declared.
func (s *StagedAttachment) Validate() *errs.CustomError {
	if s.Name == "" || s.MimeType == "" {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	if len(s.Data) == 0 {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	if len(s.Data) > MaxAttachmentSize {
		return errs.NewError(errs.ErrFileSizeTooLarge, MaxAttachmentSizeMB)
	}

	ext := strings.ToLower(filepath.Ext(s.Name))
	if expected, ok := ExtToMIME[ext]; ok && expected != strings.ToLower(s.MimeType) {
		return errs.NewError(errs.ErrAttachmentInvalid)
	}

	return nil
}

// DataURI encodes the staged bytes as a self-describing base64 data URI,
// letting the text-only transport carry binary payloads.
func (s *StagedAttachment) DataURI() string {
	return "data:" + s.MimeType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

// MIMETypeForFile infers a MIME type from the file name's extension, falling
// back to a generic binary type for unknown extensions.
func MIMETypeForFile(name string) string {
	if mime, ok := ExtToMIME[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}
