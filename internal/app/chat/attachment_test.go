package chat

import (
	"strings"
	"testing"

	"mentorchat/internal/pkg/errs"
)

func TestStagedAttachmentValidate(t *testing.T) {
	cases := []struct {
		name     string
		staged   StagedAttachment
		wantCode int
	}{
		{"valid image", StagedAttachment{Name: "a.png", MimeType: "image/png", Data: []byte("x")}, 0},
		{"valid unknown extension", StagedAttachment{Name: "a.bin", MimeType: "application/octet-stream", Data: []byte("x")}, 0},
		{"missing name", StagedAttachment{MimeType: "image/png", Data: []byte("x")}, errs.ErrAttachmentInvalid},
		{"missing mime", StagedAttachment{Name: "a.png", Data: []byte("x")}, errs.ErrAttachmentInvalid},
		{"empty data", StagedAttachment{Name: "a.png", MimeType: "image/png"}, errs.ErrAttachmentInvalid},
		{"extension contradicts mime", StagedAttachment{Name: "a.png", MimeType: "application/pdf", Data: []byte("x")}, errs.ErrAttachmentInvalid},
		{"oversized", StagedAttachment{Name: "a.png", MimeType: "image/png", Data: make([]byte, MaxAttachmentSize+1)}, errs.ErrFileSizeTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.staged.Validate()
			if tc.wantCode == 0 {
				if err != nil {
					t.Errorf("expected valid, got %v", err)
				}
				return
			}
			if err == nil || err.Code != tc.wantCode {
				t.Errorf("expected code %d, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestDataURISelfDescribing(t *testing.T) {
	staged := StagedAttachment{Name: "a.txt", MimeType: "text/plain", Data: []byte("hello")}

	uri := staged.DataURI()
	if !strings.HasPrefix(uri, "data:text/plain;base64,") {
		t.Errorf("data URI must carry the MIME type, got %q", uri)
	}
}

func TestInlineClassification(t *testing.T) {
	cases := []struct {
		mime   string
		inline bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"IMAGE/PNG", true},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tc := range cases {
		a := &Attachment{URL: "u", MimeType: tc.mime}
		if a.Inline() != tc.inline {
			t.Errorf("Inline() for %q = %v, want %v", tc.mime, a.Inline(), tc.inline)
		}
	}

	var nilAttachment *Attachment
	if nilAttachment.Inline() {
		t.Error("nil attachment must not render inline")
	}
}

func TestMIMETypeForFile(t *testing.T) {
	if got := MIMETypeForFile("photo.JPG"); got != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", got)
	}
	if got := MIMETypeForFile("archive.unknown"); got != "application/octet-stream" {
		t.Errorf("expected generic type for unknown extension, got %q", got)
	}
}
