package entities

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateAttachmentPolicy(t *testing.T) {
	t.Run("accepts jpeg and png", func(t *testing.T) {
		cases := []struct {
			contentType string
			fileName    string
		}{
			{contentType: "image/jpeg", fileName: "front.jpg"},
			{contentType: "image/jpeg", fileName: "front.jpeg"},
			{contentType: "image/png", fileName: "front.png"},
			{contentType: "IMAGE/PNG", fileName: "FRONT.PNG"},
		}
		for _, tc := range cases {
			if err := ValidateAttachmentPolicy(tc.contentType, tc.fileName, 1024); err != nil {
				t.Fatalf("%s %s: unexpected error %v", tc.contentType, tc.fileName, err)
			}
		}
	})

	t.Run("rejects unsupported content type", func(t *testing.T) {
		for _, ct := range []string{"image/gif", "application/pdf", "text/plain", ""} {
			err := ValidateAttachmentPolicy(ct, "photo.jpg", 1024)
			if !errors.Is(err, ErrUnsupportedAttachmentType) {
				t.Fatalf("%q: expected ErrUnsupportedAttachmentType, got %v", ct, err)
			}
		}
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		for _, name := range []string{"photo.gif", "photo.pdf", "photo", "photo."} {
			err := ValidateAttachmentPolicy("image/jpeg", name, 1024)
			if !errors.Is(err, ErrUnsupportedAttachmentType) {
				t.Fatalf("%q: expected ErrUnsupportedAttachmentType, got %v", name, err)
			}
		}
	})

	t.Run("rejects empty file", func(t *testing.T) {
		for _, size := range []int64{0, -1} {
			err := ValidateAttachmentPolicy("image/png", "photo.png", size)
			if !errors.Is(err, ErrInvalidAttachmentSize) {
				t.Fatalf("size %d: expected ErrInvalidAttachmentSize, got %v", size, err)
			}
		}
	})

	t.Run("enforces five mebibyte ceiling", func(t *testing.T) {
		if err := ValidateAttachmentPolicy("image/png", "photo.png", MaxAttachmentSizeBytes); err != nil {
			t.Fatalf("size at limit must pass: %v", err)
		}
		err := ValidateAttachmentPolicy("image/png", "photo.png", MaxAttachmentSizeBytes+1)
		if !errors.Is(err, ErrInvalidAttachmentSize) {
			t.Fatalf("expected ErrInvalidAttachmentSize, got %v", err)
		}
	})

	t.Run("content type checked before size", func(t *testing.T) {
		err := ValidateAttachmentPolicy("image/gif", "photo.gif", 0)
		if !errors.Is(err, ErrUnsupportedAttachmentType) {
			t.Fatalf("expected ErrUnsupportedAttachmentType, got %v", err)
		}
	})
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean name untouched", in: "engine_before.jpg", want: "engine_before.jpg"},
		{name: "path separators stripped", in: "../../etc/passwd.png", want: ".._.._etc_passwd.png"},
		{name: "windows path stripped", in: `C:\Users\photo.jpg`, want: "C_Users_photo.jpg"},
		{name: "illegal punctuation", in: `a*b?c"d<e>f|g.png`, want: "a_b_c_d_e_f_g.png"},
		{name: "control characters", in: "pho\x00to\n.jpg", want: "pho_to_.jpg"},
		{name: "consecutive separators collapse", in: "a//b.png", want: "a_b.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	t.Run("truncates to 255", func(t *testing.T) {
		got := SanitizeFileName(strings.Repeat("a", 300) + ".jpg")
		if len(got) != 255 {
			t.Fatalf("expected 255 bytes, got %d", len(got))
		}
	})

	t.Run("truncation never splits a rune", func(t *testing.T) {
		// 254 ASCII bytes followed by a 2-byte rune straddling the limit
		got := SanitizeFileName(strings.Repeat("a", 254) + "éé.jpg")
		if len(got) > 255 {
			t.Fatalf("expected at most 255 bytes, got %d", len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("truncated name is not valid UTF-8: %q", got)
		}
		if got != strings.Repeat("a", 254) {
			t.Fatalf("expected truncation before the split rune, got %q", got)
		}
	})
}

func TestParseAttachmentType(t *testing.T) {
	valid := map[string]AttachmentType{
		"before":  AttachmentTypeBefore,
		"after":   AttachmentTypeAfter,
		"BEFORE":  AttachmentTypeBefore,
		" after ": AttachmentTypeAfter,
	}
	for in, want := range valid {
		got, err := ParseAttachmentType(in)
		if err != nil {
			t.Fatalf("parse %q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", in, want, got)
		}
	}

	for _, in := range []string{"", "during", "0", "1"} {
		if _, err := ParseAttachmentType(in); err == nil {
			t.Fatalf("parse %q: expected error", in)
		}
	}
}
