package entities

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestNewCustomer(t *testing.T) {
	t.Run("valid with all fields", func(t *testing.T) {
		c, err := NewCustomer("  John Doe  ", strPtr(" 11 99999-0000 "), strPtr(" john@example.com "), strPtr(" 123.456.789-00 "))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID == "" {
			t.Fatalf("expected generated id")
		}
		if c.Name != "John Doe" {
			t.Fatalf("expected trimmed name, got %q", c.Name)
		}
		if c.Phone == nil || *c.Phone != "11 99999-0000" {
			t.Fatalf("expected trimmed phone, got %v", c.Phone)
		}
		if c.Email == nil || *c.Email != "john@example.com" {
			t.Fatalf("expected trimmed email, got %v", c.Email)
		}
		if c.Document == nil || *c.Document != "123.456.789-00" {
			t.Fatalf("expected trimmed document, got %v", c.Document)
		}
		if c.CreatedAt.IsZero() {
			t.Fatalf("expected creation timestamp")
		}
	})

	t.Run("optional fields absent", func(t *testing.T) {
		c, err := NewCustomer("John", nil, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Phone != nil || c.Email != nil || c.Document != nil {
			t.Fatalf("expected nil optionals, got %+v", c)
		}
	})

	t.Run("whitespace optionals become absent", func(t *testing.T) {
		c, err := NewCustomer("John", strPtr("   "), strPtr(""), strPtr(" \t "))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Phone != nil || c.Email != nil || c.Document != nil {
			t.Fatalf("expected empty-after-trim optionals normalized to nil, got %+v", c)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name     string
			inName   string
			phone    *string
			email    *string
			document *string
			field    string
		}{
			{name: "empty name", inName: "", field: "name"},
			{name: "whitespace name", inName: "   ", field: "name"},
			{name: "name too short", inName: "A", field: "name"},
			{name: "name too long", inName: strings.Repeat("a", 151), field: "name"},
			{name: "phone too long", inName: "John", phone: strPtr(strings.Repeat("9", 31)), field: "phone"},
			{name: "email too long", inName: "John", email: strPtr(strings.Repeat("a", 115) + "@ex.com"), field: "email"},
			{name: "email malformed", inName: "John", email: strPtr("not-an-email"), field: "email"},
			{name: "email missing tld", inName: "John", email: strPtr("john@example"), field: "email"},
			{name: "document too long", inName: "John", document: strPtr(strings.Repeat("1", 31)), field: "document"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewCustomer(tc.inName, tc.phone, tc.email, tc.document)
				ve, ok := IsValidationError(err)
				if !ok {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if ve.Field != tc.field {
					t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
				}
			})
		}
	})

	t.Run("name at boundaries", func(t *testing.T) {
		if _, err := NewCustomer("Jo", nil, nil, nil); err != nil {
			t.Fatalf("2-char name should pass: %v", err)
		}
		if _, err := NewCustomer(strings.Repeat("a", 150), nil, nil, nil); err != nil {
			t.Fatalf("150-char name should pass: %v", err)
		}
	})
}

func TestReconstituteCustomer(t *testing.T) {
	created, err := NewCustomer("Jane", strPtr("123"), nil, strPtr("doc-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rebuilt := ReconstituteCustomer(created.ID, created.Name, created.Phone, created.Email, created.Document, created.CreatedAt)
	if rebuilt.ID != created.ID || rebuilt.Name != created.Name || !rebuilt.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("reconstituted customer differs: %+v vs %+v", rebuilt, created)
	}
	if rebuilt.Phone == nil || *rebuilt.Phone != "123" {
		t.Fatalf("expected phone carried through, got %v", rebuilt.Phone)
	}

	// reconstitution trusts stored data and performs no validation
	weird := ReconstituteCustomer("id-1", "X", nil, nil, nil, created.CreatedAt)
	if weird.Name != "X" {
		t.Fatalf("expected stored name kept as-is")
	}
}
