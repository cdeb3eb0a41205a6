package entities

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Customer is the owner of a service order. Optional fields are nil when
// absent; empty-after-trim input is normalized to absent.
//
// Phone and document are globally unique when present. The repository backs
// this with uniqueness claims on insert; NewCustomer only validates shape.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Document  *string   `json:"document,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomer validates and trims all fields and builds a new Customer.
// Customers are never mutated after creation.
func NewCustomer(name string, phone, email, document *string) (Customer, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return Customer{}, NewValidationError("name", "name is required")
	}
	if len(trimmedName) < 2 || len(trimmedName) > 150 {
		return Customer{}, NewValidationError("name", "name must be between 2 and 150 characters")
	}

	trimmedPhone := trimOptional(phone)
	if trimmedPhone != nil && len(*trimmedPhone) > 30 {
		return Customer{}, NewValidationError("phone", "phone must be at most 30 characters")
	}

	trimmedEmail := trimOptional(email)
	if trimmedEmail != nil {
		if len(*trimmedEmail) > 120 {
			return Customer{}, NewValidationError("email", "email must be at most 120 characters")
		}
		if !emailRegex.MatchString(*trimmedEmail) {
			return Customer{}, NewValidationError("email", "email format is invalid")
		}
	}

	trimmedDocument := trimOptional(document)
	if trimmedDocument != nil && len(*trimmedDocument) > 30 {
		return Customer{}, NewValidationError("document", "document must be at most 30 characters")
	}

	return Customer{
		ID:        uuid.NewString(),
		Name:      trimmedName,
		Phone:     trimmedPhone,
		Email:     trimmedEmail,
		Document:  trimmedDocument,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ReconstituteCustomer rebuilds a Customer from persisted fields. Repository
// use only; stored invariants are trusted and not re-validated.
func ReconstituteCustomer(id, name string, phone, email, document *string, createdAt time.Time) Customer {
	return Customer{
		ID:        id,
		Name:      name,
		Phone:     phone,
		Email:     email,
		Document:  document,
		CreatedAt: createdAt,
	}
}

// trimOptional trims an optional field and collapses empty results to nil.
func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
