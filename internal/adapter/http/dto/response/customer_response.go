package response

import (
	"time"

	"os_service_api/internal/domain/entities"
)

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Document  *string   `json:"document,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromCustomer(c entities.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Document:  c.Document,
		CreatedAt: c.CreatedAt,
	}
}

// CreatedCustomerResponse is the creation reply: just the new identity.
type CreatedCustomerResponse struct {
	ID string `json:"id"`
}
