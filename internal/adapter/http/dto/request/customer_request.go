package request

import "os_service_api/internal/usecase"

// CreateCustomerRequest is the payload for customer registration. Optional
// fields stay nil when omitted so the domain can tell "absent" from "empty".
type CreateCustomerRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Document *string `json:"document"`
}

func (r CreateCustomerRequest) ToInput() usecase.CreateCustomerInput {
	return usecase.CreateCustomerInput{
		Name:     r.Name,
		Phone:    r.Phone,
		Email:    r.Email,
		Document: r.Document,
	}
}
