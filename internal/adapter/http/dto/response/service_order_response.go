package response

import (
	"time"

	"os_service_api/internal/domain/entities"
)

type ServiceOrderResponse struct {
	ID             string     `json:"id"`
	Number         int        `json:"number"`
	CustomerID     string     `json:"customer_id"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	OpenedAt       time.Time  `json:"opened_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Price          *float64   `json:"price,omitempty"`
	Currency       string     `json:"currency"`
	UpdatedPriceAt *time.Time `json:"updated_price_at,omitempty"`
}

func FromServiceOrder(so entities.ServiceOrder) ServiceOrderResponse {
	return ServiceOrderResponse{
		ID:             so.ID,
		Number:         so.Number,
		CustomerID:     so.CustomerID,
		Description:    so.Description,
		Status:         string(so.Status),
		OpenedAt:       so.OpenedAt,
		StartedAt:      so.StartedAt,
		FinishedAt:     so.FinishedAt,
		Price:          so.Price,
		Currency:       so.Currency,
		UpdatedPriceAt: so.UpdatedPriceAt,
	}
}

func FromServiceOrders(orders []entities.ServiceOrder) []ServiceOrderResponse {
	out := make([]ServiceOrderResponse, 0, len(orders))
	for _, so := range orders {
		out = append(out, FromServiceOrder(so))
	}
	return out
}

// OpenedServiceOrderResponse is the creation reply: identity plus the
// assigned sequential number.
type OpenedServiceOrderResponse struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
}
