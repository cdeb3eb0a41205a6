package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceOrderStatus is the lifecycle of a service order.
//
// Valid transitions: open -> in_progress -> finished. Finished is terminal.
type ServiceOrderStatus string

const (
	ServiceOrderStatusOpen       ServiceOrderStatus = "open"
	ServiceOrderStatusInProgress ServiceOrderStatus = "in_progress"
	ServiceOrderStatusFinished   ServiceOrderStatus = "finished"
)

// DefaultCurrency is the currency applied when a price update supplies none.
const DefaultCurrency = "BRL"

// ParseServiceOrderStatus maps the API spelling to a status, failing closed
// on anything unrecognized.
func ParseServiceOrderStatus(s string) (ServiceOrderStatus, error) {
	switch ServiceOrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case ServiceOrderStatusOpen:
		return ServiceOrderStatusOpen, nil
	case ServiceOrderStatusInProgress:
		return ServiceOrderStatusInProgress, nil
	case ServiceOrderStatusFinished:
		return ServiceOrderStatusFinished, nil
	default:
		return "", NewValidationError("status", fmt.Sprintf("unknown status %q", s))
	}
}

// ServiceOrder owns the status state machine and pricing rules.
//
// Number is the human-facing sequential identifier. It is assigned by the
// repository on insert (sequence seeded at 1000) and set exactly once via
// SetNumber; zero means not yet assigned.
type ServiceOrder struct {
	ID             string             `json:"id"`
	Number         int                `json:"number"`
	CustomerID     string             `json:"customer_id"`
	Description    string             `json:"description"`
	Status         ServiceOrderStatus `json:"status"`
	OpenedAt       time.Time          `json:"opened_at"`
	StartedAt      *time.Time         `json:"started_at,omitempty"`
	FinishedAt     *time.Time         `json:"finished_at,omitempty"`
	Price          *float64           `json:"price,omitempty"`
	Currency       string             `json:"currency"`
	UpdatedPriceAt *time.Time         `json:"updated_price_at,omitempty"`
}

// OpenServiceOrder builds a new order in open status with no price and the
// default currency.
func OpenServiceOrder(customerID, description string) (ServiceOrder, error) {
	if strings.TrimSpace(customerID) == "" {
		return ServiceOrder{}, NewValidationError("customer_id", "customer id is required")
	}

	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return ServiceOrder{}, NewValidationError("description", "description is required")
	}
	if len(trimmed) > 500 {
		return ServiceOrder{}, NewValidationError("description", "description must be between 1 and 500 characters")
	}

	return ServiceOrder{
		ID:          uuid.NewString(),
		CustomerID:  strings.TrimSpace(customerID),
		Description: trimmed,
		Status:      ServiceOrderStatusOpen,
		OpenedAt:    time.Now().UTC(),
		Currency:    DefaultCurrency,
	}, nil
}

// Start moves the order from open to in_progress and stamps the start time.
func (so *ServiceOrder) Start() error {
	if so.Status != ServiceOrderStatusOpen {
		return fmt.Errorf("cannot start service order in status %q: %w", so.Status, ErrInvalidTransition)
	}

	now := time.Now().UTC()
	so.Status = ServiceOrderStatusInProgress
	so.StartedAt = &now
	return nil
}

// Finish moves the order from in_progress to finished. A price must have
// been set first.
func (so *ServiceOrder) Finish() error {
	if so.Status != ServiceOrderStatusInProgress {
		return fmt.Errorf("cannot finish service order in status %q: %w", so.Status, ErrInvalidTransition)
	}
	if so.Price == nil {
		return ErrMissingPrice
	}

	now := time.Now().UTC()
	so.Status = ServiceOrderStatusFinished
	so.FinishedAt = &now
	return nil
}

// UpdatePrice sets price and currency and stamps the price-update time.
// Finished orders are immutable.
func (so *ServiceOrder) UpdatePrice(price float64, currency string) error {
	if so.Status == ServiceOrderStatusFinished {
		return ErrOrderFinished
	}
	if price < 0 {
		return NewValidationError("price", "price cannot be negative")
	}

	if currency == "" {
		currency = DefaultCurrency
	}

	now := time.Now().UTC()
	so.Price = &price
	so.Currency = currency
	so.UpdatedPriceAt = &now
	return nil
}

// ChangeStatus is the single entry point for externally requested
// transitions. It delegates to Start/Finish so their preconditions hold.
func (so *ServiceOrder) ChangeStatus(newStatus ServiceOrderStatus) error {
	switch {
	case so.Status == ServiceOrderStatusOpen && newStatus == ServiceOrderStatusInProgress:
		return so.Start()
	case so.Status == ServiceOrderStatusInProgress && newStatus == ServiceOrderStatusFinished:
		return so.Finish()
	default:
		return fmt.Errorf("transition from %q to %q: %w", so.Status, newStatus, ErrInvalidTransition)
	}
}

// SetNumber records the sequential number generated on insert. Repository
// use only; a second call is an error.
func (so *ServiceOrder) SetNumber(number int) error {
	if so.Number != 0 {
		return ErrNumberAlreadySet
	}
	so.Number = number
	return nil
}

// ReconstituteServiceOrder rebuilds an order from persisted fields without
// re-validation. Repository use only.
func ReconstituteServiceOrder(
	id string,
	number int,
	customerID string,
	description string,
	status ServiceOrderStatus,
	openedAt time.Time,
	startedAt, finishedAt *time.Time,
	price *float64,
	currency string,
	updatedPriceAt *time.Time,
) ServiceOrder {
	return ServiceOrder{
		ID:             id,
		Number:         number,
		CustomerID:     customerID,
		Description:    description,
		Status:         status,
		OpenedAt:       openedAt,
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
		Price:          price,
		Currency:       currency,
		UpdatedPriceAt: updatedPriceAt,
	}
}
