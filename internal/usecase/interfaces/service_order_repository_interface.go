package interfaces

import (
	"context"
	"time"

	"os_service_api/internal/domain/entities"
)

// ServiceOrderFilter narrows List results. Nil fields are no-ops; supplied
// fields combine with AND semantics.
type ServiceOrderFilter struct {
	CustomerID *string
	Status     *entities.ServiceOrderStatus
	FromDate   *time.Time
	ToDate     *time.Time
}

// IServiceOrderRepository abstracts DynamoDB persistence for ServiceOrder.
//
// InsertReturningNumber assigns the next sequential number (seeded at 1000)
// atomically and returns it. GetByID returns the zero value when the order
// does not exist. List orders by number descending.
type IServiceOrderRepository interface {
	InsertReturningNumber(ctx context.Context, so entities.ServiceOrder) (int, error)
	GetByID(ctx context.Context, id string) (entities.ServiceOrder, error)
	UpdateStatus(ctx context.Context, id string, status entities.ServiceOrderStatus, startedAt, finishedAt *time.Time) error
	UpdatePrice(ctx context.Context, id string, price float64, currency string, updatedPriceAt time.Time) error
	List(ctx context.Context, filter ServiceOrderFilter) ([]entities.ServiceOrder, error)
}
