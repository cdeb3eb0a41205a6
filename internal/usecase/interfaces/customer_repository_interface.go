package interfaces

import (
	"context"

	"os_service_api/internal/domain/entities"
)

// ICustomerRepository abstracts DynamoDB persistence for Customer.
//
// Insert must enforce phone/document uniqueness at the store level (the
// usecase pre-check is an optimization, not the safety mechanism) and report
// violations as entities.ErrDuplicateDocument/ErrDuplicatePhone. Lookups
// return the zero value when nothing matches.
type ICustomerRepository interface {
	Insert(ctx context.Context, c entities.Customer) error
	GetByID(ctx context.Context, id string) (entities.Customer, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	GetByPhone(ctx context.Context, phone string) (entities.Customer, error)
	GetByDocument(ctx context.Context, document string) (entities.Customer, error)
}
