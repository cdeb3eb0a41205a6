package usecase

import (
	"context"
	"errors"
	"strings"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInvalidCustomerID   = errors.New("invalid customer id")
	ErrMissingSearchFilter = errors.New("a phone or document filter is required")
)

// CreateCustomerInput carries the raw fields of a customer creation request.
// Optional fields are nil when omitted.
type CreateCustomerInput struct {
	Name     string
	Phone    *string
	Email    *string
	Document *string
}

// ICustomerUseCase exposes customer operations.
type ICustomerUseCase interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (entities.Customer, error)
	GetByID(ctx context.Context, id string) (entities.Customer, error)
	Search(ctx context.Context, phone, document string) (entities.Customer, error)
}

type CustomerUseCase struct {
	repo   interfaces.ICustomerRepository
	logger *zap.Logger
}

var _ ICustomerUseCase = (*CustomerUseCase)(nil)

func NewCustomerUseCase(repo interfaces.ICustomerRepository, logger *zap.Logger) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, logger: logger}
}

// CreateCustomer validates input, pre-checks document and phone uniqueness
// (document first, so a doubly-duplicated request reports the document), and
// persists the new customer. The repository's uniqueness claims remain the
// hard guarantee against racing inserts.
func (u *CustomerUseCase) CreateCustomer(ctx context.Context, input CreateCustomerInput) (entities.Customer, error) {
	if doc := trimmedOptional(input.Document); doc != "" {
		existing, err := u.repo.GetByDocument(ctx, doc)
		if err != nil {
			return entities.Customer{}, err
		}
		if existing.ID != "" {
			u.logger.Warn("customer creation rejected: duplicate document")
			return entities.Customer{}, entities.ErrDuplicateDocument
		}
	}

	if phone := trimmedOptional(input.Phone); phone != "" {
		existing, err := u.repo.GetByPhone(ctx, phone)
		if err != nil {
			return entities.Customer{}, err
		}
		if existing.ID != "" {
			u.logger.Warn("customer creation rejected: duplicate phone")
			return entities.Customer{}, entities.ErrDuplicatePhone
		}
	}

	customer, err := entities.NewCustomer(input.Name, input.Phone, input.Email, input.Document)
	if err != nil {
		return entities.Customer{}, err
	}

	if err := u.repo.Insert(ctx, customer); err != nil {
		return entities.Customer{}, err
	}

	u.logger.Info("customer created", zap.String("customer_id", customer.ID))
	return customer, nil
}

func (u *CustomerUseCase) GetByID(ctx context.Context, id string) (entities.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Customer{}, ErrInvalidCustomerID
	}

	customer, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Customer{}, err
	}
	if customer.ID == "" {
		return entities.Customer{}, ErrCustomerNotFound
	}
	return customer, nil
}

// Search looks a customer up by phone or document. Phone takes precedence
// when both are given; at least one is required.
func (u *CustomerUseCase) Search(ctx context.Context, phone, document string) (entities.Customer, error) {
	phone = strings.TrimSpace(phone)
	document = strings.TrimSpace(document)
	if phone == "" && document == "" {
		return entities.Customer{}, ErrMissingSearchFilter
	}

	if phone != "" {
		customer, err := u.repo.GetByPhone(ctx, phone)
		if err != nil {
			return entities.Customer{}, err
		}
		if customer.ID != "" {
			return customer, nil
		}
	}

	if document != "" {
		customer, err := u.repo.GetByDocument(ctx, document)
		if err != nil {
			return entities.Customer{}, err
		}
		if customer.ID != "" {
			return customer, nil
		}
	}

	return entities.Customer{}, ErrCustomerNotFound
}

func trimmedOptional(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
