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
	ErrServiceOrderNotFound  = errors.New("service order not found")
	ErrInvalidServiceOrderID = errors.New("invalid service order id")
)

// IServiceOrderUseCase exposes service-order operations.
type IServiceOrderUseCase interface {
	OpenOrder(ctx context.Context, customerID, description string) (entities.ServiceOrder, error)
	GetByID(ctx context.Context, id string) (entities.ServiceOrder, error)
	UpdateStatus(ctx context.Context, id string, newStatus entities.ServiceOrderStatus) (entities.ServiceOrder, error)
	UpdatePrice(ctx context.Context, id string, price float64, currency string) (entities.ServiceOrder, error)
	List(ctx context.Context, filter interfaces.ServiceOrderFilter) ([]entities.ServiceOrder, error)
}

type ServiceOrderUseCase struct {
	orders    interfaces.IServiceOrderRepository
	customers interfaces.ICustomerRepository
	logger    *zap.Logger
}

var _ IServiceOrderUseCase = (*ServiceOrderUseCase)(nil)

func NewServiceOrderUseCase(
	orders interfaces.IServiceOrderRepository,
	customers interfaces.ICustomerRepository,
	logger *zap.Logger,
) *ServiceOrderUseCase {
	return &ServiceOrderUseCase{orders: orders, customers: customers, logger: logger}
}

// OpenOrder opens a service order for an existing customer. The insert
// assigns the sequential number, which is recorded on the returned entity.
func (u *ServiceOrderUseCase) OpenOrder(ctx context.Context, customerID, description string) (entities.ServiceOrder, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return entities.ServiceOrder{}, ErrInvalidCustomerID
	}

	exists, err := u.customers.ExistsByID(ctx, customerID)
	if err != nil {
		return entities.ServiceOrder{}, err
	}
	if !exists {
		u.logger.Warn("open order rejected: customer not found", zap.String("customer_id", customerID))
		return entities.ServiceOrder{}, ErrCustomerNotFound
	}

	order, err := entities.OpenServiceOrder(customerID, description)
	if err != nil {
		return entities.ServiceOrder{}, err
	}

	number, err := u.orders.InsertReturningNumber(ctx, order)
	if err != nil {
		return entities.ServiceOrder{}, err
	}
	if err := order.SetNumber(number); err != nil {
		return entities.ServiceOrder{}, err
	}

	u.logger.Info("service order opened",
		zap.String("service_order_id", order.ID),
		zap.Int("number", order.Number),
		zap.String("customer_id", customerID),
	)
	return order, nil
}

func (u *ServiceOrderUseCase) GetByID(ctx context.Context, id string) (entities.ServiceOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.ServiceOrder{}, ErrInvalidServiceOrderID
	}

	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return entities.ServiceOrder{}, err
	}
	if order.ID == "" {
		return entities.ServiceOrder{}, ErrServiceOrderNotFound
	}
	return order, nil
}

// UpdateStatus applies a requested transition through the entity state
// machine and persists the resulting status and timestamps. Entity errors
// (invalid transition, missing price) propagate unchanged.
func (u *ServiceOrderUseCase) UpdateStatus(ctx context.Context, id string, newStatus entities.ServiceOrderStatus) (entities.ServiceOrder, error) {
	order, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.ServiceOrder{}, err
	}

	previous := order.Status
	if err := order.ChangeStatus(newStatus); err != nil {
		return entities.ServiceOrder{}, err
	}

	if err := u.orders.UpdateStatus(ctx, order.ID, order.Status, order.StartedAt, order.FinishedAt); err != nil {
		return entities.ServiceOrder{}, err
	}

	u.logger.Info("service order status updated",
		zap.String("service_order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)
	return order, nil
}

// UpdatePrice applies a price change through the entity and persists it.
func (u *ServiceOrderUseCase) UpdatePrice(ctx context.Context, id string, price float64, currency string) (entities.ServiceOrder, error) {
	order, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.ServiceOrder{}, err
	}

	if err := order.UpdatePrice(price, currency); err != nil {
		return entities.ServiceOrder{}, err
	}

	if err := u.orders.UpdatePrice(ctx, order.ID, *order.Price, order.Currency, *order.UpdatedPriceAt); err != nil {
		return entities.ServiceOrder{}, err
	}

	return order, nil
}

func (u *ServiceOrderUseCase) List(ctx context.Context, filter interfaces.ServiceOrderFilter) ([]entities.ServiceOrder, error) {
	return u.orders.List(ctx, filter)
}
