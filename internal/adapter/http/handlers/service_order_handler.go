package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	request "os_service_api/internal/adapter/http/dto/request"
	response "os_service_api/internal/adapter/http/dto/response"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase"
	"os_service_api/internal/usecase/interfaces"
	"os_service_api/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidOrderPayload = pkg.NewDomainErrorSimple("INVALID_SERVICE_ORDER_INPUT", "Invalid service order payload", http.StatusBadRequest)

// ServiceOrderHandler handles HTTP requests for service orders.

type ServiceOrderHandler struct {
	usecase usecase.IServiceOrderUseCase
}

func NewServiceOrderHandler(uc usecase.IServiceOrderUseCase) *ServiceOrderHandler {
	return &ServiceOrderHandler{usecase: uc}
}

// OpenServiceOrder opens a new order and returns its id and number.
func (h *ServiceOrderHandler) OpenServiceOrder(c *gin.Context) {
	var payload request.OpenServiceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}

	order, err := h.usecase.OpenOrder(c.Request.Context(), payload.CustomerID, payload.Description)
	if err != nil {
		appErr := mapServiceOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.OpenedServiceOrderResponse{ID: order.ID, Number: order.Number})
}

// GetServiceOrderByID returns one order.
func (h *ServiceOrderHandler) GetServiceOrderByID(c *gin.Context) {
	order, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapServiceOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromServiceOrder(order))
}

// UpdateServiceOrderStatus applies a lifecycle transition.
func (h *ServiceOrderHandler) UpdateServiceOrderStatus(c *gin.Context) {
	var payload request.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}

	status, err := entities.ParseServiceOrderStatus(payload.Status)
	if err != nil {
		appErr := mapServiceOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	order, err := h.usecase.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		appErr := mapServiceOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromServiceOrder(order))
}

// UpdateServiceOrderPrice sets the order price.
func (h *ServiceOrderHandler) UpdateServiceOrderPrice(c *gin.Context) {
	var payload request.UpdatePriceRequest
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Price == nil {
		c.JSON(errInvalidOrderPayload.HTTPStatus, errInvalidOrderPayload.ToHTTPError())
		return
	}

	order, err := h.usecase.UpdatePrice(c.Request.Context(), c.Param("id"), *payload.Price, payload.Currency)
	if err != nil {
		appErr := mapServiceOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromServiceOrder(order))
}

// ListServiceOrders returns orders matching the query filters, most recent
// number first.
func (h *ServiceOrderHandler) ListServiceOrders(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		appErr := mapServiceOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	orders, err := h.usecase.List(c.Request.Context(), filter)
	if err != nil {
		appErr := mapServiceOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromServiceOrders(orders))
}

func parseListFilter(c *gin.Context) (interfaces.ServiceOrderFilter, error) {
	var filter interfaces.ServiceOrderFilter

	if v := strings.TrimSpace(c.Query("customer_id")); v != "" {
		filter.CustomerID = &v
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status, err := entities.ParseServiceOrderStatus(v)
		if err != nil {
			return interfaces.ServiceOrderFilter{}, err
		}
		filter.Status = &status
	}
	if v := strings.TrimSpace(c.Query("from_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return interfaces.ServiceOrderFilter{}, entities.NewValidationError("from_date", "must be RFC3339")
		}
		filter.FromDate = &t
	}
	if v := strings.TrimSpace(c.Query("to_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return interfaces.ServiceOrderFilter{}, entities.NewValidationError("to_date", "must be RFC3339")
		}
		filter.ToDate = &t
	}

	return filter, nil
}

func mapServiceOrderError(err error) *pkg.AppError {
	var ve *entities.ValidationError
	switch {
	case errors.As(err, &ve):
		return pkg.NewDomainErrorSimple("VALIDATION_ERROR", ve.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidServiceOrderID), errors.Is(err, usecase.ErrInvalidCustomerID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCustomerNotFound):
		return pkg.NewDomainErrorSimple("CUSTOMER_NOT_FOUND", "Customer not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrServiceOrderNotFound):
		return pkg.NewDomainErrorSimple("SERVICE_ORDER_NOT_FOUND", "Service order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", "Status transition not permitted", http.StatusConflict)
	case errors.Is(err, entities.ErrMissingPrice):
		return pkg.NewDomainErrorSimple("MISSING_PRICE", "Cannot finish a service order without a price", http.StatusConflict)
	case errors.Is(err, entities.ErrOrderFinished):
		return pkg.NewDomainErrorSimple("ORDER_FINISHED", "Cannot update price of a finished service order", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
