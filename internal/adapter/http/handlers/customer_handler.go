package handlers

import (
	"errors"
	"net/http"

	request "os_service_api/internal/adapter/http/dto/request"
	response "os_service_api/internal/adapter/http/dto/response"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase"
	"os_service_api/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidCustomerPayload = pkg.NewDomainErrorSimple("INVALID_CUSTOMER_INPUT", "Invalid customer payload", http.StatusBadRequest)

// CustomerHandler handles HTTP requests for customers.

type CustomerHandler struct {
	usecase usecase.ICustomerUseCase
}

func NewCustomerHandler(uc usecase.ICustomerUseCase) *CustomerHandler {
	return &CustomerHandler{usecase: uc}
}

// CreateCustomer registers a new customer and returns its id.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var payload request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidCustomerPayload.HTTPStatus, errInvalidCustomerPayload.ToHTTPError())
		return
	}

	customer, err := h.usecase.CreateCustomer(c.Request.Context(), payload.ToInput())
	if err != nil {
		appErr := mapCustomerError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.CreatedCustomerResponse{ID: customer.ID})
}

// GetCustomerByID returns one customer.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	customer, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapCustomerError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromCustomer(customer))
}

// SearchCustomer looks a customer up by phone or document query parameter.
// Phone wins when both are present.
func (h *CustomerHandler) SearchCustomer(c *gin.Context) {
	customer, err := h.usecase.Search(c.Request.Context(), c.Query("phone"), c.Query("document"))
	if err != nil {
		appErr := mapCustomerError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromCustomer(customer))
}

func mapCustomerError(err error) *pkg.AppError {
	var ve *entities.ValidationError
	switch {
	case errors.As(err, &ve):
		return pkg.NewDomainErrorSimple("VALIDATION_ERROR", ve.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidCustomerID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrMissingSearchFilter):
		return pkg.NewDomainErrorSimple("SEARCH_FILTER_REQUIRED", "A phone or document filter is required", http.StatusBadRequest)
	case errors.Is(err, entities.ErrDuplicateDocument):
		return pkg.NewDomainErrorSimple("DUPLICATE_DOCUMENT", "A customer with this document already exists", http.StatusConflict)
	case errors.Is(err, entities.ErrDuplicatePhone):
		return pkg.NewDomainErrorSimple("DUPLICATE_PHONE", "A customer with this phone already exists", http.StatusConflict)
	case errors.Is(err, usecase.ErrCustomerNotFound):
		return pkg.NewDomainErrorSimple("CUSTOMER_NOT_FOUND", "Customer not found", http.StatusNotFound)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
