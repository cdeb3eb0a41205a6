package routes

import (
	"os_service_api/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const PathCustomers = "/customers"

func addCustomerRoutes(rg *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customers := rg.Group(PathCustomers)
	{
		customers.POST("", customerHandler.CreateCustomer)
		customers.GET("/search", customerHandler.SearchCustomer)
		customers.GET("/:id", customerHandler.GetCustomerByID)
	}
}
