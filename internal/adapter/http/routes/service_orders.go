package routes

import (
	"os_service_api/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const PathServiceOrders = "/service-orders"

func addServiceOrderRoutes(rg *gin.RouterGroup, orderHandler *handlers.ServiceOrderHandler, attachmentHandler *handlers.AttachmentHandler) {
	orders := rg.Group(PathServiceOrders)
	{
		orders.GET("", orderHandler.ListServiceOrders)
		orders.POST("", orderHandler.OpenServiceOrder)
		orders.GET("/:id", orderHandler.GetServiceOrderByID)
		orders.PATCH("/:id/status", orderHandler.UpdateServiceOrderStatus)
		orders.PUT("/:id/price", orderHandler.UpdateServiceOrderPrice)

		orders.POST("/:id/attachments/before", attachmentHandler.UploadBeforePhoto)
		orders.POST("/:id/attachments/after", attachmentHandler.UploadAfterPhoto)
		orders.GET("/:id/attachments", attachmentHandler.ListAttachments)
		orders.GET("/attachments/:attachmentId/download", attachmentHandler.DownloadAttachment)
	}
}
