package routes

import (
	"log"
	"os"
	"strconv"

	_ "os_service_api/docs" // swag-generated documentation
	"os_service_api/internal/adapter/http/handlers"
	"os_service_api/internal/adapter/persistence/repository"
	"os_service_api/internal/infrastructure/database"
	applogger "os_service_api/internal/infrastructure/logger"
	"os_service_api/internal/infrastructure/storage"
	"os_service_api/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const defaultPort = 8080

// Run wires dependencies and starts the server.
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	port := defaultPort
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid PORT %q: %v", v, err)
		}
		port = p
	}

	if err := router.Run(":" + strconv.Itoa(port)); err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	zlog, err := applogger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ddb := database.ConnectDynamoDB()

	customerRepo := repository.NewCustomerDynamoRepository(ddb)
	orderRepo := repository.NewServiceOrderDynamoRepository(ddb)
	attachmentRepo := repository.NewAttachmentDynamoRepository(ddb)

	fileStorage, err := storage.NewLocalFileStorage(os.Getenv("UPLOAD_DIR"))
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	customerUseCase := usecase.NewCustomerUseCase(customerRepo, zlog)
	orderUseCase := usecase.NewServiceOrderUseCase(orderRepo, customerRepo, zlog)
	attachmentUseCase := usecase.NewAttachmentUseCase(attachmentRepo, orderRepo, fileStorage, zlog)

	customerHandler := handlers.NewCustomerHandler(customerUseCase)
	orderHandler := handlers.NewServiceOrderHandler(orderUseCase)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addCustomerRoutes(v1, customerHandler)
	addServiceOrderRoutes(v1, orderHandler, attachmentHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
