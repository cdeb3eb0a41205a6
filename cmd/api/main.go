package main

import (
	_ "os_service_api/docs"
	"os_service_api/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Service Order API
// @version         1.0
// @description     Service-order management API (customers, orders, before/after photos) backed by DynamoDB.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

func main() {
	routes.Run()
}
