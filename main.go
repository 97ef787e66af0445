package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/db"
	"github.com/vinimatheus/avocado-saas-starter-sub001/payment"
	"github.com/vinimatheus/avocado-saas-starter-sub001/routes"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// @title Avocado SaaS Starter API
// @version 1.0
// @description Multi-tenant SaaS backend: auth, organizations, product catalog and subscription billing
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	if err := utils.InitCloudinary(); err != nil {
		log.Printf("Warning: Cloudinary initialization failed: %v", err)
		log.Println("Product image upload will not work.")
	}

	provider := payment.NewClient()
	svc := billing.NewService(db.DB, provider, billing.NewMailNotifier(db.DB))

	r := routes.SetupRouter(svc)

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Error starting the server:", err)
	}
}
