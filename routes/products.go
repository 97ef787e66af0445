package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/handlers/products"
	"github.com/vinimatheus/avocado-saas-starter-sub001/middleware"
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
)

func ProductsRoutes(r *gin.Engine, svc *billing.Service) {
	h := products.NewHandler(svc)

	productRoutes := r.Group("/organizations/:orgId/products")
	productRoutes.Use(middleware.JWTAuth(), middleware.OrgRole(models.OrgRoleMember))
	{
		productRoutes.GET("/", h.List)
		productRoutes.POST("/", h.Create)
		productRoutes.GET("/:productId", h.Get)
		productRoutes.PUT("/:productId", h.Update)
		productRoutes.DELETE("/:productId", h.Delete)
		productRoutes.POST("/:productId/image", h.UploadImage)
	}
}
