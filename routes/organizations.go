package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/handlers/organizations"
	"github.com/vinimatheus/avocado-saas-starter-sub001/middleware"
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
)

func OrganizationsRoutes(r *gin.Engine, svc *billing.Service) {
	h := organizations.NewHandler(svc)

	orgRoutes := r.Group("/organizations")
	orgRoutes.Use(middleware.JWTAuth())
	{
		orgRoutes.POST("/", h.Create)
		orgRoutes.GET("/", h.List)
		orgRoutes.GET("/:orgId", middleware.OrgRole(models.OrgRoleMember), h.Get)
		orgRoutes.GET("/:orgId/members", middleware.OrgRole(models.OrgRoleMember), h.ListMembers)
		orgRoutes.POST("/:orgId/members", middleware.OrgRole(models.OrgRoleAdmin), h.InviteMember)
		orgRoutes.DELETE("/:orgId/members/:userId", middleware.OrgRole(models.OrgRoleAdmin), h.RemoveMember)
	}
}
