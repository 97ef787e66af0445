package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	billinghandlers "github.com/vinimatheus/avocado-saas-starter-sub001/handlers/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/middleware"
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
)

func BillingRoutes(r *gin.Engine, svc *billing.Service) {
	h := billinghandlers.NewHandler(svc)

	r.GET("/plans", h.ListPlans)

	// Billing mutations are owner-only; entitlement reads are open to any
	// member so the UI can display limits.
	billingRoutes := r.Group("/organizations/:orgId/billing")
	billingRoutes.Use(middleware.JWTAuth())
	{
		billingRoutes.GET("/entitlements", middleware.OrgRole(models.OrgRoleMember), h.GetEntitlements)
		billingRoutes.GET("/subscription", middleware.OrgRole(models.OrgRoleMember), h.GetSubscription)
		billingRoutes.POST("/trial", middleware.OrgRole(models.OrgRoleOwner), h.StartTrial)
		billingRoutes.POST("/checkout", middleware.OrgRole(models.OrgRoleOwner), h.CreateCheckout)
		billingRoutes.POST("/cancel", middleware.OrgRole(models.OrgRoleOwner), h.Cancel)
		billingRoutes.POST("/reactivate", middleware.OrgRole(models.OrgRoleOwner), h.Reactivate)
		billingRoutes.POST("/simulate-payment", middleware.OrgRole(models.OrgRoleOwner), h.SimulatePayment)
	}
}
