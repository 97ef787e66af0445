package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/handlers/webhooks"
)

func WebhookRoutes(r *gin.Engine, svc *billing.Service) {
	h := webhooks.NewHandler(svc)
	r.POST("/webhooks/payment", h.PaymentWebhook)
}
