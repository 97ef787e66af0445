package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vinimatheus/avocado-saas-starter-sub001/handlers/auth"
	"github.com/vinimatheus/avocado-saas-starter-sub001/middleware"
)

func AuthRoutes(r *gin.Engine) {
	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)
	r.GET("/me", middleware.JWTAuth(), auth.Me)
}
