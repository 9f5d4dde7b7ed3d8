package routes

import (
	"github.com/gin-gonic/gin"
	"toursite/internal/handlers"
	"toursite/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	subscriptionHandler *handlers.SubscriptionHandler,
	adminHandler *handlers.SubscriberAdminHandler,
	authHandler *handlers.AuthHandler,
	limiter *middleware.RateLimiter,
) *gin.Engine {

	// ---- public (per-IP rate limited)
	subs := r.Group("/subscribers", limiter.Limit())
	{
		subs.POST("/otp", subscriptionHandler.RequestOTP)
		subs.POST("/verify", subscriptionHandler.VerifyOTP)
	}

	r.POST("/admin/login", authHandler.Login)

	// ---- admin (JWT)
	admin := r.Group("/admin", middleware.AuthMiddleware())
	{
		admin.GET("/subscribers", adminHandler.List)
		admin.DELETE("/subscribers/:id", adminHandler.Delete)
		admin.GET("/subscribers/export", adminHandler.Export)
	}

	return r
}
