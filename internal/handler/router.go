package handler

import (
	"time"

	"vaops/internal/cache"
	"vaops/internal/middleware"
	"vaops/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProxyRateLimit is the per-user budget of the external proxy routes.
const ProxyRateLimit = 60

// Routes groups the router by the guard every endpoint needs.
type Routes struct {
	// Public needs no token.
	Public *gin.RouterGroup
	// Authenticated accepts any valid token, approved or not.
	Authenticated *gin.RouterGroup
	// Pilot requires an approved account.
	Pilot *gin.RouterGroup
	// Proxy is Pilot plus the upstream rate limit.
	Proxy *gin.RouterGroup
	// Admin requires the admin role. Mounted at /api/admin.
	Admin *gin.RouterGroup
}

func NewRoutes(router gin.IRouter, auth *middleware.Authenticator, store cache.Store, log *zap.Logger) Routes {
	api := router.Group("/api")
	pilot := api.Group("", auth.RequireAuth(), auth.RequireApproved())
	return Routes{
		Public:        router.Group(""),
		Authenticated: router.Group("", auth.RequireAuth()),
		Pilot:         pilot,
		Proxy:         pilot.Group("", middleware.RateLimit(store, ProxyRateLimit, time.Minute, log)),
		Admin:         api.Group("/admin", auth.RequireRole(model.RoleAdmin)),
	}
}

// Registrar is implemented by every handler.
type Registrar interface {
	RegisterRoutes(r Routes)
}

func Register(r Routes, handlers ...Registrar) {
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}
}
