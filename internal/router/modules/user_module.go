package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-accounts/internal/container"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

// UserModule wires the dashboard and user directory routes.
// Everything here requires an authenticated, verified account; per-action
// authorization happens in the service layer.
type UserModule struct {
	Handler *handlers.UserHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, users repository.UserRepository, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Users: users, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT), middleware.RequireVerified())
	// Softer limits on the authenticated surface
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/dashboard", m.Handler.Dashboard)
		auth.GET("/profile", m.Handler.Profile)
		auth.PUT("/profile", m.Handler.UpdateMe)

		auth.GET("/users", m.Handler.List)
		auth.POST("/users", m.Handler.Create)
		auth.GET("/users/stats", m.Handler.Stats)
		auth.GET("/users/growth", m.Handler.Growth)
		auth.POST("/users/bulk", m.Handler.Bulk)
		auth.GET("/users/:id", m.Handler.Get)
		auth.PUT("/users/:id", m.Handler.Update)
		auth.DELETE("/users/:id", m.Handler.Delete)
		auth.POST("/users/:id/activate", m.Handler.Activate)
		auth.POST("/users/:id/deactivate", m.Handler.Deactivate)
		auth.POST("/users/:id/verify", m.Handler.Verify)
	}
}
