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

// AuthModule registers the account lifecycle endpoints.
// Public: register, verify-email, login, forgot/reset password, roles.
// Protected: me, change-password.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, users repository.UserRepository, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Users: users, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.GET("/auth/verify-email", verifyLimiter, m.Handler.VerifyEmail)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/reset-password", resetLimiter, m.Handler.ResetPassword)
	rg.GET("/auth/roles", m.Handler.Roles)

	// Protected, user-based rate limit
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/auth/me", m.Handler.Me)
		auth.POST("/auth/change-password", m.Handler.ChangePassword)
	}
}
