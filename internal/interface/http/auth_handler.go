package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/pkg/response"
	"github.com/oksasatya/go-user-accounts/pkg/validation"
)

type AuthHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *userapp.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=admin editor user"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusCreated, u,
		"user registered successfully, please check your email to verify your account", nil)
}

// VerifyEmail GET /api/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	u, err := h.Svc.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, u, "email verified successfully", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access_token": res.Token,
		"token_type":   "bearer",
	}, "login successful", map[string]any{"expires_at": res.ExpiresAt})
}

// ForgotPassword POST /api/auth/forgot-password
// The answer is the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Warn("password reset request failed")
	}
	response.Success[any](c, http.StatusOK, nil,
		"if the email exists, a password reset link has been sent", nil)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, err := h.Svc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password reset successfully", nil)
}

// ChangePassword POST /api/auth/change-password (auth required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), actor, req.OldPassword, req.NewPassword); err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed successfully", nil)
}

// Me GET /api/auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, middleware.CurrentUser(c), "current user", nil)
}

// Roles GET /api/auth/roles serves role dropdown metadata.
func (h *AuthHandler) Roles(c *gin.Context) {
	type roleInfo struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	roles := make([]roleInfo, 0, len(entity.Roles()))
	for _, r := range entity.Roles() {
		roles = append(roles, roleInfo{Value: r.String(), Label: r.Label()})
	}
	response.Success(c, http.StatusOK, gin.H{"roles": roles}, "available roles", nil)
}
