package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/pkg/response"
	"github.com/oksasatya/go-user-accounts/pkg/validation"
)

// UserHandler serves the dashboard and the administrative user directory.
// Authorization happens in the service layer; the handler only shapes
// requests and responses.
type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateUserRequest struct {
	Email      *string `json:"email" binding:"omitempty,email"`
	FullName   *string `json:"full_name" binding:"omitempty,min=1"`
	Password   *string `json:"password" binding:"omitempty,pwd"`
	Role       *string `json:"role" binding:"omitempty,oneof=admin editor user"`
	IsActive   *bool   `json:"is_active"`
	IsVerified *bool   `json:"is_verified"`
}

func (r updateUserRequest) patch() userapp.UpdatePatch {
	p := userapp.UpdatePatch{
		Email:      r.Email,
		FullName:   r.FullName,
		Password:   r.Password,
		IsActive:   r.IsActive,
		IsVerified: r.IsVerified,
	}
	if r.Role != nil {
		role := entity.Role(*r.Role)
		p.Role = &role
	}
	return p
}

type createUserRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,pwd"`
	FullName   string `json:"full_name" binding:"required"`
	Role       string `json:"role" binding:"omitempty,oneof=admin editor user"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
}

type bulkActionRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1"`
	Action  string  `json:"action" binding:"required,oneof=activate deactivate verify delete"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", nil)
		return 0, false
	}
	return id, true
}

// Dashboard GET /api/dashboard (verified only)
func (h *UserHandler) Dashboard(c *gin.Context) {
	u := middleware.CurrentUser(c)
	response.Success(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to dashboard, %s!", u.FullName),
		"role":    u.Role,
		"email":   u.Email,
	}, "dashboard", nil)
}

// Profile GET /api/profile (verified only)
func (h *UserHandler) Profile(c *gin.Context) {
	response.Success(c, http.StatusOK, middleware.CurrentUser(c), "profile", nil)
}

// List GET /api/users, the filtered paginated directory.
func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	f := repo.SearchFilter{Text: c.Query("search")}
	if v := c.Query("role"); v != "" {
		role := entity.Role(v)
		if !role.IsValid() {
			response.Error[any](c, http.StatusBadRequest, "invalid role filter", nil)
			return
		}
		f.Role = &role
	}
	if v := c.Query("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid is_active filter", nil)
			return
		}
		f.IsActive = &b
	}
	if v := c.Query("is_verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid is_verified filter", nil)
			return
		}
		f.IsVerified = &b
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))

	page, err := h.Svc.Search(c.Request.Context(), actor, f)
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, page.Users, "users", map[string]any{
		"total":       page.Total,
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total_pages": page.TotalPages,
	})
}

// Create POST /api/users, the administrative create path.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), middleware.CurrentUser(c), userapp.CreateInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       entity.Role(req.Role),
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusCreated, u, "user created", nil)
}

// Get GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetUser(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// Update PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.applyUpdate(c, id)
}

// UpdateMe PUT /api/profile, self-service profile update.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	h.applyUpdate(c, middleware.CurrentUser(c).ID)
}

func (h *UserHandler) applyUpdate(c *gin.Context, targetID int64) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), targetID, req.patch())
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated", nil)
}

// Activate POST /api/users/:id/activate
func (h *UserHandler) Activate(c *gin.Context) {
	h.transition(c, h.Svc.Activate, "user activated")
}

// Deactivate POST /api/users/:id/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.Svc.Deactivate, "user deactivated")
}

// Verify POST /api/users/:id/verify, admin verification override.
func (h *UserHandler) Verify(c *gin.Context) {
	h.transition(c, h.Svc.VerifyUser, "user verified")
}

func (h *UserHandler) transition(c *gin.Context, op func(ctx context.Context, actor *entity.User, id int64) (*entity.User, error), msg string) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := op(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		status, emsg := errStatus(err)
		response.Error[any](c, status, emsg, nil)
		return
	}
	response.Success(c, http.StatusOK, u, msg, nil)
}

// Delete DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user deleted", nil)
}

// Bulk POST /api/users/bulk applies one transition over a set of ids,
// all-or-nothing.
func (h *UserHandler) Bulk(c *gin.Context) {
	var req bulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	n, err := h.Svc.BulkAction(c.Request.Context(), middleware.CurrentUser(c), req.UserIDs, req.Action)
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"affected_users": n},
		fmt.Sprintf("bulk %s completed", req.Action), nil)
}

// Stats GET /api/users/stats
func (h *UserHandler) Stats(c *gin.Context) {
	st, err := h.Svc.Stats(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, st, "user stats", nil)
}

// Growth GET /api/users/growth?months=12
func (h *UserHandler) Growth(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))
	buckets, err := h.Svc.Growth(c.Request.Context(), middleware.CurrentUser(c), months)
	if err != nil {
		status, msg := errStatus(err)
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Success(c, http.StatusOK, buckets, "user growth", nil)
}
