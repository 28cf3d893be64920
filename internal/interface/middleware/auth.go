package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/response"
)

const CtxUserKey = "currentUser"

// Auth validates the bearer session token and loads the account it names.
// The is_active flag is re-checked here on every request: a token issued
// before a deactivation stays cryptographically valid until expiry, and
// this check is what shuts the account out. Sets the full user and its id
// in the Gin context on success.
func Auth(users repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "could not validate credentials", nil)
			c.Abort()
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || u == nil {
			response.Error[any](c, http.StatusUnauthorized, "could not validate credentials", nil)
			c.Abort()
			return
		}
		if !u.IsActive {
			response.Error[any](c, http.StatusUnauthorized, "user account is not active", nil)
			c.Abort()
			return
		}

		c.Set(CtxUserKey, u)
		// string form, for the rate limiter's per-user key
		c.Set("userID", strconv.FormatInt(u.ID, 10))
		c.Next()
	}
}

// RequireVerified gates verified-only routes. It must run after Auth.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsVerified {
			response.Error[any](c, http.StatusUnauthorized, "email not verified", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
