package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/validation"
)

// memRepo backs the handler tests with just the operations the tested
// routes touch; anything else panics via the embedded nil interface.
type memRepo struct {
	repository.UserRepository
	users  map[int64]*entity.User
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[int64]*entity.User)}
}

func (m *memRepo) Create(_ context.Context, u *entity.User) error {
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) ConsumeVerificationToken(_ context.Context, token string) (*entity.User, error) {
	for _, u := range m.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			u.IsActive = true
			u.IsVerified = true
			u.VerificationToken = ""
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type tokenMailer struct {
	lastVerifyToken string
}

func (t *tokenMailer) SendVerificationEmail(_ context.Context, _, _, token string) error {
	t.lastVerifyToken = token
	return nil
}

func (t *tokenMailer) SendPasswordResetEmail(_ context.Context, _, _, _ string) error {
	return nil
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *tokenMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newMemRepo()
	mail := &tokenMailer{}
	jwt := helpers.NewJWTManager("test-secret", 30*time.Minute)
	svc := userapp.NewService(repo, jwt, mail, logger)

	h := NewAuthHandler(svc, logger)
	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.GET("/auth/verify-email", h.VerifyEmail)
	api.POST("/auth/login", h.Login)

	auth := api.Group("/")
	auth.Use(middleware.Auth(repo, jwt))
	auth.GET("/auth/me", h.Me)
	return r, mail
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	r, mail := newTestRouter(t)

	payload := gin.H{"email": "alice@example.com", "password": "password123", "full_name": "Alice"}
	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)
	require.NotEmpty(t, mail.lastVerifyToken)

	// Password hashes never leave the API.
	require.NotContains(t, w.Body.String(), "password123")
	require.NotContains(t, w.Body.String(), "\"password\"")

	// Login before verification is rejected with the inactive message.
	w, env = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, env.Message, "not activated")

	w, _ = doJSON(t, r, http.MethodGet, "/api/auth/verify-email?token="+mail.lastVerifyToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The same token cannot be used twice.
	w, _ = doJSON(t, r, http.MethodGet, "/api/auth/verify-email?token="+mail.lastVerifyToken, nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loginData struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loginData))
	require.Equal(t, "bearer", loginData.TokenType)
	require.NotEmpty(t, loginData.AccessToken)

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + loginData.AccessToken,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var me entity.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, "alice@example.com", me.Email)
	require.Equal(t, entity.RoleUser, me.Role)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	// Short password fails validation before the service runs.
	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register",
		gin.H{"email": "bob@example.com", "password": "short", "full_name": "Bob"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, env.Success)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/register",
		gin.H{"email": "not-an-email", "password": "password123", "full_name": "Bob"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown roles are rejected by binding.
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/register",
		gin.H{"email": "bob@example.com", "password": "password123", "full_name": "Bob", "role": "owner"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	payload := gin.H{"email": "carol@example.com", "password": "password123", "full_name": "Carol"}
	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.False(t, env.Success)
}

func TestMeRequiresValidToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
