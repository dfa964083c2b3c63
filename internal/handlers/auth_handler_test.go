package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"personal-finance-backend/internal/middleware"
	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	users := repository.NewUserRepository(db)
	authHandler := NewAuthHandler(users)

	r := gin.New()
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	authed := r.Group("/api", middleware.RequireAuth(users))
	authed.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": middleware.CurrentUserID(c)})
	})
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{"email": "Max@Example.com", "password": "geheim123"})
	require.Equal(t, http.StatusCreated, w.Code)

	var registered struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, "max@example.com", registered.User.Email)
	require.NotEmpty(t, registered.Token)

	// Duplicate email registration is rejected.
	w = postJSON(t, r, "/api/auth/register", gin.H{"email": "max@example.com", "password": "geheim123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login with the right password returns the same token.
	w = postJSON(t, r, "/api/auth/login", gin.H{"email": "max@example.com", "password": "geheim123"})
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))
	assert.Equal(t, registered.Token, loggedIn.Token)

	// Wrong password fails.
	w = postJSON(t, r, "/api/auth/login", gin.H{"email": "max@example.com", "password": "falsch123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The token authenticates protected routes.
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No token, no access.
	req = httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A made-up token fails.
	req = httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer deadbeef")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{"email": "", "password": "geheim123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, "/api/auth/register", gin.H{"email": "max@example.com", "password": "kurz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
