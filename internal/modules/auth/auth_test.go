package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhutan-travel/core/internal/database/dbtest"
	"github.com/bhutan-travel/core/internal/middleware"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB) *models.UserModel {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("tashi-delek"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.UserModel{Username: "karma", Email: "karma@example.bt", Role: models.RoleAdmin, Password: string(hash)}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func newRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(db, 0, nil), nil).RegisterRoutes(r.Group("/api"), middleware.Auth(db))
	return r
}

func call(r http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginSessionLogout(t *testing.T) {
	db := dbtest.Open(t)
	u := seedUser(t, db)
	r := newRouter(t, db)

	w := call(r, http.MethodPost, "/api/auth/login", "", LoginDTO{Username: "Karma@Example.bt", Password: "tashi-delek"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Success bool          `json:"success"`
		Data    loginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	require.NotEmpty(t, out.Data.Token)
	assert.Equal(t, u.ID, out.Data.User.ID)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.TokenCookie+"=")
	token := out.Data.Token

	var stored models.UserModel
	require.NoError(t, db.First(&stored, "id = ?", u.ID).Error)
	assert.NotNil(t, stored.LastLoginTime)

	w = call(r, http.MethodGet, "/api/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"karma"`)

	w = call(r, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/api/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token is rejected")
}

func TestLoginRejects(t *testing.T) {
	db := dbtest.Open(t)
	seedUser(t, db)
	r := newRouter(t, db)

	cases := map[string]LoginDTO{
		"wrong password": {Username: "karma", Password: "nope-nope"},
		"unknown user":   {Username: "pema", Password: "tashi-delek"},
	}
	for name, dto := range cases {
		t.Run(name, func(t *testing.T) {
			w := call(r, http.MethodPost, "/api/auth/login", "", dto)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), ErrInvalidCredentials.Error())
		})
	}

	w := call(r, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "karma"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.UserSession{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginMiddlewareRuns(t *testing.T) {
	db := dbtest.Open(t)
	seedUser(t, db)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	blocked := func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }
	NewHandler(NewService(db, 0, nil), nil).RegisterRoutes(r.Group("/api"), middleware.Auth(db), blocked)

	w := call(r, http.MethodPost, "/api/auth/login", "", LoginDTO{Username: "karma", Password: "tashi-delek"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSessions(t *testing.T) {
	db := dbtest.Open(t)
	u := seedUser(t, db)
	svc := NewService(db, 0, nil)
	ctx := t.Context()

	first, err := svc.Login(ctx, "karma", "tashi-delek", "10.0.0.1", "test")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "karma", "tashi-delek", "10.0.0.2", "test")
	require.NoError(t, err)

	sessions, err := svc.Sessions(ctx, authz.Actor{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var current string
	for _, s := range sessions {
		if s.IP == "10.0.0.1" {
			current = s.ID
		}
	}
	require.NotEmpty(t, current)
	actor := authz.Actor{UserID: u.ID, SessionID: current}

	require.NoError(t, svc.RevokeOthers(ctx, actor))
	sessions, err = svc.Sessions(ctx, actor)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, current, sessions[0].ID)

	ok, err := svc.RevokeSession(ctx, actor, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Logout(ctx, actor))
	require.NoError(t, svc.Logout(ctx, actor), "second logout is a no-op")
	assert.NotEmpty(t, first.Token)

	_, err = svc.Current(ctx, authz.Anonymous)
	assert.ErrorIs(t, err, authz.ErrUnauthorized)
}
