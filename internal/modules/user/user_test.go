package user

import (
	"net/http"
	"testing"
	"time"

	"github.com/bhutan-travel/core/internal/config"
	"github.com/bhutan-travel/core/internal/database/dbtest"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/modules/catalog/catalogtest"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newDTO(username string) *CreateDTO {
	return &CreateDTO{Username: username, Email: username + "@example.bt", Password: "tashi-delek"}
}

func openSession(t *testing.T, db *gorm.DB, userID string) string {
	t.Helper()
	s := models.UserSession{UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&s).Error)
	return s.ID
}

func activeSessions(t *testing.T, db *gorm.DB, userID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, db.Model(&models.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).Pluck("id", &ids).Error)
	return ids
}

func TestCreateHashesAndNormalizes(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil)

	dto := &CreateDTO{Username: "  Karma ", Email: "Karma@Example.BT", Password: "tashi-delek"}
	u, err := svc.Create(t.Context(), catalogtest.Admin, dto)
	require.NoError(t, err)
	assert.Equal(t, "karma", u.Username)
	assert.Equal(t, "karma@example.bt", u.Email)
	assert.Equal(t, "karma", u.Name)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("tashi-delek")))

	_, err = svc.Create(t.Context(), catalogtest.Admin, newDTO("karma"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	other := newDTO("pema")
	other.Email = "KARMA@example.bt"
	_, err = svc.Create(t.Context(), catalogtest.Admin, other)
	assert.ErrorIs(t, err, ErrEmailTaken)

	weak := newDTO("sonam")
	weak.Password = "short"
	_, err = svc.Create(t.Context(), catalogtest.Admin, weak)
	assert.ErrorIs(t, err, ErrWeakPassword)

	badMail := newDTO("dorji")
	badMail.Email = "not an email"
	_, err = svc.Create(t.Context(), catalogtest.Admin, badMail)
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	_, err = svc.Create(t.Context(), authz.Anonymous, newDTO("tenzin"))
	assert.ErrorIs(t, err, authz.ErrUnauthorized)
}

func TestPasswordRotationRevokesSessions(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil)
	ctx := t.Context()

	u, err := svc.Create(ctx, catalogtest.Admin, newDTO("karma"))
	require.NoError(t, err)
	current := openSession(t, db, u.ID)
	other := openSession(t, db, u.ID)

	name := "Karma Wangchuk"
	got, err := svc.Update(ctx, authz.Actor{UserID: u.ID, SessionID: current}, u.ID, &UpdateDTO{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.ElementsMatch(t, []string{current, other}, activeSessions(t, db, u.ID), "profile edits keep sessions")

	blank := ""
	_, err = svc.Update(ctx, authz.Actor{UserID: u.ID, SessionID: current}, u.ID, &UpdateDTO{Password: &blank})
	require.NoError(t, err)
	assert.Len(t, activeSessions(t, db, u.ID), 2, "empty password leaves the hash alone")

	pw := "druk-yul-2024"
	_, err = svc.Update(ctx, authz.Actor{UserID: u.ID, SessionID: current}, u.ID, &UpdateDTO{Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, []string{current}, activeSessions(t, db, u.ID))

	var stored models.UserModel
	require.NoError(t, db.First(&stored, "id = ?", u.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(pw)))
	assert.Equal(t, name, stored.Name)

	// Another admin rotating the password ends every session.
	pw = "paro-taktsang"
	_, err = svc.Update(ctx, catalogtest.Admin, u.ID, &UpdateDTO{Password: &pw})
	require.NoError(t, err)
	assert.Empty(t, activeSessions(t, db, u.ID))
}

func TestUpdateConflictsAndMissing(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil)
	ctx := t.Context()

	_, err := svc.Create(ctx, catalogtest.Admin, newDTO("karma"))
	require.NoError(t, err)
	pema, err := svc.Create(ctx, catalogtest.Admin, newDTO("pema"))
	require.NoError(t, err)

	taken := "KARMA"
	_, err = svc.Update(ctx, catalogtest.Admin, pema.ID, &UpdateDTO{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	same := "pema"
	_, err = svc.Update(ctx, catalogtest.Admin, pema.ID, &UpdateDTO{Username: &same})
	assert.NoError(t, err, "keeping your own username is not a conflict")

	_, err = svc.Update(ctx, catalogtest.Admin, "missing", &UpdateDTO{Username: &same})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil)
	ctx := t.Context()

	u, err := svc.Create(ctx, catalogtest.Admin, newDTO("karma"))
	require.NoError(t, err)
	openSession(t, db, u.ID)

	_, err = svc.Delete(ctx, authz.Actor{UserID: u.ID, SessionID: "s"}, u.ID)
	assert.ErrorIs(t, err, ErrDeleteSelf)

	ok, err := svc.Delete(ctx, catalogtest.Admin, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, activeSessions(t, db, u.ID))

	ok, err = svc.Delete(ctx, catalogtest.Admin, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Create(ctx, catalogtest.Admin, newDTO("karma"))
	assert.NoError(t, err, "a deleted username can be reused")
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil)
	ctx := t.Context()

	created, err := svc.EnsureBootstrapAdmin(ctx, config.BootstrapAdminConfig{})
	require.NoError(t, err)
	assert.False(t, created, "nothing configured")

	cfg := config.BootstrapAdminConfig{Username: "admin", Password: "change-me-now", Name: "Operator"}
	created, err = svc.EnsureBootstrapAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	var u models.UserModel
	require.NoError(t, db.First(&u, "username = ?", "admin").Error)
	assert.Equal(t, "admin@localhost", u.Email)
	assert.Equal(t, "Operator", u.Name)

	created, err = svc.EnsureBootstrapAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created, "runs only on an empty table")
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	r := gin.New()
	NewHandler(NewService(db, nil), nil).RegisterRoutes(r.Group("/api"), catalogtest.FakeAuth)

	w, out := catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPost, "/api/users", map[string]string{
		"username": "karma",
		"email":    "karma@example.bt",
		"password": "tashi-delek",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, out.Success)
	assert.NotContains(t, string(out.Data), "password")
	assert.NotContains(t, string(out.Data), "$2a$")

	w, out = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPost, "/api/users", map[string]string{
		"username": "karma",
		"email":    "other@example.bt",
		"password": "tashi-delek",
	}))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, out.Success)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPost, "/api/users", map[string]string{"username": "x"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodDelete, "/api/users/"+catalogtest.AdminID, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"karma@example.bt"`)

	req := catalogtest.JSON(t, http.MethodGet, "/api/users", nil)
	req.Header.Del("Authorization")
	w, _ = catalogtest.Do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
