package destination

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhutan-travel/core/internal/database/dbtest"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog/catalogtest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB, *catalogtest.Images) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	images := &catalogtest.Images{}
	r := gin.New()
	NewHandler(NewService(db, images, nil), nil).RegisterRoutes(r.Group("/api"), catalogtest.FakeAuth)
	return r, db, images
}

func TestCreateFromMultipart(t *testing.T) {
	r, db, _ := newRouter(t)

	req := catalogtest.Multipart(t, http.MethodPost, "/api/destinations", map[string]string{
		"title":          "Punakha",
		"region":         "West",
		"description":    "Old capital",
		"highlights":     `["Dzong"," ","Suspension bridge"]`,
		"coordinates":    `{"lat":27.58,"lng":89.86}`,
		"experience_ids": `["e1","e1","e2"]`,
	}, "punakha.png")
	w, out := catalogtest.Do(t, r, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, out.Success)

	var d models.DestinationModel
	require.NoError(t, db.First(&d, "slug = ?", "punakha").Error)
	assert.Equal(t, "West", d.Region)
	assert.Equal(t, "/uploads/punakha.png", d.Image)
	assert.Equal(t, []string{"Dzong", "Suspension bridge"}, d.Highlights)
	assert.Equal(t, []string{"e1", "e2"}, d.ExperienceIDs)
	require.NotNil(t, d.Coordinates)
	assert.InDelta(t, 89.86, d.Coordinates.Lng, 1e-9)
	assert.Zero(t, d.Priority)
}

func TestCreateRejectsBadInput(t *testing.T) {
	r, _, _ := newRouter(t)

	w, _ := catalogtest.Do(t, r, catalogtest.Multipart(t, http.MethodPost, "/api/destinations",
		map[string]string{"title": "Haa", "highlights": `{"not":"a list"}`}, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPost, "/api/destinations",
		map[string]any{"title": "Haa", "coordinates": map[string]float64{"lat": 120, "lng": 0}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPost, "/api/destinations", map[string]any{"title": "Haa"}))
	require.Equal(t, http.StatusCreated, w.Code)
	w, out := catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPost, "/api/destinations", map[string]any{"title": "HAA"}))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, out.Success)
}

func TestMutationsRequireAuth(t *testing.T) {
	r, _, _ := newRouter(t)
	req := catalogtest.JSON(t, http.MethodPost, "/api/destinations", map[string]any{"title": "Gasa"})
	req.Header.Del("Authorization")
	w, _ := catalogtest.Do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImageFailureFallsBackToPlaceholder(t *testing.T) {
	r, db, images := newRouter(t)
	images.Fail = true

	w, _ := catalogtest.Do(t, r, catalogtest.Multipart(t, http.MethodPost, "/api/destinations",
		map[string]string{"title": "Lhuentse"}, "l.png"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var d models.DestinationModel
	require.NoError(t, db.First(&d, "slug = ?", "lhuentse").Error)
	assert.Equal(t, catalogtest.Placeholder, d.Image)
}

func TestUpdate(t *testing.T) {
	r, db, images := newRouter(t)
	svc := NewService(db, images, nil)
	d, err := svc.Create(t.Context(), catalogtest.Admin, &CreateDTO{Region: "Central"}, nil)
	require.Error(t, err, "title is required")
	require.Nil(t, d)

	dto := &CreateDTO{Region: "Central"}
	dto.Title = "Bumthang"
	d, err = svc.Create(t.Context(), catalogtest.Admin, dto, nil)
	require.NoError(t, err)
	require.NoError(t, db.Model(d).UpdateColumn("image", "/uploads/old.png").Error)

	w, _ := catalogtest.Do(t, r, catalogtest.Multipart(t, http.MethodPatch, "/api/destinations/"+d.ID,
		map[string]string{"description": "Spiritual heartland", "hotel_ids": `["h1"]`}, "new.png"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.DestinationModel
	require.NoError(t, db.First(&got, "id = ?", d.ID).Error)
	assert.Equal(t, "Spiritual heartland", got.Description)
	assert.Equal(t, "Bumthang", got.Title)
	assert.Equal(t, "Central", got.Region)
	assert.Equal(t, []string{"h1"}, got.HotelIDs)
	assert.Equal(t, "/uploads/new.png", got.Image)
	assert.Contains(t, images.Deleted, "/uploads/old.png")

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPatch, "/api/destinations/"+d.ID, map[string]any{"slug": "jakar"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPatch, "/api/destinations/missing", map[string]any{"title": "x"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMutationsAcceptSlug(t *testing.T) {
	r, db, _ := newRouter(t)
	d := models.DestinationModel{Entity: models.Entity{Slug: "wangdue", Title: "Wangdue"}}
	require.NoError(t, db.Create(&d).Error)

	w, _ := catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPatch, "/api/destinations/wangdue", map[string]any{"region": "West"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.DestinationModel
	require.NoError(t, db.First(&got, "id = ?", d.ID).Error)
	assert.Equal(t, "West", got.Region)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodDelete, "/api/destinations/wangdue", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.ErrorIs(t, db.First(&got, "id = ?", d.ID).Error, gorm.ErrRecordNotFound)
}

func TestFailedUpdateKeepsOldImage(t *testing.T) {
	_, db, images := newRouter(t)
	svc := NewService(db, images, nil)

	dto := &CreateDTO{}
	dto.Title = "Trongsa"
	d, err := svc.Create(t.Context(), catalogtest.Admin, dto, nil)
	require.NoError(t, err)
	require.NoError(t, db.Model(d).UpdateColumn("image", "/uploads/old.png").Error)

	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("fail_updates", func(tx *gorm.DB) {
		_ = tx.AddError(errors.New("db down"))
	}))

	desc := "Centre of the kingdom"
	patch := &UpdateDTO{}
	patch.Description = &desc
	_, err = svc.Update(t.Context(), catalogtest.Admin, d.ID, patch, catalogtest.FileHeader(t, "new.png"))
	require.Error(t, err)

	assert.Equal(t, []string{"/uploads/new.png"}, images.Deleted)

	var got models.DestinationModel
	require.NoError(t, db.First(&got, "id = ?", d.ID).Error)
	assert.Equal(t, "/uploads/old.png", got.Image)
}

func TestGetDetailAndDelete(t *testing.T) {
	r, db, images := newRouter(t)

	exp := models.ExperienceModel{Entity: models.Entity{Slug: "festival", Title: "Festival"}}
	require.NoError(t, db.Create(&exp).Error)
	d := models.DestinationModel{
		Entity:        models.Entity{Slug: "paro", Title: "Paro", Description: "**Valley**", Image: "/uploads/paro.png", Priority: 2},
		ExperienceIDs: []string{exp.ID},
	}
	require.NoError(t, db.Create(&d).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/destinations/paro", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		ID              string `json:"id"`
		Priority        int    `json:"priority"`
		DescriptionHTML string `json:"description_html"`
		Experiences     []struct {
			Slug string `json:"slug"`
		} `json:"experiences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, d.ID, detail.ID)
	assert.Equal(t, 2, detail.Priority)
	assert.Contains(t, detail.DescriptionHTML, "<strong>Valley</strong>")
	require.Len(t, detail.Experiences, 1)
	assert.Equal(t, "festival", detail.Experiences[0].Slug)

	w, out := catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodDelete, "/api/destinations/"+d.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, out.Success)
	assert.Contains(t, images.Deleted, "/uploads/paro.png")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/destinations/paro", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSortsByPriority(t *testing.T) {
	r, db, _ := newRouter(t)
	for i, title := range []string{"Gasa", "Thimphu", "Trongsa"} {
		require.NoError(t, db.Create(&models.DestinationModel{
			Entity: models.Entity{Slug: title, Title: title, Priority: i},
			Region: "West",
		}).Error)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/destinations?region=West&size=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Pagination.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Trongsa", page.Data[0].Title)
	assert.Equal(t, "Thimphu", page.Data[1].Title)
}
