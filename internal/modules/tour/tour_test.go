package tour

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhutan-travel/core/internal/database/dbtest"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog/catalogtest"
	"github.com/bhutan-travel/core/internal/modules/itinerary"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const validDays = `[
  {"day":1,"title":"Arrive in Paro","hotel_id":"H","items":[
    {"type":"experience","order":2,"experience_id":"E1"},
    {"type":"travel","order":0,"travel":{"from":"A","to":"B"}},
    {"type":"travel","order":1,"travel":{"from":"B","to":"C"}}
  ]},
  {"day":2,"title":"Leisure","items":[]}
]`

type validationResult struct {
	Success bool `json:"success"`
	Errors  []struct {
		Day  int    `json:"day"`
		Item int    `json:"item"`
		Code string `json:"code"`
	} `json:"errors"`
}

func setup(t *testing.T) (*gin.Engine, *gorm.DB, *catalogtest.Images) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	images := &catalogtest.Images{}
	r := gin.New()
	NewHandler(NewService(db, images, nil), nil).RegisterRoutes(r.Group("/api"), catalogtest.FakeAuth)
	return r, db, images
}

func TestCreateRejectsInvalidItineraryWithoutSaving(t *testing.T) {
	r, db, images := setup(t)

	days := `[{"day":1,"items":[
	  {"type":"travel","order":0,"travel":{"from":"A","to":"A"}},
	  {"type":"experience","order":1,"experience_id":""}
	]}]`
	req := catalogtest.Multipart(t, http.MethodPost, "/api/tours", map[string]string{
		"title": "Western Loop",
		"days":  days,
	}, "loop.png")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var out validationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.False(t, out.Success)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, string(itinerary.CodeDegenerateTravel), out.Errors[0].Code)
	assert.Equal(t, 0, out.Errors[0].Item)
	assert.Equal(t, string(itinerary.CodeMissingExperience), out.Errors[1].Code)
	assert.Equal(t, 1, out.Errors[1].Item)

	var count int64
	require.NoError(t, db.Model(&models.TourModel{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, images.Deleted)
}

func TestCreateRejectsMalformedDays(t *testing.T) {
	r, _, _ := setup(t)
	w, _ := catalogtest.Do(t, r, catalogtest.Multipart(t, http.MethodPost, "/api/tours", map[string]string{
		"title": "Broken",
		"days":  `[{"day":1,"items":[],"surprise":true}]`,
	}, ""))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateAndDetail(t *testing.T) {
	r, db, _ := setup(t)
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, db.Create(&models.DestinationModel{Entity: models.Entity{Base: models.Base{ID: id}, Slug: "d-" + id, Title: id}}).Error)
	}
	require.NoError(t, db.Create(&models.ExperienceModel{Entity: models.Entity{Base: models.Base{ID: "E1"}, Slug: "e1", Title: "E1"}}).Error)
	require.NoError(t, db.Create(&models.HotelModel{Entity: models.Entity{Base: models.Base{ID: "H"}, Slug: "h", Title: "H"}}).Error)

	w, out := catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPost, "/api/tours", map[string]any{
		"title":       "Paro Explorer",
		"description": "A *short* trip",
		"price":       1200,
		"highlights":  []string{"Tiger's Nest"},
		"days":        json.RawMessage(validDays),
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, out.Success)

	var stored models.TourModel
	require.NoError(t, db.First(&stored, "slug = ?", "paro-explorer").Error)
	assert.Equal(t, 2, stored.Duration, "duration defaults to the day count")
	require.Len(t, stored.Days, 2)
	assert.Zero(t, stored.Priority)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tours/paro-explorer", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		DescriptionHTML string `json:"description_html"`
		Days            []struct {
			Items []struct {
				Order int `json:"order"`
			} `json:"items"`
		} `json:"days"`
		Destinations []struct{ ID string } `json:"destinations"`
		Experiences  []struct{ ID string } `json:"experiences"`
		Hotels       []struct{ ID string } `json:"hotels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Contains(t, detail.DescriptionHTML, "<em>short</em>")
	require.Len(t, detail.Days[0].Items, 3)
	for i, item := range detail.Days[0].Items {
		assert.Equal(t, i, item.Order)
	}
	assert.Len(t, detail.Destinations, 3)
	assert.Len(t, detail.Experiences, 1)
	assert.Len(t, detail.Hotels, 1)
}

func TestUpdateInvalidDaysLeavesTourUntouched(t *testing.T) {
	r, db, _ := setup(t)
	svc := NewService(db, nil, nil)

	dto := &CreateDTO{Days: json.RawMessage(validDays)}
	dto.Title = "Haa Valley"
	tour, err := svc.Create(t.Context(), catalogtest.Admin, dto, nil)
	require.NoError(t, err)

	w, _ := catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPatch, "/api/tours/"+tour.ID, map[string]any{
		"title": "Renamed",
		"days":  json.RawMessage(`[{"day":2,"items":[]},{"day":1,"items":[]}]`),
	}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var got models.TourModel
	require.NoError(t, db.First(&got, "id = ?", tour.ID).Error)
	assert.Equal(t, "Haa Valley", got.Title)
	assert.Len(t, got.Days, 2)

	w, _ = catalogtest.Do(t, r, catalogtest.JSON(t, http.MethodPatch, "/api/tours/"+tour.ID, map[string]any{"price": 900}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, db.First(&got, "id = ?", tour.ID).Error)
	assert.InDelta(t, 900, got.Price, 1e-9)
	assert.Len(t, got.Days, 2, "days untouched when not sent")
}

func TestListOmitsDays(t *testing.T) {
	r, db, _ := setup(t)
	svc := NewService(db, nil, nil)
	dto := &CreateDTO{Category: "cultural", Days: json.RawMessage(validDays)}
	dto.Title = "Cultural Circuit"
	_, err := svc.Create(t.Context(), catalogtest.Admin, dto, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tours?category=cultural", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []struct {
			Title string            `json:"title"`
			Days  []json.RawMessage `json:"days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Empty(t, page.Data[0].Days)
}
