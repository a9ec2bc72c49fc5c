package tourrequest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/bhutan-travel/core/internal/database/dbtest"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/itinerary"
	"github.com/bhutan-travel/core/internal/modules/promotion"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/bhutan-travel/core/internal/pkg/mail"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var admin = authz.Actor{UserID: "admin-1", SessionID: "s-1"}

type countingPromoter struct {
	mu      sync.Mutex
	calls   int
	err     error
	targets []promotion.Target
}

func (p *countingPromoter) Promote(_ context.Context, req *models.TourRequestModel) (*promotion.Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	targets := p.targets
	if targets == nil {
		targets = []promotion.Target{{Collection: promotion.Tours, ID: "T1"}}
	}
	return &promotion.Report{RequestID: req.ID, Targets: targets}, p.err
}

type recordingNotifier struct {
	sent chan string
}

func (n *recordingNotifier) SendInquiryReceived(_ context.Context, to string, _ mail.InquiryData) (mail.Result, error) {
	n.sent <- "received:" + to
	return mail.Result{Success: true, MessageID: "<1@test>"}, nil
}

func (n *recordingNotifier) SendInquiryNotify(_ context.Context, data mail.InquiryData) (mail.Result, error) {
	n.sent <- "notify:" + data.FullName
	return mail.Result{Success: true}, nil
}

func seedRequest(t *testing.T, db *gorm.DB, status models.TourRequestStatus, days ...models.CustomDay) *models.TourRequestModel {
	t.Helper()
	req := &models.TourRequestModel{
		FirstName:       "Pema",
		Email:           "pema@example.com",
		Travelers:       2,
		Status:          status,
		CustomItinerary: days,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func rawDays(t *testing.T, days []models.CustomDay) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(days)
	require.NoError(t, err)
	return raw
}

func TestApprovePromotesOnlyOnEdge(t *testing.T) {
	db := dbtest.Open(t)
	promoter := &countingPromoter{}
	svc := NewService(db, promoter, nil, nil)
	ctx := context.Background()
	req := seedRequest(t, db, models.TourRequestPending)

	res, err := svc.Transition(ctx, admin, req.ID, models.TourRequestApproved)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Promoted)
	assert.Equal(t, models.TourRequestPending, res.Previous)
	assert.Equal(t, 1, promoter.calls)

	res, err = svc.Transition(ctx, admin, req.ID, models.TourRequestApproved)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.False(t, res.Promoted)
	assert.Equal(t, 1, promoter.calls, "approving an approved request must not promote again")

	stored, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TourRequestApproved, stored.Status)
	assert.NotNil(t, stored.PromotedAt)
}

func TestReapprovalAfterRejectionPromotesAgain(t *testing.T) {
	db := dbtest.Open(t)
	promoter := &countingPromoter{}
	svc := NewService(db, promoter, nil, nil)
	ctx := context.Background()
	req := seedRequest(t, db, models.TourRequestPending)

	for _, status := range []models.TourRequestStatus{
		models.TourRequestApproved,
		models.TourRequestRejected,
		models.TourRequestArchived,
		models.TourRequestApproved,
	} {
		_, err := svc.Transition(ctx, admin, req.ID, status)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, promoter.calls)
}

func TestNonApprovalTransitionsNeverPromote(t *testing.T) {
	db := dbtest.Open(t)
	promoter := &countingPromoter{}
	svc := NewService(db, promoter, nil, nil)
	req := seedRequest(t, db, models.TourRequestPending)

	res, err := svc.Transition(context.Background(), admin, req.ID, models.TourRequestRejected)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Promoted)
	assert.Zero(t, promoter.calls)
}

func TestPromotionFailureKeepsApproval(t *testing.T) {
	db := dbtest.Open(t)
	promoter := &countingPromoter{err: &promotion.PartialFailureError{Failures: []promotion.Failure{{Err: errors.New("boom")}}}}
	svc := NewService(db, promoter, nil, nil)
	req := seedRequest(t, db, models.TourRequestPending)

	res, err := svc.Transition(context.Background(), admin, req.ID, models.TourRequestApproved)
	require.NoError(t, err)
	assert.True(t, res.Promoted)

	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TourRequestApproved, stored.Status)
}

func TestApprovalWithoutTargetsLeavesPromotedAtUnset(t *testing.T) {
	db := dbtest.Open(t)
	promoter := &countingPromoter{targets: []promotion.Target{}}
	svc := NewService(db, promoter, nil, nil)
	req := seedRequest(t, db, models.TourRequestPending)

	res, err := svc.Transition(context.Background(), admin, req.ID, models.TourRequestApproved)
	require.NoError(t, err)
	assert.True(t, res.Promoted)
	assert.Equal(t, 1, promoter.calls)

	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TourRequestApproved, stored.Status)
	assert.Nil(t, stored.PromotedAt)
}

func TestTransitionGuards(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, &countingPromoter{}, nil, nil)
	ctx := context.Background()
	req := seedRequest(t, db, models.TourRequestPending)

	_, err := svc.Transition(ctx, authz.Anonymous, req.ID, models.TourRequestApproved)
	assert.ErrorIs(t, err, authz.ErrUnauthorized)

	_, err = svc.Transition(ctx, admin, "missing", models.TourRequestApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Transition(ctx, admin, req.ID, models.TourRequestStatus("booked"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestConcurrentApprovalsPromoteOnce(t *testing.T) {
	db := dbtest.Open(t)
	promoter := &countingPromoter{}
	svc := NewService(db, promoter, nil, nil)
	req := seedRequest(t, db, models.TourRequestPending)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Transition(context.Background(), admin, req.ID, models.TourRequestApproved)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, promoter.calls)
}

func TestEndToEndApprovalRaisesReferencedPriorities(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	for _, row := range []interface{}{
		&models.DestinationModel{Entity: models.Entity{Base: models.Base{ID: "D1"}, Slug: "punakha", Title: "Punakha"}},
		&models.ExperienceModel{Entity: models.Entity{Base: models.Base{ID: "E1"}, Slug: "rafting", Title: "Rafting"}},
	} {
		require.NoError(t, db.Create(row).Error)
	}

	engine := promotion.NewEngine(promotion.NewGormCounter(db), promotion.NewGormTourLoader(db), nil)
	svc := NewService(db, engine, nil, nil)

	req := seedRequest(t, db, models.TourRequestPending, models.CustomDay{Day: 1, Items: []models.CustomItem{
		{Type: models.ItemTypeExperience, ExperienceID: "E1"},
	}})

	_, err := svc.Transition(ctx, admin, req.ID, models.TourRequestApproved)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, admin, req.ID, models.TourRequestApproved)
	require.NoError(t, err)

	var d models.DestinationModel
	require.NoError(t, db.First(&d, "id = ?", "D1").Error)
	var e models.ExperienceModel
	require.NoError(t, db.First(&e, "id = ?", "E1").Error)
	assert.Equal(t, 0, d.Priority)
	assert.Equal(t, 1, e.Priority)

	deleted, err := svc.Delete(ctx, admin, req.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NoError(t, db.First(&e, "id = ?", "E1").Error)
	assert.Equal(t, 1, e.Priority, "deleting a request never takes priority back")
}

func TestCreateValidatesItineraryBeforeSaving(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil, nil, nil)

	_, err := svc.Create(context.Background(), &CreateDTO{
		FirstName: "Karma",
		Email:     "karma@example.com",
		CustomItinerary: rawDays(t, []models.CustomDay{{Day: 1, Items: []models.CustomItem{
			{Type: models.ItemTypeTravel, DestinationFromID: "paro", DestinationToID: "paro"},
		}}}),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, itinerary.ErrDegenerateTravel)

	var count int64
	require.NoError(t, db.Model(&models.TourRequestModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRequiresTourOrItinerary(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil, nil, nil)
	_, err := svc.Create(context.Background(), &CreateDTO{FirstName: "Karma", Email: "karma@example.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), &CreateDTO{FirstName: "Karma", Email: "karma@example.com", TourID: "nope"})
	assert.ErrorIs(t, err, ErrUnknownTour)

	_, err = svc.Create(context.Background(), &CreateDTO{FirstName: "Karma", Email: "karma@example.com", TourID: "x", TravelDate: "next week"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateStoresPendingAndNotifies(t *testing.T) {
	db := dbtest.Open(t)
	tour := &models.TourModel{Entity: models.Entity{Base: models.Base{ID: "T1"}, Slug: "druk-path", Title: "Druk Path Trek"}}
	require.NoError(t, db.Create(tour).Error)

	notifier := &recordingNotifier{sent: make(chan string, 2)}
	svc := NewService(db, nil, notifier, nil)

	req, err := svc.Create(context.Background(), &CreateDTO{
		FirstName: " Sonam ",
		LastName:  "Wangmo",
		Email:     "Sonam@Example.com",
		TourID:    "T1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TourRequestPending, req.Status)
	assert.Equal(t, "Druk Path Trek", req.TourName)
	assert.Equal(t, "sonam@example.com", req.Email)
	assert.Equal(t, 1, req.Travelers)

	got := []string{<-notifier.sent, <-notifier.sent}
	assert.ElementsMatch(t, []string{"received:sonam@example.com", "notify:Sonam Wangmo"}, got)
}

func TestUpdateKeepsStatus(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil, nil, nil)
	ctx := context.Background()
	req := seedRequest(t, db, models.TourRequestApproved, models.CustomDay{Day: 1})

	travelers := 5
	msg := "Vegetarian meals please"
	updated, err := svc.Update(ctx, admin, req.ID, &UpdateDTO{Travelers: &travelers, Message: &msg})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Travelers)

	stored, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TourRequestApproved, stored.Status)
	assert.Equal(t, "Vegetarian meals please", stored.Message)
	assert.Len(t, stored.CustomItinerary, 1)

	_, err = svc.Update(ctx, admin, req.ID, &UpdateDTO{CustomItinerary: json.RawMessage(`[{"day":0}]`)})
	assert.ErrorIs(t, err, itinerary.ErrInvalidDay)
}

func TestListFiltersByStatusAndQuery(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil, nil, nil)
	seedRequest(t, db, models.TourRequestPending)
	seedRequest(t, db, models.TourRequestApproved)
	other := &models.TourRequestModel{FirstName: "Jigme", Email: "jigme@example.com", Status: models.TourRequestPending, TourID: "T9"}
	require.NoError(t, db.Create(other).Error)

	rows, pag, err := svc.List(context.Background(), ListQuery{Status: models.TourRequestPending}, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int64(2), pag.Total)

	rows, _, err = svc.List(context.Background(), ListQuery{Query: "jigme"}, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, other.ID, rows[0].ID)
}
