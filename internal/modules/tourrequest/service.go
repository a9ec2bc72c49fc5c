package tourrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/itinerary"
	"github.com/bhutan-travel/core/internal/modules/promotion"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/bhutan-travel/core/internal/pkg/mail"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Promoter raises the priority of everything a request references.
type Promoter interface {
	Promote(ctx context.Context, req *models.TourRequestModel) (*promotion.Report, error)
}

// Notifier delivers the inquiry emails.
type Notifier interface {
	SendInquiryReceived(ctx context.Context, to string, data mail.InquiryData) (mail.Result, error)
	SendInquiryNotify(ctx context.Context, data mail.InquiryData) (mail.Result, error)
}

type Service struct {
	db       *gorm.DB
	promoter Promoter
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, promoter Promoter, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, promoter: promoter, notifier: notifier, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, q ListQuery, page pagination.Query) ([]models.TourRequestModel, response.Pagination, error) {
	db := s.db.WithContext(ctx).Model(&models.TourRequestModel{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if term := strings.TrimSpace(q.Query); term != "" {
		like := "%" + term + "%"
		db = db.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR tour_name LIKE ?", like, like, like, like)
	}
	var rows []models.TourRequestModel
	pag, err := pagination.Paginate(db.Order("created_at DESC"), page, &rows)
	return rows, pag, err
}

// Get returns (nil, nil) when no request has that id.
func (s *Service) Get(ctx context.Context, id string) (*models.TourRequestModel, error) {
	var req models.TourRequestModel
	if err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// Create stores a public inquiry in the pending state. Either a tour or a
// non-empty custom itinerary is required; the itinerary is validated before
// anything is written. Emails go out in the background.
func (s *Service) Create(ctx context.Context, dto *CreateDTO) (*models.TourRequestModel, error) {
	req := models.TourRequestModel{
		FirstName: strings.TrimSpace(dto.FirstName),
		LastName:  strings.TrimSpace(dto.LastName),
		Email:     strings.ToLower(strings.TrimSpace(dto.Email)),
		Phone:     strings.TrimSpace(dto.Phone),
		Travelers: dto.Travelers,
		Message:   strings.TrimSpace(dto.Message),
		Status:    models.TourRequestPending,
		TourID:    strings.TrimSpace(dto.TourID),
	}
	if req.FirstName == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if req.Travelers < 1 {
		req.Travelers = 1
	}

	date, err := parseDate(dto.TravelDate)
	if err != nil {
		return nil, err
	}
	req.TravelDate = date

	days, err := itinerary.DecodeCustomDays(dto.CustomItinerary)
	if err != nil {
		return nil, err
	}
	if err := itinerary.CheckCustomDays(days); err != nil {
		return nil, err
	}
	req.CustomItinerary = days

	if req.TourID == "" && len(days) == 0 {
		return nil, fmt.Errorf("%w: choose a tour or compose an itinerary", ErrInvalidInput)
	}
	if req.TourID != "" {
		name, err := s.tourName(ctx, req.TourID)
		if err != nil {
			return nil, err
		}
		req.TourName = name
	}

	if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, fmt.Errorf("create tour request: %w", err)
	}

	if s.notifier != nil {
		created := req
		go s.notify(&created)
	}
	return &req, nil
}

// Update edits contact fields or the itinerary. The status is left alone.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, dto *UpdateDTO) (*models.TourRequestModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	req, err := s.Get(ctx, id)
	if err != nil || req == nil {
		return req, err
	}

	updates := map[string]interface{}{}
	setString := func(col string, v *string, dst *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			updates[col] = *dst
		}
	}
	setString("first_name", dto.FirstName, &req.FirstName)
	setString("last_name", dto.LastName, &req.LastName)
	setString("email", dto.Email, &req.Email)
	setString("phone", dto.Phone, &req.Phone)
	setString("message", dto.Message, &req.Message)
	if req.FirstName == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	if dto.Travelers != nil {
		if *dto.Travelers < 1 {
			return nil, fmt.Errorf("%w: at least one traveler", ErrInvalidInput)
		}
		req.Travelers = *dto.Travelers
		updates["travelers"] = req.Travelers
	}
	if dto.TravelDate != nil {
		date, err := parseDate(*dto.TravelDate)
		if err != nil {
			return nil, err
		}
		req.TravelDate = date
		updates["travel_date"] = date
	}
	if dto.CustomItinerary != nil {
		days, err := itinerary.DecodeCustomDays(dto.CustomItinerary)
		if err != nil {
			return nil, err
		}
		if err := itinerary.CheckCustomDays(days); err != nil {
			return nil, err
		}
		req.CustomItinerary = days
		updates["custom_itinerary"] = days
	}
	if dto.TourID != nil {
		req.TourID = strings.TrimSpace(*dto.TourID)
		req.TourName = ""
		if req.TourID != "" {
			if req.TourName, err = s.tourName(ctx, req.TourID); err != nil {
				return nil, err
			}
		}
		updates["tour_id"] = req.TourID
		updates["tour_name"] = req.TourName
	}
	if req.TourID == "" && len(req.CustomItinerary) == 0 {
		return nil, fmt.Errorf("%w: choose a tour or compose an itinerary", ErrInvalidInput)
	}
	if len(updates) == 0 {
		return req, nil
	}

	if err := s.db.WithContext(ctx).Model(req).Select(keys(updates)).Updates(req).Error; err != nil {
		return nil, fmt.Errorf("update tour request: %w", err)
	}
	return req, nil
}

// Delete removes a request in any state. Priority already granted stays.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	res := s.db.WithContext(ctx).Delete(&models.TourRequestModel{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete tour request: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Transition moves a request to target. Setting the current status again is
// a no-op. The status is written with a compare-and-set on the previous
// value, so of two concurrent approvals exactly one promotes. Promotion runs
// only on the edge into approved and its failures never undo the change.
func (s *Service) Transition(ctx context.Context, actor authz.Actor, id string, target models.TourRequestStatus) (*TransitionResult, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}

	result := &TransitionResult{ID: req.ID, Previous: req.Status, Current: req.Status}
	if req.Status == target {
		return result, nil
	}
	if !req.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, req.Status, target)
	}

	res := s.db.WithContext(ctx).
		Model(&models.TourRequestModel{}).
		Where("id = ? AND status = ?", req.ID, req.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, fmt.Errorf("update tour request status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}
		if current.Status == target {
			result.Current = target
			return result, nil
		}
		return nil, ErrStatusConflict
	}

	result.Current = target
	result.Changed = true
	req.Status = target
	s.logger.Info("tour request status changed",
		zap.String("id", req.ID),
		zap.String("from", result.Previous.String()),
		zap.String("to", target.String()),
		zap.String("by", actor.UserID))

	if target == models.TourRequestApproved && s.promoter != nil {
		result.Report = s.promote(ctx, req)
		result.Promoted = true
	}
	return result, nil
}

// promote runs the engine detached from request cancellation and swallows
// its error after logging.
func (s *Service) promote(ctx context.Context, req *models.TourRequestModel) *promotion.Report {
	ctx = context.WithoutCancel(ctx)
	report, err := s.promoter.Promote(ctx, req)
	if err != nil {
		s.logger.Error("tour request promotion failed",
			zap.String("id", req.ID),
			zap.Bool("partial", promotion.IsPartial(err)),
			zap.Error(err))
	}

	if report == nil || len(report.Targets) == 0 {
		return report
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.TourRequestModel{}).
		Where("id = ?", req.ID).
		UpdateColumn("promoted_at", now).Error; err != nil {
		s.logger.Warn("stamp promoted_at failed", zap.String("id", req.ID), zap.Error(err))
	} else {
		req.PromotedAt = &now
	}
	return report
}

func (s *Service) tourName(ctx context.Context, tourID string) (string, error) {
	var tour models.TourModel
	err := s.db.WithContext(ctx).Select("id", "title").First(&tour, "id = ?", tourID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUnknownTour
	}
	if err != nil {
		return "", err
	}
	return tour.Title, nil
}

func (s *Service) notify(req *models.TourRequestModel) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data := mail.InquiryData{
		FirstName: req.FirstName,
		FullName:  req.FullName(),
		Email:     req.Email,
		Phone:     req.Phone,
		Travelers: req.Travelers,
		Message:   req.Message,
		TourName:  req.TourName,
		DayCount:  len(req.CustomItinerary),
	}
	if req.TravelDate != nil {
		data.TravelDate = time.Time(*req.TravelDate).Format("2 January 2006")
	} else {
		data.TravelDate = "flexible"
	}

	if res, err := s.notifier.SendInquiryReceived(ctx, req.Email, data); err != nil {
		s.logger.Warn("inquiry confirmation mail failed", zap.String("id", req.ID), zap.Error(err))
	} else if res.MessageID != "" {
		s.logger.Info("inquiry confirmation mail sent", zap.String("id", req.ID), zap.String("message_id", res.MessageID))
	}
	if _, err := s.notifier.SendInquiryNotify(ctx, data); err != nil {
		s.logger.Warn("inquiry operator mail failed", zap.String("id", req.ID), zap.Error(err))
	}
}

func parseDate(raw string) (*datatypes.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: travel date must look like %s", ErrInvalidInput, dateLayout)
	}
	d := datatypes.Date(t)
	return &d, nil
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
