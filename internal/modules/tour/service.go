package tour

import (
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"strings"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/modules/itinerary"
	"github.com/bhutan-travel/core/internal/modules/storage/image"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	images image.Store
	logger *zap.Logger
}

func NewService(db *gorm.DB, images image.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, images: images, logger: logger.Named("tour")}
}

func (s *Service) List(ctx context.Context, q catalog.ListQuery, category string, page pagination.Query) ([]models.TourModel, response.Pagination, error) {
	db := s.db.WithContext(ctx).Model(&models.TourModel{})
	if category = strings.TrimSpace(category); category != "" {
		db = db.Where("category = ?", category)
	}
	// days can be large; listings only need the card fields
	db = db.Omit("days")
	var rows []models.TourModel
	pag, err := pagination.Paginate(q.Apply(db), page, &rows)
	return rows, pag, err
}

func (s *Service) GetByQuery(ctx context.Context, query string) (*models.TourModel, error) {
	return catalog.FindByQuery[models.TourModel](ctx, s.db, query)
}

func (s *Service) Detail(ctx context.Context, query string) (*Detail, error) {
	t, err := s.GetByQuery(ctx, query)
	if err != nil || t == nil {
		return nil, err
	}
	for i := range t.Days {
		t.Days[i].Items = itinerary.SortTourItems(t.Days[i].Items)
	}

	refs := itinerary.CollectReferences(itinerary.FromTourDays(t.Days))
	out := &Detail{
		TourModel:    t,
		Destinations: []models.DestinationModel{},
		Experiences:  []models.ExperienceModel{},
		Hotels:       []models.HotelModel{},
	}
	db := s.db.WithContext(ctx)
	if ids := refs.DestinationIDs.Sorted(); len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&out.Destinations).Error; err != nil {
			return nil, err
		}
	}
	if ids := refs.ExperienceIDs.Sorted(); len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&out.Experiences).Error; err != nil {
			return nil, err
		}
	}
	if ids := refs.HotelIDs.Sorted(); len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&out.Hotels).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Create validates the itinerary before anything is stored; a rejected
// itinerary leaves no row and no uploaded image behind.
func (s *Service) Create(ctx context.Context, actor authz.Actor, dto *CreateDTO, fh *multipart.FileHeader) (*models.TourModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	days, err := decodeDays(dto.Days)
	if err != nil {
		return nil, err
	}
	if err := checkNumbers(dto.Duration, dto.Price); err != nil {
		return nil, err
	}
	entity, err := catalog.NewEntity(ctx, s.db, &models.TourModel{}, dto.EntityInput)
	if err != nil {
		return nil, err
	}

	t := models.TourModel{
		Entity:     entity,
		Category:   strings.TrimSpace(dto.Category),
		Duration:   dto.Duration,
		Price:      dto.Price,
		Highlights: catalog.CleanStrings(dto.Highlights),
		Days:       days,
	}
	if t.Duration == 0 {
		t.Duration = dayCount(days)
	}
	t.Image = catalog.StoreImage(ctx, s.images, s.logger, fh)
	if err := catalog.Insert(ctx, s.db, &t); err != nil {
		catalog.ReleaseImage(ctx, s.images, s.logger, t.Image)
		return nil, err
	}
	s.logger.Info("tour created",
		zap.String("id", t.ID),
		zap.String("slug", t.Slug),
		zap.Int("days", len(t.Days)),
		zap.String("by", actor.UserID),
	)
	return &t, nil
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, dto *UpdateDTO, fh *multipart.FileHeader) (*models.TourModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	t, err := catalog.FindByQuery[models.TourModel](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, catalog.ErrNotFound
	}

	var ch catalog.Changes
	if dto.Days != nil {
		days, err := decodeDays(dto.Days)
		if err != nil {
			return nil, err
		}
		t.Days = days
		ch.Mark("days")
	}
	if err := dto.EntityPatch.Apply(&t.Entity, &ch); err != nil {
		return nil, err
	}
	if dto.Category != nil {
		t.Category = strings.TrimSpace(*dto.Category)
		ch.Mark("category")
	}
	if dto.Duration != nil {
		t.Duration = *dto.Duration
		ch.Mark("duration")
	}
	if dto.Price != nil {
		t.Price = *dto.Price
		ch.Mark("price")
	}
	if err := checkNumbers(t.Duration, t.Price); err != nil {
		return nil, err
	}
	if dto.Highlights != nil {
		t.Highlights = catalog.CleanStrings(*dto.Highlights)
		ch.Mark("highlights")
	}
	var swap catalog.ImageSwap
	if fh != nil {
		swap = catalog.StageImage(ctx, s.images, s.logger, t.Image, fh)
		t.Image = swap.URL
		ch.Mark("image")
	}
	if err := ch.Save(ctx, s.db, t); err != nil {
		swap.Finish(ctx, s.images, s.logger, false)
		return nil, err
	}
	swap.Finish(ctx, s.images, s.logger, true)
	return t, nil
}

// Delete removes the tour. Requests that referenced it keep their
// denormalized tour name.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	t, err := catalog.FindByQuery[models.TourModel](ctx, s.db, id)
	if err != nil || t == nil {
		return false, err
	}
	if err := s.db.WithContext(ctx).Delete(t).Error; err != nil {
		return false, err
	}
	catalog.ReleaseImage(ctx, s.images, s.logger, t.Image)
	return true, nil
}

func decodeDays(raw json.RawMessage) ([]models.TourDay, error) {
	days, err := itinerary.DecodeTourDays(raw)
	if err != nil {
		return nil, err
	}
	if err := itinerary.CheckTourDays(days); err != nil {
		return nil, err
	}
	for i := range days {
		days[i].Title = strings.TrimSpace(days[i].Title)
		days[i].HotelID = strings.TrimSpace(days[i].HotelID)
	}
	return days, nil
}

func dayCount(days []models.TourDay) int {
	n := 0
	for _, d := range days {
		if d.Day > n {
			n = d.Day
		}
	}
	return n
}

func checkNumbers(duration int, price float64) error {
	if duration < 0 {
		return catalog.Invalid("duration cannot be negative")
	}
	if math.IsNaN(price) || price < 0 {
		return catalog.Invalid("price cannot be negative")
	}
	return nil
}
