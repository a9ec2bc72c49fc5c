package hotel

import (
	"context"
	"math"
	"mime/multipart"
	"strings"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/modules/storage/image"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/bhutan-travel/core/internal/pkg/pagination"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxRating = 5

type CreateDTO struct {
	catalog.EntityInput
	DestinationID string  `json:"destination_id" form:"destination_id"`
	Rating        float64 `json:"rating"         form:"rating"`
	PriceTier     string  `json:"price_tier"     form:"price_tier"`
}

type UpdateDTO struct {
	catalog.EntityPatch
	DestinationID *string  `json:"destination_id" form:"destination_id"`
	Rating        *float64 `json:"rating"         form:"rating"`
	PriceTier     *string  `json:"price_tier"     form:"price_tier"`
}

type Filter struct {
	DestinationID string
	PriceTier     models.PriceTier
}

type Service struct {
	db     *gorm.DB
	images image.Store
	logger *zap.Logger
}

func NewService(db *gorm.DB, images image.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, images: images, logger: logger.Named("hotel")}
}

func (s *Service) List(ctx context.Context, q catalog.ListQuery, f Filter, page pagination.Query) ([]models.HotelModel, response.Pagination, error) {
	db := s.db.WithContext(ctx).Model(&models.HotelModel{})
	if f.DestinationID != "" {
		db = db.Where("destination_id = ?", f.DestinationID)
	}
	if f.PriceTier != "" {
		db = db.Where("price_tier = ?", f.PriceTier)
	}
	var rows []models.HotelModel
	pag, err := pagination.Paginate(q.Apply(db), page, &rows)
	return rows, pag, err
}

func (s *Service) GetByQuery(ctx context.Context, query string) (*models.HotelModel, error) {
	return catalog.FindByQuery[models.HotelModel](ctx, s.db, query)
}

func (s *Service) Create(ctx context.Context, actor authz.Actor, dto *CreateDTO, fh *multipart.FileHeader) (*models.HotelModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if err := checkRating(dto.Rating); err != nil {
		return nil, err
	}
	tier, err := ParsePriceTier(dto.PriceTier)
	if err != nil {
		return nil, err
	}
	destinationID := strings.TrimSpace(dto.DestinationID)
	if err := s.checkDestination(ctx, destinationID); err != nil {
		return nil, err
	}
	entity, err := catalog.NewEntity(ctx, s.db, &models.HotelModel{}, dto.EntityInput)
	if err != nil {
		return nil, err
	}

	h := models.HotelModel{
		Entity:        entity,
		DestinationID: destinationID,
		Rating:        dto.Rating,
		PriceTier:     tier,
	}
	h.Image = catalog.StoreImage(ctx, s.images, s.logger, fh)
	if err := catalog.Insert(ctx, s.db, &h); err != nil {
		catalog.ReleaseImage(ctx, s.images, s.logger, h.Image)
		return nil, err
	}
	s.logger.Info("hotel created", zap.String("id", h.ID), zap.String("slug", h.Slug), zap.String("by", actor.UserID))
	return &h, nil
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, dto *UpdateDTO, fh *multipart.FileHeader) (*models.HotelModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	h, err := catalog.FindByQuery[models.HotelModel](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, catalog.ErrNotFound
	}

	var ch catalog.Changes
	if err := dto.EntityPatch.Apply(&h.Entity, &ch); err != nil {
		return nil, err
	}
	if dto.DestinationID != nil {
		destinationID := strings.TrimSpace(*dto.DestinationID)
		if err := s.checkDestination(ctx, destinationID); err != nil {
			return nil, err
		}
		h.DestinationID = destinationID
		ch.Mark("destination_id")
	}
	if dto.Rating != nil {
		if err := checkRating(*dto.Rating); err != nil {
			return nil, err
		}
		h.Rating = *dto.Rating
		ch.Mark("rating")
	}
	if dto.PriceTier != nil {
		if h.PriceTier, err = ParsePriceTier(*dto.PriceTier); err != nil {
			return nil, err
		}
		ch.Mark("price_tier")
	}
	var swap catalog.ImageSwap
	if fh != nil {
		swap = catalog.StageImage(ctx, s.images, s.logger, h.Image, fh)
		h.Image = swap.URL
		ch.Mark("image")
	}
	if err := ch.Save(ctx, s.db, h); err != nil {
		swap.Finish(ctx, s.images, s.logger, false)
		return nil, err
	}
	swap.Finish(ctx, s.images, s.logger, true)
	return h, nil
}

func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	h, err := catalog.FindByQuery[models.HotelModel](ctx, s.db, id)
	if err != nil || h == nil {
		return false, err
	}
	if err := s.db.WithContext(ctx).Delete(h).Error; err != nil {
		return false, err
	}
	catalog.ReleaseImage(ctx, s.images, s.logger, h.Image)
	return true, nil
}

func (s *Service) checkDestination(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	d, err := catalog.FindByID[models.DestinationModel](ctx, s.db, id)
	if err != nil {
		return err
	}
	if d == nil {
		return catalog.Invalid("unknown destination %q", id)
	}
	return nil
}

func checkRating(r float64) error {
	if math.IsNaN(r) || r < 0 || r > maxRating {
		return catalog.Invalid("rating must be between 0 and %d", maxRating)
	}
	return nil
}

// ParsePriceTier accepts a tier name in any case; blank means unset.
func ParsePriceTier(raw string) (models.PriceTier, error) {
	tier := models.PriceTier(strings.ToLower(strings.TrimSpace(raw)))
	if !tier.Valid() {
		return "", catalog.Invalid("price_tier must be budget, standard, premium or luxury")
	}
	return tier, nil
}
