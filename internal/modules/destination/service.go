package destination

import (
	"context"
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

type Service struct {
	db     *gorm.DB
	images image.Store
	logger *zap.Logger
}

func NewService(db *gorm.DB, images image.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, images: images, logger: logger.Named("destination")}
}

func (s *Service) List(ctx context.Context, q catalog.ListQuery, region string, page pagination.Query) ([]models.DestinationModel, response.Pagination, error) {
	db := s.db.WithContext(ctx).Model(&models.DestinationModel{})
	if region = strings.TrimSpace(region); region != "" {
		db = db.Where("region = ?", region)
	}
	var rows []models.DestinationModel
	pag, err := pagination.Paginate(q.Apply(db), page, &rows)
	return rows, pag, err
}

// GetByQuery resolves an id or slug; (nil, nil) when nothing matches.
func (s *Service) GetByQuery(ctx context.Context, query string) (*models.DestinationModel, error) {
	return catalog.FindByQuery[models.DestinationModel](ctx, s.db, query)
}

// Detail loads the destination with the experiences and hotels it links.
func (s *Service) Detail(ctx context.Context, query string) (*Detail, error) {
	d, err := s.GetByQuery(ctx, query)
	if err != nil || d == nil {
		return nil, err
	}
	out := &Detail{DestinationModel: d, Experiences: []models.ExperienceModel{}, Hotels: []models.HotelModel{}}
	if len(d.ExperienceIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", d.ExperienceIDs).Order("priority DESC").Find(&out.Experiences).Error; err != nil {
			return nil, err
		}
	}
	if len(d.HotelIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", d.HotelIDs).Order("priority DESC").Find(&out.Hotels).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor authz.Actor, dto *CreateDTO, fh *multipart.FileHeader) (*models.DestinationModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if dto.Coordinates != nil && !dto.Coordinates.Valid() {
		return nil, catalog.Invalid("coordinates out of range")
	}
	entity, err := catalog.NewEntity(ctx, s.db, &models.DestinationModel{}, dto.EntityInput)
	if err != nil {
		return nil, err
	}

	d := models.DestinationModel{
		Entity:        entity,
		Region:        strings.TrimSpace(dto.Region),
		Coordinates:   dto.Coordinates,
		Highlights:    catalog.CleanStrings(dto.Highlights),
		ExperienceIDs: catalog.CleanIDs(dto.ExperienceIDs),
		HotelIDs:      catalog.CleanIDs(dto.HotelIDs),
	}
	d.Image = catalog.StoreImage(ctx, s.images, s.logger, fh)
	if err := catalog.Insert(ctx, s.db, &d); err != nil {
		catalog.ReleaseImage(ctx, s.images, s.logger, d.Image)
		return nil, err
	}
	s.logger.Info("destination created", zap.String("id", d.ID), zap.String("slug", d.Slug), zap.String("by", actor.UserID))
	return &d, nil
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, dto *UpdateDTO, fh *multipart.FileHeader) (*models.DestinationModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	d, err := catalog.FindByQuery[models.DestinationModel](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, catalog.ErrNotFound
	}

	var ch catalog.Changes
	if err := dto.EntityPatch.Apply(&d.Entity, &ch); err != nil {
		return nil, err
	}
	if dto.Region != nil {
		d.Region = strings.TrimSpace(*dto.Region)
		ch.Mark("region")
	}
	if dto.Coordinates != nil {
		if !dto.Coordinates.Valid() {
			return nil, catalog.Invalid("coordinates out of range")
		}
		d.Coordinates = dto.Coordinates
		ch.Mark("coordinates")
	}
	if dto.Highlights != nil {
		d.Highlights = catalog.CleanStrings(*dto.Highlights)
		ch.Mark("highlights")
	}
	if dto.ExperienceIDs != nil {
		d.ExperienceIDs = catalog.CleanIDs(*dto.ExperienceIDs)
		ch.Mark("experience_ids")
	}
	if dto.HotelIDs != nil {
		d.HotelIDs = catalog.CleanIDs(*dto.HotelIDs)
		ch.Mark("hotel_ids")
	}
	var swap catalog.ImageSwap
	if fh != nil {
		swap = catalog.StageImage(ctx, s.images, s.logger, d.Image, fh)
		d.Image = swap.URL
		ch.Mark("image")
	}

	if err := ch.Save(ctx, s.db, d); err != nil {
		swap.Finish(ctx, s.images, s.logger, false)
		return nil, err
	}
	swap.Finish(ctx, s.images, s.logger, true)
	return d, nil
}

// Delete soft-deletes the destination and releases its image. Priority
// collected from past approvals is not touched anywhere else.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	d, err := catalog.FindByQuery[models.DestinationModel](ctx, s.db, id)
	if err != nil || d == nil {
		return false, err
	}
	if err := s.db.WithContext(ctx).Delete(d).Error; err != nil {
		return false, err
	}
	catalog.ReleaseImage(ctx, s.images, s.logger, d.Image)
	return true, nil
}
