package experiencetype

import (
	"context"
	"mime/multipart"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/modules/storage/image"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateDTO struct {
	catalog.EntityInput
	DisplayOrder int `json:"display_order" form:"display_order"`
}

type UpdateDTO struct {
	catalog.EntityPatch
	DisplayOrder *int `json:"display_order" form:"display_order"`
}

// TypeWithCount is a listing row with the number of experiences filed under it.
type TypeWithCount struct {
	models.ExperienceTypeModel
	ExperienceCount int64 `json:"experience_count"`
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
	return &Service{db: db, images: images, logger: logger.Named("experience_type")}
}

// List returns every type in display order. The set is small enough that
// it is never paged.
func (s *Service) List(ctx context.Context) ([]TypeWithCount, error) {
	var types []models.ExperienceTypeModel
	if err := s.db.WithContext(ctx).Order("display_order ASC").Order("title ASC").Find(&types).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		CategoryID string
		N          int64
	}
	if err := s.db.WithContext(ctx).Model(&models.ExperienceModel{}).
		Select("category_id, COUNT(*) AS n").
		Where("category_id <> ''").
		Group("category_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.CategoryID] = c.N
	}

	out := make([]TypeWithCount, 0, len(types))
	for _, t := range types {
		out = append(out, TypeWithCount{ExperienceTypeModel: t, ExperienceCount: byID[t.ID]})
	}
	return out, nil
}

func (s *Service) GetByQuery(ctx context.Context, query string) (*models.ExperienceTypeModel, error) {
	return catalog.FindByQuery[models.ExperienceTypeModel](ctx, s.db, query)
}

func (s *Service) Create(ctx context.Context, actor authz.Actor, dto *CreateDTO, fh *multipart.FileHeader) (*models.ExperienceTypeModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	entity, err := catalog.NewEntity(ctx, s.db, &models.ExperienceTypeModel{}, dto.EntityInput)
	if err != nil {
		return nil, err
	}
	t := models.ExperienceTypeModel{Entity: entity, DisplayOrder: dto.DisplayOrder}
	t.Image = catalog.StoreImage(ctx, s.images, s.logger, fh)
	if err := catalog.Insert(ctx, s.db, &t); err != nil {
		catalog.ReleaseImage(ctx, s.images, s.logger, t.Image)
		return nil, err
	}
	return &t, nil
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, dto *UpdateDTO, fh *multipart.FileHeader) (*models.ExperienceTypeModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	t, err := catalog.FindByQuery[models.ExperienceTypeModel](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, catalog.ErrNotFound
	}
	var ch catalog.Changes
	if err := dto.EntityPatch.Apply(&t.Entity, &ch); err != nil {
		return nil, err
	}
	if dto.DisplayOrder != nil {
		t.DisplayOrder = *dto.DisplayOrder
		ch.Mark("display_order")
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

// Delete removes the type and detaches the experiences filed under it.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	t, err := catalog.FindByQuery[models.ExperienceTypeModel](ctx, s.db, id)
	if err != nil || t == nil {
		return false, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ExperienceModel{}).Where("category_id = ?", t.ID).
			UpdateColumn("category_id", "").Error; err != nil {
			return err
		}
		return tx.Delete(t).Error
	})
	if err != nil {
		return false, err
	}
	catalog.ReleaseImage(ctx, s.images, s.logger, t.Image)
	return true, nil
}
