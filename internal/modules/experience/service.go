package experience

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

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
	return &Service{db: db, images: images, logger: logger.Named("experience")}
}

func (s *Service) List(ctx context.Context, q catalog.ListQuery, f Filter, page pagination.Query) ([]models.ExperienceModel, response.Pagination, error) {
	db := s.db.WithContext(ctx).Model(&models.ExperienceModel{})
	if f.Category != "" {
		cat, err := catalog.FindByQuery[models.ExperienceTypeModel](ctx, s.db, f.Category)
		if err != nil {
			return nil, response.Pagination{}, err
		}
		if cat == nil {
			return []models.ExperienceModel{}, response.Pagination{CurrentPage: page.Page, Size: page.Size}, nil
		}
		db = db.Where("category_id = ?", cat.ID)
	}
	if f.Difficulty != "" {
		db = db.Where("difficulty = ?", f.Difficulty)
	}
	if f.DestinationID != "" {
		// destination_ids is a JSON array of quoted ids
		db = db.Where("destination_ids LIKE ?", `%"`+f.DestinationID+`"%`)
	}
	var rows []models.ExperienceModel
	pag, err := pagination.Paginate(q.Apply(db), page, &rows)
	return rows, pag, err
}

func (s *Service) GetByQuery(ctx context.Context, query string) (*models.ExperienceModel, error) {
	return catalog.FindByQuery[models.ExperienceModel](ctx, s.db, query)
}

func (s *Service) Detail(ctx context.Context, query string) (*Detail, error) {
	e, err := s.GetByQuery(ctx, query)
	if err != nil || e == nil {
		return nil, err
	}
	out := &Detail{ExperienceModel: e, Destinations: []models.DestinationModel{}}
	if e.CategoryID != "" {
		if out.Category, err = catalog.FindByID[models.ExperienceTypeModel](ctx, s.db, e.CategoryID); err != nil {
			return nil, err
		}
	}
	if len(e.DestinationIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", e.DestinationIDs).Order("priority DESC").Find(&out.Destinations).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor authz.Actor, dto *CreateDTO, fh *multipart.FileHeader) (*models.ExperienceModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	difficulty, err := parseDifficulty(dto.Difficulty)
	if err != nil {
		return nil, err
	}
	start, err := parseDate("start_date", dto.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", dto.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	if dto.Coordinates != nil && !dto.Coordinates.Valid() {
		return nil, catalog.Invalid("coordinates out of range")
	}
	categoryID := strings.TrimSpace(dto.CategoryID)
	if err := s.checkCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	entity, err := catalog.NewEntity(ctx, s.db, &models.ExperienceModel{}, dto.EntityInput)
	if err != nil {
		return nil, err
	}

	e := models.ExperienceModel{
		Entity:         entity,
		CategoryID:     categoryID,
		Duration:       strings.TrimSpace(dto.Duration),
		Difficulty:     difficulty,
		Coordinates:    dto.Coordinates,
		DestinationIDs: catalog.CleanIDs(dto.DestinationIDs),
		Gallery:        catalog.CleanStrings(dto.Gallery),
		StartDate:      start,
		EndDate:        end,
	}
	e.Image = catalog.StoreImage(ctx, s.images, s.logger, fh)
	if err := catalog.Insert(ctx, s.db, &e); err != nil {
		catalog.ReleaseImage(ctx, s.images, s.logger, e.Image)
		return nil, err
	}
	s.logger.Info("experience created", zap.String("id", e.ID), zap.String("slug", e.Slug), zap.String("by", actor.UserID))
	return &e, nil
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, dto *UpdateDTO, fh *multipart.FileHeader) (*models.ExperienceModel, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	e, err := catalog.FindByQuery[models.ExperienceModel](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, catalog.ErrNotFound
	}

	var ch catalog.Changes
	if err := dto.EntityPatch.Apply(&e.Entity, &ch); err != nil {
		return nil, err
	}
	if dto.CategoryID != nil {
		categoryID := strings.TrimSpace(*dto.CategoryID)
		if err := s.checkCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		e.CategoryID = categoryID
		ch.Mark("category_id")
	}
	if dto.Duration != nil {
		e.Duration = strings.TrimSpace(*dto.Duration)
		ch.Mark("duration")
	}
	if dto.Difficulty != nil {
		if e.Difficulty, err = parseDifficulty(*dto.Difficulty); err != nil {
			return nil, err
		}
		ch.Mark("difficulty")
	}
	if dto.StartDate != nil {
		if e.StartDate, err = parseDate("start_date", *dto.StartDate); err != nil {
			return nil, err
		}
		ch.Mark("start_date")
	}
	if dto.EndDate != nil {
		if e.EndDate, err = parseDate("end_date", *dto.EndDate); err != nil {
			return nil, err
		}
		ch.Mark("end_date")
	}
	if err := checkRange(e.StartDate, e.EndDate); err != nil {
		return nil, err
	}
	if dto.Coordinates != nil {
		if !dto.Coordinates.Valid() {
			return nil, catalog.Invalid("coordinates out of range")
		}
		e.Coordinates = dto.Coordinates
		ch.Mark("coordinates")
	}
	if dto.DestinationIDs != nil {
		e.DestinationIDs = catalog.CleanIDs(*dto.DestinationIDs)
		ch.Mark("destination_ids")
	}
	if dto.Gallery != nil {
		e.Gallery = catalog.CleanStrings(*dto.Gallery)
		ch.Mark("gallery")
	}
	var swap catalog.ImageSwap
	if fh != nil {
		swap = catalog.StageImage(ctx, s.images, s.logger, e.Image, fh)
		e.Image = swap.URL
		ch.Mark("image")
	}

	if err := ch.Save(ctx, s.db, e); err != nil {
		swap.Finish(ctx, s.images, s.logger, false)
		return nil, err
	}
	swap.Finish(ctx, s.images, s.logger, true)
	return e, nil
}

func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) (bool, error) {
	if err := actor.Require(); err != nil {
		return false, err
	}
	e, err := catalog.FindByQuery[models.ExperienceModel](ctx, s.db, id)
	if err != nil || e == nil {
		return false, err
	}
	if err := s.db.WithContext(ctx).Delete(e).Error; err != nil {
		return false, err
	}
	catalog.ReleaseImage(ctx, s.images, s.logger, e.Image)
	for _, g := range e.Gallery {
		catalog.ReleaseImage(ctx, s.images, s.logger, g)
	}
	return true, nil
}

func (s *Service) checkCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	cat, err := catalog.FindByID[models.ExperienceTypeModel](ctx, s.db, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return catalog.Invalid("unknown category %q", id)
	}
	return nil
}

func parseDifficulty(raw string) (models.Difficulty, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	d := models.Difficulty(strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:]))
	if !d.Valid() {
		return "", catalog.Invalid("difficulty must be Easy, Moderate or Challenging")
	}
	return d, nil
}

func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, catalog.Invalid("%s must be YYYY-MM-DD", field)
		}
	}
	t = t.UTC()
	return &t, nil
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return catalog.Invalid("end_date is before start_date")
	}
	return nil
}
