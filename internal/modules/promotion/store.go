package promotion

import (
	"context"
	"errors"
	"fmt"

	"github.com/bhutan-travel/core/internal/models"
	"gorm.io/gorm"
)

// ErrUnknownCounter is returned for a collection/field pair outside the
// allow-list.
var ErrUnknownCounter = errors.New("unknown counter")

// GormCounter issues `field = field + delta` as a single UPDATE, so
// concurrent promotions never lose an increment.
type GormCounter struct {
	db *gorm.DB
}

func NewGormCounter(db *gorm.DB) *GormCounter {
	return &GormCounter{db: db}
}

func (c *GormCounter) Increment(ctx context.Context, collection Collection, id, field string, delta int) (bool, error) {
	model, ok := counterModel(collection)
	if !ok || field != PriorityField {
		return false, fmt.Errorf("%w: %s.%s", ErrUnknownCounter, collection, field)
	}
	res := c.db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		UpdateColumn(field, gorm.Expr(field+" + ?", delta))
	if res.Error != nil {
		return false, fmt.Errorf("increment %s/%s: %w", collection, id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func counterModel(collection Collection) (interface{}, bool) {
	switch collection {
	case Tours:
		return &models.TourModel{}, true
	case Destinations:
		return &models.DestinationModel{}, true
	case Experiences:
		return &models.ExperienceModel{}, true
	case Hotels:
		return &models.HotelModel{}, true
	default:
		return nil, false
	}
}

// GormTourLoader reads tour itineraries straight from the tours table.
type GormTourLoader struct {
	db *gorm.DB
}

func NewGormTourLoader(db *gorm.DB) *GormTourLoader {
	return &GormTourLoader{db: db}
}

func (l *GormTourLoader) LoadTourDays(ctx context.Context, id string) ([]models.TourDay, bool, error) {
	var tour models.TourModel
	err := l.db.WithContext(ctx).Select("id", "days").First(&tour, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return tour.Days, true, nil
}
