package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/pkg/slug"
	"gorm.io/gorm"
)

// EntityInput carries the shared display fields of a create request.
type EntityInput struct {
	Title       string `json:"title"       form:"title"`
	Slug        string `json:"slug"        form:"slug"`
	Description string `json:"description" form:"description"`
	Priority    int    `json:"priority"    form:"priority"`
}

// EntityPatch carries the shared display fields of an update request.
// Nil means unchanged.
type EntityPatch struct {
	Title       *string `json:"title"       form:"title"`
	Slug        *string `json:"slug"        form:"slug"`
	Description *string `json:"description" form:"description"`
	Priority    *int    `json:"priority"    form:"priority"`
}

// NewEntity validates in and reserves a unique slug in model's table.
func NewEntity(ctx context.Context, db *gorm.DB, model any, in EntityInput) (models.Entity, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Entity{}, Invalid("title is required")
	}
	if in.Priority < 0 {
		return models.Entity{}, Invalid("priority cannot be negative")
	}
	s, err := ResolveSlug(ctx, db, model, title, in.Slug)
	if err != nil {
		return models.Entity{}, err
	}
	return models.Entity{
		Slug:        s,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    in.Priority,
	}, nil
}

// ResolveSlug derives the slug from requested, or from title when requested
// is blank, and checks that no row (deleted ones included) holds it.
func ResolveSlug(ctx context.Context, db *gorm.DB, model any, title, requested string) (string, error) {
	source := strings.TrimSpace(requested)
	if source == "" {
		source = title
	}
	s := slug.Make(source)
	if s == "" {
		return "", Invalid("slug cannot be derived from %q", source)
	}

	var count int64
	if err := db.WithContext(ctx).Unscoped().Model(model).Where("slug = ?", s).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrSlugTaken
	}
	return s, nil
}

// Apply copies the patch onto e and records the touched columns.
func (p EntityPatch) Apply(e *models.Entity, ch *Changes) error {
	if p.Slug != nil {
		if s := strings.TrimSpace(*p.Slug); s != "" && s != e.Slug {
			return ErrSlugImmutable
		}
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Invalid("title cannot be empty")
		}
		e.Title = title
		ch.Mark("title")
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
		ch.Mark("description")
	}
	if p.Priority != nil {
		if *p.Priority < 0 {
			return Invalid("priority cannot be negative")
		}
		e.Priority = *p.Priority
		ch.Mark("priority")
	}
	return nil
}

// Changes collects the columns an update touched so concurrent priority
// increments are never overwritten by a stale full-row save.
type Changes struct {
	cols []string
}

func (c *Changes) Mark(cols ...string) {
	for _, col := range cols {
		if !c.Has(col) {
			c.cols = append(c.cols, col)
		}
	}
}

func (c *Changes) Has(col string) bool {
	for _, existing := range c.cols {
		if existing == col {
			return true
		}
	}
	return false
}

func (c *Changes) Empty() bool { return len(c.cols) == 0 }

// Save writes only the marked columns of row.
func (c *Changes) Save(ctx context.Context, db *gorm.DB, row any) error {
	if c.Empty() {
		return nil
	}
	cols := append(append([]string{}, c.cols...), "updated_at")
	err := db.WithContext(ctx).Model(row).Select(cols).Updates(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return err
}

// Insert creates row, mapping a unique-index race on slug to ErrSlugTaken.
func Insert(ctx context.Context, db *gorm.DB, row any) error {
	err := db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return err
}

// FindByQuery looks a row up by id, then by slug. It returns (nil, nil)
// when neither matches.
func FindByQuery[T any](ctx context.Context, db *gorm.DB, query string) (*T, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	var row T
	err := db.WithContext(ctx).Where("id = ? OR slug = ?", query, query).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID returns (nil, nil) when no row has that id.
func FindByID[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var row T
	err := db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CleanIDs trims ids, drops blanks and duplicates, and keeps first-seen order.
func CleanIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CleanStrings trims values and drops blanks.
func CleanStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
