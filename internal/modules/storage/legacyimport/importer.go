// Package legacyimport copies the catalog, inquiries and accounts of the
// previous MongoDB-backed site into the relational store.
package legacyimport

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Source yields the raw documents of a collection.
type Source interface {
	Each(ctx context.Context, collection string, fn func(bson.Raw) error) error
}

// CollectionReport counts the outcome for one collection.
type CollectionReport struct {
	Collection string `json:"collection"`
	Read       int    `json:"read"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
}

type Importer struct {
	src    Source
	db     *gorm.DB
	logger *zap.Logger
	dryRun bool
}

type Option func(*Importer)

// WithDryRun maps every document without writing anything.
func WithDryRun(v bool) Option { return func(im *Importer) { im.dryRun = v } }

func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

func New(src Source, db *gorm.DB, opts ...Option) *Importer {
	im := &Importer{src: src, db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(im)
	}
	im.logger = im.logger.Named("legacyimport")
	return im
}

// Run imports every collection, referenced types first. Re-running is
// safe: rows are upserted by their legacy ObjectID.
func (im *Importer) Run(ctx context.Context) ([]CollectionReport, error) {
	steps := []func(context.Context) (CollectionReport, error){
		func(ctx context.Context) (CollectionReport, error) {
			return importCollection(ctx, im, "experiencetypes", mapExperienceType)
		},
		func(ctx context.Context) (CollectionReport, error) {
			return importCollection(ctx, im, "destinations", mapDestination)
		},
		func(ctx context.Context) (CollectionReport, error) {
			return importCollection(ctx, im, "experiences", mapExperience)
		},
		func(ctx context.Context) (CollectionReport, error) {
			return importCollection(ctx, im, "hotels", mapHotel)
		},
		func(ctx context.Context) (CollectionReport, error) {
			return importCollection(ctx, im, "tours", mapTour)
		},
		func(ctx context.Context) (CollectionReport, error) {
			return importCollection(ctx, im, "tourrequests", mapTourRequest)
		},
		func(ctx context.Context) (CollectionReport, error) {
			return importCollection(ctx, im, "users", mapUser)
		},
	}

	reports := make([]CollectionReport, 0, len(steps))
	for _, step := range steps {
		rep, err := step(ctx)
		reports = append(reports, rep)
		if err != nil {
			return reports, fmt.Errorf("import %s: %w", rep.Collection, err)
		}
		im.logger.Info("collection imported",
			zap.String("collection", rep.Collection),
			zap.Int("read", rep.Read),
			zap.Int("imported", rep.Imported),
			zap.Int("skipped", rep.Skipped),
		)
	}
	return reports, nil
}

// importCollection decodes each document into D, maps it to M and upserts
// it. Bad documents are logged and skipped; source and context errors
// abort the collection.
func importCollection[D any, M any](ctx context.Context, im *Importer, name string, mapFn func(D) (M, error)) (CollectionReport, error) {
	rep := CollectionReport{Collection: name}
	err := im.src.Each(ctx, name, func(raw bson.Raw) error {
		rep.Read++
		id := docID(raw)

		var doc D
		if err := bson.Unmarshal(raw, &doc); err != nil {
			im.skip(&rep, id, "decode", err)
			return nil
		}
		row, err := mapFn(doc)
		if err != nil {
			im.skip(&rep, id, "map", err)
			return nil
		}
		if im.dryRun {
			rep.Imported++
			return nil
		}
		if err := im.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			im.skip(&rep, id, "write", err)
			return nil
		}
		rep.Imported++
		return nil
	})
	return rep, err
}

func (im *Importer) skip(rep *CollectionReport, id, stage string, err error) {
	rep.Skipped++
	im.logger.Warn("document skipped",
		zap.String("collection", rep.Collection),
		zap.String("id", id),
		zap.String("stage", stage),
		zap.Error(err),
	)
}

func docID(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return v.String()
}
