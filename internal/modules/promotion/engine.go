// Package promotion raises the priority of every entity an approved tour
// request touches. Increments are atomic per document; the walk over all
// targets is not.
package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/itinerary"
	"go.uber.org/zap"
)

// Collection names a store collection whose documents carry a priority.
type Collection string

const (
	Tours        Collection = "tours"
	Destinations Collection = "destinations"
	Experiences  Collection = "experiences"
	Hotels       Collection = "hotels"
)

// PriorityField is the only field the engine ever touches.
const PriorityField = "priority"

// Counter applies an atomic in-place add on one document. It reports false
// when no document with that id exists.
type Counter interface {
	Increment(ctx context.Context, collection Collection, id, field string, delta int) (bool, error)
}

// TourLoader fetches a tour's stored itinerary. found is false for unknown ids.
type TourLoader interface {
	LoadTourDays(ctx context.Context, id string) (days []models.TourDay, found bool, err error)
}

// Target is one document to promote.
type Target struct {
	Collection Collection `json:"collection"`
	ID         string     `json:"id"`
}

// Failure records an increment that did not apply.
type Failure struct {
	Target
	Err error `json:"-"`
}

// Report summarizes one promotion run.
type Report struct {
	RequestID string        `json:"request_id"`
	Targets   []Target      `json:"targets"`
	Applied   []Target      `json:"applied"`
	Missing   []Target      `json:"missing"`
	Failures  []Failure     `json:"failures"`
	Duration  time.Duration `json:"duration"`
}

// PartialFailureError is returned when at least one increment failed.
// Increments listed in Report.Applied stay in place.
type PartialFailureError struct {
	Failures []Failure
}

func (e *PartialFailureError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s/%s: %v", f.Collection, f.ID, f.Err))
	}
	return fmt.Sprintf("promotion partially failed (%d): %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

type Engine struct {
	counter Counter
	tours   TourLoader
	logger  *zap.Logger
}

func NewEngine(counter Counter, tours TourLoader, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{counter: counter, tours: tours, logger: logger}
}

// Targets resolves the deduplicated set of documents a request references:
// the selected tour and everything in its itinerary, plus everything in the
// custom itinerary. Order is deterministic. A tour whose itinerary could not
// be loaded is still a target and is reported as a failure; the custom
// itinerary is collected either way.
func (e *Engine) Targets(ctx context.Context, req *models.TourRequestModel) ([]Target, []Failure) {
	refs := itinerary.NewReferences()
	var tourIDs []string
	var failures []Failure

	if tourID := strings.TrimSpace(req.TourID); tourID != "" {
		tourIDs = append(tourIDs, tourID)
		days, found, err := e.tours.LoadTourDays(ctx, tourID)
		switch {
		case err != nil:
			e.logger.Warn("load tour itinerary failed", zap.String("tour_id", tourID), zap.Error(err))
			failures = append(failures, Failure{
				Target: Target{Collection: Tours, ID: tourID},
				Err:    fmt.Errorf("load tour %s: %w", tourID, err),
			})
		case found:
			refs = refs.Union(itinerary.CollectReferences(itinerary.FromTourDays(days)))
		}
	}
	if len(req.CustomItinerary) > 0 {
		refs = refs.Union(itinerary.CollectReferences(itinerary.FromCustomDays(req.CustomItinerary)))
	}

	targets := make([]Target, 0, len(tourIDs)+refs.Total())
	for _, id := range tourIDs {
		targets = append(targets, Target{Collection: Tours, ID: id})
	}
	for _, id := range refs.DestinationIDs.Sorted() {
		targets = append(targets, Target{Collection: Destinations, ID: id})
	}
	for _, id := range refs.ExperienceIDs.Sorted() {
		targets = append(targets, Target{Collection: Experiences, ID: id})
	}
	for _, id := range refs.HotelIDs.Sorted() {
		targets = append(targets, Target{Collection: Hotels, ID: id})
	}
	return targets, failures
}

// Promote increments priority by one on every target of req. A failed
// increment is recorded and the walk moves on; nothing is rolled back.
// When any increment failed the returned error is a *PartialFailureError
// and the report is still populated.
func (e *Engine) Promote(ctx context.Context, req *models.TourRequestModel) (*Report, error) {
	start := time.Now()
	report := &Report{RequestID: req.ID}

	targets, loadFailures := e.Targets(ctx, req)
	report.Targets = targets
	report.Failures = append(report.Failures, loadFailures...)

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, Failure{Target: t, Err: err})
			continue
		}
		ok, err := e.counter.Increment(ctx, t.Collection, t.ID, PriorityField, 1)
		switch {
		case err != nil:
			e.logger.Warn("priority increment failed",
				zap.String("collection", string(t.Collection)),
				zap.String("id", t.ID),
				zap.Error(err))
			report.Failures = append(report.Failures, Failure{Target: t, Err: err})
		case !ok:
			report.Missing = append(report.Missing, t)
		default:
			report.Applied = append(report.Applied, t)
		}
	}
	report.Duration = time.Since(start)

	e.logger.Info("tour request promoted",
		zap.String("request_id", req.ID),
		zap.Int("targets", len(report.Targets)),
		zap.Int("applied", len(report.Applied)),
		zap.Int("missing", len(report.Missing)),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("took", report.Duration))

	if len(report.Failures) > 0 {
		return report, &PartialFailureError{Failures: report.Failures}
	}
	return report, nil
}

// IsPartial reports whether err came from a run that applied some increments.
func IsPartial(err error) bool {
	var pf *PartialFailureError
	return errors.As(err, &pf)
}
