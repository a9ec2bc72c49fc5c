package tourrequest

import (
	"encoding/json"
	"errors"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/promotion"
)

var (
	ErrNotFound       = errors.New("tour request not found")
	ErrStatusConflict = errors.New("tour request status changed concurrently")
	ErrInvalidStatus  = errors.New("invalid tour request status")
	ErrInvalidInput   = errors.New("invalid tour request")
	ErrUnknownTour    = errors.New("selected tour does not exist")
)

// CreateDTO is a public inquiry. CustomItinerary holds the raw JSON list of
// custom days; it is decoded strictly by the service.
type CreateDTO struct {
	FirstName       string          `json:"first_name" form:"first_name" binding:"required,max=100"`
	LastName        string          `json:"last_name"  form:"last_name"  binding:"max=100"`
	Email           string          `json:"email"      form:"email"      binding:"required,email"`
	Phone           string          `json:"phone"      form:"phone"      binding:"max=40"`
	TravelDate      string          `json:"travel_date" form:"travel_date"`
	Travelers       int             `json:"travelers"  form:"travelers"  binding:"min=0,max=100"`
	Message         string          `json:"message"    form:"message"    binding:"max=5000"`
	TourID          string          `json:"tour_id"    form:"tour_id"`
	CustomItinerary json.RawMessage `json:"custom_itinerary" form:"-"`
}

// UpdateDTO is an admin edit. Status is changed only through Transition.
type UpdateDTO struct {
	FirstName       *string         `json:"first_name"`
	LastName        *string         `json:"last_name"`
	Email           *string         `json:"email" binding:"omitempty,email"`
	Phone           *string         `json:"phone"`
	TravelDate      *string         `json:"travel_date"`
	Travelers       *int            `json:"travelers"`
	Message         *string         `json:"message"`
	TourID          *string         `json:"tour_id"`
	CustomItinerary json.RawMessage `json:"custom_itinerary"`
}

type TransitionDTO struct {
	Status string `json:"status" form:"status" binding:"required"`
}

// ListQuery filters the admin listing.
type ListQuery struct {
	Status models.TourRequestStatus
	Query  string
}

// TransitionResult describes what a status change did.
type TransitionResult struct {
	ID       string                   `json:"id"`
	Previous models.TourRequestStatus `json:"previous"`
	Current  models.TourRequestStatus `json:"current"`
	Changed  bool                     `json:"changed"`
	Promoted bool                     `json:"promoted"`
	Report   *promotion.Report        `json:"report,omitempty"`
}
