package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type TourRequestStatus string

const (
	TourRequestPending  TourRequestStatus = "pending"
	TourRequestApproved TourRequestStatus = "approved"
	TourRequestRejected TourRequestStatus = "rejected"
	TourRequestArchived TourRequestStatus = "archived"
)

// tourRequestTransitions is the lifecycle graph. Every state may move to any
// other; staying put is not a transition.
var tourRequestTransitions = map[TourRequestStatus][]TourRequestStatus{
	TourRequestPending:  {TourRequestApproved, TourRequestRejected, TourRequestArchived},
	TourRequestApproved: {TourRequestPending, TourRequestRejected, TourRequestArchived},
	TourRequestRejected: {TourRequestPending, TourRequestApproved, TourRequestArchived},
	TourRequestArchived: {TourRequestPending, TourRequestApproved, TourRequestRejected},
}

func (s TourRequestStatus) IsValid() bool {
	_, ok := tourRequestTransitions[s]
	return ok
}

// CanTransitionTo reports whether target is reachable in one step.
func (s TourRequestStatus) CanTransitionTo(target TourRequestStatus) bool {
	for _, t := range tourRequestTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s TourRequestStatus) String() string {
	return string(s)
}

// ParseTourRequestStatus accepts a status name in any case.
func ParseTourRequestStatus(raw string) (TourRequestStatus, error) {
	status := TourRequestStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid tour request status: %q", raw)
	}
	return status, nil
}

// TourRequestModel is a guest inquiry for either a pre-packaged tour
// (TourID) or a custom itinerary.
type TourRequestModel struct {
	Base
	FirstName       string            `json:"first_name"       gorm:"not null"`
	LastName        string            `json:"last_name"`
	Email           string            `json:"email"            gorm:"index;not null"`
	Phone           string            `json:"phone"`
	TravelDate      *datatypes.Date   `json:"travel_date"`
	Travelers       int               `json:"travelers"        gorm:"not null;default:1"`
	Message         string            `json:"message"          gorm:"type:text"`
	Status          TourRequestStatus `json:"status"           gorm:"size:16;index;not null;default:'pending'"`
	TourID          string            `json:"tour_id"          gorm:"index"`
	TourName        string            `json:"tour_name"`
	CustomItinerary []CustomDay       `json:"custom_itinerary" gorm:"type:longtext;serializer:json"`
	PromotedAt      *time.Time        `json:"promoted_at"`
}

func (TourRequestModel) TableName() string { return "tour_requests" }

// FullName joins first and last name for display.
func (r *TourRequestModel) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
