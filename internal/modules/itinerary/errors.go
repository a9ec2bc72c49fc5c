package itinerary

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a validation failure.
type Code string

const (
	CodeMalformed             Code = "malformed"
	CodeInvalidDay            Code = "invalid_day"
	CodeDayOutOfOrder         Code = "day_out_of_order"
	CodeBadTag                Code = "bad_tag"
	CodeMissingExperience     Code = "missing_experience"
	CodeMissingTravelEndpoint Code = "missing_travel_endpoint"
	CodeDegenerateTravel      Code = "degenerate_travel"
)

var (
	ErrMalformed             = errors.New("itinerary is malformed")
	ErrInvalidDay            = errors.New("day index must be positive")
	ErrDayOutOfOrder         = errors.New("days must be in non-decreasing order")
	ErrBadTag                = errors.New("unknown item type")
	ErrMissingExperience     = errors.New("experience item needs an experience id")
	ErrMissingTravelEndpoint = errors.New("travel item needs both from and to destinations")
	ErrDegenerateTravel      = errors.New("travel item cannot start and end at the same destination")
)

var codeErrors = map[Code]error{
	CodeMalformed:             ErrMalformed,
	CodeInvalidDay:            ErrInvalidDay,
	CodeDayOutOfOrder:         ErrDayOutOfOrder,
	CodeBadTag:                ErrBadTag,
	CodeMissingExperience:     ErrMissingExperience,
	CodeMissingTravelEndpoint: ErrMissingTravelEndpoint,
	CodeDegenerateTravel:      ErrDegenerateTravel,
}

// FieldError points at one offending day (and item, when Item >= 0) by
// zero-based array position.
type FieldError struct {
	Day     int    `json:"day"`
	Item    int    `json:"item"`
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	switch {
	case e.Day < 0:
		return e.Message
	case e.Item < 0:
		return fmt.Sprintf("day %d: %s", e.Day+1, e.Message)
	default:
		return fmt.Sprintf("day %d, item %d: %s", e.Day+1, e.Item+1, e.Message)
	}
}

func (e FieldError) Unwrap() error { return codeErrors[e.Code] }

// ValidationErrors is every problem found in one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}

// Has reports whether any entry carries code.
func (v ValidationErrors) Has(code Code) bool {
	for _, e := range v {
		if e.Code == code {
			return true
		}
	}
	return false
}

func newFieldError(day, item int, field string, code Code) FieldError {
	return FieldError{Day: day, Item: item, Field: field, Code: code, Message: codeErrors[code].Error()}
}
