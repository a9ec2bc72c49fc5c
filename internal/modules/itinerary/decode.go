package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bhutan-travel/core/internal/models"
)

// DecodeTourDays strictly decodes a JSON-encoded list of tour days, as sent
// in a form field. Blank input yields an empty itinerary.
func DecodeTourDays(raw []byte) ([]models.TourDay, error) {
	var days []models.TourDay
	if err := decodeStrict(raw, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// DecodeCustomDays strictly decodes a guest-composed itinerary.
func DecodeCustomDays(raw []byte) ([]models.CustomDay, error) {
	var days []models.CustomDay
	if err := decodeStrict(raw, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func decodeStrict(raw []byte, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return malformed(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return malformed(fmt.Errorf("unexpected data after itinerary"))
	}
	return nil
}

func malformed(cause error) ValidationErrors {
	return ValidationErrors{{
		Day:     -1,
		Item:    -1,
		Field:   "days",
		Code:    CodeMalformed,
		Message: fmt.Sprintf("%s: %v", ErrMalformed, cause),
	}}
}
