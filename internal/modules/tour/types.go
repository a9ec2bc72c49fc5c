package tour

import (
	"encoding/json"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
)

type CreateDTO struct {
	catalog.EntityInput
	Category   string          `json:"category"   form:"category"`
	Duration   int             `json:"duration"   form:"duration"`
	Price      float64         `json:"price"      form:"price"`
	Highlights []string        `json:"highlights" form:"-"`
	Days       json.RawMessage `json:"days"       form:"-"`
}

func (d *CreateDTO) jsonFields() map[string]any {
	return map[string]any{"highlights": &d.Highlights}
}

// UpdateDTO leaves Days untouched when it is nil.
type UpdateDTO struct {
	catalog.EntityPatch
	Category   *string         `json:"category"   form:"category"`
	Duration   *int            `json:"duration"   form:"duration"`
	Price      *float64        `json:"price"      form:"price"`
	Highlights *[]string       `json:"highlights" form:"-"`
	Days       json.RawMessage `json:"days"       form:"-"`
}

func (d *UpdateDTO) jsonFields() map[string]any {
	return map[string]any{"highlights": &d.Highlights}
}

// Detail is the public tour page: the tour with items in display order and
// the entities its itinerary references.
type Detail struct {
	*models.TourModel
	DescriptionHTML string                    `json:"description_html"`
	Destinations    []models.DestinationModel `json:"destinations"`
	Experiences     []models.ExperienceModel  `json:"experiences"`
	Hotels          []models.HotelModel       `json:"hotels"`
}
