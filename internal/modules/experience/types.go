package experience

import (
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
)

const dateLayout = "2006-01-02"

type CreateDTO struct {
	catalog.EntityInput
	CategoryID     string           `json:"category_id"     form:"category_id"`
	Duration       string           `json:"duration"        form:"duration"`
	Difficulty     string           `json:"difficulty"      form:"difficulty"`
	StartDate      string           `json:"start_date"      form:"start_date"`
	EndDate        string           `json:"end_date"        form:"end_date"`
	Coordinates    *models.GeoPoint `json:"coordinates"     form:"-"`
	DestinationIDs []string         `json:"destination_ids" form:"-"`
	Gallery        []string         `json:"gallery"         form:"-"`
}

func (d *CreateDTO) jsonFields() map[string]any {
	return map[string]any{
		"coordinates":     &d.Coordinates,
		"destination_ids": &d.DestinationIDs,
		"gallery":         &d.Gallery,
	}
}

type UpdateDTO struct {
	catalog.EntityPatch
	CategoryID     *string          `json:"category_id"     form:"category_id"`
	Duration       *string          `json:"duration"        form:"duration"`
	Difficulty     *string          `json:"difficulty"      form:"difficulty"`
	StartDate      *string          `json:"start_date"      form:"start_date"`
	EndDate        *string          `json:"end_date"        form:"end_date"`
	Coordinates    *models.GeoPoint `json:"coordinates"     form:"-"`
	DestinationIDs *[]string        `json:"destination_ids" form:"-"`
	Gallery        *[]string        `json:"gallery"         form:"-"`
}

func (d *UpdateDTO) jsonFields() map[string]any {
	return map[string]any{
		"coordinates":     &d.Coordinates,
		"destination_ids": &d.DestinationIDs,
		"gallery":         &d.Gallery,
	}
}

// Filter narrows public listings.
type Filter struct {
	Category      string
	Difficulty    models.Difficulty
	DestinationID string
}

type Detail struct {
	*models.ExperienceModel
	DescriptionHTML string                      `json:"description_html"`
	Category        *models.ExperienceTypeModel `json:"category"`
	Destinations    []models.DestinationModel   `json:"destinations"`
}
