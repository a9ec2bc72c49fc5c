package destination

import (
	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
)

type CreateDTO struct {
	catalog.EntityInput
	Region        string           `json:"region"         form:"region"`
	Coordinates   *models.GeoPoint `json:"coordinates"    form:"-"`
	Highlights    []string         `json:"highlights"     form:"-"`
	ExperienceIDs []string         `json:"experience_ids" form:"-"`
	HotelIDs      []string         `json:"hotel_ids"      form:"-"`
}

func (d *CreateDTO) jsonFields() map[string]any {
	return map[string]any{
		"coordinates":    &d.Coordinates,
		"highlights":     &d.Highlights,
		"experience_ids": &d.ExperienceIDs,
		"hotel_ids":      &d.HotelIDs,
	}
}

type UpdateDTO struct {
	catalog.EntityPatch
	Region        *string          `json:"region"         form:"region"`
	Coordinates   *models.GeoPoint `json:"coordinates"    form:"-"`
	Highlights    *[]string        `json:"highlights"     form:"-"`
	ExperienceIDs *[]string        `json:"experience_ids" form:"-"`
	HotelIDs      *[]string        `json:"hotel_ids"      form:"-"`
}

func (d *UpdateDTO) jsonFields() map[string]any {
	return map[string]any{
		"coordinates":    &d.Coordinates,
		"highlights":     &d.Highlights,
		"experience_ids": &d.ExperienceIDs,
		"hotel_ids":      &d.HotelIDs,
	}
}

// Detail is the public single-destination view.
type Detail struct {
	*models.DestinationModel
	DescriptionHTML string                   `json:"description_html"`
	Experiences     []models.ExperienceModel `json:"experiences"`
	Hotels          []models.HotelModel      `json:"hotels"`
}
