package models

import "time"

type Difficulty string

const (
	DifficultyEasy        Difficulty = "Easy"
	DifficultyModerate    Difficulty = "Moderate"
	DifficultyChallenging Difficulty = "Challenging"
)

// Valid reports whether d is one of the known levels. Empty is valid (unset).
func (d Difficulty) Valid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyModerate, DifficultyChallenging:
		return true
	}
	return false
}

// ExperienceModel is a bookable activity, optionally a dated festival.
type ExperienceModel struct {
	Entity
	CategoryID     string     `json:"category_id"     gorm:"index"`
	Duration       string     `json:"duration"`
	Difficulty     Difficulty `json:"difficulty"      gorm:"size:16"`
	Coordinates    *GeoPoint  `json:"coordinates"     gorm:"type:text;serializer:json"`
	DestinationIDs []string   `json:"destination_ids" gorm:"type:longtext;serializer:json"`
	Gallery        []string   `json:"gallery"         gorm:"type:longtext;serializer:json"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

func (ExperienceModel) TableName() string { return "experiences" }

// ExperienceTypeModel groups experiences into listing categories.
type ExperienceTypeModel struct {
	Entity
	DisplayOrder int `json:"display_order" gorm:"index;not null;default:0"`
}

func (ExperienceTypeModel) TableName() string { return "experience_types" }
