package models

// DestinationModel is a place guests can visit or travel between.
type DestinationModel struct {
	Entity
	Region        string    `json:"region"         gorm:"index"`
	Coordinates   *GeoPoint `json:"coordinates"    gorm:"type:text;serializer:json"`
	Highlights    []string  `json:"highlights"     gorm:"type:longtext;serializer:json"`
	ExperienceIDs []string  `json:"experience_ids" gorm:"type:longtext;serializer:json"`
	HotelIDs      []string  `json:"hotel_ids"      gorm:"type:longtext;serializer:json"`
}

func (DestinationModel) TableName() string { return "destinations" }
