package models

// TourModel is a pre-packaged trip with a day-by-day itinerary.
type TourModel struct {
	Entity
	Category   string    `json:"category"   gorm:"index"`
	Duration   int       `json:"duration"`
	Price      float64   `json:"price"`
	Highlights []string  `json:"highlights" gorm:"type:longtext;serializer:json"`
	Days       []TourDay `json:"days"       gorm:"type:longtext;serializer:json"`
}

func (TourModel) TableName() string { return "tours" }
