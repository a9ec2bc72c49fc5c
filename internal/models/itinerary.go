package models

// ItemType tags an itinerary item variant.
type ItemType string

const (
	ItemTypeExperience ItemType = "experience"
	ItemTypeTravel     ItemType = "travel"
)

// TourDay is one day of a pre-built tour itinerary.
type TourDay struct {
	Day         int             `json:"day"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
	HotelID     string          `json:"hotel_id,omitempty"`
	Items       []ItineraryItem `json:"items"`
}

// ItineraryItem is either an experience reference or a travel leg,
// selected by Type.
type ItineraryItem struct {
	Type         ItemType `json:"type"`
	Order        int      `json:"order"`
	ExperienceID string   `json:"experience_id,omitempty"`
	Travel       *Travel  `json:"travel,omitempty"`
}

// Travel is a leg between two destinations.
type Travel struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Duration string `json:"duration,omitempty"`
	Timing   string `json:"timing,omitempty"`
	Location string `json:"location,omitempty"`
}

// CustomDay is a guest-composed day on a tour request. It mirrors TourDay
// with flat item fields.
type CustomDay struct {
	Day         int          `json:"day"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	HotelID     string       `json:"hotel_id,omitempty"`
	Items       []CustomItem `json:"items"`
}

type CustomItem struct {
	Type              ItemType `json:"type"`
	Order             int      `json:"order"`
	ExperienceID      string   `json:"experience_id,omitempty"`
	DestinationFromID string   `json:"destination_from_id,omitempty"`
	DestinationToID   string   `json:"destination_to_id,omitempty"`
	Duration          string   `json:"duration,omitempty"`
	Timing            string   `json:"timing,omitempty"`
	Location          string   `json:"location,omitempty"`
}
