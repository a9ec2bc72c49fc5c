package models

type PriceTier string

const (
	PriceTierBudget   PriceTier = "budget"
	PriceTierStandard PriceTier = "standard"
	PriceTierPremium  PriceTier = "premium"
	PriceTierLuxury   PriceTier = "luxury"
)

func (p PriceTier) Valid() bool {
	switch p {
	case "", PriceTierBudget, PriceTierStandard, PriceTierPremium, PriceTierLuxury:
		return true
	}
	return false
}

// HotelModel is an overnight stay that tour days can reference.
type HotelModel struct {
	Entity
	DestinationID string    `json:"destination_id" gorm:"index"`
	Rating        float64   `json:"rating"`
	PriceTier     PriceTier `json:"price_tier"     gorm:"size:16"`
}

func (HotelModel) TableName() string { return "hotels" }
