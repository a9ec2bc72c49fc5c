package itinerary

import (
	"strings"

	"github.com/bhutan-travel/core/internal/models"
)

// FromTourDays normalizes the tour schema, where travel legs are nested.
func FromTourDays(days []models.TourDay) []Day {
	out := make([]Day, 0, len(days))
	for _, d := range days {
		day := Day{Index: d.Day, HotelID: strings.TrimSpace(d.HotelID), Items: make([]Item, 0, len(d.Items))}
		for pos, it := range d.Items {
			var item Item
			switch it.Type {
			case models.ItemTypeExperience:
				item = ExperienceItem(strings.TrimSpace(it.ExperienceID), it.Order)
			case models.ItemTypeTravel:
				item = Item{Kind: models.ItemTypeTravel, Order: it.Order}
				if it.Travel != nil {
					item = TravelItem(strings.TrimSpace(it.Travel.From), strings.TrimSpace(it.Travel.To), it.Order)
					item.Duration = it.Travel.Duration
					item.Timing = it.Travel.Timing
					item.Location = it.Travel.Location
				}
			default:
				item = Item{Kind: it.Type, Order: it.Order}
			}
			item.Position = pos
			day.Items = append(day.Items, item)
		}
		out = append(out, day)
	}
	return out
}

// FromCustomDays normalizes the flat tour-request schema.
func FromCustomDays(days []models.CustomDay) []Day {
	out := make([]Day, 0, len(days))
	for _, d := range days {
		day := Day{Index: d.Day, HotelID: strings.TrimSpace(d.HotelID), Items: make([]Item, 0, len(d.Items))}
		for pos, it := range d.Items {
			var item Item
			switch it.Type {
			case models.ItemTypeExperience:
				item = ExperienceItem(strings.TrimSpace(it.ExperienceID), it.Order)
			case models.ItemTypeTravel:
				item = TravelItem(strings.TrimSpace(it.DestinationFromID), strings.TrimSpace(it.DestinationToID), it.Order)
				item.Duration = it.Duration
				item.Timing = it.Timing
				item.Location = it.Location
			default:
				item = Item{Kind: it.Type, Order: it.Order}
			}
			item.Position = pos
			day.Items = append(day.Items, item)
		}
		out = append(out, day)
	}
	return out
}
