package itinerary

import (
	"cmp"
	"slices"

	"github.com/bhutan-travel/core/internal/models"
)

// SortedItems returns the day's items by ascending Order. Equal orders keep
// their submitted position. The input is never modified.
func SortedItems(day Day) []Item {
	items := slices.Clone(day.Items)
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return items
}

// SortTourItems orders stored tour items for display, stable on ties.
func SortTourItems(items []models.ItineraryItem) []models.ItineraryItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.ItineraryItem) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

// CollectReferences gathers every experience, destination and hotel id the
// days mention. Travel legs contribute both endpoints; a day hotel counts too.
func CollectReferences(days []Day) References {
	refs := NewReferences()
	for _, day := range days {
		refs.HotelIDs.Add(day.HotelID)
		for _, item := range day.Items {
			switch item.Kind {
			case models.ItemTypeExperience:
				refs.ExperienceIDs.Add(item.ExperienceID)
			case models.ItemTypeTravel:
				refs.DestinationIDs.Add(item.From)
				refs.DestinationIDs.Add(item.To)
			}
		}
	}
	return refs
}
