// Package itinerary validates and traverses day-by-day trip plans. Both
// stored schemas (tour days with nested travel legs and the flat custom
// days of a tour request) are normalized into Day/Item before any rule runs.
package itinerary

import (
	"sort"

	"github.com/bhutan-travel/core/internal/models"
)

// Item is the canonical itinerary entry. Kind selects which fields apply:
// ExperienceID for experiences, From/To for travel legs.
type Item struct {
	Kind         models.ItemType
	Order        int
	Position     int
	ExperienceID string
	From         string
	To           string
	Duration     string
	Timing       string
	Location     string
}

// ExperienceItem builds an experience entry.
func ExperienceItem(experienceID string, order int) Item {
	return Item{Kind: models.ItemTypeExperience, Order: order, ExperienceID: experienceID}
}

// TravelItem builds a travel leg between two destinations.
func TravelItem(from, to string, order int) Item {
	return Item{Kind: models.ItemTypeTravel, Order: order, From: from, To: to}
}

// Day is one itinerary day. Index is the 1-based day number as submitted.
type Day struct {
	Index   int
	HotelID string
	Items   []Item
}

// Set is an unordered collection of ids.
type Set map[string]struct{}

// Add inserts id, ignoring blanks.
func (s Set) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the ids in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// References are the entity ids an itinerary touches, each listed once.
type References struct {
	ExperienceIDs  Set
	DestinationIDs Set
	HotelIDs       Set
}

func NewReferences() References {
	return References{
		ExperienceIDs:  Set{},
		DestinationIDs: Set{},
		HotelIDs:       Set{},
	}
}

// Union returns a new References holding the ids of both sides.
func (r References) Union(other References) References {
	out := NewReferences()
	for _, src := range []References{r, other} {
		for id := range src.ExperienceIDs {
			out.ExperienceIDs.Add(id)
		}
		for id := range src.DestinationIDs {
			out.DestinationIDs.Add(id)
		}
		for id := range src.HotelIDs {
			out.HotelIDs.Add(id)
		}
	}
	return out
}

// Total is the number of distinct references across all kinds.
func (r References) Total() int {
	return r.ExperienceIDs.Len() + r.DestinationIDs.Len() + r.HotelIDs.Len()
}
