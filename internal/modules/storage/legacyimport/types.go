package legacyimport

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref is a document reference as the old site stored it: an ObjectID, its
// hex string, or a populated sub-document carrying _id.
type Ref string

func (r *Ref) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*r = ""
	case bson.TypeObjectID:
		*r = Ref(rv.ObjectID().Hex())
	case bson.TypeString:
		*r = Ref(strings.TrimSpace(rv.StringValue()))
	case bson.TypeEmbeddedDocument:
		id, err := rv.Document().LookupErr("_id")
		if err != nil {
			*r = ""
			return nil
		}
		return r.UnmarshalBSONValue(id.Type, id.Value)
	default:
		return fmt.Errorf("unsupported reference type %s", t)
	}
	return nil
}

func (r Ref) String() string { return string(r) }

// When is a timestamp stored as a BSON date, an ISO string or a unix
// millisecond number.
type When struct {
	time.Time
}

func (w *When) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		w.Time = time.Time{}
	case bson.TypeDateTime:
		w.Time = rv.Time().UTC()
	case bson.TypeTimestamp:
		sec, _ := rv.Timestamp()
		w.Time = time.Unix(int64(sec), 0).UTC()
	case bson.TypeInt64:
		w.Time = time.UnixMilli(rv.Int64()).UTC()
	case bson.TypeDouble:
		w.Time = time.UnixMilli(int64(rv.Double())).UTC()
	case bson.TypeString:
		parsed, ok := parseTimeString(rv.StringValue())
		if !ok {
			return fmt.Errorf("unparseable date %q", rv.StringValue())
		}
		w.Time = parsed
	default:
		return fmt.Errorf("unsupported date type %s", t)
	}
	return nil
}

func (w When) Ptr() *time.Time {
	if w.IsZero() {
		return nil
	}
	t := w.Time
	return &t
}

func parseTimeString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type legacyPoint struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

// Common holds the fields every catalog collection shares. It is exported
// so the bson codec can inline it.
type Common struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	Image       string             `bson:"image"`
	Priority    int                `bson:"priority"`
	CreatedAt   When               `bson:"createdAt"`
	UpdatedAt   When               `bson:"updatedAt"`
}

type legacyDestination struct {
	Common `bson:",inline"`
	Region      string       `bson:"region"`
	Coordinates *legacyPoint `bson:"coordinates"`
	Highlights  []string     `bson:"highlights"`
	Experiences []Ref        `bson:"experiences"`
	Hotels      []Ref        `bson:"hotels"`
}

type legacyExperienceType struct {
	Common `bson:",inline"`
	DisplayOrder int `bson:"displayOrder"`
}

type legacyExperience struct {
	Common `bson:",inline"`
	Category     Ref          `bson:"category"`
	Duration     string       `bson:"duration"`
	Difficulty   string       `bson:"difficulty"`
	Coordinates  *legacyPoint `bson:"coordinates"`
	Destinations []Ref        `bson:"destinations"`
	Gallery      []string     `bson:"gallery"`
	StartDate    When         `bson:"startDate"`
	EndDate      When         `bson:"endDate"`
}

type legacyHotel struct {
	Common `bson:",inline"`
	Destination Ref     `bson:"destination"`
	Rating      float64 `bson:"rating"`
	PriceTier   string  `bson:"priceTier"`
	PriceRange  string  `bson:"priceRange"`
}

type legacyTravel struct {
	From     Ref    `bson:"from"`
	To       Ref    `bson:"to"`
	Duration string `bson:"duration"`
	Timing   string `bson:"timing"`
	Location string `bson:"location"`
}

// legacyItem covers both the nested travel shape of tours and the flat
// shape of custom itineraries.
type legacyItem struct {
	Type              string        `bson:"type"`
	Order             int           `bson:"order"`
	ExperienceID      Ref           `bson:"experienceId"`
	Travel            *legacyTravel `bson:"travel"`
	DestinationFromID Ref           `bson:"destinationFromId"`
	DestinationToID   Ref           `bson:"destinationToId"`
	Duration          string        `bson:"duration"`
	Timing            string        `bson:"timing"`
	Location          string        `bson:"location"`
}

type legacyDay struct {
	Day         int          `bson:"day"`
	Title       string       `bson:"title"`
	Description string       `bson:"description"`
	Image       string       `bson:"image"`
	HotelID     Ref          `bson:"hotelId"`
	Items       []legacyItem `bson:"items"`
}

type legacyTour struct {
	Common `bson:",inline"`
	Category   string      `bson:"category"`
	Duration   int         `bson:"duration"`
	Price      float64     `bson:"price"`
	Highlights []string    `bson:"highlights"`
	Days       []legacyDay `bson:"days"`
}

type legacyTourRequest struct {
	ID              primitive.ObjectID `bson:"_id"`
	FirstName       string             `bson:"firstName"`
	LastName        string             `bson:"lastName"`
	Email           string             `bson:"email"`
	Phone           string             `bson:"phone"`
	TravelDate      When               `bson:"travelDate"`
	Travelers       int                `bson:"travelers"`
	Message         string             `bson:"message"`
	Status          string             `bson:"status"`
	TourID          Ref                `bson:"tourId"`
	TourName        string             `bson:"tourName"`
	CustomItinerary []legacyDay        `bson:"customItinerary"`
	CreatedAt       When               `bson:"createdAt"`
	UpdatedAt       When               `bson:"updatedAt"`
}

type legacyUser struct {
	ID        primitive.ObjectID `bson:"_id"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Password  string             `bson:"password"`
	CreatedAt When               `bson:"createdAt"`
	UpdatedAt When               `bson:"updatedAt"`
}
