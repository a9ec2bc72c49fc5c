package legacyimport

import (
	"context"
	"testing"
	"time"

	"github.com/bhutan-travel/core/internal/database/dbtest"
	"github.com/bhutan-travel/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memSource map[string][]bson.Raw

func (m memSource) Each(ctx context.Context, collection string, fn func(bson.Raw) error) error {
	for _, raw := range m[collection] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}

func doc(t *testing.T, v bson.M) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	return raw
}

func decode[T any](t *testing.T, v bson.M) T {
	t.Helper()
	var out T
	require.NoError(t, bson.Unmarshal(doc(t, v), &out))
	return out
}

var (
	paroID    = primitive.NewObjectID()
	thimphuID = primitive.NewObjectID()
	hikeID    = primitive.NewObjectID()
	hotelID   = primitive.NewObjectID()
	typeID    = primitive.NewObjectID()
)

func TestRefAcceptsEveryShape(t *testing.T) {
	d := decode[legacyDestination](t, bson.M{
		"_id":   paroID,
		"title": "Paro",
		"experiences": bson.A{
			hikeID,
			hikeID.Hex(),
			bson.M{"_id": thimphuID, "title": "populated"},
			nil,
		},
	})
	assert.Equal(t, []Ref{Ref(hikeID.Hex()), Ref(hikeID.Hex()), Ref(thimphuID.Hex()), ""}, d.Experiences)

	m, err := mapDestination(d)
	require.NoError(t, err)
	assert.Equal(t, []string{hikeID.Hex(), thimphuID.Hex()}, m.ExperienceIDs, "blank and duplicate refs are dropped")
}

func TestWhenAcceptsDatesStringsAndMillis(t *testing.T) {
	when := time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC)
	e := decode[legacyExperience](t, bson.M{
		"_id":       hikeID,
		"title":     "Thimphu Tshechu",
		"startDate": "2024-09-14",
		"endDate":   when.Add(48 * time.Hour).UnixMilli(),
		"createdAt": primitive.NewDateTimeFromTime(when),
	})
	assert.True(t, e.StartDate.Equal(when))
	assert.True(t, e.EndDate.Equal(when.Add(48*time.Hour)))
	assert.True(t, e.CreatedAt.Equal(when))

	var bad legacyExperience
	assert.Error(t, bson.Unmarshal(doc(t, bson.M{"_id": hikeID, "startDate": "next week"}), &bad))
}

func TestMapEntity(t *testing.T) {
	d := decode[legacyHotel](t, bson.M{
		"_id":        hotelID,
		"name":       "Uma Paro",
		"priority":   -3,
		"rating":     4.5,
		"priceRange": "Luxury",
		"destination": bson.M{
			"_id": paroID,
		},
	})
	h, err := mapHotel(d)
	require.NoError(t, err)
	assert.Equal(t, hotelID.Hex(), h.ID)
	assert.Equal(t, "Uma Paro", h.Title, "name is the fallback title")
	assert.Equal(t, "uma-paro", h.Slug)
	assert.Zero(t, h.Priority)
	assert.Equal(t, models.PriceTierLuxury, h.PriceTier)
	assert.Equal(t, paroID.Hex(), h.DestinationID)

	_, err = mapDestination(legacyDestination{})
	assert.ErrorIs(t, err, errNoTitle)
}

func TestMapExperience(t *testing.T) {
	e, err := mapExperience(decode[legacyExperience](t, bson.M{
		"_id":          hikeID,
		"title":        "Tiger's Nest Hike",
		"slug":         "Tigers Nest",
		"category":     typeID,
		"difficulty":   "moderate",
		"destinations": bson.A{paroID},
		"coordinates":  bson.M{"lat": 27.49, "lng": 89.36},
		"startDate":    "2024-10-02",
		"endDate":      "2024-10-01",
	}))
	require.NoError(t, err)
	assert.Equal(t, "tigers-nest", e.Slug)
	assert.Equal(t, typeID.Hex(), e.CategoryID)
	assert.Equal(t, models.DifficultyModerate, e.Difficulty)
	assert.Equal(t, []string{paroID.Hex()}, e.DestinationIDs)
	require.NotNil(t, e.Coordinates)
	assert.NotNil(t, e.StartDate)
	assert.Nil(t, e.EndDate, "an end before the start is dropped")
}

func TestMapTourBothTravelShapes(t *testing.T) {
	tour, err := mapTour(decode[legacyTour](t, bson.M{
		"_id":   primitive.NewObjectID(),
		"title": "Western Bhutan",
		"price": 2400.0,
		"days": bson.A{
			bson.M{
				"day":     2,
				"hotelId": hotelID,
				"items": bson.A{
					bson.M{"type": "experience", "order": 1, "experienceId": hikeID},
				},
			},
			bson.M{
				"day": 1,
				"items": bson.A{
					bson.M{"type": "travel", "order": 1, "travel": bson.M{"from": paroID, "to": thimphuID, "duration": "1h"}},
					bson.M{"order": 2, "destinationFromId": thimphuID.Hex(), "destinationToId": paroID.Hex()},
				},
			},
		},
	}))
	require.NoError(t, err)
	require.Len(t, tour.Days, 2)
	assert.Equal(t, 2, tour.Duration, "duration defaults to the day count")

	day1 := tour.Days[0]
	assert.Equal(t, 1, day1.Day)
	require.Len(t, day1.Items, 2)
	assert.Equal(t, models.ItemTypeTravel, day1.Items[0].Type)
	assert.Equal(t, &models.Travel{From: paroID.Hex(), To: thimphuID.Hex(), Duration: "1h"}, day1.Items[0].Travel)
	assert.Equal(t, models.ItemTypeTravel, day1.Items[1].Type, "flat leg fields imply travel")
	assert.Equal(t, thimphuID.Hex(), day1.Items[1].Travel.From)

	day2 := tour.Days[1]
	assert.Equal(t, hotelID.Hex(), day2.HotelID)
	assert.Equal(t, hikeID.Hex(), day2.Items[0].ExperienceID)
	assert.Nil(t, day2.Items[0].Travel)
}

func TestMapTourRequest(t *testing.T) {
	updated := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	r, err := mapTourRequest(decode[legacyTourRequest](t, bson.M{
		"_id":        primitive.NewObjectID(),
		"firstName":  "Sonam",
		"email":      " Sonam@Example.com ",
		"status":     "Approved",
		"travelDate": "2024-04-10",
		"travelers":  0,
		"updatedAt":  primitive.NewDateTimeFromTime(updated),
		"customItinerary": bson.A{
			bson.M{"day": 1, "items": bson.A{
				bson.M{"type": "travel", "destinationFromId": paroID, "destinationToId": thimphuID},
				bson.M{"type": "experience", "experienceId": hikeID.Hex()},
			}},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "sonam@example.com", r.Email)
	assert.Equal(t, models.TourRequestApproved, r.Status)
	assert.Equal(t, 1, r.Travelers)
	require.NotNil(t, r.TravelDate)
	require.NotNil(t, r.PromotedAt)
	assert.True(t, r.PromotedAt.Equal(updated))
	require.Len(t, r.CustomItinerary, 1)
	items := r.CustomItinerary[0].Items
	assert.Equal(t, paroID.Hex(), items[0].DestinationFromID)
	assert.Equal(t, thimphuID.Hex(), items[0].DestinationToID)
	assert.Equal(t, hikeID.Hex(), items[1].ExperienceID)

	odd, err := mapTourRequest(legacyTourRequest{Email: "a@b.bt", Status: "lost"})
	require.NoError(t, err)
	assert.Equal(t, models.TourRequestPending, odd.Status)
	assert.Nil(t, odd.PromotedAt)

	_, err = mapTourRequest(legacyTourRequest{})
	assert.ErrorIs(t, err, errNoEmail)
}

func TestMapUser(t *testing.T) {
	u, err := mapUser(legacyUser{ID: primitive.NewObjectID(), Email: "Karma@Example.bt", Password: "$2a$10$abcdefghijklmnopqrstuu"})
	require.NoError(t, err)
	assert.Equal(t, "karma", u.Username)
	assert.Equal(t, "karma@example.bt", u.Email)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = mapUser(legacyUser{Email: "a@b.bt", Password: "plaintext"})
	assert.ErrorIs(t, err, errUnusablePassword)
}

func TestRunUpsertsAndSkips(t *testing.T) {
	db := dbtest.Open(t)
	src := memSource{
		"destinations": {
			doc(t, bson.M{"_id": paroID, "title": "Paro", "priority": 4}),
			doc(t, bson.M{"_id": thimphuID, "title": "Thimphu"}),
			doc(t, bson.M{"_id": primitive.NewObjectID()}),
		},
		"experiences": {
			doc(t, bson.M{"_id": hikeID, "title": "Tiger's Nest", "startDate": "someday"}),
		},
		"users": {
			doc(t, bson.M{"_id": primitive.NewObjectID(), "username": "karma", "email": "karma@example.bt", "password": "$2a$10$abcdefghijklmnopqrstuu"}),
		},
	}

	reports, err := New(src, db).Run(t.Context())
	require.NoError(t, err)
	require.Len(t, reports, 7)

	byName := map[string]CollectionReport{}
	for _, r := range reports {
		byName[r.Collection] = r
	}
	assert.Equal(t, CollectionReport{Collection: "destinations", Read: 3, Imported: 2, Skipped: 1}, byName["destinations"])
	assert.Equal(t, CollectionReport{Collection: "experiences", Read: 1, Skipped: 1}, byName["experiences"])
	assert.Equal(t, 1, byName["users"].Imported)

	var paro models.DestinationModel
	require.NoError(t, db.First(&paro, "id = ?", paroID.Hex()).Error)
	assert.Equal(t, 4, paro.Priority)

	src["destinations"][0] = doc(t, bson.M{"_id": paroID, "title": "Paro Valley", "slug": "paro", "priority": 9})
	_, err = New(src, db).Run(t.Context())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.DestinationModel{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "re-running updates in place")
	require.NoError(t, db.First(&paro, "id = ?", paroID.Hex()).Error)
	assert.Equal(t, "Paro Valley", paro.Title)
	assert.Equal(t, 9, paro.Priority)
}

func TestDryRunWritesNothing(t *testing.T) {
	db := dbtest.Open(t)
	src := memSource{"destinations": {doc(t, bson.M{"_id": paroID, "title": "Paro"})}}

	reports, err := New(src, db, WithDryRun(true)).Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, reports[1].Imported)

	var count int64
	require.NoError(t, db.Model(&models.DestinationModel{}).Count(&count).Error)
	assert.Zero(t, count)
}
