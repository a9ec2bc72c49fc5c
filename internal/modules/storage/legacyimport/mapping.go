package legacyimport

import (
	"errors"
	"sort"
	"strings"

	"github.com/bhutan-travel/core/internal/models"
	"github.com/bhutan-travel/core/internal/modules/catalog"
	"github.com/bhutan-travel/core/internal/modules/hotel"
	"github.com/bhutan-travel/core/internal/pkg/slug"
	"gorm.io/datatypes"
)

var (
	errNoTitle          = errors.New("document has no title")
	errNoEmail          = errors.New("document has no email")
	errUnusablePassword = errors.New("password is not a bcrypt hash")
)

func mapBase(id string, created, updated When) models.Base {
	b := models.Base{ID: id, CreatedAt: created.Time, UpdatedAt: updated.Time}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	return b
}

func mapEntity(c Common) (models.Entity, error) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = strings.TrimSpace(c.Name)
	}
	if title == "" {
		return models.Entity{}, errNoTitle
	}
	s := slug.Make(c.Slug)
	if s == "" {
		s = slug.Make(title)
	}
	priority := c.Priority
	if priority < 0 {
		priority = 0
	}
	return models.Entity{
		Base:        mapBase(c.ID.Hex(), c.CreatedAt, c.UpdatedAt),
		Slug:        s,
		Title:       title,
		Description: c.Description,
		Image:       strings.TrimSpace(c.Image),
		Priority:    priority,
	}, nil
}

func mapPoint(p *legacyPoint) *models.GeoPoint {
	if p == nil {
		return nil
	}
	g := models.GeoPoint{Lat: p.Lat, Lng: p.Lng}
	if !g.Valid() || (g.Lat == 0 && g.Lng == 0) {
		return nil
	}
	return &g
}

func refs(in []Ref) []string {
	out := make([]string, len(in))
	for i, r := range in {
		out[i] = r.String()
	}
	return catalog.CleanIDs(out)
}

func mapDestination(d legacyDestination) (models.DestinationModel, error) {
	e, err := mapEntity(d.Common)
	if err != nil {
		return models.DestinationModel{}, err
	}
	return models.DestinationModel{
		Entity:        e,
		Region:        strings.TrimSpace(d.Region),
		Coordinates:   mapPoint(d.Coordinates),
		Highlights:    catalog.CleanStrings(d.Highlights),
		ExperienceIDs: refs(d.Experiences),
		HotelIDs:      refs(d.Hotels),
	}, nil
}

func mapExperienceType(d legacyExperienceType) (models.ExperienceTypeModel, error) {
	e, err := mapEntity(d.Common)
	if err != nil {
		return models.ExperienceTypeModel{}, err
	}
	return models.ExperienceTypeModel{Entity: e, DisplayOrder: d.DisplayOrder}, nil
}

func mapExperience(d legacyExperience) (models.ExperienceModel, error) {
	e, err := mapEntity(d.Common)
	if err != nil {
		return models.ExperienceModel{}, err
	}
	m := models.ExperienceModel{
		Entity:         e,
		CategoryID:     d.Category.String(),
		Duration:       strings.TrimSpace(d.Duration),
		Difficulty:     mapDifficulty(d.Difficulty),
		Coordinates:    mapPoint(d.Coordinates),
		DestinationIDs: refs(d.Destinations),
		Gallery:        catalog.CleanStrings(d.Gallery),
		StartDate:      d.StartDate.Ptr(),
		EndDate:        d.EndDate.Ptr(),
	}
	if m.StartDate != nil && m.EndDate != nil && m.EndDate.Before(*m.StartDate) {
		m.EndDate = nil
	}
	return m, nil
}

func mapDifficulty(raw string) models.Difficulty {
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyModerate, models.DifficultyChallenging} {
		if strings.EqualFold(strings.TrimSpace(raw), string(d)) {
			return d
		}
	}
	return ""
}

func mapHotel(d legacyHotel) (models.HotelModel, error) {
	e, err := mapEntity(d.Common)
	if err != nil {
		return models.HotelModel{}, err
	}
	raw := d.PriceTier
	if strings.TrimSpace(raw) == "" {
		raw = d.PriceRange
	}
	tier, err := hotel.ParsePriceTier(raw)
	if err != nil {
		tier = ""
	}
	rating := d.Rating
	if rating < 0 || rating > 5 {
		rating = 0
	}
	return models.HotelModel{
		Entity:        e,
		DestinationID: d.Destination.String(),
		Rating:        rating,
		PriceTier:     tier,
	}, nil
}

func mapTour(d legacyTour) (models.TourModel, error) {
	e, err := mapEntity(d.Common)
	if err != nil {
		return models.TourModel{}, err
	}
	days := make([]models.TourDay, 0, len(d.Days))
	for _, day := range d.Days {
		items := make([]models.ItineraryItem, 0, len(day.Items))
		for _, it := range day.Items {
			items = append(items, mapTourItem(it))
		}
		days = append(days, models.TourDay{
			Day:         day.Day,
			Title:       day.Title,
			Description: day.Description,
			Image:       strings.TrimSpace(day.Image),
			HotelID:     day.HotelID.String(),
			Items:       items,
		})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	duration := d.Duration
	if duration <= 0 {
		duration = len(days)
	}
	price := d.Price
	if price < 0 {
		price = 0
	}
	return models.TourModel{
		Entity:     e,
		Category:   strings.TrimSpace(d.Category),
		Duration:   duration,
		Price:      price,
		Highlights: catalog.CleanStrings(d.Highlights),
		Days:       days,
	}, nil
}

// mapTourItem accepts a travel leg either nested under travel or spread
// over flat destinationFromId/destinationToId fields.
func mapTourItem(it legacyItem) models.ItineraryItem {
	item := models.ItineraryItem{
		Type:         mapItemType(it),
		Order:        it.Order,
		ExperienceID: it.ExperienceID.String(),
	}
	if item.Type != models.ItemTypeTravel {
		return item
	}
	switch {
	case it.Travel != nil:
		item.Travel = &models.Travel{
			From:     it.Travel.From.String(),
			To:       it.Travel.To.String(),
			Duration: it.Travel.Duration,
			Timing:   it.Travel.Timing,
			Location: it.Travel.Location,
		}
	default:
		item.Travel = &models.Travel{
			From:     it.DestinationFromID.String(),
			To:       it.DestinationToID.String(),
			Duration: it.Duration,
			Timing:   it.Timing,
			Location: it.Location,
		}
	}
	item.ExperienceID = ""
	return item
}

func mapItemType(it legacyItem) models.ItemType {
	switch models.ItemType(strings.ToLower(strings.TrimSpace(it.Type))) {
	case models.ItemTypeTravel:
		return models.ItemTypeTravel
	case models.ItemTypeExperience:
		return models.ItemTypeExperience
	}
	if it.Travel != nil || it.DestinationFromID != "" || it.DestinationToID != "" {
		return models.ItemTypeTravel
	}
	return models.ItemTypeExperience
}

func mapCustomItem(it legacyItem) models.CustomItem {
	item := models.CustomItem{
		Type:              mapItemType(it),
		Order:             it.Order,
		ExperienceID:      it.ExperienceID.String(),
		DestinationFromID: it.DestinationFromID.String(),
		DestinationToID:   it.DestinationToID.String(),
		Duration:          it.Duration,
		Timing:            it.Timing,
		Location:          it.Location,
	}
	if it.Travel != nil {
		item.DestinationFromID = it.Travel.From.String()
		item.DestinationToID = it.Travel.To.String()
		item.Duration = it.Travel.Duration
		item.Timing = it.Travel.Timing
		item.Location = it.Travel.Location
	}
	if item.Type == models.ItemTypeTravel {
		item.ExperienceID = ""
	}
	return item
}

func mapTourRequest(d legacyTourRequest) (models.TourRequestModel, error) {
	email := strings.ToLower(strings.TrimSpace(d.Email))
	if email == "" {
		return models.TourRequestModel{}, errNoEmail
	}
	status, err := models.ParseTourRequestStatus(d.Status)
	if err != nil {
		status = models.TourRequestPending
	}
	travelers := d.Travelers
	if travelers < 1 {
		travelers = 1
	}

	var custom []models.CustomDay
	for _, day := range d.CustomItinerary {
		items := make([]models.CustomItem, 0, len(day.Items))
		for _, it := range day.Items {
			items = append(items, mapCustomItem(it))
		}
		custom = append(custom, models.CustomDay{
			Day:         day.Day,
			Title:       day.Title,
			Description: day.Description,
			HotelID:     day.HotelID.String(),
			Items:       items,
		})
	}

	r := models.TourRequestModel{
		Base:            mapBase(d.ID.Hex(), d.CreatedAt, d.UpdatedAt),
		FirstName:       strings.TrimSpace(d.FirstName),
		LastName:        strings.TrimSpace(d.LastName),
		Email:           email,
		Phone:           strings.TrimSpace(d.Phone),
		Travelers:       travelers,
		Message:         d.Message,
		Status:          status,
		TourID:          d.TourID.String(),
		TourName:        strings.TrimSpace(d.TourName),
		CustomItinerary: custom,
	}
	if !d.TravelDate.IsZero() {
		date := datatypes.Date(d.TravelDate.Time)
		r.TravelDate = &date
	}
	if r.FirstName == "" {
		r.FirstName = email
	}
	// Approved requests were already counted by the old site.
	if status == models.TourRequestApproved {
		promoted := r.UpdatedAt
		r.PromotedAt = &promoted
	}
	return r, nil
}

func mapUser(d legacyUser) (models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(d.Email))
	username := strings.ToLower(strings.TrimSpace(d.Username))
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	if email == "" {
		return models.UserModel{}, errNoEmail
	}
	if !strings.HasPrefix(d.Password, "$2") {
		return models.UserModel{}, errUnusablePassword
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = username
	}
	return models.UserModel{
		Base:     mapBase(d.ID.Hex(), d.CreatedAt, d.UpdatedAt),
		Username: username,
		Email:    email,
		Name:     name,
		Role:     models.RoleAdmin,
		Password: d.Password,
	}, nil
}
