package itinerary

import "github.com/bhutan-travel/core/internal/models"

// Validate checks day numbering and the shape of every item. It reports all
// problems at once as ValidationErrors, or nil. Renumbering days is left to
// the caller; empty days and empty item lists are fine.
func Validate(days []Day) error {
	var errs ValidationErrors
	prev := 0
	for di, day := range days {
		switch {
		case day.Index < 1:
			errs = append(errs, newFieldError(di, -1, "day", CodeInvalidDay))
		case day.Index < prev:
			errs = append(errs, newFieldError(di, -1, "day", CodeDayOutOfOrder))
		}
		if day.Index > prev {
			prev = day.Index
		}

		for ii, item := range day.Items {
			switch item.Kind {
			case models.ItemTypeExperience:
				if item.ExperienceID == "" {
					errs = append(errs, newFieldError(di, ii, "experience_id", CodeMissingExperience))
				}
			case models.ItemTypeTravel:
				switch {
				case item.From == "":
					errs = append(errs, newFieldError(di, ii, "from", CodeMissingTravelEndpoint))
				case item.To == "":
					errs = append(errs, newFieldError(di, ii, "to", CodeMissingTravelEndpoint))
				case item.From == item.To:
					errs = append(errs, newFieldError(di, ii, "to", CodeDegenerateTravel))
				}
			default:
				errs = append(errs, newFieldError(di, ii, "type", CodeBadTag))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CheckTourDays validates a tour's stored itinerary.
func CheckTourDays(days []models.TourDay) error {
	return Validate(FromTourDays(days))
}

// CheckCustomDays validates a tour request's custom itinerary.
func CheckCustomDays(days []models.CustomDay) error {
	return Validate(FromCustomDays(days))
}
