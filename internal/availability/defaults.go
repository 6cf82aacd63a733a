package availability

import (
	"time"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

// DefaultWeekTemplate is the schedule a professional starts with: business
// hours Monday through Friday, weekend disabled. Registration seeds it so a
// fresh account is bookable before its first availability edit.
func DefaultWeekTemplate(professionalID uint) []models.WeeklyTemplate {
	days := make([]models.WeeklyTemplate, 0, 7)
	for weekday := 0; weekday < 7; weekday++ {
		day := models.WeeklyTemplate{
			ProfessionalID: professionalID,
			Weekday:        weekday,
		}
		wd := time.Weekday(weekday)
		if wd != time.Saturday && wd != time.Sunday {
			day.Enabled = true
			day.StartTime = domain.DayFirstSlot
			day.EndTime = domain.DayLastSlot
		}
		days = append(days, day)
	}
	return days
}
