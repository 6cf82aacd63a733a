package availability

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

// Source is the committed availability state the allocator reads. Satisfied
// by the schedule repository.
type Source interface {
	GetTemplateDay(
		ctx context.Context,
		professionalID uint,
		weekday int,
	) (*models.WeeklyTemplate, error)

	GetOverride(
		ctx context.Context,
		professionalID uint,
		date string,
	) (*models.DateOverride, error)

	ActiveAppointmentTimes(
		ctx context.Context,
		professionalID uint,
		date string,
	) ([]string, error)
}

type Allocator struct {
	source Source
}

func NewAllocator(source Source) *Allocator {
	return &Allocator{source: source}
}

// EffectiveSlots derives the bookable slot times for a (professional, date)
// pair. An override for the date replaces the template in full; otherwise
// the weekday template expands onto the 30-minute grid. Deterministic for
// unchanged committed state.
func (a *Allocator) EffectiveSlots(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]string, error) {

	if !domain.ValidDate(date) {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	// Only a missing row falls back to the template; any other read error
	// surfaces instead of silently serving the wrong slot set.
	override, err := a.source.GetOverride(ctx, professionalID, date)
	if err == nil {
		return NormalizeTimes(override.Times), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	weekday, err := weekdayOf(date)
	if err != nil {
		return nil, err
	}

	day, err := a.source.GetTemplateDay(ctx, professionalID, weekday)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	if !day.Enabled || day.StartTime == "" || day.EndTime == "" {
		return []string{}, nil
	}

	slots := domain.ExpandRange(day.StartTime, day.EndTime)
	if slots == nil {
		return []string{}, nil
	}
	return slots, nil
}

// FreeSlots is EffectiveSlots minus slots already held by active
// appointments.
func (a *Allocator) FreeSlots(
	ctx context.Context,
	professionalID uint,
	date string,
) ([]string, error) {

	slots, err := a.EffectiveSlots(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}

	taken, err := a.source.ActiveAppointmentTimes(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}

	takenSet := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		takenSet[t] = struct{}{}
	}

	free := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, ok := takenSet[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free, nil
}

// HasSlot reports whether time is a member of the date's effective slot set.
func (a *Allocator) HasSlot(
	ctx context.Context,
	professionalID uint,
	date string,
	timeOfDay string,
) (bool, error) {

	slots, err := a.EffectiveSlots(ctx, professionalID, date)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot == timeOfDay {
			return true, nil
		}
	}
	return false, nil
}

// NextAvailableSlot scans the business-day grid (09:00 through 17:30) and
// returns the first boundary not already in the date's effective slot set.
// Read-only: adding the slot happens through an explicit draft edit.
func (a *Allocator) NextAvailableSlot(
	ctx context.Context,
	professionalID uint,
	date string,
) (string, error) {

	slots, err := a.EffectiveSlots(ctx, professionalID, date)
	if err != nil {
		return "", err
	}

	occupied := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		occupied[slot] = struct{}{}
	}

	for _, boundary := range domain.BusinessDayGrid() {
		if _, ok := occupied[boundary]; !ok {
			return boundary, nil
		}
	}

	return "", httperr.ErrBusiness(httperr.CodeNoCapacity)
}

func weekdayOf(date string) (int, error) {
	t, err := timeParseDate(date)
	if err != nil {
		return 0, httperr.ErrBusiness("invalid_date")
	}
	return int(t.Weekday()), nil
}
