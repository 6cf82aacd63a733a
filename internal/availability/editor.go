package availability

import (
	"context"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
	"github.com/HorizonteApps/clinic-scheduler/internal/models"
)

// Store is the committed side of the availability state.
type Store interface {
	ListTemplate(
		ctx context.Context,
		professionalID uint,
	) ([]models.WeeklyTemplate, error)

	ListOverrides(
		ctx context.Context,
		professionalID uint,
	) ([]models.DateOverride, error)

	ReplaceAvailability(
		ctx context.Context,
		professionalID uint,
		days []models.WeeklyTemplate,
		overrides []models.DateOverride,
	) error
}

// Editor owns the edit-then-commit cycle: drafts accumulate in the
// DraftStore, Commit validates and swaps them into the durable store
// atomically, all-or-nothing.
type Editor struct {
	drafts *DraftStore
	store  Store
}

func NewEditor(drafts *DraftStore, store Store) *Editor {
	return &Editor{drafts: drafts, store: store}
}

func (e *Editor) SaveDraft(ctx context.Context, professionalID uint, d *Draft) error {
	if err := validateDraft(d); err != nil {
		return err
	}
	return e.drafts.Save(ctx, professionalID, d)
}

func (e *Editor) GetDraft(ctx context.Context, professionalID uint) (*Draft, error) {
	return e.drafts.Get(ctx, professionalID)
}

func (e *Editor) DiscardDraft(ctx context.Context, professionalID uint) error {
	return e.drafts.Discard(ctx, professionalID)
}

// Commit swaps the working copy into the durable store and clears it. Fails
// without side effects when no draft exists.
func (e *Editor) Commit(ctx context.Context, professionalID uint) error {
	d, err := e.drafts.Get(ctx, professionalID)
	if err != nil {
		return err
	}
	if err := e.CommitPayload(ctx, professionalID, d); err != nil {
		return err
	}
	return nil
}

// CommitPayload commits an inline template-and-override payload, bypassing
// any stored draft. The stale draft, if any, is discarded.
func (e *Editor) CommitPayload(ctx context.Context, professionalID uint, d *Draft) error {
	if err := validateDraft(d); err != nil {
		return err
	}

	days := make([]models.WeeklyTemplate, 0, len(d.Days))
	for _, day := range d.Days {
		days = append(days, models.WeeklyTemplate{
			ProfessionalID: professionalID,
			Weekday:        day.Weekday,
			Enabled:        day.Enabled,
			StartTime:      day.StartTime,
			EndTime:        day.EndTime,
		})
	}

	overrides := make([]models.DateOverride, 0, len(d.Overrides))
	for _, ov := range d.Overrides {
		overrides = append(overrides, models.DateOverride{
			ProfessionalID: professionalID,
			Date:           ov.Date,
			Times:          NormalizeTimes(ov.Times),
		})
	}

	if err := e.store.ReplaceAvailability(ctx, professionalID, days, overrides); err != nil {
		return err
	}

	return e.drafts.Discard(ctx, professionalID)
}

// Committed reads the current durable state in draft shape, the natural
// starting point for a new editing session.
func (e *Editor) Committed(ctx context.Context, professionalID uint) (*Draft, error) {
	days, err := e.store.ListTemplate(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	overrides, err := e.store.ListOverrides(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	d := &Draft{
		Days:      make([]DayConfig, 0, len(days)),
		Overrides: make([]OverrideConfig, 0, len(overrides)),
	}
	for _, day := range days {
		d.Days = append(d.Days, DayConfig{
			Weekday:   day.Weekday,
			Enabled:   day.Enabled,
			StartTime: day.StartTime,
			EndTime:   day.EndTime,
		})
	}
	for _, ov := range overrides {
		d.Overrides = append(d.Overrides, OverrideConfig{
			Date:  ov.Date,
			Times: ov.Times,
		})
	}
	return d, nil
}

func validateDraft(d *Draft) error {
	if d == nil {
		return httperr.ErrBusiness("invalid_payload")
	}

	seenDay := make(map[int]struct{}, len(d.Days))
	for _, day := range d.Days {
		if day.Weekday < 0 || day.Weekday > 6 {
			return httperr.ErrBusiness("invalid_weekday")
		}
		if _, dup := seenDay[day.Weekday]; dup {
			return httperr.ErrBusiness("duplicate_weekday")
		}
		seenDay[day.Weekday] = struct{}{}

		if !day.Enabled {
			continue
		}
		start, err := domain.ParseClock(day.StartTime)
		if err != nil {
			return err
		}
		end, err := domain.ParseClock(day.EndTime)
		if err != nil {
			return err
		}
		if end <= start {
			return httperr.ErrBusiness("invalid_time_range")
		}
	}

	seenDate := make(map[string]struct{}, len(d.Overrides))
	for _, ov := range d.Overrides {
		if !domain.ValidDate(ov.Date) {
			return httperr.ErrBusiness("invalid_date")
		}
		if _, dup := seenDate[ov.Date]; dup {
			return httperr.ErrBusiness("duplicate_override_date")
		}
		seenDate[ov.Date] = struct{}{}

		for _, t := range ov.Times {
			if !domain.ValidClock(t) {
				return httperr.ErrBusiness("invalid_time")
			}
		}
	}

	return nil
}
