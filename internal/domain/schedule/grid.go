package schedule

import (
	"fmt"
	"time"

	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
)

// Slot grid: bookable times live on 30-minute boundaries. The business day
// used by quick-add runs 09:00 through 17:30 (last bookable start).
const (
	SlotStepMinutes = 30

	DayFirstSlot = "09:00"
	DayLastSlot  = "17:30"
)

const clockLayout = "15:04"

// ParseClock converts a "15:04" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, httperr.ErrBusiness("invalid_time")
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ExpandRange expands [start, end] into 30-minute boundaries. start is always
// included; end is included only when it lands exactly on the grid anchored
// at start. Returns nil when the range is empty or malformed.
func ExpandRange(start, end string) []string {
	from, err := ParseClock(start)
	if err != nil {
		return nil
	}
	to, err := ParseClock(end)
	if err != nil {
		return nil
	}
	if to < from {
		return nil
	}

	var out []string
	for cur := from; cur < to || cur == to && (to-from)%SlotStepMinutes == 0; cur += SlotStepMinutes {
		out = append(out, FormatClock(cur))
	}
	return out
}

// BusinessDayGrid lists every 30-minute boundary from DayFirstSlot through
// DayLastSlot inclusive.
func BusinessDayGrid() []string {
	first, _ := ParseClock(DayFirstSlot)
	last, _ := ParseClock(DayLastSlot)

	var out []string
	for cur := first; cur <= last; cur += SlotStepMinutes {
		out = append(out, FormatClock(cur))
	}
	return out
}
