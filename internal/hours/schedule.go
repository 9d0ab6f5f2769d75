package hours

import (
	"fmt"
	"time"

	"github.com/arkfood/ordering-backend/pkg/config"
)

// Schedule is the restaurant's daily working window. Open and Close are
// minutes since midnight; Close is exclusive.
type Schedule struct {
	openMinutes  int
	closeMinutes int
}

// FromConfig builds a Schedule from the configured HH:MM strings.
func FromConfig(cfg config.BusinessConfig) (Schedule, error) {
	return New(cfg.OpenTime, cfg.CloseTime)
}

// New parses the open/close times in HH:MM form.
func New(openTime, closeTime string) (Schedule, error) {
	open, err := parseClock(openTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("open time: %w", err)
	}
	closing, err := parseClock(closeTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("close time: %w", err)
	}
	if open >= closing {
		return Schedule{}, fmt.Errorf("open time %s must precede close time %s", openTime, closeTime)
	}
	return Schedule{openMinutes: open, closeMinutes: closing}, nil
}

func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsZero reports an unconfigured schedule.
func (s Schedule) IsZero() bool {
	return s.openMinutes == 0 && s.closeMinutes == 0
}

// IsOpenAt reports whether the restaurant accepts orders at the given moment.
func (s Schedule) IsOpenAt(now time.Time) bool {
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= s.openMinutes && minutes < s.closeMinutes
}

// OpensAt returns the next opening moment relative to now. When the
// restaurant is already open it returns now unchanged.
func (s Schedule) OpensAt(now time.Time) time.Time {
	if s.IsOpenAt(now) {
		return now
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	opening := day.Add(time.Duration(s.openMinutes) * time.Minute)
	if !now.Before(opening) {
		opening = opening.Add(24 * time.Hour)
	}
	return opening
}

// Window returns the configured daily window as HH:MM strings.
func (s Schedule) Window() (string, string) {
	return formatClock(s.openMinutes), formatClock(s.closeMinutes)
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
