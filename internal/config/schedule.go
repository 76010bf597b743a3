package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/validation"
)

// ScheduleConfig is the restaurant's opening hours as read from the
// environment.
type ScheduleConfig struct {
	Location    *time.Location
	ClosedDay   time.Weekday
	Opens       time.Duration
	Closes      time.Duration
	LastBooking time.Duration
}

// LoadScheduleConfig reads RESTAURANT_TZ, CLOSED_WEEKDAY, OPENS_AT,
// CLOSES_AT and LAST_BOOKING_BEFORE_CLOSE. Defaults are UTC, Tuesday,
// 10:30, 22:30 and 1h.
func LoadScheduleConfig() (ScheduleConfig, error) {
	loc, err := time.LoadLocation(envStr("RESTAURANT_TZ", "UTC"))
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("invalid RESTAURANT_TZ: %w", err)
	}
	day, err := parseWeekday(envStr("CLOSED_WEEKDAY", "tuesday"))
	if err != nil {
		return ScheduleConfig{}, err
	}
	opens, err := parseClock("OPENS_AT", envStr("OPENS_AT", "10:30"))
	if err != nil {
		return ScheduleConfig{}, err
	}
	closes, err := parseClock("CLOSES_AT", envStr("CLOSES_AT", "22:30"))
	if err != nil {
		return ScheduleConfig{}, err
	}
	if closes <= opens {
		return ScheduleConfig{}, fmt.Errorf("CLOSES_AT must be after OPENS_AT")
	}
	before := envDur("LAST_BOOKING_BEFORE_CLOSE", time.Hour)
	if before < 0 || closes-before < opens {
		return ScheduleConfig{}, fmt.Errorf("LAST_BOOKING_BEFORE_CLOSE must fit within opening hours")
	}
	return ScheduleConfig{
		Location:    loc,
		ClosedDay:   day,
		Opens:       opens,
		Closes:      closes,
		LastBooking: closes - before,
	}, nil
}

// Validation converts the config into the business hours guard.
func (s ScheduleConfig) Validation() validation.Schedule {
	return validation.Schedule{
		Location:    s.Location,
		ClosedDay:   s.ClosedDay,
		Opens:       s.Opens,
		Closes:      s.Closes,
		LastBooking: s.LastBooking,
	}
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid CLOSED_WEEKDAY %q", s)
}

func parseClock(key, s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q (want HH:MM)", key, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
