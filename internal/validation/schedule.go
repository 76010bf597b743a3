package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Schedule is the restaurant's business hours guard. Times of day are
// offsets from midnight in Location.
type Schedule struct {
	Location    *time.Location
	ClosedDay   time.Weekday
	Opens       time.Duration
	Closes      time.Duration
	LastBooking time.Duration
}

// DefaultSchedule is closed on Tuesdays, open 10:30 to 22:30, and takes
// the last booking an hour before closing.
func DefaultSchedule() Schedule {
	return Schedule{
		Location:    time.UTC,
		ClosedDay:   time.Tuesday,
		Opens:       10*time.Hour + 30*time.Minute,
		Closes:      22*time.Hour + 30*time.Minute,
		LastBooking: 21*time.Hour + 30*time.Minute,
	}
}

// withDefaults fills unset fields from DefaultSchedule. The zero Schedule
// becomes DefaultSchedule. Otherwise ClosedDay is taken as given, since
// time.Sunday is its zero value.
func (s Schedule) withDefaults() Schedule {
	def := DefaultSchedule()
	if s == (Schedule{}) {
		return def
	}
	if s.Location == nil {
		s.Location = def.Location
	}
	if s.Opens == 0 && s.Closes == 0 {
		s.Opens, s.Closes = def.Opens, def.Closes
	}
	if s.LastBooking == 0 {
		s.LastBooking = s.Closes - time.Hour
	}
	return s
}

func (s Schedule) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// scheduleRule checks a reservation moment against the current time.
type scheduleRule func(at, now time.Time) error

// rules returns the guard clauses in the order they are evaluated.
func (s Schedule) rules() []scheduleRule {
	return []scheduleRule{
		s.checkClosedDay,
		checkFuture,
		s.checkOpening,
		s.checkClosing,
		s.checkLastBooking,
	}
}

// Check runs every business hours rule against at and returns the first
// violation.
func (s Schedule) Check(at, now time.Time) error {
	s = s.withDefaults()
	at = at.In(s.location())
	for _, rule := range s.rules() {
		if err := rule(at, now); err != nil {
			return err
		}
	}
	return nil
}

func (s Schedule) checkClosedDay(at, _ time.Time) error {
	if at.Weekday() == s.ClosedDay {
		return model.Validation(model.CodeClosedDay, "reservation_date",
			fmt.Sprintf("'reservation_date' field: restaurant is closed on %s", strings.ToLower(s.ClosedDay.String())))
	}
	return nil
}

func checkFuture(at, now time.Time) error {
	if !at.After(now) {
		return model.Validation(model.CodePastDate, "reservation_date",
			"'reservation_date' and 'reservation_time' field must be in the future")
	}
	return nil
}

func (s Schedule) checkOpening(at, _ time.Time) error {
	if timeOfDay(at) < s.Opens {
		return model.Validation(model.CodeTooEarly, "reservation_time",
			fmt.Sprintf("'reservation_time' field: restaurant is not open until %s", formatTimeOfDay(s.Opens)))
	}
	return nil
}

func (s Schedule) checkClosing(at, _ time.Time) error {
	if timeOfDay(at) >= s.Closes {
		return model.Validation(model.CodeTooLate, "reservation_time",
			fmt.Sprintf("'reservation_time' field: restaurant is closed after %s", formatTimeOfDay(s.Closes)))
	}
	return nil
}

func (s Schedule) checkLastBooking(at, _ time.Time) error {
	if timeOfDay(at) > s.LastBooking {
		return model.Validation(model.CodeTooCloseToClosing, "reservation_time",
			fmt.Sprintf("'reservation_time' field: reservation must be made no later than %s", formatTimeOfDay(s.LastBooking)))
	}
	return nil
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}
