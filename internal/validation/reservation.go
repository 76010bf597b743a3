package validation

import (
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/clock"
	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// requiredReservationFields is checked in this order; the first missing
// field is the one reported.
var requiredReservationFields = []string{
	"first_name",
	"last_name",
	"mobile_number",
	"reservation_date",
	"reservation_time",
	"people",
}

const (
	dateLayout        = "2006-01-02"
	timeLayout        = "15:04"
	timeSecondsLayout = "15:04:05"
)

// Validator checks reservation and table payloads. The schedule and clock
// feed the business hours guard.
type Validator struct {
	schedule Schedule
	clock    clock.Clock
}

// New returns a Validator using the given opening hours and time source.
func New(schedule Schedule, clk clock.Clock) *Validator {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Validator{schedule: schedule.withDefaults(), clock: clk}
}

// Schedule returns the opening hours the validator enforces.
func (v *Validator) Schedule() Schedule { return v.schedule }

// reservationDraft carries a payload through the rule chain, collecting
// normalized values as each rule passes.
type reservationDraft struct {
	payload Payload
	fields  model.ReservationFields
	at      time.Time
	now     time.Time
}

// Reservation validates a create or full-update payload and returns the
// normalized fields.
func (v *Validator) Reservation(data any) (model.ReservationFields, error) {
	p, err := Body(data)
	if err != nil {
		return model.ReservationFields{}, err
	}
	d := &reservationDraft{payload: p, now: v.clock.Now()}
	rules := []func(*reservationDraft) error{
		requireReservationFields,
		parseReservationMoment(v.schedule.location()),
		checkPeople,
		checkCreateStatus,
	}
	for _, rule := range v.schedule.rules() {
		rule := rule
		rules = append(rules, func(d *reservationDraft) error { return rule(d.at, d.now) })
	}
	if err := run(d, rules...); err != nil {
		return model.ReservationFields{}, err
	}
	return d.fields, nil
}

func requireReservationFields(d *reservationDraft) error {
	for _, field := range requiredReservationFields {
		if !d.payload.present(field) {
			return missingField(field)
		}
	}
	for _, field := range []string{"first_name", "last_name", "mobile_number"} {
		if _, ok := d.payload.text(field); !ok {
			return invalidField(field, "must be text")
		}
	}
	d.fields.FirstName, _ = d.payload.text("first_name")
	d.fields.LastName, _ = d.payload.text("last_name")
	d.fields.MobileNumber, _ = d.payload.text("mobile_number")
	return nil
}

func parseReservationMoment(loc *time.Location) func(*reservationDraft) error {
	return func(d *reservationDraft) error {
		bad := model.Validation(model.CodeInvalidFormat, "reservation_date",
			"'reservation_date' or 'reservation_time' field are in incorrect format")
		date, okDate := d.payload.text("reservation_date")
		clockTime, okTime := d.payload.text("reservation_time")
		if !okDate || !okTime {
			return bad
		}
		day, err := time.ParseInLocation(dateLayout, date, loc)
		if err != nil {
			return bad
		}
		tod, err := parseTimeOfDay(clockTime)
		if err != nil {
			return bad
		}
		d.at = time.Date(day.Year(), day.Month(), day.Day(),
			int(tod/time.Hour), int(tod%time.Hour/time.Minute), int(tod%time.Minute/time.Second), 0, loc)
		d.fields.Date = day.Format(dateLayout)
		d.fields.Time = formatTimeOfDay(tod)
		return nil
	}
}

func checkPeople(d *reservationDraft) error {
	n, ok := d.payload.whole("people")
	if !ok {
		return invalidField("people", "must be a number")
	}
	if n < 1 {
		return invalidField("people", "must be at least 1")
	}
	d.fields.People = n
	return nil
}

// checkCreateStatus rejects any supplied status other than booked. An empty
// status is treated as absent.
func checkCreateStatus(d *reservationDraft) error {
	if !d.payload.present("status") {
		return nil
	}
	s, ok := d.payload.text("status")
	if ok && model.ReservationStatus(s) == model.StatusBooked {
		return nil
	}
	return model.Validation(model.CodeInvalidStatus, "status", fmt.Sprintf("'status' field cannot be %v", d.payload["status"]))
}

// parseTimeOfDay accepts HH:MM and HH:MM:SS and returns the offset from
// midnight.
func parseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, err = time.Parse(timeSecondsLayout, s)
		if err != nil {
			return 0, err
		}
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

func formatTimeOfDay(d time.Duration) string {
	t := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)
	if t.Second() != 0 {
		return t.Format(timeSecondsLayout)
	}
	return t.Format(timeLayout)
}

// NormalizeTime canonicalizes a stored time of day (MySQL TIME columns come
// back as HH:MM:SS). Unparseable input is returned unchanged.
func NormalizeTime(s string) string {
	d, err := parseTimeOfDay(s)
	if err != nil {
		return s
	}
	return formatTimeOfDay(d)
}
