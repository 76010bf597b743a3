package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

type tableDraft struct {
	payload Payload
	fields  model.TableFields
}

// Table validates a table create payload.
func Table(data any) (model.TableFields, error) {
	p, err := Body(data)
	if err != nil {
		return model.TableFields{}, err
	}
	d := &tableDraft{payload: p}
	if err := run(d, checkTableName, checkCapacity); err != nil {
		return model.TableFields{}, err
	}
	return d.fields, nil
}

func checkTableName(d *tableDraft) error {
	name, ok := d.payload.text("table_name")
	if !ok || utf8.RuneCountInString(name) < 2 {
		return invalidField("table_name", "must be at least 2 characters long")
	}
	d.fields.Name = name
	return nil
}

func checkCapacity(d *tableDraft) error {
	n, ok := d.payload.whole("capacity")
	if !ok || n < 1 {
		return invalidField("capacity", "must be a number of at least 1")
	}
	d.fields.Capacity = n
	return nil
}

// SeatRequest validates the body of a seat request and returns the
// reservation id to seat.
func SeatRequest(data any) (uint64, error) {
	p, err := Body(data)
	if err != nil {
		return 0, err
	}
	if !p.present("reservation_id") {
		return 0, missingField("reservation_id")
	}
	n, ok := p.whole("reservation_id")
	if !ok || n < 1 {
		return 0, invalidField("reservation_id", "must be a positive number")
	}
	return uint64(n), nil
}

// StatusUpdate validates the body of a status update and returns the
// requested status. Whether the transition is allowed is decided against
// the stored reservation by model.CheckTransition.
func StatusUpdate(data any) (model.ReservationStatus, error) {
	p, err := Body(data)
	if err != nil {
		return "", err
	}
	if !p.present("status") {
		return "", missingField("status")
	}
	s, ok := p.text("status")
	if !ok {
		s = fmt.Sprint(p["status"])
	}
	return model.ParseReservationStatus(s)
}
