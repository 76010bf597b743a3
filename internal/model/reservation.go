package model

import "time"

// Reservation is a party's booking for a date and time at the restaurant.
// Reservations are never deleted; a finished reservation is read-only.
//
// Fields:
//  ID              – primary key assigned by storage.
//  FirstName       – guest first name.
//  LastName        – guest last name.
//  MobileNumber    – contact number as entered.
//  Date            – reservation date, YYYY-MM-DD.
//  Time            – time of day, HH:MM (HH:MM:SS when seconds are set).
//  People          – party size, at least 1.
//  Status          – lifecycle state (booked, seated, finished, cancelled).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID           uint64            `json:"reservation_id"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	MobileNumber string            `json:"mobile_number"`
	Date         string            `json:"reservation_date"`
	Time         string            `json:"reservation_time"`
	People       int               `json:"people"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ReservationFields holds the validated, normalized values of a create or
// full-update payload. Status is not part of it: creation always books and
// status changes go through the state machine.
type ReservationFields struct {
	FirstName    string
	LastName     string
	MobileNumber string
	Date         string
	Time         string
	People       int
}

// ReservationFilter narrows a reservation listing. Date takes precedence
// over MobilePrefix when both are set. Finished reservations are never
// listed.
type ReservationFilter struct {
	Date         string
	MobilePrefix string
}

// Apply copies the fields onto r, leaving identity and status untouched.
func (f ReservationFields) Apply(r *Reservation) {
	r.FirstName = f.FirstName
	r.LastName = f.LastName
	r.MobileNumber = f.MobileNumber
	r.Date = f.Date
	r.Time = f.Time
	r.People = f.People
}

// DigitsOnly strips everything but ASCII digits, so "(555) 123-4567" and
// "555-123-4567" compare equal when searching by mobile number.
func DigitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
