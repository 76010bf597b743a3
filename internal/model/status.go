package model

import "fmt"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusBooked    ReservationStatus = "booked"
	StatusSeated    ReservationStatus = "seated"
	StatusFinished  ReservationStatus = "finished"
	StatusCancelled ReservationStatus = "cancelled"
)

// transitions lists every allowed edge. Terminal states have no entry.
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusBooked: {StatusSeated, StatusCancelled},
	StatusSeated: {StatusFinished},
}

// ParseReservationStatus returns the status named by s or an InvalidStatus
// error.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(s); st {
	case StatusBooked, StatusSeated, StatusFinished, StatusCancelled:
		return st, nil
	}
	return "", Validation(CodeInvalidStatus, "status", fmt.Sprintf("'status' field cannot be %s", s))
}

// Terminal reports whether no transition leaves s.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case StatusFinished, StatusCancelled:
		return true
	case StatusBooked, StatusSeated:
		return false
	}
	return true
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns nil when from -> to is allowed. A finished
// reservation rejects every target with FinishedImmutable; any other
// missing edge is an InvalidTransition conflict.
func CheckTransition(from, to ReservationStatus) error {
	if from == StatusFinished {
		return Conflict(CodeFinishedImmutable, "a 'finished' reservation cannot be updated")
	}
	if !CanTransition(from, to) {
		return Conflict(CodeInvalidTransition, fmt.Sprintf("reservation status cannot change from '%s' to '%s'", from, to))
	}
	return nil
}

// TableStatus is the occupancy state of a table.
type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
)

// StatusChange is the outcome of a status update. TableID is the table
// freed by it, or 0 when no table was touched.
type StatusChange struct {
	ReservationID uint64
	From          ReservationStatus
	To            ReservationStatus
	TableID       uint64
}
