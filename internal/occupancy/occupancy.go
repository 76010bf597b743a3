// Package occupancy decides whether a table can take a reservation and
// whether it can be cleared. Storage calls these checks inside the same
// transaction that applies the two writes, after locking the rows.
package occupancy

import (
	"fmt"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// SeatCheck validates seating reservation r at table t.
type SeatCheck func(t *model.Table, r *model.Reservation) error

// ClearCheck validates clearing table t.
type ClearCheck func(t *model.Table) error

// TransitionCheck validates moving a locked reservation from one status to
// another. model.CheckTransition is the production check.
type TransitionCheck func(from, to model.ReservationStatus) error

// CheckSeat runs the seating preconditions in order: the table is free,
// the reservation is not already seated, the reservation may move to
// seated, and the table is large enough for the party.
func CheckSeat(t *model.Table, r *model.Reservation) error {
	if t.Occupied() {
		return model.Conflict(model.CodeTableOccupied, fmt.Sprintf("table id %d is occupied", t.ID))
	}
	if r.Status == model.StatusSeated {
		return model.Conflict(model.CodeAlreadySeated, fmt.Sprintf("reservation id %d is already seated", r.ID))
	}
	if err := model.CheckTransition(r.Status, model.StatusSeated); err != nil {
		return err
	}
	if t.Capacity < r.People {
		return model.Validation(model.CodeInsufficientCapacity, "capacity",
			fmt.Sprintf("table id %d has capacity %d, which is less than party size %d", t.ID, t.Capacity, r.People))
	}
	return nil
}

// CheckClear requires the table to be occupied.
func CheckClear(t *model.Table) error {
	if !t.Occupied() || t.ReservationID == nil {
		return model.Conflict(model.CodeNotOccupied, fmt.Sprintf("table id %d is not occupied", t.ID))
	}
	return nil
}

// Seat returns t and r as they look after seating: the table occupied by
// r and the reservation seated.
func Seat(t model.Table, r model.Reservation) (model.Table, model.Reservation) {
	id := r.ID
	t.ReservationID = &id
	t.Status = model.TableOccupied
	r.Status = model.StatusSeated
	return t, r
}

// Clear returns t freed.
func Clear(t model.Table) model.Table {
	t.ReservationID = nil
	t.Status = model.TableFree
	return t
}

// ReleasesTable reports whether moving a reservation from -> to must free
// the table it is seated at.
func ReleasesTable(from, to model.ReservationStatus) bool {
	return from == model.StatusSeated && to != model.StatusSeated
}
