package model

import "time"

// Table is a seating resource. ReservationID references the reservation
// currently seated there; the table does not own that reservation.
type Table struct {
	ID            uint64      `json:"table_id"`
	Name          string      `json:"table_name"`
	Capacity      int         `json:"capacity"`
	Status        TableStatus `json:"status"`
	ReservationID *uint64     `json:"reservation_id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableFields holds the validated values of a table create payload.
type TableFields struct {
	Name     string
	Capacity int
}

// Occupied reports whether a reservation is seated at the table.
func (t *Table) Occupied() bool {
	return t.Status == TableOccupied
}

// Seating is the outcome of seating a reservation at, or clearing, a table.
type Seating struct {
	TableID       uint64            `json:"table_id"`
	ReservationID uint64            `json:"reservation_id"`
	Status        ReservationStatus `json:"status"`
}
