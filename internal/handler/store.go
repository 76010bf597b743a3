package handler

import (
	"context"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/occupancy"
)

// Store is the persistence the handlers need. UpdateReservationStatus,
// SeatTable and ClearTable apply their writes atomically after check
// accepts the locked rows.
type Store interface {
	Ping(ctx context.Context) error

	ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
	CreateReservation(ctx context.Context, f model.ReservationFields) (*model.Reservation, error)
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	UpdateReservation(ctx context.Context, id uint64, f model.ReservationFields) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uint64, next model.ReservationStatus, check occupancy.TransitionCheck) (*model.StatusChange, error)

	ListTables(ctx context.Context) ([]model.Table, error)
	CreateTable(ctx context.Context, f model.TableFields) (*model.Table, error)
	GetTable(ctx context.Context, id uint64) (*model.Table, error)
	SeatTable(ctx context.Context, tableID, reservationID uint64, check occupancy.SeatCheck) (*model.Seating, error)
	ClearTable(ctx context.Context, tableID uint64, check occupancy.ClearCheck) (*model.Seating, error)
}
