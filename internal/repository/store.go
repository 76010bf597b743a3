package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/occupancy"
)

// Store combines the reservation and table repositories behind the method
// set the HTTP handlers depend on.
type Store struct {
	db           *sql.DB
	reservations *ReservationRepo
	tables       *TableRepo
}

// NewStore wires both repositories to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		reservations: NewReservationRepo(db),
		tables:       NewTableRepo(db),
	}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	return s.reservations.List(ctx, f)
}

func (s *Store) CreateReservation(ctx context.Context, f model.ReservationFields) (*model.Reservation, error) {
	return s.reservations.Create(ctx, f)
}

func (s *Store) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *Store) UpdateReservation(ctx context.Context, id uint64, f model.ReservationFields) (*model.Reservation, error) {
	return s.reservations.Update(ctx, id, f)
}


func (s *Store) ListTables(ctx context.Context) ([]model.Table, error) {
	return s.tables.List(ctx)
}

func (s *Store) CreateTable(ctx context.Context, f model.TableFields) (*model.Table, error) {
	return s.tables.Create(ctx, f)
}

func (s *Store) GetTable(ctx context.Context, id uint64) (*model.Table, error) {
	return s.tables.GetByID(ctx, id)
}

// SeatTable locks the table and the reservation, runs check, then occupies
// the table and marks the reservation seated in one transaction.
func (s *Store) SeatTable(ctx context.Context, tableID, reservationID uint64, check occupancy.SeatCheck) (*model.Seating, error) {
	var out *model.Seating
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := s.tables.GetByIDForUpdateTx(ctx, tx, tableID)
		if err != nil {
			return err
		}
		r, err := s.reservations.GetByIDForUpdateTx(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if err := check(t, r); err != nil {
			return err
		}
		if err := s.tables.OccupyTx(ctx, tx, t.ID, r.ID); err != nil {
			return err
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, r.ID, model.StatusSeated); err != nil {
			return err
		}
		out = &model.Seating{TableID: t.ID, ReservationID: r.ID, Status: model.StatusSeated}
		return nil
	})
	return out, err
}

// ClearTable locks the table and its reservation, runs check, then
// finishes the reservation and frees the table in one transaction.
func (s *Store) ClearTable(ctx context.Context, tableID uint64, check occupancy.ClearCheck) (*model.Seating, error) {
	var out *model.Seating
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := s.tables.GetByIDForUpdateTx(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if err := check(t); err != nil {
			return err
		}
		r, err := s.reservations.GetByIDForUpdateTx(ctx, tx, *t.ReservationID)
		if err != nil {
			return err
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, r.ID, model.StatusFinished); err != nil {
			return err
		}
		if err := s.tables.FreeTx(ctx, tx, t.ID); err != nil {
			return err
		}
		out = &model.Seating{TableID: t.ID, ReservationID: r.ID, Status: model.StatusFinished}
		return nil
	})
	return out, err
}

// UpdateReservationStatus locks the reservation, runs check against its
// current status and writes next. Leaving seated also frees the table the
// reservation occupies, in the same transaction.
func (s *Store) UpdateReservationStatus(ctx context.Context, id uint64, next model.ReservationStatus, check occupancy.TransitionCheck) (*model.StatusChange, error) {
	var out *model.StatusChange
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := s.reservations.GetByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(r.Status, next); err != nil {
			return err
		}
		change := &model.StatusChange{ReservationID: r.ID, From: r.Status, To: next}

		var held *model.Table
		if occupancy.ReleasesTable(r.Status, next) {
			held, err = s.tables.GetByReservationForUpdateTx(ctx, tx, r.ID)
			if err != nil && !errors.Is(err, model.ErrTableNotFound) {
				return err
			}
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, r.ID, next); err != nil {
			return err
		}
		if held != nil {
			if err := s.tables.FreeTx(ctx, tx, held.ID); err != nil {
				return err
			}
			change.TableID = held.ID
		}
		out = change
		return nil
	})
	return out, err
}

// inTx runs fn inside a transaction, rolling back unless fn and Commit both
// succeed. Lock contention is reported as model.ErrStorageBusy.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	err := s.runTx(ctx, fn)
	if err != nil && lockContention(err) {
		return fmt.Errorf("%w: %v", model.ErrStorageBusy, err)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
