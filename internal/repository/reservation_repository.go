package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/validation"
)

// ReservationRepo provides CRUD operations for reservations. Dates are
// stored as DATE and times as TIME; mobile_digits keeps a digits-only copy
// of mobile_number for prefix search.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `reservation_id, first_name, last_name, mobile_number,
	reservation_date, reservation_time, people, status, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		r      model.Reservation
		date   time.Time
		clock  string
		status string
	)
	if err := s.Scan(&r.ID, &r.FirstName, &r.LastName, &r.MobileNumber,
		&date, &clock, &r.People, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Date = date.Format("2006-01-02")
	r.Time = validation.NormalizeTime(clock)
	r.Status = model.ReservationStatus(status)
	return &r, nil
}

// List returns reservations matching f, excluding finished ones. A date
// filter wins over a mobile prefix.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	var (
		q    string
		args []any
	)
	switch {
	case f.Date != "":
		q = `SELECT ` + reservationColumns + ` FROM reservations
		     WHERE reservation_date = ? AND status <> 'finished'
		     ORDER BY reservation_time, reservation_id`
		args = append(args, f.Date)
	case f.MobilePrefix != "":
		q = `SELECT ` + reservationColumns + ` FROM reservations
		     WHERE mobile_digits LIKE ? AND status <> 'finished'
		     ORDER BY reservation_date, reservation_time, reservation_id`
		args = append(args, model.DigitsOnly(f.MobilePrefix)+"%")
	default:
		q = `SELECT ` + reservationColumns + ` FROM reservations
		     WHERE status <> 'finished'
		     ORDER BY reservation_date, reservation_time, reservation_id`
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a booked reservation and reads it back so defaults and
// timestamps are populated.
func (r *ReservationRepo) Create(ctx context.Context, f model.ReservationFields) (*model.Reservation, error) {
	const q = `INSERT INTO reservations
	           (first_name, last_name, mobile_number, mobile_digits, reservation_date, reservation_time, people, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.FirstName, f.LastName, f.MobileNumber, model.DigitsOnly(f.MobileNumber),
		f.Date, f.Time, f.People, string(model.StatusBooked))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a reservation or returns model.ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// Update overwrites the reservation's fields. Status is left untouched.
func (r *ReservationRepo) Update(ctx context.Context, id uint64, f model.ReservationFields) (*model.Reservation, error) {
	const q = `UPDATE reservations
	           SET first_name = ?, last_name = ?, mobile_number = ?, mobile_digits = ?,
	               reservation_date = ?, reservation_time = ?, people = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE reservation_id = ?`
	res, err := r.db.ExecContext(ctx, q, f.FirstName, f.LastName, f.MobileNumber, model.DigitsOnly(f.MobileNumber),
		f.Date, f.Time, f.People, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrReservationNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdateStatusTx sets a reservation's status within tx. Callers hold the
// row lock from GetByIDForUpdateTx.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus) error {
	const q = `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE reservation_id = ?`
	return execOne(ctx, tx, model.ErrReservationNotFound, q, string(status), id)
}

// GetByIDForUpdateTx reads and row-locks a reservation within tx.
func (r *ReservationRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ? FOR UPDATE`
	res, err := scanReservation(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
