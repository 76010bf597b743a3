package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// TableRepo provides data access for restaurant tables. The SQL table is
// named `tables`, which is quoted everywhere because it is a MySQL keyword.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

const tableColumns = `table_id, table_name, capacity, status, reservation_id, created_at, updated_at`

func scanTable(s rowScanner) (*model.Table, error) {
	var (
		t      model.Table
		status string
		resID  sql.NullInt64
	)
	if err := s.Scan(&t.ID, &t.Name, &t.Capacity, &status, &resID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = model.TableStatus(status)
	if resID.Valid {
		id := uint64(resID.Int64)
		t.ReservationID = &id
	}
	return &t, nil
}

// List returns every table ordered by name.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM ` + "`tables`" + ` ORDER BY table_name, table_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a free table and reads it back.
func (r *TableRepo) Create(ctx context.Context, f model.TableFields) (*model.Table, error) {
	const q = "INSERT INTO `tables` (table_name, capacity, status) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, f.Name, f.Capacity, string(model.TableFree))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a table or returns model.ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + " FROM `tables` WHERE table_id = ?"
	t, err := scanTable(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByIDForUpdateTx reads and row-locks a table within tx.
func (r *TableRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + " FROM `tables` WHERE table_id = ? FOR UPDATE"
	t, err := scanTable(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByReservationForUpdateTx row-locks the table holding reservationID,
// or returns model.ErrTableNotFound when none does.
func (r *TableRepo) GetByReservationForUpdateTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + " FROM `tables` WHERE reservation_id = ? FOR UPDATE"
	t, err := scanTable(tx.QueryRowContext(ctx, q, reservationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// OccupyTx links the reservation to the table and marks it occupied.
func (r *TableRepo) OccupyTx(ctx context.Context, tx *sql.Tx, tableID, reservationID uint64) error {
	const q = "UPDATE `tables` SET reservation_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE table_id = ?"
	return execOne(ctx, tx, model.ErrTableNotFound, q, reservationID, string(model.TableOccupied), tableID)
}

// FreeTx clears the table's reservation and marks it free.
func (r *TableRepo) FreeTx(ctx context.Context, tx *sql.Tx, tableID uint64) error {
	const q = "UPDATE `tables` SET reservation_id = NULL, status = ?, updated_at = CURRENT_TIMESTAMP WHERE table_id = ?"
	return execOne(ctx, tx, model.ErrTableNotFound, q, string(model.TableFree), tableID)
}

// execOne runs an update that must touch exactly one row and returns
// notFound when it touches none.
func execOne(ctx context.Context, db execer, notFound error, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}
