// Package memory is an in-process implementation of the reservation and
// table store, used for local runs (STORAGE_DRIVER=memory) and tests. A
// single mutex makes seating and clearing atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/occupancy"
)

// Store keeps reservations and tables in maps keyed by id.
type Store struct {
	mu           sync.RWMutex
	reservations map[uint64]model.Reservation
	tables       map[uint64]model.Table
	nextResID    uint64
	nextTableID  uint64
	now          func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		reservations: make(map[uint64]model.Reservation),
		tables:       make(map[uint64]model.Table),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ListReservations returns non-finished reservations matching f. A date
// filter orders by time; otherwise results are ordered by date, time, id.
func (s *Store) ListReservations(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := model.DigitsOnly(f.MobilePrefix)
	out := make([]model.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if r.Status == model.StatusFinished {
			continue
		}
		switch {
		case f.Date != "":
			if r.Date != f.Date {
				continue
			}
		case f.MobilePrefix != "":
			if !strings.HasPrefix(model.DigitsOnly(r.MobileNumber), prefix) {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateReservation stores a new booked reservation.
func (s *Store) CreateReservation(_ context.Context, f model.ReservationFields) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextResID++
	now := s.now()
	r := model.Reservation{ID: s.nextResID, Status: model.StatusBooked, CreatedAt: now, UpdatedAt: now}
	f.Apply(&r)
	s.reservations[r.ID] = r
	return &r, nil
}

// GetReservation returns a copy of the reservation or
// model.ErrReservationNotFound.
func (s *Store) GetReservation(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	return &r, nil
}

// UpdateReservation overwrites the reservation's fields, keeping its status.
func (s *Store) UpdateReservation(_ context.Context, id uint64, f model.ReservationFields) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	f.Apply(&r)
	r.UpdatedAt = s.now()
	s.reservations[id] = r
	return &r, nil
}

// UpdateReservationStatus runs check against the stored status and writes
// next. Leaving seated also frees the table holding the reservation.
func (s *Store) UpdateReservationStatus(_ context.Context, id uint64, next model.ReservationStatus, check occupancy.TransitionCheck) (*model.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	if err := check(r.Status, next); err != nil {
		return nil, err
	}
	change := &model.StatusChange{ReservationID: id, From: r.Status, To: next}
	now := s.now()
	if occupancy.ReleasesTable(r.Status, next) {
		for tid, t := range s.tables {
			if t.ReservationID != nil && *t.ReservationID == id {
				t = occupancy.Clear(t)
				t.UpdatedAt = now
				s.tables[tid] = t
				change.TableID = tid
				break
			}
		}
	}
	r.Status = next
	r.UpdatedAt = now
	s.reservations[id] = r
	return change, nil
}

// ListTables returns all tables ordered by name.
func (s *Store) ListTables(context.Context) ([]model.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, copyTable(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateTable stores a new free table.
func (s *Store) CreateTable(_ context.Context, f model.TableFields) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTableID++
	now := s.now()
	t := model.Table{
		ID:        s.nextTableID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		Status:    model.TableFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tables[t.ID] = t
	out := copyTable(t)
	return &out, nil
}

// GetTable returns a copy of the table or model.ErrTableNotFound.
func (s *Store) GetTable(_ context.Context, id uint64) (*model.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[id]
	if !ok {
		return nil, model.ErrTableNotFound
	}
	out := copyTable(t)
	return &out, nil
}

// SeatTable occupies the table with the reservation and marks the
// reservation seated, after check accepts both rows.
func (s *Store) SeatTable(_ context.Context, tableID, reservationID uint64, check occupancy.SeatCheck) (*model.Seating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return nil, model.ErrTableNotFound
	}
	r, ok := s.reservations[reservationID]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	if err := check(&t, &r); err != nil {
		return nil, err
	}
	t, r = occupancy.Seat(t, r)
	now := s.now()
	t.UpdatedAt, r.UpdatedAt = now, now
	s.tables[t.ID] = t
	s.reservations[r.ID] = r
	return &model.Seating{TableID: t.ID, ReservationID: r.ID, Status: r.Status}, nil
}

// ClearTable finishes the seated reservation and frees the table, after
// check accepts the table.
func (s *Store) ClearTable(_ context.Context, tableID uint64, check occupancy.ClearCheck) (*model.Seating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return nil, model.ErrTableNotFound
	}
	if err := check(&t); err != nil {
		return nil, err
	}
	r, ok := s.reservations[*t.ReservationID]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	now := s.now()
	r.Status = model.StatusFinished
	r.UpdatedAt = now
	s.reservations[r.ID] = r
	t = occupancy.Clear(t)
	t.UpdatedAt = now
	s.tables[t.ID] = t
	return &model.Seating{TableID: t.ID, ReservationID: r.ID, Status: r.Status}, nil
}

// copyTable detaches the ReservationID pointer from the stored value.
func copyTable(t model.Table) model.Table {
	if t.ReservationID != nil {
		id := *t.ReservationID
		t.ReservationID = &id
	}
	return t
}
