// Package queue carries reservation events over RabbitMQ: the HTTP server
// publishes them after a write commits, and the consumer appends them to an
// audit log.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// QueueName is the durable queue reservation events are routed to.
const QueueName = "reservation.events"

// EventType names what happened to a reservation.
type EventType string

const (
	EventReservationCreated EventType = "reservation.created"
	EventReservationUpdated EventType = "reservation.updated"
	EventStatusChanged      EventType = "reservation.status_changed"
	EventReservationSeated  EventType = "reservation.seated"
	EventReservationFinish  EventType = "reservation.finished"
)

// ReservationEvent is published after a reservation or table write
// commits. It carries enough for downstream consumers to log or notify
// without querying the primary database.
type ReservationEvent struct {
	ID              string                  `json:"event_id"`
	Type            EventType               `json:"type"`
	ReservationID   uint64                  `json:"reservation_id"`
	TableID         uint64                  `json:"table_id,omitempty"`
	Status          model.ReservationStatus `json:"status"`
	PreviousStatus  model.ReservationStatus `json:"previous_status,omitempty"`
	ReservationDate string                  `json:"reservation_date,omitempty"`
	ReservationTime string                  `json:"reservation_time,omitempty"`
	People          int                     `json:"people,omitempty"`
	OccurredAt      time.Time               `json:"occurred_at"`
}

// NewReservationEvent describes r after a create, update or status change.
func NewReservationEvent(typ EventType, r *model.Reservation, previous model.ReservationStatus, at time.Time) ReservationEvent {
	return ReservationEvent{
		ID:              uuid.NewString(),
		Type:            typ,
		ReservationID:   r.ID,
		Status:          r.Status,
		PreviousStatus:  previous,
		ReservationDate: r.Date,
		ReservationTime: r.Time,
		People:          r.People,
		OccurredAt:      at.UTC(),
	}
}

// NewSeatingEvent describes a seat or clear on a table.
func NewSeatingEvent(s *model.Seating, at time.Time) ReservationEvent {
	typ, previous := EventReservationSeated, model.StatusBooked
	if s.Status == model.StatusFinished {
		typ, previous = EventReservationFinish, model.StatusSeated
	}
	return ReservationEvent{
		ID:             uuid.NewString(),
		Type:           typ,
		ReservationID:  s.ReservationID,
		TableID:        s.TableID,
		Status:         s.Status,
		PreviousStatus: previous,
		OccurredAt:     at.UTC(),
	}
}
