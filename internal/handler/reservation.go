package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/validation"
)

// ReservationHandler serves /reservations.
type ReservationHandler struct {
	Deps
}

func NewReservationHandler(d Deps) *ReservationHandler {
	return &ReservationHandler{Deps: d.withDefaults()}
}

// List handles GET /reservations. ?date= wins over ?mobile_number=;
// finished reservations are never listed.
func (h *ReservationHandler) List(c echo.Context) error {
	f := model.ReservationFilter{
		Date:         strings.TrimSpace(c.QueryParam("date")),
		MobilePrefix: strings.TrimSpace(c.QueryParam("mobile_number")),
	}
	out, err := h.Store.ListReservations(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

// Create handles POST /reservations. New reservations are always booked.
func (h *ReservationHandler) Create(c echo.Context) error {
	data, err := bindData(c)
	if err != nil {
		return err
	}
	fields, err := h.Validator.Reservation(data)
	if err != nil {
		return err
	}
	r, err := h.Store.CreateReservation(c.Request().Context(), fields)
	if err != nil {
		return err
	}
	h.Metrics.ReservationCreated()
	h.publish(c, queue.NewReservationEvent(queue.EventReservationCreated, r, "", h.Clock.Now()))
	return respond(c, http.StatusCreated, r)
}

// Read handles GET /reservations/:reservation_id.
func (h *ReservationHandler) Read(c echo.Context) error {
	r, err := h.load(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, r)
}

// Update handles PUT /reservations/:reservation_id. It replaces every field
// but status; a finished reservation cannot be edited.
func (h *ReservationHandler) Update(c echo.Context) error {
	data, err := bindData(c)
	if err != nil {
		return err
	}
	if _, err := validation.Body(data); err != nil {
		return err
	}
	current, err := h.load(c)
	if err != nil {
		return err
	}
	if current.Status == model.StatusFinished {
		return model.Conflict(model.CodeFinishedImmutable, "a 'finished' reservation cannot be updated")
	}
	fields, err := h.Validator.Reservation(data)
	if err != nil {
		return err
	}
	r, err := h.Store.UpdateReservation(c.Request().Context(), current.ID, fields)
	if err != nil {
		return storageError(err, 0, current.ID)
	}
	h.publish(c, queue.NewReservationEvent(queue.EventReservationUpdated, r, "", h.Clock.Now()))
	return respond(c, http.StatusOK, r)
}

// UpdateStatus handles PUT /reservations/:reservation_id/status and moves
// the reservation along the status state machine. Finishing a seated
// reservation frees its table.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	data, err := bindData(c)
	if err != nil {
		return err
	}
	if _, err := validation.Body(data); err != nil {
		return err
	}
	current, err := h.load(c)
	if err != nil {
		return err
	}
	next, err := validation.StatusUpdate(data)
	if err != nil {
		return err
	}
	change, err := h.Store.UpdateReservationStatus(c.Request().Context(), current.ID, next, model.CheckTransition)
	if err != nil {
		return storageError(err, 0, current.ID)
	}
	h.Metrics.StatusChanged(change.From, change.To)
	if change.TableID != 0 {
		h.Metrics.TableCleared()
	}

	updated := *current
	updated.Status = change.To
	h.publish(c, queue.NewReservationEvent(queue.EventStatusChanged, &updated, change.From, h.Clock.Now()))
	return respond(c, http.StatusOK, echo.Map{"status": change.To})
}

// load resolves :reservation_id or reports it as not found.
func (h *ReservationHandler) load(c echo.Context) (*model.Reservation, error) {
	id, err := pathID(c, "reservation_id", reservationNotFound)
	if err != nil {
		return nil, err
	}
	r, err := h.Store.GetReservation(c.Request().Context(), id)
	if err != nil {
		return nil, storageError(err, 0, id)
	}
	return r, nil
}
