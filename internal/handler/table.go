package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/occupancy"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/validation"
)

// TableHandler serves /tables and the seat/clear operations.
type TableHandler struct {
	Deps
}

func NewTableHandler(d Deps) *TableHandler {
	return &TableHandler{Deps: d.withDefaults()}
}

// List handles GET /tables, ordered by table name.
func (h *TableHandler) List(c echo.Context) error {
	out, err := h.Store.ListTables(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

// Create handles POST /tables. New tables are free.
func (h *TableHandler) Create(c echo.Context) error {
	data, err := bindData(c)
	if err != nil {
		return err
	}
	fields, err := validation.Table(data)
	if err != nil {
		return err
	}
	t, err := h.Store.CreateTable(c.Request().Context(), fields)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, t)
}

// Read handles GET /tables/:table_id.
func (h *TableHandler) Read(c echo.Context) error {
	id, err := pathID(c, "table_id", tableNotFound)
	if err != nil {
		return err
	}
	t, err := h.Store.GetTable(c.Request().Context(), id)
	if err != nil {
		return storageError(err, id, 0)
	}
	return respond(c, http.StatusOK, t)
}

// Seat handles PUT /tables/:table_id/seat: the table becomes occupied by
// the reservation and the reservation becomes seated, in one transaction.
func (h *TableHandler) Seat(c echo.Context) error {
	data, err := bindData(c)
	if err != nil {
		return err
	}
	reservationID, err := validation.SeatRequest(data)
	if err != nil {
		return err
	}
	tableID, err := pathID(c, "table_id", tableNotFound)
	if err != nil {
		return err
	}
	s, err := h.Store.SeatTable(c.Request().Context(), tableID, reservationID, occupancy.CheckSeat)
	if err != nil {
		return storageError(err, tableID, reservationID)
	}
	h.Metrics.TableSeated()
	h.Metrics.StatusChanged(model.StatusBooked, model.StatusSeated)
	h.publish(c, queue.NewSeatingEvent(s, h.Clock.Now()))
	return respond(c, http.StatusOK, s)
}

// Clear handles DELETE /tables/:table_id/seat: the seated reservation is
// finished and the table freed, in one transaction.
func (h *TableHandler) Clear(c echo.Context) error {
	tableID, err := pathID(c, "table_id", tableNotFound)
	if err != nil {
		return err
	}
	s, err := h.Store.ClearTable(c.Request().Context(), tableID, occupancy.CheckClear)
	if err != nil {
		return storageError(err, tableID, 0)
	}
	h.Metrics.TableCleared()
	h.Metrics.StatusChanged(model.StatusSeated, model.StatusFinished)
	h.publish(c, queue.NewSeatingEvent(s, h.Clock.Now()))
	return respond(c, http.StatusOK, s)
}
