package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/clock"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/validation"
)

// Deps bundles what the reservation and table handlers share.
type Deps struct {
	Store     Store
	Validator *validation.Validator
	Clock     clock.Clock
	Events    queue.Publisher
	Metrics   *metrics.Metrics
	Logger    *log.Entry
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.NewSystem()
	}
	if d.Validator == nil {
		d.Validator = validation.New(validation.DefaultSchedule(), d.Clock)
	}
	if d.Events == nil {
		d.Events = queue.NoopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = log.NewEntry(log.StandardLogger())
	}
	return d
}

// publishTimeout bounds how long a request waits on the broker after its
// write has committed.
const publishTimeout = 3 * time.Second

// publish hands ev to the broker. Failures are logged and counted but never
// fail the request.
func (d Deps) publish(c echo.Context, ev queue.ReservationEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	err := d.Events.Publish(ctx, ev)
	d.Metrics.EventPublished(err)
	if err != nil {
		d.Logger.WithError(err).WithFields(log.Fields{"event_id": ev.ID, "type": ev.Type}).Warn("event publish failed")
	}
}

// envelope is the request and response body shape: {"data": ...}.
type envelope struct {
	Data any `json:"data"`
}

// bindData decodes the request body and returns its "data" member. An
// empty body yields nil, which validation reports as a missing body.
func bindData(c echo.Context) (any, error) {
	var req envelope
	if err := c.Bind(&req); err != nil {
		return nil, model.Validation(model.CodeInvalidFormat, "data", "request body must be a JSON object")
	}
	return req.Data, nil
}

func respond(c echo.Context, status int, payload any) error {
	return c.JSON(status, envelope{Data: payload})
}

// pathID parses a positive id path parameter. Anything else is reported
// through notFound with the raw value, since no row can have that id.
func pathID(c echo.Context, name string, notFound func(string) error) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, notFound(raw)
	}
	return id, nil
}

func reservationNotFound(id string) error {
	return model.NotFound(model.CodeReservationNotFound, fmt.Sprintf("reservation id %s does not exist", id))
}

func tableNotFound(id string) error {
	return model.NotFound(model.CodeTableNotFound, fmt.Sprintf("table id %s does not exist", id))
}

// storageError names the missing row for not-found sentinels and passes
// anything else through. A zero id means the caller did not supply it.
func storageError(err error, tableID, reservationID uint64) error {
	switch {
	case errors.Is(err, model.ErrTableNotFound) && tableID != 0:
		return tableNotFound(strconv.FormatUint(tableID, 10))
	case errors.Is(err, model.ErrReservationNotFound) && reservationID != 0:
		return reservationNotFound(strconv.FormatUint(reservationID, 10))
	}
	return err
}
