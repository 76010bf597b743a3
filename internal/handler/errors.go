package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// errorBody is the response shape for every failure: {"error": message}.
type errorBody struct {
	Error string `json:"error"`
}

var kindStatus = map[model.Kind]int{
	model.KindValidation:       http.StatusBadRequest,
	model.KindNotFound:         http.StatusNotFound,
	model.KindConflict:         http.StatusBadRequest,
	model.KindMethodNotAllowed: http.StatusMethodNotAllowed,
	model.KindUnknownRoute:     http.StatusNotFound,
	model.KindUnexpected:       http.StatusInternalServerError,
}

// NewHTTPErrorHandler returns echo's central error handler. Rule
// violations keep their message; anything unclassified is logged and
// reported as a bare 500.
func NewHTTPErrorHandler(logger *log.Entry, m *metrics.Metrics) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		e, status := classify(err, c)
		switch e.Kind {
		case model.KindUnexpected:
			entry := logger.WithError(err).WithFields(log.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			if e.Code == model.CodeUnexpected {
				entry.Error("unexpected error")
			} else {
				entry.Warn(e.Message)
			}
		case model.KindValidation, model.KindConflict, model.KindNotFound:
			m.RuleRejected(e.Code)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, errorBody{Error: e.Message})
		}
		if werr != nil {
			logger.WithError(werr).Warn("write error response")
		}
	}
}

// classify turns any error into a *model.Error and its HTTP status. Echo's
// own 404 and 405 become the route errors; other echo errors such as 401 or
// 429 keep their status and message.
func classify(err error, c echo.Context) (*model.Error, int) {
	var me *model.Error
	if errors.As(err, &me) {
		return me, kindStatus[me.Kind]
	}

	path := c.Request().URL.Path
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return &model.Error{Kind: model.KindUnknownRoute, Code: model.CodeUnknownRoute,
				Message: fmt.Sprintf("Path not found: %s", path)}, http.StatusNotFound
		case http.StatusMethodNotAllowed:
			return &model.Error{Kind: model.KindMethodNotAllowed, Code: model.CodeMethodNotAllowed,
				Message: fmt.Sprintf("%s not allowed for %s", c.Request().Method, path)}, http.StatusMethodNotAllowed
		}
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		kind := model.KindValidation
		if he.Code >= http.StatusInternalServerError {
			kind = model.KindUnexpected
		}
		return &model.Error{Kind: kind, Message: msg}, he.Code
	}

	switch {
	case errors.Is(err, model.ErrReservationNotFound):
		return model.NotFound(model.CodeReservationNotFound, "reservation does not exist"), http.StatusNotFound
	case errors.Is(err, model.ErrTableNotFound):
		return model.NotFound(model.CodeTableNotFound, "table does not exist"), http.StatusNotFound
	case errors.Is(err, model.ErrStorageBusy):
		return &model.Error{Kind: model.KindUnexpected, Code: model.CodeStorageBusy, Message: model.ErrStorageBusy.Error()},
			http.StatusServiceUnavailable
	}
	return &model.Error{Kind: model.KindUnexpected, Code: model.CodeUnexpected, Message: "Internal server error"},
		http.StatusInternalServerError
}
