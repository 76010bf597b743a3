package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-reservation/internal/clock"
	"github.com/iliyamo/restaurant-reservation/internal/logging"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memory"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
	"github.com/iliyamo/restaurant-reservation/internal/validation"
)

var testNow = time.Date(2035, 1, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type testAPI struct {
	e      *echo.Echo
	events *recordingPublisher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clk := clock.NewFixed(testNow)
	events := &recordingPublisher{}
	deps := Deps{
		Store:     memory.NewStore(),
		Validator: validation.New(validation.DefaultSchedule(), clk),
		Clock:     clk,
		Events:    events,
		Logger:    logging.Discard(),
	}
	rh := NewReservationHandler(deps)
	th := NewTableHandler(deps)

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logging.Discard(), nil)
	e.GET("/reservations", rh.List)
	e.POST("/reservations", rh.Create)
	e.GET("/reservations/:reservation_id", rh.Read)
	e.PUT("/reservations/:reservation_id", rh.Update)
	e.PUT("/reservations/:reservation_id/status", rh.UpdateStatus)
	e.GET("/tables", th.List)
	e.POST("/tables", th.Create)
	e.GET("/tables/:table_id", th.Read)
	e.PUT("/tables/:table_id/seat", th.Seat)
	e.DELETE("/tables/:table_id/seat", th.Clear)
	return &testAPI{e: e, events: events}
}

func (a *testAPI) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

const validReservation = `{"data":{"first_name":"Ada","last_name":"Lovelace","mobile_number":"555-0100",
	"reservation_date":"2035-03-01","reservation_time":"19:30","people":2}}`

func (a *testAPI) createReservation(t *testing.T, people int) uint64 {
	t.Helper()
	body := strings.Replace(validReservation, `"people":2`, `"people":`+itoa(people), 1)
	code, out := a.do(t, http.MethodPost, "/reservations", body)
	require.Equal(t, http.StatusCreated, code, out)
	return uint64(data(t, out)["reservation_id"].(float64))
}

func (a *testAPI) createTable(t *testing.T, name string, capacity int) uint64 {
	t.Helper()
	code, out := a.do(t, http.MethodPost, "/tables", `{"data":{"table_name":"`+name+`","capacity":`+itoa(capacity)+`}}`)
	require.Equal(t, http.StatusCreated, code, out)
	return uint64(data(t, out)["table_id"].(float64))
}

func data(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	d, ok := out["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", out)
	return d
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func idPath(prefix string, id uint64, suffix string) string {
	b, _ := json.Marshal(id)
	return prefix + string(b) + suffix
}

func TestCreateReservation(t *testing.T) {
	api := newTestAPI(t)

	code, out := api.do(t, http.MethodPost, "/reservations", validReservation)
	require.Equal(t, http.StatusCreated, code)
	d := data(t, out)
	assert.Equal(t, "booked", d["status"])
	assert.Equal(t, "2035-03-01", d["reservation_date"])
	assert.Equal(t, "19:30", d["reservation_time"])
	assert.Equal(t, float64(2), d["people"])
	assert.Equal(t, []queue.EventType{queue.EventReservationCreated}, api.events.types())
}

func TestCreateReservation_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"no body", ``, "Body must include a request body data object"},
		{"data not object", `{"data":"x"}`, "Body must include a request body data object"},
		{"missing first name", strings.Replace(validReservation, `"first_name":"Ada",`, ``, 1), "Field required: 'first_name'"},
		{"bad date", strings.Replace(validReservation, `2035-03-01`, `01/03/2035`, 1),
			"'reservation_date' or 'reservation_time' field are in incorrect format"},
		{"people zero", strings.Replace(validReservation, `"people":2`, `"people":0`, 1), "'people' field must be at least 1"},
		{"people text", strings.Replace(validReservation, `"people":2`, `"people":"2"`, 1), "'people' field must be a number"},
		{"closed tuesday", strings.Replace(validReservation, `2035-03-01`, `2035-03-06`, 1),
			"'reservation_date' field: restaurant is closed on tuesday"},
		{"past", strings.Replace(validReservation, `2035-03-01`, `2034-12-31`, 1),
			"'reservation_date' and 'reservation_time' field must be in the future"},
		{"too early", strings.Replace(validReservation, `19:30`, `09:00`, 1),
			"'reservation_time' field: restaurant is not open until 10:30"},
		{"after last booking", strings.Replace(validReservation, `19:30`, `21:45`, 1),
			"'reservation_time' field: reservation must be made no later than 21:30"},
		{"seated status", strings.Replace(validReservation, `"people":2`, `"people":2,"status":"seated"`, 1),
			"'status' field cannot be seated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newTestAPI(t)
			code, out := api.do(t, http.MethodPost, "/reservations", tc.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tc.want, out["error"])
			assert.Empty(t, api.events.types())
		})
	}
}

func TestCreateReservation_LastBookingIsAccepted(t *testing.T) {
	api := newTestAPI(t)
	code, _ := api.do(t, http.MethodPost, "/reservations", strings.Replace(validReservation, `19:30`, `21:30`, 1))
	assert.Equal(t, http.StatusCreated, code)
}

func TestListReservations_FiltersAndExcludesFinished(t *testing.T) {
	api := newTestAPI(t)
	first := api.createReservation(t, 2)
	api.createReservation(t, 3)
	tableID := api.createTable(t, "Bar #1", 4)

	code, _ := api.do(t, http.MethodPut, idPath("/tables/", tableID, "/seat"), `{"data":{"reservation_id":`+itoa(int(first))+`}}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(t, http.MethodDelete, idPath("/tables/", tableID, "/seat"), "")
	require.Equal(t, http.StatusOK, code)

	code, out := api.do(t, http.MethodGet, "/reservations?date=2035-03-01", "")
	require.Equal(t, http.StatusOK, code)
	list := out["data"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, float64(3), list[0].(map[string]any)["people"])

	code, out = api.do(t, http.MethodGet, "/reservations?mobile_number=5550", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"].([]any), 1)

	code, out = api.do(t, http.MethodGet, "/reservations?mobile_number=999", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, out["data"])
}

func TestReadReservation_NotFound(t *testing.T) {
	api := newTestAPI(t)

	code, out := api.do(t, http.MethodGet, "/reservations/42", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "reservation id 42 does not exist", out["error"])

	code, out = api.do(t, http.MethodGet, "/reservations/abc", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "reservation id abc does not exist", out["error"])
}

func TestUpdateReservation(t *testing.T) {
	api := newTestAPI(t)
	id := api.createReservation(t, 2)

	body := strings.Replace(validReservation, `"first_name":"Ada"`, `"first_name":"Grace"`, 1)
	code, out := api.do(t, http.MethodPut, idPath("/reservations/", id, ""), body)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "Grace", data(t, out)["first_name"])
	assert.Equal(t, "booked", data(t, out)["status"])

	code, out = api.do(t, http.MethodPut, "/reservations/99", body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "reservation id 99 does not exist", out["error"])

	code, out = api.do(t, http.MethodPut, idPath("/reservations/", id, ""), `{"data":{"first_name":"X"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Field required: 'last_name'", out["error"])
}

func TestUpdateReservation_FinishedIsImmutable(t *testing.T) {
	api := newTestAPI(t)
	id := api.createReservation(t, 2)
	tableID := api.createTable(t, "Bar #1", 4)
	api.do(t, http.MethodPut, idPath("/tables/", tableID, "/seat"), `{"data":{"reservation_id":`+itoa(int(id))+`}}`)
	api.do(t, http.MethodDelete, idPath("/tables/", tableID, "/seat"), "")

	code, out := api.do(t, http.MethodPut, idPath("/reservations/", id, ""), validReservation)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "a 'finished' reservation cannot be updated", out["error"])

	code, out = api.do(t, http.MethodPut, idPath("/reservations/", id, "/status"), `{"data":{"status":"cancelled"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "a 'finished' reservation cannot be updated", out["error"])
}

func TestUpdateStatus(t *testing.T) {
	api := newTestAPI(t)
	id := api.createReservation(t, 2)
	path := idPath("/reservations/", id, "/status")

	code, out := api.do(t, http.MethodPut, path, `{"data":{"status":"bogus"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "'status' field cannot be bogus", out["error"])

	code, out = api.do(t, http.MethodPut, path, `{"data":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Field required: 'status'", out["error"])

	code, out = api.do(t, http.MethodPut, path, `{"data":{"status":"cancelled"}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"status": "cancelled"}, out["data"])

	code, out = api.do(t, http.MethodPut, path, `{"data":{"status":"booked"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "reservation status cannot change from 'cancelled' to 'booked'", out["error"])

	assert.Equal(t, []queue.EventType{queue.EventReservationCreated, queue.EventStatusChanged}, api.events.types())
}

func TestTables_CreateAndList(t *testing.T) {
	api := newTestAPI(t)
	api.createTable(t, "Patio", 6)
	api.createTable(t, "Bar #1", 2)

	code, out := api.do(t, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, code)
	list := out["data"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "Bar #1", list[0].(map[string]any)["table_name"])
	assert.Equal(t, "free", list[0].(map[string]any)["status"])
	assert.Nil(t, list[0].(map[string]any)["reservation_id"])

	code, out = api.do(t, http.MethodPost, "/tables", `{"data":{"table_name":"A","capacity":2}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "'table_name' field must be at least 2 characters long", out["error"])

	code, out = api.do(t, http.MethodPost, "/tables", `{"data":{"table_name":"Booth","capacity":0}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "'capacity' field must be a number of at least 1", out["error"])
}

func TestSeatAndClear(t *testing.T) {
	api := newTestAPI(t)
	resID := api.createReservation(t, 4)
	tableID := api.createTable(t, "Bar #1", 4)
	seatPath := idPath("/tables/", tableID, "/seat")
	seatBody := `{"data":{"reservation_id":` + itoa(int(resID)) + `}}`

	code, out := api.do(t, http.MethodPut, seatPath, seatBody)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "seated", data(t, out)["status"])

	_, out = api.do(t, http.MethodGet, idPath("/tables/", tableID, ""), "")
	assert.Equal(t, "occupied", data(t, out)["status"])
	assert.Equal(t, float64(resID), data(t, out)["reservation_id"])

	other := api.createReservation(t, 2)
	code, out = api.do(t, http.MethodPut, seatPath, `{"data":{"reservation_id":`+itoa(int(other))+`}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "table id "+itoa(int(tableID))+" is occupied", out["error"])

	code, out = api.do(t, http.MethodDelete, seatPath, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "finished", data(t, out)["status"])

	_, out = api.do(t, http.MethodGet, idPath("/reservations/", resID, ""), "")
	assert.Equal(t, "finished", data(t, out)["status"])
	_, out = api.do(t, http.MethodGet, idPath("/tables/", tableID, ""), "")
	assert.Equal(t, "free", data(t, out)["status"])

	code, out = api.do(t, http.MethodDelete, seatPath, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "table id "+itoa(int(tableID))+" is not occupied", out["error"])

	assert.Equal(t, []queue.EventType{
		queue.EventReservationCreated,
		queue.EventReservationSeated,
		queue.EventReservationCreated,
		queue.EventReservationFinish,
	}, api.events.types())
}

func TestSeat_Rules(t *testing.T) {
	api := newTestAPI(t)
	big := api.createReservation(t, 6)
	tableID := api.createTable(t, "Bar #1", 4)
	seatPath := idPath("/tables/", tableID, "/seat")

	code, out := api.do(t, http.MethodPut, seatPath, `{"data":{"reservation_id":`+itoa(int(big))+`}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "less than party size 6")

	code, out = api.do(t, http.MethodPut, seatPath, `{"data":{"reservation_id":99}}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "reservation id 99 does not exist", out["error"])

	code, out = api.do(t, http.MethodPut, "/tables/77/seat", `{"data":{"reservation_id":`+itoa(int(big))+`}}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "table id 77 does not exist", out["error"])

	code, out = api.do(t, http.MethodPut, seatPath, `{"data":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Field required: 'reservation_id'", out["error"])

	code, out = api.do(t, http.MethodPut, seatPath, ``)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Body must include a request body data object", out["error"])
}

func TestSeat_CancelledReservationIsRejected(t *testing.T) {
	api := newTestAPI(t)
	id := api.createReservation(t, 2)
	tableID := api.createTable(t, "Bar #1", 4)
	api.do(t, http.MethodPut, idPath("/reservations/", id, "/status"), `{"data":{"status":"cancelled"}}`)

	code, out := api.do(t, http.MethodPut, idPath("/tables/", tableID, "/seat"), `{"data":{"reservation_id":`+itoa(int(id))+`}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "reservation status cannot change from 'cancelled' to 'seated'", out["error"])
}

func TestRouteErrors(t *testing.T) {
	api := newTestAPI(t)

	code, out := api.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Path not found: /nope", out["error"])

	code, out = api.do(t, http.MethodDelete, "/reservations", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, "DELETE not allowed for /reservations", out["error"])
}

func TestErrorHandler_UnexpectedAndBusy(t *testing.T) {
	e := echo.New()
	h := NewHTTPErrorHandler(logging.Discard(), nil)

	rec := httptest.NewRecorder()
	h(errors.New("db exploded"), e.NewContext(httptest.NewRequest(http.MethodGet, "/tables", nil), rec))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h(model.ErrStorageBusy, e.NewContext(httptest.NewRequest(http.MethodPut, "/tables/1/seat", nil), rec))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h(echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), e.NewContext(httptest.NewRequest(http.MethodPost, "/tables", nil), rec))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	api := newTestAPI(t)
	api.events.err = errors.New("broker down")

	code, _ := api.do(t, http.MethodPost, "/reservations", validReservation)
	assert.Equal(t, http.StatusCreated, code)
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	h := NewAuthHandler("staff", hash, "test-secret", time.Hour, clock.NewFixed(testNow), logging.Discard())
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logging.Discard(), nil)
	e.POST("/auth/login", h.Login)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"username":"staff","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(`{"username":"staff"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(`{"username":"staff","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data utils.AccessToken `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, testNow.Add(time.Hour).Equal(out.Data.Exp))

	claims, err := utils.ParseAccessToken("test-secret", out.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "staff", claims.Subject)
	assert.Equal(t, utils.RoleStaff, claims.Role)
}

func TestReady(t *testing.T) {
	e := echo.New()
	ok := PingFunc(func(context.Context) error { return nil })
	bad := PingFunc(func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	require.NoError(t, Ready(map[string]Pinger{"storage": ok})(e.NewContext(httptest.NewRequest(http.MethodGet, "/readyz", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, Ready(map[string]Pinger{"storage": ok, "redis": bad})(e.NewContext(httptest.NewRequest(http.MethodGet, "/readyz", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}

func TestUpdateStatus_FinishingSeatedReservationFreesTable(t *testing.T) {
	api := newTestAPI(t)
	resID := api.createReservation(t, 2)
	tableID := api.createTable(t, "Bar #1", 4)

	code, _ := api.do(t, http.MethodPut, idPath("/tables/", tableID, "/seat"), `{"data":{"reservation_id":`+itoa(int(resID))+`}}`)
	require.Equal(t, http.StatusOK, code)

	code, out := api.do(t, http.MethodPut, idPath("/reservations/", resID, "/status"), `{"data":{"status":"finished"}}`)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, map[string]any{"status": "finished"}, out["data"])

	_, out = api.do(t, http.MethodGet, idPath("/tables/", tableID, ""), "")
	assert.Equal(t, "free", data(t, out)["status"])
	assert.Nil(t, data(t, out)["reservation_id"])

	// The freed table takes the next party.
	next := api.createReservation(t, 2)
	code, _ = api.do(t, http.MethodPut, idPath("/tables/", tableID, "/seat"), `{"data":{"reservation_id":`+itoa(int(next))+`}}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestCreateReservation_EachMissingFieldIsNamed(t *testing.T) {
	fields := map[string]string{
		"first_name":       `"first_name":"Ada",`,
		"last_name":        `"last_name":"Lovelace",`,
		"mobile_number":    `"mobile_number":"555-0100",`,
		"reservation_date": `"reservation_date":"2035-03-01",`,
		"reservation_time": `"reservation_time":"19:30",`,
		"people":           `,"people":2`,
	}
	for field, fragment := range fields {
		t.Run(field, func(t *testing.T) {
			api := newTestAPI(t)
			body := strings.Replace(validReservation, fragment, ``, 1)
			require.NotEqual(t, validReservation, body)

			code, out := api.do(t, http.MethodPost, "/reservations", body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "Field required: '"+field+"'", out["error"])
		})
	}
}

func TestCreateReservation_PeopleMustBeWholeAndPositive(t *testing.T) {
	for _, people := range []string{`0`, `-3`, `"4"`, `2.5`, `true`} {
		t.Run(people, func(t *testing.T) {
			api := newTestAPI(t)
			body := strings.Replace(validReservation, `"people":2`, `"people":`+people, 1)
			code, out := api.do(t, http.MethodPost, "/reservations", body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Contains(t, out["error"], "'people' field")
		})
	}
}

func TestUpdateStatus_FinishedRejectsEveryTarget(t *testing.T) {
	api := newTestAPI(t)
	id := api.createReservation(t, 2)
	tableID := api.createTable(t, "Bar #1", 4)
	code, _ := api.do(t, http.MethodPut, idPath("/tables/", tableID, "/seat"), `{"data":{"reservation_id":`+itoa(int(id))+`}}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(t, http.MethodDelete, idPath("/tables/", tableID, "/seat"), "")
	require.Equal(t, http.StatusOK, code)

	for _, target := range []string{"booked", "seated", "finished", "cancelled"} {
		t.Run(target, func(t *testing.T) {
			code, out := api.do(t, http.MethodPut, idPath("/reservations/", id, "/status"), `{"data":{"status":"`+target+`"}}`)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "a 'finished' reservation cannot be updated", out["error"])
		})
	}
}

func TestTable_CreateThenRead(t *testing.T) {
	api := newTestAPI(t)
	id := api.createTable(t, "A1", 4)

	code, out := api.do(t, http.MethodGet, idPath("/tables/", id, ""), "")
	require.Equal(t, http.StatusOK, code)
	d := data(t, out)
	assert.Equal(t, "A1", d["table_name"])
	assert.Equal(t, float64(4), d["capacity"])
	assert.Equal(t, "free", d["status"])
	v, present := d["reservation_id"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestReadReservation_RepeatedReadsMatch(t *testing.T) {
	api := newTestAPI(t)
	id := api.createReservation(t, 3)

	code, first := api.do(t, http.MethodGet, idPath("/reservations/", id, ""), "")
	require.Equal(t, http.StatusOK, code)
	code, second := api.do(t, http.MethodGet, idPath("/reservations/", id, ""), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, first, second)
}
