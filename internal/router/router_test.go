package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/logging"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memory"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

const secret = "router-test-secret"

func newServer(t *testing.T, withAuth bool) *echo.Echo {
	t.Helper()
	store := memory.NewStore()
	deps := handler.Deps{Store: store, Logger: logging.Discard()}
	o := Options{
		Reservations: handler.NewReservationHandler(deps),
		Tables:       handler.NewTableHandler(deps),
		Ready:        handler.Ready(map[string]handler.Pinger{"storage": store}),
		Logger:       logging.Discard(),
	}
	if withAuth {
		hash, err := utils.HashPassword("pw", bcrypt.MinCost)
		require.NoError(t, err)
		o.Auth = handler.NewAuthHandler("staff", hash, secret, time.Hour, nil, logging.Discard())
		o.JWTSecret = secret
	}
	e := echo.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logging.Discard(), nil)
	RegisterRoutes(e, o)
	return e
}

func serve(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProbesAndMetrics(t *testing.T) {
	e := newServer(t, false)

	rec := serve(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(e, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"ok"`)

	rec = serve(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDIsSet(t *testing.T) {
	e := newServer(t, false)
	rec := serve(e, http.MethodGet, "/tables", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRouteErrors(t *testing.T) {
	e := newServer(t, true)

	rec := serve(e, http.MethodGet, "/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Path not found: /unknown"}`, rec.Body.String())

	rec = serve(e, http.MethodPatch, "/tables", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"PATCH not allowed for /tables"}`, rec.Body.String())
}

func TestAuthGuardsWritesOnly(t *testing.T) {
	e := newServer(t, true)
	table := `{"data":{"table_name":"Bar #1","capacity":4}}`

	rec := serve(e, http.MethodGet, "/tables", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodPost, "/tables", table, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodPost, "/tables", table, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken(secret, "guest", "GUEST", time.Hour, time.Now())
	require.NoError(t, err)
	rec = serve(e, http.MethodPost, "/tables", table, other.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(e, http.MethodPost, "/auth/login", `{"username":"staff","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := between(rec.Body.String(), `"access_token":"`, `"`)
	require.NotEmpty(t, token)

	rec = serve(e, http.MethodPost, "/tables", table, token)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWithoutAuthWritesAreOpen(t *testing.T) {
	e := newServer(t, false)

	rec := serve(e, http.MethodPost, "/tables", `{"data":{"table_name":"Bar #1","capacity":4}}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodPost, "/auth/login", `{"username":"staff","password":"pw"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	j := strings.Index(s, end)
	if j < 0 {
		return ""
	}
	return s[:j]
}
