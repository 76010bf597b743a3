package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/clock"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

// AuthHandler issues staff access tokens. There is a single staff account
// configured through the environment.
type AuthHandler struct {
	Username     string
	PasswordHash string // bcrypt
	Secret       string
	TTL          time.Duration
	Clock        clock.Clock
	Logger       *log.Entry
}

func NewAuthHandler(username, passwordHash, secret string, ttl time.Duration, clk clock.Clock, logger *log.Entry) *AuthHandler {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &AuthHandler{Username: username, PasswordHash: passwordHash, Secret: secret, TTL: ttl, Clock: clk, Logger: logger}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /auth/login and returns a bearer token for the staff
// account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username/password required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Username)) == 1
	passOK := utils.VerifyPassword(h.PasswordHash, req.Password)
	if !userOK || !passOK {
		h.Logger.WithField("username", req.Username).Warn("staff login rejected")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	access, err := utils.NewAccessToken(h.Secret, h.Username, utils.RoleStaff, h.TTL, h.Clock.Now())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, access)
}
