package middleware

import "github.com/labstack/echo/v4"

// currentUser returns the authenticated subject set by JWTAuth, or "anon".
func currentUser(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
