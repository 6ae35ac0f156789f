package middleware

import (
	"net/http"
	"strings"

	"CollegeNoticeBoard/internal/auth"

	"github.com/labstack/echo/v4"
)

// JWTMiddleware authenticates the bearer token and stores the identity.
// Browsers cannot set headers on an EventSource, so the token may also come
// in the access_token query parameter. The role is stored as issued; RBAC
// and the feed treat unknown roles as student.
func JWTMiddleware(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "))
			if tokenString == "" {
				tokenString = c.QueryParam("access_token")
			}
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Token"})
			}
			identity, err := auth.ParseJWT(tokenString, key)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid Token"})
			}
			auth.SetIdentity(c, identity)
			return next(c)
		}
	}
}
