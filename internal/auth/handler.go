package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c echo.Context, identity Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the caller set by the JWT middleware.
func IdentityFrom(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(identityKey).(Identity)
	return identity, ok && identity.UID != ""
}

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) Profile(c echo.Context) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Authenticated User",
		"uid":          identity.UID,
		"display_name": identity.DisplayName,
		"role":         identity.Role,
	})
}
