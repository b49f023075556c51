// Package api holds helpers shared by the admin and user route packages.
package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenFromRequest extracts a bearer token from the Authorization header.
// With allowLegacy, older clients may send the token in a cookie or query
// parameter instead; the header always wins when both are present.
func TokenFromRequest(c *gin.Context, allowLegacy bool) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if !allowLegacy {
		return ""
	}
	if cookie, errCookie := c.Cookie("auth_token"); errCookie == nil {
		if token := strings.TrimSpace(cookie); token != "" {
			return token
		}
	}
	return strings.TrimSpace(c.Query("auth_token"))
}
