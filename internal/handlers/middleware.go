package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	tenantCookie = "funhub_sid"
	tenantKey    = "tenantID"
	cookieMaxAge = 7 * 24 * 60 * 60
)

// TenantMiddleware identifies the caller's session by cookie, issuing a new
// session id when the cookie is missing or malformed.
func (h *HTTPHandler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := c.Cookie(tenantCookie)
		if err != nil || uuid.Validate(tenantID) != nil {
			tenantID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(tenantCookie, tenantID, cookieMaxAge, "/", "", false, true)
		}
		c.Set(tenantKey, tenantID)
		c.Next()
	}
}

// TenantID returns the session id set by TenantMiddleware.
func TenantID(c *gin.Context) string {
	return c.GetString(tenantKey)
}
