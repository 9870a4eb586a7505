package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 15 * time.Second

// StreamEvents streams the session's spin ticks, winners and list changes
// as server-sent events until the client disconnects or the session ends.
func (h *HTTPHandler) StreamEvents(c *gin.Context) {
	tenantID := TenantID(c)
	events, unsubscribe := h.service.Subscribe(tenantID)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("state", h.service.DrawState(tenantID))
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
