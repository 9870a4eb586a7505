package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the handler into a gin engine. Request logging is only
// enabled in debug mode.
func NewRouter(h *HTTPHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if gin.IsDebugging() {
		r.Use(gin.Logger())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.RegisterPublicRoutes(r)

	tenantRoutes := r.Group("/")
	tenantRoutes.Use(h.TenantMiddleware())
	h.RegisterTenantRoutes(tenantRoutes)
	return r
}
