package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"funhub/internal/ingest"
	"funhub/internal/naming"
	"funhub/internal/services"
)

// maxUploadBytes caps uploaded name lists.
const maxUploadBytes = 1 << 20

// HTTPHandler holds the dependencies for the HTTP handlers, like the session service.
type HTTPHandler struct {
	service   *services.SessionService
	templates *template.Template
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.SessionService, templates *template.Template) *HTTPHandler {
	return &HTTPHandler{
		service:   service,
		templates: templates,
	}
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	buf := new(bytes.Buffer)
	if err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData); err != nil {
		logger.Errorf("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	pageData["PageContent"] = template.HTML(buf.String())

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, "layout.html", pageData); err != nil {
		logger.Errorf("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// RegisterPublicRoutes registers the routes that need no session.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)
	router.GET("/api/themes", h.ListThemes)
}

// RegisterTenantRoutes registers the routes bound to the caller's session.
func (h *HTTPHandler) RegisterTenantRoutes(router gin.IRouter) {
	router.GET("/", h.ShowIndex)

	api := router.Group("/api")
	api.GET("/participants", h.GetParticipants)
	api.POST("/participants", h.SetParticipants)
	api.POST("/participants/upload", h.UploadParticipants)
	api.DELETE("/participants", h.ClearParticipants)

	api.GET("/draw", h.GetDraw)
	api.POST("/draw", h.StartDraw)
	api.POST("/draw/reset", h.ResetDraw)
	api.GET("/draw/stream", h.StreamEvents)

	api.GET("/groups", h.GetGroups)
	api.POST("/groups", h.CreateGroups)

	api.GET("/export/winners.csv", h.ExportWinnersCSV)
	api.GET("/export/groups.csv", h.ExportGroupsCSV)
}

// Health reports liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.service.SessionCount()})
}

// ListThemes returns the group naming themes.
func (h *HTTPHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"themes": naming.Themes(), "default": naming.DefaultTheme})
}

// ShowIndex renders the single page UI.
func (h *HTTPHandler) ShowIndex(c *gin.Context) {
	tenantID := TenantID(c)
	participants := h.service.Participants(tenantID)
	size, theme := h.service.GroupSettings(tenantID)
	data := gin.H{
		"title":        "Fun Hub",
		"Participants": participants,
		"Names":        strings.Join(ingest.Names(participants), "\n"),
		"Draw":         h.service.DrawState(tenantID),
		"Groups":       h.service.Groups(tenantID),
		"GroupSize":    size,
		"Theme":        theme,
		"Themes":       naming.Themes(),
	}
	h.renderPage(c, data, "index.html")
}

// GetParticipants returns the participant list.
func (h *HTTPHandler) GetParticipants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"participants": h.service.Participants(TenantID(c))})
}

type participantsRequest struct {
	Names string `form:"names" json:"names"`
}

// SetParticipants replaces the list with the pasted names.
func (h *HTTPHandler) SetParticipants(c *gin.Context) {
	var req participantsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant list"})
		return
	}
	names, err := ingest.ParseText(req.Names)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.replaceParticipants(c, names)
}

// UploadParticipants replaces the list with the names of an uploaded .csv or .txt file.
func (h *HTTPHandler) UploadParticipants(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving file: " + err.Error()})
		return
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", ".txt":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv and .txt files are accepted"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error opening file: " + err.Error()})
		return
	}
	defer file.Close()

	names, err := ingest.ParseNames(file)
	if err != nil {
		logger.Infof("Rejected participant upload %s: %v", header.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.replaceParticipants(c, names)
}

func (h *HTTPHandler) replaceParticipants(c *gin.Context, names []string) {
	participants, err := h.service.SetParticipants(TenantID(c), names)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// ClearParticipants empties the list.
func (h *HTTPHandler) ClearParticipants(c *gin.Context) {
	if err := h.service.ClearParticipants(TenantID(c)); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": []any{}})
}

// GetDraw returns the draw state.
func (h *HTTPHandler) GetDraw(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.DrawState(TenantID(c)))
}

type drawRequest struct {
	AllowRepeat bool `form:"allowRepeat" json:"allowRepeat"`
}

// StartDraw starts a spin. A request that cannot start one is answered with
// started=false and the unchanged state.
func (h *HTTPHandler) StartDraw(c *gin.Context) {
	var req drawRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draw request"})
			return
		}
	}
	tenantID := TenantID(c)
	started := h.service.StartDraw(tenantID, req.AllowRepeat)
	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{"started": started, "state": h.service.DrawState(tenantID)})
}

// ResetDraw clears the winners history.
func (h *HTTPHandler) ResetDraw(c *gin.Context) {
	tenantID := TenantID(c)
	if err := h.service.ResetDraw(tenantID); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.DrawState(tenantID))
}

// GetGroups returns the current groups and the settings that made them.
func (h *HTTPHandler) GetGroups(c *gin.Context) {
	tenantID := TenantID(c)
	size, theme := h.service.GroupSettings(tenantID)
	c.JSON(http.StatusOK, gin.H{"groups": h.service.Groups(tenantID), "size": size, "theme": theme})
}

type groupsRequest struct {
	Size  int    `form:"size" json:"size"`
	Theme string `form:"theme" json:"theme"`
}

// CreateGroups runs the auto grouping.
func (h *HTTPHandler) CreateGroups(c *gin.Context) {
	var req groupsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grouping request"})
		return
	}
	tenantID := TenantID(c)
	groups, err := h.service.Partition(c.Request.Context(), tenantID, req.Size, req.Theme)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if groups == nil {
		groups = h.service.Groups(tenantID)
	}
	size, theme := h.service.GroupSettings(tenantID)
	c.JSON(http.StatusOK, gin.H{"groups": groups, "size": size, "theme": theme})
}

func (h *HTTPHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSpinning),
		errors.Is(err, services.ErrPartitionInProgress),
		errors.Is(err, services.ErrParticipantsChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		logger.Errorf("Unexpected service error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
