package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mytrips/service-trips/internal/application"
	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/pkg/auth"
	"github.com/mytrips/service-trips/pkg/middleware"
	"github.com/mytrips/service-trips/pkg/response"
)

// MapHandler exposes the caller's map session. Every mutating call answers
// with the resulting session state.
type MapHandler struct {
	sessions *application.SessionRegistry
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(sessions *application.SessionRegistry) *MapHandler {
	return &MapHandler{sessions: sessions}
}

// RegisterRoutes registers the map session routes.
func (h *MapHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	session := r.Group("/api/v1/map/session")
	session.Use(authMW)
	{
		session.GET("", h.GetState)
		session.POST("/enter", h.Enter)
		session.POST("/exit", h.Exit)
		session.POST("/search", h.Search)
		session.DELETE("/results", h.ClearResults)
		session.POST("/pins", h.PlacePin)
		session.POST("/select", h.Select)
		session.POST("/dismiss", h.Dismiss)
		session.PUT("/travel-mode", h.SetTravelMode)
		session.POST("/route/show", h.ShowRoute)
		session.POST("/route/hide", h.HideRoute)
		session.DELETE("/route", h.ClearRoute)
		session.PUT("/camera", h.SetCamera)
		session.PUT("/manual-mode", h.SetManualMode)
	}
}

func (h *MapHandler) session(c *gin.Context) (*application.MapSession, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return h.sessions.Get(userID), true
}

func writeState(c *gin.Context, s *application.MapSession) {
	state, err := s.State(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}

// GetState handles GET /api/v1/map/session.
func (h *MapHandler) GetState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	writeState(c, s)
}

// Enter handles POST /api/v1/map/session/enter.
func (h *MapHandler) Enter(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req application.EnterViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := s.Enter(c.Request.Context(), req.DestinationID); err != nil {
		response.Error(c, err)
		return
	}
	writeState(c, s)
}

// Exit handles POST /api/v1/map/session/exit.
func (h *MapHandler) Exit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Exit(c.Request.Context())
	writeState(c, s)
}

// Search handles POST /api/v1/map/session/search.
func (h *MapHandler) Search(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req application.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	results, err := s.Search(c.Request.Context(), req.Query, req.Region)
	if err != nil {
		response.Error(c, err)
		return
	}
	if results == nil {
		results = []application.PlacemarkDTO{}
	}

	response.Success(c, application.SearchResultsDTO{Results: results})
}

// ClearResults handles DELETE /api/v1/map/session/results.
func (h *MapHandler) ClearResults(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	removed := s.ClearEphemeralResults(c.Request.Context())
	response.Success(c, application.ClearResultsDTO{Removed: removed})
}

// PlacePin handles POST /api/v1/map/session/pins.
func (h *MapHandler) PlacePin(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req application.PlacePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pin, err := s.PlaceManualPin(c.Request.Context(), geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, pin)
}

// Select handles POST /api/v1/map/session/select.
func (h *MapHandler) Select(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req application.SelectPlacemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := s.SelectPlacemark(c.Request.Context(), req.PlacemarkID); err != nil {
		response.Error(c, err)
		return
	}
	writeState(c, s)
}

// Dismiss handles POST /api/v1/map/session/dismiss.
func (h *MapHandler) Dismiss(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.DismissSelection(c.Request.Context())
	writeState(c, s)
}

// SetTravelMode handles PUT /api/v1/map/session/travel-mode.
func (h *MapHandler) SetTravelMode(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req application.TravelModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := s.SetTravelMode(c.Request.Context(), req.Mode); err != nil {
		response.Error(c, err)
		return
	}
	writeState(c, s)
}

// ShowRoute handles POST /api/v1/map/session/route/show.
func (h *MapHandler) ShowRoute(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.ShowRoute(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	writeState(c, s)
}

// HideRoute handles POST /api/v1/map/session/route/hide.
func (h *MapHandler) HideRoute(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.HideRoute(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	writeState(c, s)
}

// ClearRoute handles DELETE /api/v1/map/session/route.
func (h *MapHandler) ClearRoute(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.ClearRoute(c.Request.Context())
	writeState(c, s)
}

// SetCamera handles PUT /api/v1/map/session/camera with the visible region.
func (h *MapHandler) SetCamera(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var region geo.Region
	if err := c.ShouldBindJSON(&region); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := s.SetVisibleRegion(c.Request.Context(), region); err != nil {
		response.Error(c, err)
		return
	}
	writeState(c, s)
}

// SetManualMode handles PUT /api/v1/map/session/manual-mode.
func (h *MapHandler) SetManualMode(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req application.ManualPinModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.SetManualPinMode(c.Request.Context(), *req.Enabled)
	writeState(c, s)
}
