package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mytrips/service-trips/internal/application"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	"github.com/mytrips/service-trips/pkg/auth"
	"github.com/mytrips/service-trips/pkg/middleware"
	"github.com/mytrips/service-trips/pkg/response"
)

// PlacemarkHandler handles HTTP requests for placemark operations.
type PlacemarkHandler struct {
	service *application.PlacemarkService
}

// NewPlacemarkHandler creates a new PlacemarkHandler.
func NewPlacemarkHandler(service *application.PlacemarkService) *PlacemarkHandler {
	return &PlacemarkHandler{service: service}
}

// RegisterRoutes registers all placemark routes on the given router group.
func (h *PlacemarkHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	placemarks := r.Group("/api/v1/placemarks")
	placemarks.Use(authMW)
	{
		placemarks.GET("", h.ListPlacemarks)
		placemarks.PATCH("/:id", h.UpdatePlacemark)
		placemarks.POST("/:id/membership", h.ToggleMembership)
	}
}

// ListPlacemarks handles GET /api/v1/placemarks?state=&destination_id=.
func (h *PlacemarkHandler) ListPlacemarks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var destinationID *uuid.UUID
	if raw := c.Query("destination_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid destination ID")
			return
		}
		destinationID = &id
	}

	state := placemarkDomain.State(c.Query("state"))
	result, err := h.service.ListPlacemarks(c.Request.Context(), userID, state, destinationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePlacemark handles PATCH /api/v1/placemarks/:id.
func (h *PlacemarkHandler) UpdatePlacemark(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	placemarkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid placemark ID")
		return
	}

	var req application.UpdatePlacemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateDetails(c.Request.Context(), userID, placemarkID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ToggleMembership handles POST /api/v1/placemarks/:id/membership.
func (h *PlacemarkHandler) ToggleMembership(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	placemarkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid placemark ID")
		return
	}

	var req application.ToggleMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ToggleMembership(c.Request.Context(), userID, placemarkID, req.DestinationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
