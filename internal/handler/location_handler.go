package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mytrips/service-trips/internal/application"
	"github.com/mytrips/service-trips/pkg/auth"
	"github.com/mytrips/service-trips/pkg/middleware"
	"github.com/mytrips/service-trips/pkg/response"
)

// LocationHandler accepts device location reports over HTTP. The same
// reports also arrive on the device.locations topic.
type LocationHandler struct {
	service *application.LocationService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(service *application.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// RegisterRoutes registers the location routes.
func (h *LocationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	loc := r.Group("/api/v1/location")
	loc.Use(authMW)
	{
		loc.GET("", h.GetLocation)
		loc.PUT("", h.UpdateLocation)
		loc.PUT("/authorization", h.SetAuthorization)
	}
}

// GetLocation handles GET /api/v1/location.
func (h *LocationHandler) GetLocation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	response.Success(c, h.service.GetLocation(c.Request.Context(), userID))
}

// UpdateLocation handles PUT /api/v1/location.
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateLocation(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetAuthorization handles PUT /api/v1/location/authorization.
func (h *LocationHandler) SetAuthorization(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SetAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetAuthorization(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
