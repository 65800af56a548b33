package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mytrips/service-trips/internal/application"
	"github.com/mytrips/service-trips/pkg/auth"
	"github.com/mytrips/service-trips/pkg/middleware"
	"github.com/mytrips/service-trips/pkg/response"
)

// DestinationHandler handles HTTP requests for destination operations.
type DestinationHandler struct {
	service *application.DestinationService
}

// NewDestinationHandler creates a new DestinationHandler.
func NewDestinationHandler(service *application.DestinationService) *DestinationHandler {
	return &DestinationHandler{service: service}
}

// RegisterRoutes registers all destination routes on the given router group.
func (h *DestinationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	destinations := r.Group("/api/v1/destinations")
	destinations.Use(authMW)
	{
		destinations.POST("", h.CreateDestination)
		destinations.GET("", h.ListDestinations)
		destinations.GET("/:id", h.GetDestination)
		destinations.PATCH("/:id", h.RenameDestination)
		destinations.DELETE("/:id", h.DeleteDestination)
		destinations.PUT("/:id/region", h.SetRegion)
	}
}

// CreateDestination handles POST /api/v1/destinations.
func (h *DestinationHandler) CreateDestination(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateDestination(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListDestinations handles GET /api/v1/destinations.
func (h *DestinationHandler) ListDestinations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.ListDestinations(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetDestination handles GET /api/v1/destinations/:id.
func (h *DestinationHandler) GetDestination(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	destinationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid destination ID")
		return
	}

	result, err := h.service.GetDestination(c.Request.Context(), userID, destinationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RenameDestination handles PATCH /api/v1/destinations/:id.
func (h *DestinationHandler) RenameDestination(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	destinationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid destination ID")
		return
	}

	var req application.RenameDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RenameDestination(c.Request.Context(), userID, destinationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteDestination handles DELETE /api/v1/destinations/:id. The
// destination's placemarks are deleted with it.
func (h *DestinationHandler) DeleteDestination(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	destinationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid destination ID")
		return
	}

	if err := h.service.DeleteDestination(c.Request.Context(), userID, destinationID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetRegion handles PUT /api/v1/destinations/:id/region.
func (h *DestinationHandler) SetRegion(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	destinationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid destination ID")
		return
	}

	var req application.SetRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetDestinationRegion(c.Request.Context(), userID, destinationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
