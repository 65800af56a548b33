package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mytrips/service-trips/internal/application"
	"github.com/mytrips/service-trips/pkg/auth"
	"github.com/mytrips/service-trips/pkg/middleware"
	"github.com/mytrips/service-trips/pkg/response"
)

// AdminHandler handles admin HTTP requests for trip statistics.
type AdminHandler struct {
	placemarks   *application.PlacemarkService
	destinations *application.DestinationService
	sessions     *application.SessionRegistry
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	placemarks *application.PlacemarkService,
	destinations *application.DestinationService,
	sessions *application.SessionRegistry,
) *AdminHandler {
	return &AdminHandler{placemarks: placemarks, destinations: destinations, sessions: sessions}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/stats/placemarks", h.PlacemarkStats)
		admin.GET("/stats/sessions", h.SessionStats)
	}
}

// PlacemarkStats handles GET /api/v1/admin/stats/placemarks.
func (h *AdminHandler) PlacemarkStats(c *gin.Context) {
	stats, err := h.placemarks.GetPlacemarkStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// SessionStats handles GET /api/v1/admin/stats/sessions.
func (h *AdminHandler) SessionStats(c *gin.Context) {
	destinations, err := h.destinations.CountDestinations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"active_sessions":    h.sessions.Len(),
		"total_destinations": destinations,
	})
}
