package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bible-concord-api/internal/db"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse is the response for basic health check
type HealthResponse struct {
	Status string `json:"status"`
}

// DatabaseHealthResponse is the response for database health check
type DatabaseHealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// DatabaseHealth handles GET /health/db
func (h *HealthHandler) DatabaseHealth(c echo.Context) error {
	d := db.Get()
	if d == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  "database connection not available",
		})
	}

	if err := d.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, DatabaseHealthResponse{
		Status:   "connected",
		Database: d.DriverName(),
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/db", h.DatabaseHealth)
}
