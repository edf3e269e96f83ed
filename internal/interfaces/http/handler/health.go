package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mims/backend/internal/infrastructure/persistence"
)

// HealthHandler reports service liveness and database connectivity
type HealthHandler struct {
	BaseHandler
	db      *persistence.Database
	version string
	started time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *persistence.Database, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
		started: time.Now(),
	}
}

// HealthStatus is the health endpoint payload
type HealthStatus struct {
	Status   string         `json:"status"`
	Version  string         `json:"version,omitempty"`
	Uptime   string         `json:"uptime"`
	Database DatabaseHealth `json:"database"`
}

// DatabaseHealth reports database reachability and pool usage
type DatabaseHealth struct {
	Reachable       bool `json:"reachable"`
	OpenConnections int  `json:"open_connections"`
	InUse           int  `json:"in_use"`
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	status := HealthStatus{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}

	if h.db != nil {
		if err := h.db.Ping(); err == nil {
			status.Database.Reachable = true
			if stats, err := h.db.Stats(); err == nil {
				status.Database.OpenConnections = stats.OpenConnections
				status.Database.InUse = stats.InUse
			}
		}
	}

	if h.db != nil && !status.Database.Reachable {
		status.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	c.JSON(http.StatusOK, status)
}
