package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neighborhood-library/api-service/internal/database"
)

// HealthController reports service liveness and database connectivity.
type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Root handles GET /.
func (ctrl *HealthController) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "neighborhood-library-api",
		"version": ctrl.version,
	})
}

// Health handles GET /api/health.
func (ctrl *HealthController) Health(c *gin.Context) {
	if err := ctrl.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "reachable",
	})
}
