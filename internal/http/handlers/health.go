package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessSource reports what was loaded at startup.
type ReadinessSource interface {
	CatalogSize() int
	IndexRows() int
	IndexBackend() string
	EncoderModel() string
}

type HealthHandler struct {
	ready ReadinessSource
}

func NewHealthHandler(ready ReadinessSource) *HealthHandler { return &HealthHandler{ready: ready} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.ready == nil || h.ready.CatalogSize() == 0 || h.ready.IndexRows() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ready":         true,
		"catalog_games": h.ready.CatalogSize(),
		"index_rows":    h.ready.IndexRows(),
		"index_backend": h.ready.IndexBackend(),
		"encoder_model": h.ready.EncoderModel(),
	})
}
