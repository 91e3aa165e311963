package handler

import (
	"context"
	"net/http"
	"time"

	"guidechat/internal/model"

	"github.com/gin-gonic/gin"
)

// ReferenceData is the reloadable reference cache
type ReferenceData interface {
	Load(ctx context.Context) error
	Provinces() []model.ReferenceEntry
	Amenities() []model.ReferenceEntry
	LoadedAt() time.Time
}

// ReferenceHandler exposes reference cache status and reload
type ReferenceHandler struct {
	ref ReferenceData
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(ref ReferenceData) *ReferenceHandler {
	return &ReferenceHandler{ref: ref}
}

// Status handles GET /api/v1/reference
func (h *ReferenceHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.summary())
}

// Reload handles POST /api/v1/reference/reload. A partial failure keeps the
// fallback lists and is reported as 502.
func (h *ReferenceHandler) Reload(c *gin.Context) {
	if err := h.ref.Load(c.Request.Context()); err != nil {
		body := h.summary()
		body["success"] = false
		body["error"] = "Reload incomplete: " + err.Error()
		c.JSON(http.StatusBadGateway, body)
		return
	}

	body := h.summary()
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func (h *ReferenceHandler) summary() gin.H {
	body := gin.H{
		"provinces": len(h.ref.Provinces()),
		"amenities": len(h.ref.Amenities()),
	}
	if t := h.ref.LoadedAt(); !t.IsZero() {
		body["loaded_at"] = t.UTC().Format(time.RFC3339)
	}
	return body
}
