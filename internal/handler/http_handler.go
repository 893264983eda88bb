package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/galantry1/luba.tv/internal/domain"
	"github.com/galantry1/luba.tv/internal/registry"
	"github.com/galantry1/luba.tv/pkg/response"
)

// HTTPHandler serves the liveness endpoint and read-only room introspection.
type HTTPHandler struct {
	registry *registry.Registry
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(reg *registry.Registry) *HTTPHandler {
	return &HTTPHandler{registry: reg}
}

// RegisterRoutes registers HTTP routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/rooms/:id", h.GetRoom)
}

// Health returns a fixed OK response for external health checks.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// GetRoom returns the room's materialized snapshot. Participant identities
// are not exposed, only the count.
func (h *HTTPHandler) GetRoom(c *gin.Context) {
	roomID := domain.NormalizeRoomID(c.Param("id"))

	st, err := h.registry.State(roomID)
	if err != nil {
		response.NotFound(c, "room not found")
		return
	}

	response.Success(c, gin.H{
		"room_id":      st.RoomID,
		"host_id":      st.HostID,
		"participants": len(st.Participants),
		"state":        st.State,
	})
}
