package roomhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"collabeditgo/internal/rooms"
)

// Handler serves the read-only REST view over the live room directory.
// Everything here is presence introspection; room state is mutated over the
// websocket protocol only.
type Handler struct {
	dir *rooms.Directory
}

func New(dir *rooms.Directory) *Handler { return &Handler{dir: dir} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/stats", h.stats)
	r.GET("/rooms", h.list)
	r.GET("/rooms/:id", h.info)
}

// @Summary		Health check
// @Description	Liveness endpoint for load balancers and uptime probes.
// @Tags			Meta
// @Success		200	{object}	HealthResponse
// @Router			/healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// @Summary		Service statistics
// @Description	Returns live room and participant counts.
// @Tags			Meta
// @Success		200	{object}	StatsResponse
// @Router			/stats [get]
func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		ActiveRooms:        h.dir.RoomCount(),
		ActiveParticipants: h.dir.ParticipantCount(),
	})
}

// @Summary		List live rooms
// @Description	Returns a summary of every room with at least one participant.
// @Tags			Rooms
// @Success		200	{array}	RoomSummary
// @Router			/rooms [get]
func (h *Handler) list(c *gin.Context) {
	infos := h.dir.List()
	out := make([]RoomSummary, 0, len(infos))
	for _, info := range infos {
		out = append(out, RoomSummary{
			ID:           info.ID,
			Participants: info.Participants,
			HasDocument:  info.HasDocument,
		})
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Get room presence
// @Description	Returns the participants of one room in join order.
// @Tags			Rooms
// @Param			id	path		string	true	"Room ID"
// @Success		200	{object}	RoomDetail
// @Failure		404	{object}	ErrorResponse
// @Router			/rooms/{id} [get]
func (h *Handler) info(c *gin.Context) {
	roomID := c.Param("id")
	peers, ok := h.dir.Peers(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	_, hasDoc := h.dir.Snapshot(roomID)
	c.JSON(http.StatusOK, RoomDetail{ID: roomID, Peers: peers, HasDocument: hasDoc})
}
