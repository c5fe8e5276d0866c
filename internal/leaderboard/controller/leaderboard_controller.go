package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codearena/internal/leaderboard/fanout"
	"codearena/internal/scoring/model"
	"codearena/pkg/utils/logger"
	"codearena/pkg/utils/response"
)

// SnapshotStore serves current leaderboard state.
type SnapshotStore interface {
	ListByContest(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error)
}

// LeaderboardController exposes leaderboard snapshots over HTTP and live
// updates over WebSocket.
type LeaderboardController struct {
	store    SnapshotStore
	hub      *fanout.Hub
	upgrader websocket.Upgrader
}

// NewLeaderboardController creates a new LeaderboardController.
func NewLeaderboardController(store SnapshotStore, hub *fanout.Hub) *LeaderboardController {
	return &LeaderboardController{
		store: store,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Viewers are anonymous and read-only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts the leaderboard endpoints.
func (h *LeaderboardController) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/v1/leaderboard/contest/:contest_id", h.GetLeaderboard)
	r.GET("/ws/leaderboard/:contest_id", h.WatchLeaderboard)
}

// GetLeaderboard returns the current standings of a contest.
func (h *LeaderboardController) GetLeaderboard(c *gin.Context) {
	contestID := c.Param("contest_id")
	if contestID == "" {
		response.BadRequest(c, "contest id is required")
		return
	}
	entries, err := h.store.ListByContest(c.Request.Context(), contestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, LeaderboardResponse{
		ContestID:   contestID,
		Leaderboard: entries,
	})
}

// WatchLeaderboard upgrades to WebSocket and registers the viewer for
// broadcasts. Inbound frames are ignored.
func (h *LeaderboardController) WatchLeaderboard(c *gin.Context) {
	contestID := c.Param("contest_id")
	if contestID == "" {
		response.BadRequest(c, "contest id is required")
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(c.Request.Context(), "websocket upgrade failed",
			zap.String("contest_id", contestID), zap.Error(err))
		return
	}
	h.hub.Register(c.Request.Context(), contestID, conn)
}

// LeaderboardResponse is the snapshot payload.
type LeaderboardResponse struct {
	ContestID   string                   `json:"contest_id"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}
