// Package fanout delivers leaderboard updates to WebSocket viewers.
package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codearena/internal/common/metrics"
	"codearena/pkg/utils/logger"
)

const writeWait = 5 * time.Second

// Hub tracks viewer connections per contest and fans broadcast payloads
// out to them. All registry access is serialized behind one mutex; the
// broadcast path snapshots the connection set so slow writers never hold
// the lock.
type Hub struct {
	mu      sync.Mutex
	viewers map[string]map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{viewers: make(map[string]map[*websocket.Conn]struct{})}
}

// Register adds a viewer connection for a contest and starts discarding
// its inbound frames. The connection is unregistered when the read side
// fails, which is how client disconnects surface.
func (h *Hub) Register(ctx context.Context, contestID string, conn *websocket.Conn) {
	h.mu.Lock()
	set, ok := h.viewers[contestID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		h.viewers[contestID] = set
	}
	set[conn] = struct{}{}
	h.mu.Unlock()

	logger.Info(ctx, "viewer connected", zap.String("contest_id", contestID))

	go func() {
		// Viewers never send anything meaningful; drain frames so pings
		// and close handshakes are processed.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.Unregister(ctx, contestID, conn)
	}()
}

// Unregister removes a viewer connection and closes it.
func (h *Hub) Unregister(ctx context.Context, contestID string, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.viewers[contestID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.viewers, contestID)
		}
	}
	h.mu.Unlock()
	_ = conn.Close()
	logger.Info(ctx, "viewer disconnected", zap.String("contest_id", contestID))
}

// Broadcast sends payload to every viewer of the contest. Connections
// that fail to accept the write are dropped; other contests' viewers are
// never touched.
func (h *Hub) Broadcast(ctx context.Context, contestID string, payload []byte) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.viewers[contestID]))
	for conn := range h.viewers[contestID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn(ctx, "dropping unresponsive viewer",
				zap.String("contest_id", contestID), zap.Error(err))
			h.Unregister(ctx, contestID, conn)
			continue
		}
		metrics.FanoutDeliveries.Inc()
	}
}

// ViewerCount reports the number of connected viewers for a contest.
func (h *Hub) ViewerCount(contestID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers[contestID])
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.viewers {
		for conn := range set {
			_ = conn.Close()
		}
	}
	h.viewers = make(map[string]map[*websocket.Conn]struct{})
}
