package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/mcoot/snakeladder/internal/model"
)

// HubManager manages hubs for all watched games and publishes controller
// events to them
type HubManager struct {
	hubs           map[model.GameID]*Hub
	mu             sync.RWMutex
	logger         *slog.Logger
	originPatterns []string
}

// NewHubManager creates a new HubManager. originPatterns lists the hosts
// allowed to open a stream from a browser.
func NewHubManager(originPatterns []string, logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:           make(map[model.GameID]*Hub),
		logger:         logger.With(slog.String("component", "realtime")),
		originPatterns: originPatterns,
	}
}

// GetOrCreateHub returns the hub for a game, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		return hub
	}

	hub := NewHub(gameID, m.logger)
	m.hubs[gameID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a game, or nil if it doesn't exist
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[gameID]
}

// Publish sends an event to the game's subscribers, if any
func (m *HubManager) Publish(event model.Event) {
	hub := m.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(NewEventMessage(event))
	if err != nil {
		m.logger.Error("ws failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(data)
}

// SnapshotLoader reads the current state of the streamed game
type SnapshotLoader func(ctx context.Context) (*model.Game, error)

// ServeWS upgrades the request and streams updates for gameID to it. The
// client joins the hub before load runs, so every event published after
// the snapshot was read is delivered behind it. It returns when the
// connection ends.
func (m *HubManager) ServeWS(w http.ResponseWriter, r *http.Request, gameID model.GameID, load SnapshotLoader) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: m.originPatterns,
	})
	if err != nil {
		m.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}
	defer func() { _ = conn.CloseNow() }()

	client := NewClient()
	var hub *Hub
	// A fresh hub can be swept by the janitor before we register
	for attempt := 0; attempt < 3 && hub == nil; attempt++ {
		h := m.GetOrCreateHub(gameID)
		if h.Register(client) {
			hub = h
		}
	}
	if hub == nil {
		_ = conn.Close(websocket.StatusTryAgainLater, "stream unavailable")
		return
	}
	defer hub.Unregister(client)

	// Subscribers only listen; CloseRead handles control frames and
	// cancels ctx when the peer disconnects
	ctx := conn.CloseRead(r.Context())

	game, err := load(ctx)
	if err != nil {
		m.logger.Warn("ws snapshot load failed", slog.String("game_id", string(gameID)), slog.Any("error", err))
		_ = conn.Close(websocket.StatusInternalError, "game unavailable")
		return
	}
	snapshot, err := json.Marshal(NewSnapshotMessage(game))
	if err != nil {
		return
	}
	if err := write(ctx, conn, snapshot); err != nil {
		return
	}

	if err := client.pump(ctx, conn); err != nil && ctx.Err() == nil {
		m.logger.Debug("ws stream ended", slog.String("game_id", string(gameID)), slog.Any("error", err))
	}
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(gameID model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		hub.Close()
		delete(m.hubs, gameID)
		m.logger.Info("ws hub removed", slog.String("game_id", string(gameID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("ws empty hubs cleaned up", slog.Int("removed", removedCount))
	}
}

// RunJanitor sweeps empty hubs every interval until ctx is cancelled,
// then closes every hub
func (m *HubManager) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupEmptyHubs()
		case <-ctx.Done():
			m.CloseAll()
			return nil
		}
	}
}

// CloseAll closes every hub, disconnecting all subscribers
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}
