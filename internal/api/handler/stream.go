package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/realtime"
	"github.com/mcoot/snakeladder/internal/services/game"
)

// StreamHandler serves live game updates over websockets
type StreamHandler struct {
	gameController *game.Controller
	hubManager     *realtime.HubManager
	logger         *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(gameController *game.Controller, hubManager *realtime.HubManager, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		gameController: gameController,
		hubManager:     hubManager,
		logger:         logger,
	}
}

// Stream handles GET /api/game-stream/{gameId}
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	gameID := gameIDFromRequest(r)
	// Unknown games get a JSON error before the upgrade
	if _, err := h.gameController.GetGame(r.Context(), gameID); err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	h.hubManager.ServeWS(w, r, gameID, func(ctx context.Context) (*model.Game, error) {
		return h.gameController.GetGame(ctx, gameID)
	})
}
