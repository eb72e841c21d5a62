package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/snakeladder/internal/api/middleware"
	"github.com/mcoot/snakeladder/internal/api/request"
	"github.com/mcoot/snakeladder/internal/api/response"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/game"
)

// GameHandler handles game endpoints
type GameHandler struct {
	gameController *game.Controller
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		logger:         logger,
	}
}

func gameIDFromRequest(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["gameId"])
}

// SelectMode handles POST /api/mode-select
func (h *GameHandler) SelectMode(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.ModeSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	g, err := h.gameController.SelectMode(r.Context(), user.ID, model.Mode(req.Mode))
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameMessage{
		Message: "Game mode selected",
		GameID:  string(g.ID),
	})
}

// SubmitPlayerDetails handles POST /api/player-details
func (h *GameHandler) SubmitPlayerDetails(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.PlayerDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Player1 == nil {
		WriteError(w, NewInvalidRequestError("player1 is required"))
		return
	}

	player1 := &model.PlayerDetails{Name: req.Player1.Name, Color: req.Player1.Color}
	var player2 *model.PlayerDetails
	if req.Player2 != nil {
		player2 = &model.PlayerDetails{Name: req.Player2.Name, Color: req.Player2.Color}
	}

	g, err := h.gameController.SubmitPlayerDetails(r.Context(), user.ID, player1, player2)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameMessage{
		Message: "Player details saved & transmitted",
		GameID:  string(g.ID),
	})
}

// ActiveGame handles GET /api/active-game
func (h *GameHandler) ActiveGame(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	g, err := h.gameController.GetActiveGame(r.Context(), user.ID)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, struct {
		GameID string `json:"gameId"`
		model.GameView
	}{GameID: string(g.ID), GameView: g.View()})
}

// UpdatePosition handles POST /api/update-position/{gameId}
func (h *GameHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	seat, err := model.SeatFromNumber(req.Player)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.gameController.UpdatePosition(r.Context(), gameIDFromRequest(r), seat, req.Dice)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionResponseFromResult("Position updated", res))
}

// ComputerMove handles POST /api/computer-move/{gameId}
func (h *GameHandler) ComputerMove(w http.ResponseWriter, r *http.Request) {
	res, err := h.gameController.ComputerMove(r.Context(), gameIDFromRequest(r))
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionResponseFromResult("Computer moved", res))
}

// GetState handles GET /api/get-game-state/{gameId}
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameIDFromRequest(r))
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, g.View())
}

// Reset handles POST /api/reset-game/{gameId}
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.Reset(r.Context(), gameIDFromRequest(r), model.ResetSourceWeb)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResetResponse{
		Message:   "Game reset successfully",
		GameState: g.View(),
	})
}

// HardwareReset handles POST /api/hardware-reset/{gameId}
func (h *GameHandler) HardwareReset(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.Reset(r.Context(), gameIDFromRequest(r), model.ResetSourceHardware)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResetResponse{
		Message:     "Game reset by hardware successfully",
		ResetSource: model.ResetSourceHardware,
		GameState:   g.View(),
	})
}

// PlayAgain handles POST /api/play-again/{gameId}
func (h *GameHandler) PlayAgain(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.PlayAgain(r.Context(), gameIDFromRequest(r))
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameMessage{
		Message: "Play again command sent to board",
		GameID:  string(g.ID),
	})
}

// EndGame handles POST /api/end-game/{gameId}
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.EndGame(r.Context(), gameIDFromRequest(r))
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameMessage{
		Message: "End game command sent to board",
		GameID:  string(g.ID),
	})
}
