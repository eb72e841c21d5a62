package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/snakeladder/internal/api/middleware"
	"github.com/mcoot/snakeladder/internal/api/request"
	"github.com/mcoot/snakeladder/internal/api/response"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/auth"
	"github.com/mcoot/snakeladder/internal/services/game"
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	authService    *auth.Service
	gameController *game.Controller
	logger         *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, gameController *game.Controller, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		gameController: gameController,
		logger:         logger,
	}
}

// Signup handles POST /api/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	session, err := h.authService.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	resp := response.MeResponse{User: response.UserFromModel(user)}
	active, err := h.gameController.GetActiveGame(r.Context(), user.ID)
	switch {
	case err == nil:
		id := string(active.ID)
		resp.ActiveGameID = &id
	case !errors.Is(err, model.ErrNoActiveGame):
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
