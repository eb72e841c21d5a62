package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError. Message repeats the error message at
// the top level for clients that only read that field.
type ErrorResponse struct {
	Error   APIError `json:"error"`
	Message string   `json:"message"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidMode        = "INVALID_MODE"
	CodeInvalidDie         = "INVALID_DIE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeNoActiveGame       = "NO_ACTIVE_GAME"
	CodeGameOver           = "GAME_OVER"
	CodePlayersNotSet      = "PLAYERS_NOT_SET"
	CodeConflict           = "CONFLICT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError, Message: he.apiError.Message})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Game records
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrNoActiveGame):
		return &httpError{http.StatusNotFound, APIError{CodeNoActiveGame, "No active game found"}}
	case errors.Is(err, model.ErrActiveGameExists):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "User already has an active game"}}
	case errors.Is(err, model.ErrStaleGame):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Game was modified concurrently, try again"}}
	case errors.Is(err, model.ErrInvalidMode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMode, "Mode must be single or dual"}}
	case errors.Is(err, model.ErrNotComputer):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMode, "Computer moves are only available in single mode"}}
	case errors.Is(err, model.ErrInvalidPlayerInfo):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Player details are incomplete"}}

	// Turns
	case errors.Is(err, model.ErrNotPlayerTurn):
		return &httpError{http.StatusBadRequest, APIError{CodeNotYourTurn, "It's not this player's turn"}}
	case errors.Is(err, model.ErrGameOver):
		return &httpError{http.StatusConflict, APIError{CodeGameOver, "Game is already over"}}
	case errors.Is(err, model.ErrPlayersNotSet):
		return &httpError{http.StatusConflict, APIError{CodePlayersNotSet, "Player details have not been submitted"}}
	case errors.Is(err, model.ErrInvalidDie):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDie, "Dice must be between 1 and 6"}}
	case errors.Is(err, model.ErrInvalidSeat):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Player must be 1 or 2"}}

	// Accounts
	case errors.Is(err, model.ErrEmailTaken):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email already registered"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already taken"}}
	case errors.Is(err, auth.ErrMissingFields):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "All fields are required"}}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
