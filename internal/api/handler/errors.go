package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/snakeladder/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeInvalidMode        = apierr.CodeInvalidMode
	CodeInvalidDie         = apierr.CodeInvalidDie
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeEmailExists        = apierr.CodeEmailExists
	CodeUsernameExists     = apierr.CodeUsernameExists
	CodeNotYourTurn        = apierr.CodeNotYourTurn
	CodeGameNotFound       = apierr.CodeGameNotFound
	CodeNoActiveGame       = apierr.CodeNoActiveGame
	CodeGameOver           = apierr.CodeGameOver
	CodePlayersNotSet      = apierr.CodePlayersNotSet
	CodeConflict           = apierr.CodeConflict
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// writeLoggedError writes err and logs it when it maps to a server error
func writeLoggedError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError && !errors.Is(err, r.Context().Err()) {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}
