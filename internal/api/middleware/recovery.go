package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/snakeladder/internal/api/apierr"
	"github.com/mcoot/snakeladder/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Plain requests get a JSON 500; upgraded game streams are left alone
// since their connection no longer speaks HTTP.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return
	}
	apierr.WriteError(w, apierr.NewInternalError())
}
