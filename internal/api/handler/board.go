package handler

import (
	"net/http"

	"github.com/mcoot/snakeladder/internal/api/response"
	"github.com/mcoot/snakeladder/internal/services/board"
)

// BoardHandler describes the board layout
type BoardHandler struct {
	boardService *board.Service
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(boardService *board.Service) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// Layout handles GET /api/board
func (h *BoardHandler) Layout(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.BoardResponseFromLayout(h.boardService.Layout()))
}
