package handler

import (
	"net/http"
	"strings"
	"time"

	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BoardHandler struct {
	boards BoardStore
	log    logrus.FieldLogger
}

func NewBoardHandler(boards BoardStore, log logrus.FieldLogger) *BoardHandler {
	return &BoardHandler{boards: boards, log: log}
}

type BoardRequest struct {
	Name string `json:"name" binding:"required"`
}

type BoardResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toBoardResponse(b *model.Board) BoardResponse {
	return BoardResponse{
		ID:        b.ID.String(),
		Name:      b.Name,
		UserID:    b.UserID.String(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// bindBoardName binds the request and answers 400 for a blank name.
func bindBoardName(c *gin.Context) (string, bool) {
	var req BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		abortWithError(c, http.StatusBadRequest, "name is required")
		return "", false
	}
	return name, true
}

// List godoc
// @Summary      List the caller's boards
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   BoardResponse
// @Router       /boards [get]
func (h *BoardHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	boards, err := h.boards.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve boards")
		return
	}

	resp := make([]BoardResponse, 0, len(boards))
	for i := range boards {
		resp = append(resp, toBoardResponse(&boards[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Create a board
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      BoardRequest  true  "Board"
// @Success      201   {object}  BoardResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	name, ok := bindBoardName(c)
	if !ok {
		return
	}

	board := &model.Board{Name: name, UserID: userID}
	if err := h.boards.Create(c.Request.Context(), board); err != nil {
		respondError(c, h.log, err, "Failed to create board")
		return
	}

	c.JSON(http.StatusCreated, toBoardResponse(board))
}

// Get godoc
// @Summary      Get one board
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId  path      string  true  "Board ID"
// @Success      200      {object}  BoardResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /boards/{boardId} [get]
func (h *BoardHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	board, ok := loadOwnedBoard(c, h.boards, h.log, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toBoardResponse(board))
}

// Update godoc
// @Summary      Rename a board
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId  path      string        true  "Board ID"
// @Param        body     body      BoardRequest  true  "Board"
// @Success      200      {object}  BoardResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /boards/{boardId} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	board, ok := loadOwnedBoard(c, h.boards, h.log, userID)
	if !ok {
		return
	}
	name, ok := bindBoardName(c)
	if !ok {
		return
	}

	board.Name = name
	if err := h.boards.Update(c.Request.Context(), board); err != nil {
		respondError(c, h.log, err, "Failed to update board")
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

// Delete godoc
// @Summary      Delete a board and its tasks
// @Tags         Boards
// @Security     BearerAuth
// @Param        boardId  path  string  true  "Board ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /boards/{boardId} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	board, ok := loadOwnedBoard(c, h.boards, h.log, userID)
	if !ok {
		return
	}

	if err := h.boards.Delete(c.Request.Context(), board.ID); err != nil {
		respondError(c, h.log, err, "Failed to delete board")
		return
	}
	c.Status(http.StatusNoContent)
}
