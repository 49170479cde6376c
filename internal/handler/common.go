package handler

import (
	"context"
	"errors"
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type BoardStore interface {
	Create(ctx context.Context, board *model.Board) error
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	Update(ctx context.Context, board *model.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]model.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var (
	_ UserStore          = (*repository.UserRepository)(nil)
	_ auth.IdentityStore = (*repository.UserRepository)(nil)
	_ BoardStore         = (*repository.BoardRepository)(nil)
	_ TaskStore          = (*repository.TaskRepository)(nil)
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// respondError maps domain errors onto status codes. Anything unknown is
// logged and reported as a 500 with fallback as the message.
func respondError(c *gin.Context, log logrus.FieldLogger, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrBoardNotFound):
		abortWithError(c, http.StatusNotFound, "Board not found")
	case errors.Is(err, repository.ErrTaskNotFound):
		abortWithError(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, repository.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, model.ErrInvalidStatus):
		abortWithError(c, http.StatusBadRequest, model.ErrInvalidStatus.Error())
	default:
		_ = c.Error(err)
		log.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

// requireUser reads the authenticated user id or answers 401.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// loadOwnedBoard fetches the board named by the boardId path parameter.
// Boards of other users are reported as missing.
func loadOwnedBoard(c *gin.Context, boards BoardStore, log logrus.FieldLogger, userID uuid.UUID) (*model.Board, bool) {
	boardID, ok := parseIDParam(c, "boardId", "board")
	if !ok {
		return nil, false
	}

	board, err := boards.GetByID(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, log, err, "Failed to retrieve board")
		return nil, false
	}
	if !board.OwnedBy(userID) {
		abortWithError(c, http.StatusNotFound, "Board not found")
		return nil, false
	}
	return board, true
}
