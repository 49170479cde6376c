package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupBoards(userID uuid.UUID) (*gin.Engine, *MockBoardStore) {
	boards := new(MockBoardStore)
	h := handler.NewBoardHandler(boards, nullLogger())

	r := gin.New()
	g := r.Group("/boards", asUser(userID))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:boardId", h.Get)
	g.PUT("/:boardId", h.Update)
	g.DELETE("/:boardId", h.Delete)
	return r, boards
}

func TestBoardList(t *testing.T) {
	userID := uuid.New()
	router, boards := setupBoards(userID)
	boards.On("ListByOwner", mock.Anything, userID).Return([]model.Board{
		{ID: uuid.New(), Name: "Home", UserID: userID},
		{ID: uuid.New(), Name: "Work", UserID: userID},
	}, nil)

	resp := doJSON(router, http.MethodGet, "/boards", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var body []handler.BoardResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "Home", body[0].Name)
	assert.Equal(t, userID.String(), body[1].UserID)
}

func TestBoardList_EmptyIsArray(t *testing.T) {
	userID := uuid.New()
	router, boards := setupBoards(userID)
	boards.On("ListByOwner", mock.Anything, userID).Return([]model.Board{}, nil)

	resp := doJSON(router, http.MethodGet, "/boards", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestBoardCreate(t *testing.T) {
	userID := uuid.New()
	router, boards := setupBoards(userID)
	boards.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Board) bool {
		return b.Name == "Home" && b.UserID == userID
	})).Run(func(args mock.Arguments) {
		b := args.Get(1).(*model.Board)
		b.ID = uuid.New()
		b.CreatedAt = time.Now()
	}).Return(nil)

	resp := doJSON(router, http.MethodPost, "/boards", handler.BoardRequest{Name: "  Home "})

	require.Equal(t, http.StatusCreated, resp.Code)
	var body handler.BoardResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Home", body.Name)
	assert.NotEmpty(t, body.ID)
	boards.AssertExpectations(t)
}

func TestBoardCreate_NameRequired(t *testing.T) {
	for _, payload := range []string{`{}`, `{"name":""}`, `{"name":"   "}`} {
		router, boards := setupBoards(uuid.New())

		resp := doJSON(router, http.MethodPost, "/boards", payload)

		assert.Equal(t, http.StatusBadRequest, resp.Code, payload)
		assert.Equal(t, "name is required", decodeError(t, resp), payload)
		boards.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestBoardGet_InvalidID(t *testing.T) {
	router, _ := setupBoards(uuid.New())

	resp := doJSON(router, http.MethodGet, "/boards/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid board ID format", decodeError(t, resp))
}

func TestBoardGet_NotFound(t *testing.T) {
	router, boards := setupBoards(uuid.New())
	boardID := uuid.New()
	boards.On("GetByID", mock.Anything, boardID).Return(nil, repository.ErrBoardNotFound)

	resp := doJSON(router, http.MethodGet, "/boards/"+boardID.String(), nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

// Another user's board must look exactly like a missing one.
func TestBoard_OwnershipIsolation(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	board := &model.Board{ID: uuid.New(), Name: "Private", UserID: owner}

	requests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, handler.BoardRequest{Name: "Hijacked"}},
		{http.MethodDelete, nil},
	}

	for _, req := range requests {
		t.Run(req.method, func(t *testing.T) {
			router, boards := setupBoards(stranger)
			boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)

			resp := doJSON(router, req.method, "/boards/"+board.ID.String(), req.body)

			assert.Equal(t, http.StatusNotFound, resp.Code)
			assert.Equal(t, "Board not found", decodeError(t, resp))
			boards.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			boards.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
	assert.Equal(t, "Private", board.Name)
}

func TestBoardUpdate(t *testing.T) {
	userID := uuid.New()
	router, boards := setupBoards(userID)
	board := &model.Board{ID: uuid.New(), Name: "Old", UserID: userID}
	boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	boards.On("Update", mock.Anything, board).Return(nil)

	resp := doJSON(router, http.MethodPut, "/boards/"+board.ID.String(), handler.BoardRequest{Name: "New"})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "New", board.Name)
	boards.AssertExpectations(t)
}

func TestBoardDelete(t *testing.T) {
	userID := uuid.New()
	router, boards := setupBoards(userID)
	board := &model.Board{ID: uuid.New(), Name: "Old", UserID: userID}
	boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	boards.On("Delete", mock.Anything, board.ID).Return(nil)

	resp := doJSON(router, http.MethodDelete, "/boards/"+board.ID.String(), nil)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	boards.AssertExpectations(t)
}

func TestBoardList_StoreFailure(t *testing.T) {
	userID := uuid.New()
	router, boards := setupBoards(userID)
	boards.On("ListByOwner", mock.Anything, userID).Return(nil, assert.AnError)

	resp := doJSON(router, http.MethodGet, "/boards", nil)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Failed to retrieve boards", decodeError(t, resp))
}
