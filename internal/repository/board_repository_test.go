package repository_test

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boardColumns = []string{"id", "name", "user_id", "created_at", "updated_at"}

func TestBoardRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	board := &model.Board{Name: "Home", UserID: uuid.New()}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectCommit()

	err := boardRepo.Create(context.Background(), board)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, board.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_ListByOwner_OrderedByCreation(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	owner := uuid.New()
	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE user_id = \$1 ORDER BY created_at ASC`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows(boardColumns).
			AddRow(uuid.New().String(), "Home", owner.String(), older, older).
			AddRow(uuid.New().String(), "Work", owner.String(), newer, newer))

	boards, err := boardRepo.ListByOwner(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "Home", boards[0].Name)
	assert.Equal(t, "Work", boards[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_ListByOwner_EmptyIsNotNil(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "boards"`).WillReturnRows(sqlmock.NewRows(boardColumns))

	boards, err := boardRepo.ListByOwner(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, boards)
	assert.Empty(t, boards)
}

func TestBoardRepository_GetByID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	boardID := uuid.New()
	owner := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(boardColumns).AddRow(boardID.String(), "Home", owner.String(), now, now))

	board, err := boardRepo.GetByID(context.Background(), boardID)

	require.NoError(t, err)
	assert.Equal(t, boardID, board.ID)
	assert.True(t, board.OwnedBy(owner))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(boardColumns))

	board, err := boardRepo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.Nil(t, board)
}

func TestBoardRepository_Update(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	board := &model.Board{ID: uuid.New(), Name: "Renamed", UserID: uuid.New()}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "boards" SET "name"=\$1,"updated_at"=\$2 WHERE "id" = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, boardRepo.Update(context.Background(), board))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Update_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "boards"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := boardRepo.Update(context.Background(), &model.Board{ID: uuid.New(), Name: "x"})
	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
}

func TestBoardRepository_Delete_CascadesToTasks(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	boardID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE board_id = \$1`).
		WithArgs(boardID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "boards" WHERE id = \$1`).
		WithArgs(boardID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, boardRepo.Delete(context.Background(), boardID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "boards"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := boardRepo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
