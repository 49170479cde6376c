package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusDone       TaskStatus = "done"
)

const (
	MinProgress = 0
	MaxProgress = 100

	// StartedProgress is assigned when a task moves into progress without
	// an explicit value.
	StartedProgress = 25
)

var ErrInvalidStatus = errors.New("invalid status: must be one of todo, inprogress, done")

type Task struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title               string     `gorm:"not null"`
	Description         string
	Status              TaskStatus `gorm:"type:varchar(16);not null;default:'todo'"`
	Progress            int        `gorm:"not null;default:0"`
	StartDate           *time.Time
	EstimatedFinishDate *time.Time
	ReminderDateTime    *time.Time
	BoardID             uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Board *Board `gorm:"foreignKey:BoardID"`
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func ClampProgress(p int) int {
	if p < MinProgress {
		return MinProgress
	}
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}

// InitialState resolves status and progress for a new task. A nil status
// means todo; a nil progress means absent.
func InitialState(status *string, progress *int) (TaskStatus, int, error) {
	s := StatusTodo
	if status != nil {
		parsed, err := ParseTaskStatus(*status)
		if err != nil {
			return "", 0, err
		}
		s = parsed
	}

	switch s {
	case StatusTodo:
		return s, MinProgress, nil
	case StatusDone:
		return s, MaxProgress, nil
	}
	if progress == nil {
		return s, MinProgress, nil
	}
	return s, ClampProgress(*progress), nil
}

// ApplyStatusUpdate moves the task to the requested status and progress.
// Progress is only freely adjustable while the task is in progress; a
// progress sent for a todo or done task is dropped.
func (t *Task) ApplyStatusUpdate(status *string, progress *int) error {
	next := t.Status
	if status != nil {
		parsed, err := ParseTaskStatus(*status)
		if err != nil {
			return err
		}
		next = parsed
	}

	switch next {
	case StatusTodo:
		t.Progress = MinProgress
	case StatusDone:
		t.Progress = MaxProgress
	case StatusInProgress:
		switch {
		case progress != nil:
			t.Progress = ClampProgress(*progress)
		case t.Status != StatusInProgress:
			t.Progress = StartedProgress
		default:
			t.Progress = ClampProgress(t.Progress)
		}
	}
	t.Status = next
	return nil
}

// OwnedBy follows the task's board to its owner. The board must be loaded.
func (t *Task) OwnedBy(userID uuid.UUID) bool {
	return t.Board != nil && t.Board.OwnedBy(userID)
}
