package handler

import (
	"net/http"
	"strings"
	"time"

	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TaskHandler struct {
	boards BoardStore
	tasks  TaskStore
	log    logrus.FieldLogger
}

func NewTaskHandler(boards BoardStore, tasks TaskStore, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{boards: boards, tasks: tasks, log: log}
}

type CreateTaskRequest struct {
	Title               string     `json:"title" binding:"required"`
	Description         string     `json:"description"`
	Status              *string    `json:"status" binding:"omitempty,taskstatus"`
	Progress            *Progress  `json:"progress" swaggertype:"integer"`
	StartDate           *time.Time `json:"startDate"`
	EstimatedFinishDate *time.Time `json:"estimatedFinishDate"`
	ReminderDateTime    *time.Time `json:"reminderDateTime"`
}

// UpdateTaskRequest carries a partial update. Absent and null fields keep
// their stored value.
type UpdateTaskRequest struct {
	Title               *string    `json:"title"`
	Description         *string    `json:"description"`
	Status              *string    `json:"status" binding:"omitempty,taskstatus"`
	Progress            *Progress  `json:"progress" swaggertype:"integer"`
	StartDate           *time.Time `json:"startDate"`
	EstimatedFinishDate *time.Time `json:"estimatedFinishDate"`
	ReminderDateTime    *time.Time `json:"reminderDateTime"`
}

type TaskResponse struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Status              string     `json:"status"`
	Progress            int        `json:"progress"`
	StartDate           *time.Time `json:"startDate"`
	EstimatedFinishDate *time.Time `json:"estimatedFinishDate"`
	ReminderDateTime    *time.Time `json:"reminderDateTime"`
	BoardID             string     `json:"boardId"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func toTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:                  t.ID.String(),
		Title:               t.Title,
		Description:         t.Description,
		Status:              string(t.Status),
		Progress:            t.Progress,
		StartDate:           t.StartDate,
		EstimatedFinishDate: t.EstimatedFinishDate,
		ReminderDateTime:    t.ReminderDateTime,
		BoardID:             t.BoardID.String(),
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// loadOwnedTask fetches the task named by the taskId path parameter.
// Tasks on boards of other users are reported as missing.
func (h *TaskHandler) loadOwnedTask(c *gin.Context, userID uuid.UUID) (*model.Task, bool) {
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return nil, false
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve task")
		return nil, false
	}
	if !task.OwnedBy(userID) {
		abortWithError(c, http.StatusNotFound, "Task not found")
		return nil, false
	}
	return task, true
}

// ListByBoard godoc
// @Summary      List the tasks of a board
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        boardId  path     string  true  "Board ID"
// @Success      200      {array}  TaskResponse
// @Failure      404      {object} ErrorResponse
// @Router       /boards/{boardId}/tasks [get]
func (h *TaskHandler) ListByBoard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	board, ok := loadOwnedBoard(c, h.boards, h.log, userID)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListByBoard(c.Request.Context(), board.ID)
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve tasks")
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, toTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Create a task on a board
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId  path      string             true  "Board ID"
// @Param        body     body      CreateTaskRequest  true  "Task"
// @Success      201      {object}  TaskResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /boards/{boardId}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	board, ok := loadOwnedBoard(c, h.boards, h.log, userID)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		abortWithError(c, http.StatusBadRequest, "title is required")
		return
	}

	status, progress, err := model.InitialState(req.Status, req.Progress.Int())
	if err != nil {
		respondError(c, h.log, err, "Failed to create task")
		return
	}

	task := &model.Task{
		Title:               title,
		Description:         req.Description,
		Status:              status,
		Progress:            progress,
		StartDate:           req.StartDate,
		EstimatedFinishDate: req.EstimatedFinishDate,
		ReminderDateTime:    req.ReminderDateTime,
		BoardID:             board.ID,
	}
	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		respondError(c, h.log, err, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Get godoc
// @Summary      Get one task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        taskId  path      string  true  "Task ID"
// @Success      200     {object}  TaskResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /tasks/{taskId} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	task, ok := h.loadOwnedTask(c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update godoc
// @Summary      Update a task
// @Description  Partial update. Status drives progress: todo is 0, done is 100 and
// @Description  entering inprogress without a progress value starts at 25.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskId  path      string             true  "Task ID"
// @Param        body    body      UpdateTaskRequest  true  "Changes"
// @Success      200     {object}  TaskResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /tasks/{taskId} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	task, ok := h.loadOwnedTask(c, userID)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			abortWithError(c, http.StatusBadRequest, "title must not be empty")
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.StartDate != nil {
		task.StartDate = req.StartDate
	}
	if req.EstimatedFinishDate != nil {
		task.EstimatedFinishDate = req.EstimatedFinishDate
	}
	if req.ReminderDateTime != nil {
		task.ReminderDateTime = req.ReminderDateTime
	}

	if err := task.ApplyStatusUpdate(req.Status, req.Progress.Int()); err != nil {
		respondError(c, h.log, err, "Failed to update task")
		return
	}

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		respondError(c, h.log, err, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        taskId  path  string  true  "Task ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{taskId} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	task, ok := h.loadOwnedTask(c, userID)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), task.ID); err != nil {
		respondError(c, h.log, err, "Failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}
