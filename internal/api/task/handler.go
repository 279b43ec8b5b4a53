package task

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NekruzRakhimov/todo-list/internal/api/auth"
	"github.com/NekruzRakhimov/todo-list/internal/model"
	"github.com/NekruzRakhimov/todo-list/internal/repository"
)

// Handler serves the task CRUD endpoints
type Handler struct {
	tasks *repository.TaskRepository
}

// NewHandler creates a task Handler
func NewHandler(tasks *repository.TaskRepository) *Handler {
	return &Handler{tasks: tasks}
}

// Create handles POST /tasks. The owner always comes from the
// authenticated caller; any client-supplied id or user_id is ignored.
func (h *Handler) Create(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	var task model.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !task.HasRequiredFields() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "fill all required fields"})
		return
	}

	task.UserID = identity.ID

	if err := h.tasks.Create(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "task created successfully"})
}

// List handles GET /tasks
func (h *Handler) List(c *gin.Context) {
	identity := auth.CurrentIdentity(c)

	statusFilter := c.Query("status_filter")
	sortColumn := c.Query("sort_column")

	tasks, err := h.tasks.ListForUser(identity.ID, statusFilter, sortColumn)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Details handles GET /tasks/:id/details
func (h *Handler) Details(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Update handles PUT /tasks/:id. All four mutable fields are replaced.
func (h *Handler) Update(c *gin.Context) {
	existing, ok := h.ownedTask(c)
	if !ok {
		return
	}

	var task model.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !task.HasRequiredFields() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "fill all required fields"})
		return
	}

	task.ID = existing.ID
	task.UserID = existing.UserID

	if err := h.tasks.Update(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task updated successfully"})
}

// Delete handles DELETE /tasks/:id
func (h *Handler) Delete(c *gin.Context) {
	task, ok := h.ownedTask(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(task.UserID, task.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}

// ownedTask resolves the :id path parameter to a task owned by the
// caller. It answers 400 for a bad id, 404 when the task does not
// exist and 403 when it belongs to someone else; the false return
// means a response has been written.
func (h *Handler) ownedTask(c *gin.Context) (*model.Task, bool) {
	identity := auth.CurrentIdentity(c)

	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil || taskID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "task id must be a positive integer"})
		return nil, false
	}

	task, err := h.tasks.FindByID(taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return nil, false
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "task does not exist"})
		return nil, false
	}

	if task.UserID != identity.ID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "you are not allowed to access this task"})
		return nil, false
	}

	return task, true
}
