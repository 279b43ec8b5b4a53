package repository

import (
	"database/sql"

	"github.com/NekruzRakhimov/todo-list/internal/model"
)

// allowedSortColumns is the allow-list for ORDER BY; anything else
// falls back to id so user input never reaches the SQL text.
var allowedSortColumns = map[string]bool{
	"id":       true,
	"title":    true,
	"status":   true,
	"deadline": true,
}

// TaskRepository persists task records
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a TaskRepository over the given handle
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task with the caller-set user_id
func (r *TaskRepository) Create(task model.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, deadline, user_id)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, task.Title, task.Description, task.Status, task.Deadline, task.UserID)
	return err
}

// ListForUser returns all tasks owned by userID, optionally filtered by
// exact status match and ordered by a whitelisted column (id ascending
// for any unrecognized value).
func (r *TaskRepository) ListForUser(userID int, statusFilter, sortColumn string) ([]model.Task, error) {
	query := `
		SELECT id, title, description, status, deadline, user_id
		FROM tasks WHERE user_id = ?
	`
	args := []interface{}{userID}

	if statusFilter != "" {
		query += " AND status = ?"
		args = append(args, statusFilter)
	}

	if !allowedSortColumns[sortColumn] {
		sortColumn = "id"
	}
	query += " ORDER BY " + sortColumn

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var task model.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description,
			&task.Status, &task.Deadline, &task.UserID); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// FindByID returns the task with the given id regardless of owner, or
// nil when no such task exists. Ownership is the caller's concern.
func (r *TaskRepository) FindByID(taskID int) (*model.Task, error) {
	query := `
		SELECT id, title, description, status, deadline, user_id
		FROM tasks WHERE id = ?
	`

	task := &model.Task{}
	err := r.db.QueryRow(query, taskID).Scan(
		&task.ID, &task.Title, &task.Description,
		&task.Status, &task.Deadline, &task.UserID,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Update replaces the mutable fields of the row matching the task's id
// and owner. An owner mismatch affects zero rows; the handler has
// already verified ownership before calling this.
func (r *TaskRepository) Update(task model.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, deadline = ?
		WHERE id = ? AND user_id = ?
	`

	_, err := r.db.Exec(query, task.Title, task.Description, task.Status, task.Deadline, task.ID, task.UserID)
	return err
}

// Delete removes the row matching taskID and userID; an owner mismatch
// affects zero rows.
func (r *TaskRepository) Delete(userID, taskID int) error {
	_, err := r.db.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	return err
}
