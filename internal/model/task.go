package model

// Task represents a to-do item owned by a single user. Status and
// deadline are free-form strings; only presence is validated.
type Task struct {
	ID          int    `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Status      string `json:"status" db:"status"`
	Deadline    string `json:"deadline" db:"deadline"`
	UserID      int    `json:"user_id" db:"user_id"`
}

// HasRequiredFields reports whether all client-supplied task fields are
// present.
func (t *Task) HasRequiredFields() bool {
	return t.Title != "" && t.Description != "" && t.Status != "" && t.Deadline != ""
}
