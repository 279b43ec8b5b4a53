package repository

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/NekruzRakhimov/todo-list/internal/model"
)

// ErrDuplicateUsername is returned when an insert hits the username
// unique constraint.
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository persists user records
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a UserRepository over the given handle
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns it with the assigned id. The
// handler pre-checks for an existing username; the unique constraint
// backs that check against concurrent registrations.
func (r *UserRepository) Create(fullName, username, passwordHash string) (model.User, error) {
	query := `
		INSERT INTO users (full_name, username, password_hash)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, fullName, username, passwordHash)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.User{}, ErrDuplicateUsername
		}
		return model.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.User{}, err
	}

	return model.User{
		ID:           int(id),
		FullName:     fullName,
		Username:     username,
		PasswordHash: passwordHash,
	}, nil
}

// FindByUsername returns the user with the exact username, or nil when
// no such user exists.
func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	query := `
		SELECT id, full_name, username, password_hash
		FROM users WHERE username = ?
	`

	user := &model.User{}
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.FullName, &user.Username, &user.PasswordHash,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
