package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sugawani/user-service/models"
)

// Statements stick to the subset MySQL and SQLite both accept.
const (
	selectUserSQL  = "SELECT id, name FROM users WHERE id = ?"
	replaceUserSQL = "REPLACE INTO users (id, name) VALUES (?, ?)"
	createTableSQL = `CREATE TABLE IF NOT EXISTS users (
	id   VARCHAR(64)  NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL
)`
)

type SQLUserRepository struct {
	db *sql.DB
}

func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// EnsureSchema creates the users table when it is missing. MySQL deployments
// get the table from the Flyway migrations instead.
func (r *SQLUserRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id models.ID) (models.User, bool, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserSQL, id).Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return u, true, nil
}

func (r *SQLUserRepository) Save(ctx context.Context, user models.User) error {
	if _, err := r.db.ExecContext(ctx, replaceUserSQL, user.ID, user.Name); err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}
