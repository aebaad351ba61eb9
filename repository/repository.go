// Package repository holds the persistence contract used by the user service
// and the adapters that satisfy it.
package repository

import (
	"context"

	"github.com/sugawani/user-service/models"
)

// UserRepository is implemented by every backing store.
//
// FindByID reports absence through the boolean, never through an error. Any
// error it returns means the store could not be reached or read. Save inserts
// or overwrites the user keyed by its ID.
type UserRepository interface {
	FindByID(ctx context.Context, id models.ID) (models.User, bool, error)
	Save(ctx context.Context, user models.User) error
}
