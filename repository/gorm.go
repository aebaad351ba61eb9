package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sugawani/user-service/models"
	"github.com/sugawani/user-service/mutate"
	"github.com/sugawani/user-service/query"
)

// GormUserRepository reads through query.Query and writes through mutate.Mutate.
type GormUserRepository struct {
	query  *query.Query
	mutate *mutate.Mutate
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{
		query:  query.NewQuery(db),
		mutate: mutate.NewMutate(db),
	}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id models.ID) (models.User, bool, error) {
	u, err := r.query.Execute(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return *u, true, nil
}

func (r *GormUserRepository) Save(ctx context.Context, user models.User) error {
	if _, err := r.mutate.Execute(ctx, user); err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}
