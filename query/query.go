package query

import (
	"context"

	"gorm.io/gorm"

	"github.com/sugawani/user-service/models"
)

type Query struct {
	db *gorm.DB
}

func NewQuery(db *gorm.DB) *Query {
	return &Query{db: db}
}

// Execute returns gorm.ErrRecordNotFound when no user has the given id.
func (q *Query) Execute(ctx context.Context, userID models.ID) (*models.User, error) {
	var u models.User
	if err := q.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}

	return &u, nil
}
