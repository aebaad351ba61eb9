package mutate

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sugawani/user-service/models"
)

type Mutate struct {
	db *gorm.DB
}

func NewMutate(db *gorm.DB) *Mutate {
	return &Mutate{db: db}
}

// Execute inserts the user or overwrites the name of the row with the same id.
func (m *Mutate) Execute(ctx context.Context, u models.User) (*models.User, error) {
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
