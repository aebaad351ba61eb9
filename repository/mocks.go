package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sugawani/user-service/models"
)

// mocked version of the UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id models.ID) (models.User, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) Save(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
