package service

import (
	"context"

	"github.com/sugawani/user-service/logger"
	"github.com/sugawani/user-service/models"
	"github.com/sugawani/user-service/repository"
)

// UnknownUserName is returned by GetUserName when the repository has no such user.
const UnknownUserName = "Unknown"

type UserService struct {
	repo   repository.UserRepository
	logger *logger.Logger
}

type Option func(*UserService)

func WithLogger(l *logger.Logger) Option {
	return func(s *UserService) {
		s.logger = l.GetComponentLogger("userservice")
	}
}

// NewUserService panics on a nil repository: there is no default store.
func NewUserService(repo repository.UserRepository, opts ...Option) *UserService {
	if repo == nil {
		panic("service: nil UserRepository")
	}

	s := &UserService{
		repo:   repo,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUserName returns the stored name, or UnknownUserName when the id is absent.
// Repository errors are returned as is.
func (s *UserService) GetUserName(ctx context.Context, id string) (string, error) {
	u, found, err := s.repo.FindByID(ctx, models.ID(id))
	if err != nil {
		s.logger.Errorf(err, "failed to look up user %s", id)
		return "", err
	}
	if !found {
		s.logger.Debugf("user %s not found", id)
		return UnknownUserName, nil
	}
	return u.Name, nil
}

// RegisterUser saves a new User built from id and name, overwriting any user
// with the same id if the repository does so. No validation happens here.
func (s *UserService) RegisterUser(ctx context.Context, id, name string) error {
	if err := s.repo.Save(ctx, *models.NewUser(models.ID(id), name)); err != nil {
		s.logger.Errorf(err, "failed to register user %s", id)
		return err
	}
	s.logger.Debugf("registered user %s", id)
	return nil
}
