package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sugawani/user-service/logger"
	"github.com/sugawani/user-service/models"
	"github.com/sugawani/user-service/repository"
)

var errDB = errors.New("DB Error")

func Test_GetUserName(t *testing.T) {
	cases := map[string]struct {
		id        string
		user      models.User
		found     bool
		findErr   error
		want      string
		assertErr assert.ErrorAssertionFunc
	}{
		"user exists":     {id: "123", user: models.User{ID: "123", Name: "Alice"}, found: true, want: "Alice", assertErr: assert.NoError},
		"user not exists": {id: "999", want: UnknownUserName, assertErr: assert.NoError},
		"empty name":      {id: "1", user: models.User{ID: "1", Name: ""}, found: true, want: "", assertErr: assert.NoError},
		"lookup fails": {id: "123", findErr: errDB, want: "", assertErr: func(t assert.TestingT, err error, i ...interface{}) bool {
			return assert.ErrorIs(t, err, errDB)
		}},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := &repository.MockUserRepository{}
			repo.On("FindByID", ctx, models.ID(tt.id)).Return(tt.user, tt.found, tt.findErr).Once()

			actual, err := NewUserService(repo).GetUserName(ctx, tt.id)
			tt.assertErr(t, err)
			assert.Equal(t, tt.want, actual)
			repo.AssertExpectations(t)
		})
	}
}

func Test_GetUserName_ErrorIsUnchanged(t *testing.T) {
	repo := &repository.MockUserRepository{}
	repo.On("FindByID", mock.Anything, mock.Anything).Return(models.User{}, false, errDB)

	_, err := NewUserService(repo).GetUserName(context.Background(), "123")
	assert.Same(t, errDB, err)
}

func Test_GetUserName_SequentialStubbing(t *testing.T) {
	ctx := context.Background()
	repo := &repository.MockUserRepository{}
	repo.On("FindByID", ctx, models.ID("1")).Return(models.User{}, false, nil).Once()
	repo.On("FindByID", ctx, models.ID("1")).Return(models.User{ID: "1", Name: "RetryUser"}, true, nil).Once()
	s := NewUserService(repo)

	first, err := s.GetUserName(ctx, "1")
	require.NoError(t, err)
	second, err := s.GetUserName(ctx, "1")
	require.NoError(t, err)

	assert.Equal(t, UnknownUserName, first)
	assert.Equal(t, "RetryUser", second)
	repo.AssertNumberOfCalls(t, "FindByID", 2)
}

func Test_RegisterUser(t *testing.T) {
	cases := map[string]struct {
		id        string
		name      string
		saveErr   error
		assertErr assert.ErrorAssertionFunc
	}{
		"save user":     {id: "456", name: "Bob", assertErr: assert.NoError},
		"no validation": {id: "", name: "", assertErr: assert.NoError},
		"save fails": {id: "789", name: "Eve", saveErr: errDB, assertErr: func(t assert.TestingT, err error, i ...interface{}) bool {
			return assert.ErrorIs(t, err, errDB)
		}},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var captured []models.User
			repo := &repository.MockUserRepository{}
			repo.On("Save", ctx, mock.AnythingOfType("models.User")).
				Run(func(args mock.Arguments) {
					captured = append(captured, args.Get(1).(models.User))
				}).
				Return(tt.saveErr)

			err := NewUserService(repo).RegisterUser(ctx, tt.id, tt.name)
			tt.assertErr(t, err)

			require.Len(t, captured, 1)
			assert.Equal(t, models.ID(tt.id), captured[0].ID)
			assert.Equal(t, tt.name, captured[0].Name)
			repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		})
	}
}

func Test_RegisterUser_ArgumentMatcher(t *testing.T) {
	ctx := context.Background()
	repo := &repository.MockUserRepository{}
	repo.On("Save", ctx, mock.MatchedBy(func(u models.User) bool {
		return u.ID == "456" && u.Name == "Bob"
	})).Return(nil).Once()

	require.NoError(t, NewUserService(repo).RegisterUser(ctx, "456", "Bob"))
	repo.AssertCalled(t, "Save", ctx, models.User{ID: "456", Name: "Bob"})
	repo.AssertExpectations(t)
}

func Test_RegisterUser_ErrorIsUnchanged(t *testing.T) {
	repo := &repository.MockUserRepository{}
	repo.On("Save", mock.Anything, mock.Anything).Return(errDB)

	err := NewUserService(repo).RegisterUser(context.Background(), "789", "Eve")
	assert.Same(t, errDB, err)
}

// lookup-then-register should hit the repository in that order
func Test_CallOrder(t *testing.T) {
	ctx := context.Background()
	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}
	repo := &repository.MockUserRepository{}
	repo.On("FindByID", ctx, models.ID("42")).Run(record("FindByID")).Return(models.User{}, false, nil).Once()
	repo.On("Save", ctx, models.User{ID: "42", Name: "Zaphod"}).Run(record("Save")).Return(nil).Once()
	s := NewUserService(repo)

	name, err := s.GetUserName(ctx, "42")
	require.NoError(t, err)
	if name == UnknownUserName {
		require.NoError(t, s.RegisterUser(ctx, "42", "Zaphod"))
	}

	assert.Equal(t, []string{"FindByID", "Save"}, calls)
	repo.AssertExpectations(t)
}

// spyRepository delegates to a real repository and records what it was asked.
type spyRepository struct {
	repository.UserRepository

	mu    sync.Mutex
	finds []models.ID
	saves []models.User
}

func (s *spyRepository) FindByID(ctx context.Context, id models.ID) (models.User, bool, error) {
	s.mu.Lock()
	s.finds = append(s.finds, id)
	s.mu.Unlock()
	return s.UserRepository.FindByID(ctx, id)
}

func (s *spyRepository) Save(ctx context.Context, user models.User) error {
	s.mu.Lock()
	s.saves = append(s.saves, user)
	s.mu.Unlock()
	return s.UserRepository.Save(ctx, user)
}

func Test_Scenarios_MemoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		spy := &spyRepository{UserRepository: repository.NewMemoryUserRepository(models.User{ID: "123", Name: "Alice"})}
		s := NewUserService(spy)

		alice, err := s.GetUserName(ctx, "123")
		require.NoError(t, err)
		unknown, err := s.GetUserName(ctx, "999")
		require.NoError(t, err)

		assert.Equal(t, "Alice", alice)
		assert.Equal(t, UnknownUserName, unknown)
		assert.Equal(t, []models.ID{"123", "999"}, spy.finds)
		assert.Empty(t, spy.saves)
	})

	t.Run("register on empty repository", func(t *testing.T) {
		repo := repository.NewMemoryUserRepository()
		spy := &spyRepository{UserRepository: repo}
		s := NewUserService(spy)

		require.NoError(t, s.RegisterUser(ctx, "456", "Bob"))

		u, found, err := repo.FindByID(ctx, "456")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, models.User{ID: "456", Name: "Bob"}, u)
		assert.Equal(t, []models.User{{ID: "456", Name: "Bob"}}, spy.saves)
	})

	t.Run("register twice overwrites", func(t *testing.T) {
		repo := repository.NewMemoryUserRepository()
		s := NewUserService(repo)

		require.NoError(t, s.RegisterUser(ctx, "456", "Bob"))
		require.NoError(t, s.RegisterUser(ctx, "456", "Robert"))

		name, err := s.GetUserName(ctx, "456")
		require.NoError(t, err)
		assert.Equal(t, "Robert", name)
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("registered names are returned", func(t *testing.T) {
		s := NewUserService(repository.NewMemoryUserRepository())
		want := map[string]string{}
		for i := 0; i < 20; i++ {
			id, name := uuid.NewString(), uuid.NewString()
			want[id] = name
			require.NoError(t, s.RegisterUser(ctx, id, name))
		}

		for id, name := range want {
			actual, err := s.GetUserName(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, name, actual)
		}
		actual, err := s.GetUserName(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Equal(t, UnknownUserName, actual)
	})
}

func Test_NewUserService_NilRepository(t *testing.T) {
	assert.Panics(t, func() { NewUserService(nil) })
}

func Test_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	repo := &repository.MockUserRepository{}
	repo.On("Save", mock.Anything, mock.Anything).Return(errDB)

	err := NewUserService(repo, WithLogger(logger.New("info", &buf))).RegisterUser(context.Background(), "789", "Eve")

	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, buf.String(), `"component":"userservice"`)
	assert.Contains(t, buf.String(), "failed to register user 789")
}
