package repository

import (
	"context"
	"sync"

	"github.com/sugawani/user-service/models"
)

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[models.ID]models.User
}

func NewMemoryUserRepository(users ...models.User) *MemoryUserRepository {
	r := &MemoryUserRepository{users: make(map[models.ID]models.User, len(users))}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id models.ID) (models.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	return u, ok, nil
}

func (r *MemoryUserRepository) Save(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	return nil
}

func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
