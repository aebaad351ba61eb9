package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugawani/user-service/models"
)

// runContractTests checks the behaviour every UserRepository must share.
// newRepo must return an empty repository.
func runContractTests(t *testing.T, newRepo func(t *testing.T) UserRepository) {
	t.Helper()
	ctx := context.Background()

	cases := map[string]struct {
		seed   []models.User
		lookup models.ID
		want   models.User
		found  bool
	}{
		"user exists":     {seed: []models.User{{ID: "123", Name: "Alice"}}, lookup: "123", want: models.User{ID: "123", Name: "Alice"}, found: true},
		"user not exists": {seed: []models.User{{ID: "123", Name: "Alice"}}, lookup: "999", want: models.User{}, found: false},
		"empty store":     {seed: nil, lookup: "123", want: models.User{}, found: false},
		"overwritten":     {seed: []models.User{{ID: "1", Name: "First"}, {ID: "1", Name: "Second"}}, lookup: "1", want: models.User{ID: "1", Name: "Second"}, found: true},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			for _, u := range tt.seed {
				require.NoError(t, repo.Save(ctx, u))
			}

			actual, found, err := repo.FindByID(ctx, tt.lookup)
			assert.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, actual)
		})
	}

	t.Run("random ids round trip", func(t *testing.T) {
		repo := newRepo(t)
		saved := make([]models.User, 0, 10)
		for i := 0; i < 10; i++ {
			u := models.User{ID: models.ID(uuid.NewString()), Name: uuid.NewString()}
			require.NoError(t, repo.Save(ctx, u))
			saved = append(saved, u)
		}

		for _, u := range saved {
			actual, found, err := repo.FindByID(ctx, u.ID)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, u, actual)
		}

		_, found, err := repo.FindByID(ctx, models.ID(uuid.NewString()))
		assert.NoError(t, err)
		assert.False(t, found)
	})
}
