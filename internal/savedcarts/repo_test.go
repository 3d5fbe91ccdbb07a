package savedcarts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartshare/cartshare-backend/pkg/config"
	"github.com/cartshare/cartshare-backend/pkg/db"
	"github.com/cartshare/cartshare-backend/pkg/db/models"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/types"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{UseSQLite: true, SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.AutoMigrate(context.Background()))

	return NewRepository(client)
}

func TestCreateAssignsIDAndRoundTrips(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	saved := &models.SavedCart{
		UserID: "user_a",
		Name:   "weekly run",
		Items: types.SavedItems{
			{ProductID: "prod_001", Name: "Wireless Headphones", UnitPriceCents: 2999, Quantity: 2},
		},
	}
	require.NoError(t, repo.Create(ctx, saved))
	assert.NotEqual(t, uuid.Nil, saved.ID)

	got, err := repo.FindForUser(ctx, saved.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, "weekly run", got.Name)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "prod_001", got.Items[0].ProductID)
	assert.Equal(t, int64(2999), got.Items[0].UnitPriceCents)
}

func TestFindForUserScopesToOwner(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	saved := &models.SavedCart{UserID: "user_a", Name: "mine"}
	require.NoError(t, repo.Create(ctx, saved))

	_, err := repo.FindForUser(ctx, saved.ID, "user_b")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	_, err = repo.FindForUser(ctx, uuid.New(), "user_a")
	require.Error(t, err)
}

func TestListByUserOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.SavedCart{UserID: "user_a", Name: name}))
	}
	require.NoError(t, repo.Create(ctx, &models.SavedCart{UserID: "user_b", Name: "other"}))

	list, err := repo.ListByUser(ctx, "user_a")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 0; i < len(list)-1; i++ {
		assert.False(t, list[i].SavedAt.Before(list[i+1].SavedAt))
	}

	empty, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
