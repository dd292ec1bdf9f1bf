package cart

import (
	"context"
	"testing"
	"time"

	"electrohive-be/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestRepo(t *testing.T) Repository {
	if testing.Short() {
		t.Skip("skipping container-backed repository test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	database, err := db.Connect(ctx, uri, "testdb")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Disconnect(context.Background(), database) })

	repo := NewRepository(database)
	require.NoError(t, repo.CreateIndexes(ctx))
	return repo
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	line := CartLine{
		ID:        primitive.NewObjectID(),
		ProductID: primitive.NewObjectID(),
		Quantity:  2,
		AddedAt:   time.Now(),
	}
	c := &Cart{
		UserID:     "u1",
		Lines:      []CartLine{line},
		TotalPrice: 200,
		TotalItems: 2,
	}
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, line.ID, got.Lines[0].ID)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, float64(200), got.TotalPrice)
	assert.Equal(t, 2, got.TotalItems)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRepository_SaveIsUpsertPerUser(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	first := &Cart{
		UserID:     "u1",
		Lines:      []CartLine{{ID: primitive.NewObjectID(), ProductID: primitive.NewObjectID(), Quantity: 1}},
		TotalPrice: 100,
		TotalItems: 1,
	}
	require.NoError(t, repo.Save(ctx, first))

	// Second save replaces lines and totals in place; the document count for
	// the user stays one.
	second := &Cart{
		UserID:     "u1",
		Lines:      []CartLine{},
		TotalPrice: 0,
		TotalItems: 0,
	}
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
	assert.Equal(t, float64(0), got.TotalPrice)
	assert.Equal(t, 0, got.TotalItems)
}

func TestRepository_CartsAreIsolatedPerUser(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Cart{UserID: "u1", Lines: []CartLine{}, TotalItems: 0}))
	require.NoError(t, repo.Save(ctx, &Cart{
		UserID:     "u2",
		Lines:      []CartLine{{ID: primitive.NewObjectID(), ProductID: primitive.NewObjectID(), Quantity: 3}},
		TotalItems: 3,
	}))

	got1, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	got2, err := repo.Get(ctx, "u2")
	require.NoError(t, err)

	assert.Empty(t, got1.Lines)
	assert.Len(t, got2.Lines, 1)
}
