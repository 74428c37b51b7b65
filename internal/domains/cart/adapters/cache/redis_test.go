package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/petcare-portal/internal/domains/cart/adapters/memory"
	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

type countingRepo struct {
	*memory.Repository
	gets int
}

func (c *countingRepo) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	c.gets++
	return c.Repository.Get(ctx, ownerID)
}

func setupTestCache(t *testing.T) (*Repository, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	inner := &countingRepo{Repository: memory.NewRepository()}
	return NewRepository(inner, client), inner, mr
}

func sampleCart(t *testing.T) *domain.Cart {
	t.Helper()
	cart, err := domain.NewCart("owner-1")
	require.NoError(t, err)
	image := "https://cdn.example.com/kibble.png"
	item, err := domain.NewItem("kibble", "Kibble", decimal.RequireFromString("12.50"), 2, &image)
	require.NoError(t, err)
	cart.Add(item)
	cart.UpdatedAt = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return cart
}

func TestSave_WritesThroughAndCaches(t *testing.T) {
	repo, inner, mr := setupTestCache(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleCart(t))
	require.NoError(t, err)
	assert.True(t, mr.Exists("cart:owner-1"))

	ttl := mr.TTL("cart:owner-1")
	assert.GreaterOrEqual(t, ttl, DefaultTTL)
	assert.LessOrEqual(t, ttl, DefaultTTL+maxJitter*time.Minute)

	cart, err := repo.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 0, inner.gets)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Price.Equal(decimal.RequireFromString("12.50")))
	require.NotNil(t, cart.Items[0].ImageURL)
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(25)))
}

func TestGet_MissFallsBackAndPopulates(t *testing.T) {
	repo, inner, mr := setupTestCache(t)
	ctx := context.Background()

	_, err := inner.Repository.Save(ctx, sampleCart(t))
	require.NoError(t, err)
	require.False(t, mr.Exists("cart:owner-1"))

	_, err = repo.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)
	assert.True(t, mr.Exists("cart:owner-1"))

	_, err = repo.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)
}

func TestGet_CorruptEntryFallsBack(t *testing.T) {
	repo, inner, mr := setupTestCache(t)
	ctx := context.Background()

	_, err := inner.Repository.Save(ctx, sampleCart(t))
	require.NoError(t, err)
	require.NoError(t, mr.Set("cart:owner-1", `{"ownerId":`))

	cart, err := repo.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", cart.OwnerID)
	assert.Equal(t, 1, inner.gets)
}

func TestGet_UnknownOwnerPropagatesNotFound(t *testing.T) {
	repo, _, mr := setupTestCache(t)

	_, err := repo.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, ports.ErrNotFound)
	assert.False(t, mr.Exists("cart:nobody"))
}

func TestDelete_Evicts(t *testing.T) {
	repo, _, mr := setupTestCache(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleCart(t))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "owner-1"))
	assert.False(t, mr.Exists("cart:owner-1"))

	require.ErrorIs(t, repo.Delete(ctx, "owner-1"), ports.ErrNotFound)
}

func TestPurgeIdle_DelegatesAndEvictsIdleCopies(t *testing.T) {
	repo, _, mr := setupTestCache(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleCart(t))
	require.NoError(t, err)
	fresh := sampleCart(t)
	fresh.OwnerID = "owner-2"
	fresh.UpdatedAt = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.Save(ctx, fresh)
	require.NoError(t, err)
	require.True(t, mr.Exists("cart:owner-1"))

	purged, err := repo.PurgeIdle(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.False(t, mr.Exists("cart:owner-1"))
	assert.True(t, mr.Exists("cart:owner-2"))

	_, err = repo.Get(ctx, "owner-1")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdate_WritesInnerAndEvicts(t *testing.T) {
	repo, inner, mr := setupTestCache(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleCart(t))
	require.NoError(t, err)
	require.True(t, mr.Exists("cart:owner-1"))

	updated, err := repo.Update(ctx, "owner-1", func(cart *domain.Cart) error {
		return cart.SetQuantity("kibble", 5)
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Items[0].Quantity)
	assert.False(t, mr.Exists("cart:owner-1"))

	stored, err := inner.Repository.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Items[0].Quantity)
}

func TestUpdate_FailureLeavesInnerUntouched(t *testing.T) {
	repo, inner, _ := setupTestCache(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleCart(t))
	require.NoError(t, err)

	_, err = repo.Update(ctx, "owner-1", func(cart *domain.Cart) error {
		return cart.SetQuantity("missing", 1)
	})
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	stored, err := inner.Repository.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", cacheKey("test123"))
}
