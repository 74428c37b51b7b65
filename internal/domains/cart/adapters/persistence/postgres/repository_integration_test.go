//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
	"github.com/Apurer/petcare-portal/internal/platform/migrations"
)

func setupCartPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("petcare_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func buildCart(t *testing.T, owner string, updatedAt time.Time) *domain.Cart {
	t.Helper()
	cart, err := domain.NewCart(owner)
	require.NoError(t, err)
	first, err := domain.NewItem("kibble", "Kibble", decimal.RequireFromString("12.50"), 2, nil)
	require.NoError(t, err)
	second, err := domain.NewItem("collar", "Collar", decimal.RequireFromString("5.00"), 1, nil)
	require.NoError(t, err)
	cart.Add(first)
	cart.Add(second)
	cart.UpdatedAt = updatedAt
	return cart
}

func TestRepository_SaveAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, buildCart(t, "owner-1", time.Now()))
	require.NoError(t, err)
	require.Len(t, saved.Items, 2)
	assert.Equal(t, "kibble", saved.Items[0].ProductID)
	assert.Equal(t, "collar", saved.Items[1].ProductID)
	assert.True(t, saved.Total().Equal(decimal.RequireFromString("30.00")))
}

func TestRepository_SaveReplacesLines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cart := buildCart(t, "owner-1", time.Now())
	_, err := repo.Save(ctx, cart)
	require.NoError(t, err)

	require.NoError(t, cart.Remove("kibble"))
	updated, err := repo.Save(ctx, cart)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "collar", updated.Items[0].ProductID)
}

func TestRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, buildCart(t, "owner-1", time.Now()))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "owner-1"))

	_, err = repo.Get(ctx, "owner-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "owner-1"), ports.ErrNotFound)
}

func TestRepository_PurgeIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.Save(ctx, buildCart(t, "stale", now.Add(-72*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Save(ctx, buildCart(t, "fresh", now))
	require.NoError(t, err)

	purged, err := repo.PurgeIdle(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.Get(ctx, "stale")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	var orphaned int64
	require.NoError(t, db.Table("cart_items").Where("owner_id = ?", "stale").Count(&orphaned).Error)
	assert.Zero(t, orphaned)

	fresh, err := repo.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, fresh.Items, 2)
}

func TestCheckoutJournal_RecordAndFind(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	journal := NewCheckoutJournal(db)
	ctx := context.Background()

	missing, err := journal.Find(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	record := ports.CheckoutRecord{
		Key:        "key-1",
		OwnerID:    "owner-1",
		PickupAt:   time.Now().UTC().Truncate(time.Second),
		Total:      decimal.RequireFromString("30.00"),
		ProductIDs: []string{"kibble", "collar"},
		ItemCount:  3,
		Message:    "See you soon",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, journal.Record(ctx, record))
	record.Message = "second write is ignored"
	require.NoError(t, journal.Record(ctx, record))

	found, err := journal.Find(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "owner-1", found.OwnerID)
	assert.Equal(t, []string{"kibble", "collar"}, found.ProductIDs)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("30")))
	assert.Equal(t, "See you soon", found.Message)
}

func TestRepository_ConcurrentUpdatesFromSeparateInstances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	instances := []*Repository{NewRepository(db), NewRepository(db)}
	ctx := context.Background()

	const increments = 20
	var wg sync.WaitGroup
	for i := 0; i < increments; i++ {
		wg.Add(1)
		go func(repo *Repository) {
			defer wg.Done()
			_, err := repo.Update(ctx, "owner-1", func(cart *domain.Cart) error {
				item, err := domain.NewItem("kibble", "Kibble", decimal.RequireFromString("12.50"), 1, nil)
				if err != nil {
					return err
				}
				cart.Add(item)
				return nil
			})
			assert.NoError(t, err)
		}(instances[i%len(instances)])
	}
	wg.Wait()

	cart, err := instances[0].Get(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, increments, cart.Items[0].Quantity)
}

func TestRepository_UpdateRollsBackOnError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Update(ctx, "owner-1", func(cart *domain.Cart) error {
		return cart.SetQuantity("kibble", 1)
	})
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = repo.Get(ctx, "owner-1")
	require.ErrorIs(t, err, ports.ErrNotFound)
}
