// Package cache is a Redis read-through layer in front of a cart repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

const (
	DefaultTTL = 15 * time.Minute
	maxJitter  = 5
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.IdlePurger = (*Repository)(nil)
	_ ports.Updater    = (*Repository)(nil)

	errCacheMiss = errors.New("cart cache miss")
)

// Repository serves reads from Redis and falls back to the wrapped repository.
// Writes go to the wrapped repository first and then refresh the cached copy.
type Repository struct {
	inner   ports.Repository
	client  redis.UniversalClient
	baseTTL time.Duration
	logger  *slog.Logger
}

type Option func(*Repository)

func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.baseTTL = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRepository(inner ports.Repository, client redis.UniversalClient, opts ...Option) *Repository {
	r := &Repository{
		inner:   inner,
		client:  client,
		baseTTL: DefaultTTL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := r.load(ctx, ownerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, errCacheMiss) {
		r.logger.WarnContext(ctx, "cart cache read failed", slog.String("owner.id", ownerID), slog.String("error", err.Error()))
	}
	cart, err = r.inner.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *Repository) Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	saved, err := r.inner.Save(ctx, cart)
	if err != nil {
		return nil, err
	}
	r.store(ctx, saved)
	return saved, nil
}

func (r *Repository) Delete(ctx context.Context, ownerID string) error {
	err := r.inner.Delete(ctx, ownerID)
	r.evict(ctx, ownerID)
	return err
}

// Update runs the read-modify-write against the wrapped repository and drops the cached copy.
// Evicting instead of writing back keeps a slower concurrent writer from caching an older cart.
func (r *Repository) Update(ctx context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	var (
		saved *domain.Cart
		err   error
	)
	if updater, ok := r.inner.(ports.Updater); ok {
		saved, err = updater.Update(ctx, ownerID, fn)
	} else {
		saved, err = r.readModifyWrite(ctx, ownerID, fn)
	}
	r.evict(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) readModifyWrite(ctx context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := r.inner.Get(ctx, ownerID)
	if errors.Is(err, ports.ErrNotFound) {
		cart, err = domain.NewCart(ownerID)
	}
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	return r.inner.Save(ctx, cart)
}

// PurgeIdle delegates to the wrapped repository when it supports purging, then evicts cached
// copies last updated before the cutoff.
func (r *Repository) PurgeIdle(ctx context.Context, before time.Time) (int64, error) {
	purger, ok := r.inner.(ports.IdlePurger)
	if !ok {
		return 0, nil
	}
	purged, err := purger.PurgeIdle(ctx, before)
	if err != nil {
		return purged, err
	}
	if err := r.evictIdle(ctx, before); err != nil {
		r.logger.WarnContext(ctx, "cart cache purge failed", slog.String("error", err.Error()))
	}
	return purged, nil
}

func (r *Repository) evictIdle(ctx context.Context, before time.Time) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis get %s failed: %w", key, err)
		}
		var cached cachedCart
		if err := json.Unmarshal(data, &cached); err == nil && !cached.UpdatedAt.Before(before) {
			continue
		}
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del %s failed: %w", key, err)
		}
	}
	return iter.Err()
}

func (r *Repository) load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var cached cachedCart
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return cached.toDomain(), nil
}

func (r *Repository) store(ctx context.Context, cart *domain.Cart) {
	if cart == nil {
		return
	}
	data, err := json.Marshal(fromDomain(cart))
	if err != nil {
		r.logger.WarnContext(ctx, "cart cache encode failed", slog.String("owner.id", cart.OwnerID), slog.String("error", err.Error()))
		return
	}
	ttl := r.baseTTL + time.Duration(rand.Intn(maxJitter))*time.Minute
	if err := r.client.Set(ctx, cacheKey(cart.OwnerID), data, ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "cart cache write failed", slog.String("owner.id", cart.OwnerID), slog.String("error", err.Error()))
	}
}

func (r *Repository) evict(ctx context.Context, ownerID string) {
	if err := r.client.Del(ctx, cacheKey(ownerID)).Err(); err != nil {
		r.logger.WarnContext(ctx, "cart cache evict failed", slog.String("owner.id", ownerID), slog.String("error", err.Error()))
	}
}

const keyPrefix = "cart:"

func cacheKey(ownerID string) string {
	return keyPrefix + ownerID
}

type cachedItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"imageUrl,omitempty"`
}

type cachedCart struct {
	OwnerID   string       `json:"ownerId"`
	Items     []cachedItem `json:"items"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func fromDomain(cart *domain.Cart) cachedCart {
	out := cachedCart{OwnerID: cart.OwnerID, UpdatedAt: cart.UpdatedAt}
	for _, item := range cart.Items {
		out.Items = append(out.Items, cachedItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}
	return out
}

func (c cachedCart) toDomain() *domain.Cart {
	cart := &domain.Cart{OwnerID: c.OwnerID, UpdatedAt: c.UpdatedAt}
	for _, item := range c.Items {
		cart.Items = append(cart.Items, domain.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}
	return cart
}
