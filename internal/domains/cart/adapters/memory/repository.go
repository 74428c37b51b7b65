package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.IdlePurger = (*Repository)(nil)
	_ ports.Updater    = (*Repository)(nil)
)

// Repository is an in-memory cart persistence adapter.
type Repository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewRepository() *Repository {
	return &Repository{carts: map[string]*domain.Cart{}}
}

func (r *Repository) Get(_ context.Context, ownerID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart, ok := r.carts[ownerID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cart.Clone(), nil
}

func (r *Repository) Save(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if cart == nil {
		return nil, errors.New("cart is nil")
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	clone := cart.Clone()
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[clone.OwnerID] = clone
	return clone.Clone(), nil
}

// Update applies fn under the write lock.
func (r *Repository) Update(_ context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[ownerID]
	if ok {
		cart = cart.Clone()
	} else {
		var err error
		if cart, err = domain.NewCart(ownerID); err != nil {
			return nil, err
		}
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = time.Now()
	}
	r.carts[cart.OwnerID] = cart.Clone()
	return cart, nil
}

func (r *Repository) Delete(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[ownerID]; !ok {
		return ports.ErrNotFound
	}
	delete(r.carts, ownerID)
	return nil
}

// PurgeIdle drops carts whose last update is before the cutoff.
func (r *Repository) PurgeIdle(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for owner, cart := range r.carts {
		if cart.UpdatedAt.Before(before) {
			delete(r.carts, owner)
			purged++
		}
	}
	return purged, nil
}
