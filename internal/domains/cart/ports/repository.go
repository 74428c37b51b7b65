package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
)

var ErrNotFound = errors.New("cart not found")

// Repository persists carts keyed by owner.
type Repository interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	Delete(ctx context.Context, ownerID string) error
}

// Updater runs a read-modify-write of one cart as a single step, so concurrent updates of the
// same cart do not overwrite each other. A cart that does not exist yet reaches fn empty.
type Updater interface {
	Update(ctx context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error)
}

// IdlePurger removes carts untouched since a cutoff. Implemented by durable repositories.
type IdlePurger interface {
	PurgeIdle(ctx context.Context, before time.Time) (int64, error)
}
