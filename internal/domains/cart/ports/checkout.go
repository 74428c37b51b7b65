package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
)

// CheckoutGateway submits a checkout to the external cart service.
// A rejected checkout is reported through CheckoutResult.OK, not as an error.
type CheckoutGateway interface {
	Checkout(ctx context.Context, req domain.CheckoutRequest, idempotencyKey string) (domain.CheckoutResult, error)
}

// CheckoutRecord captures a confirmed checkout under the idempotency key it was submitted with.
type CheckoutRecord struct {
	Key        string
	OwnerID    string
	PickupAt   time.Time
	Total      decimal.Decimal
	ProductIDs []string
	ItemCount  int
	Message    string
	CreatedAt  time.Time
}

// CheckoutJournal remembers confirmed checkouts so a retried submission is replayed, not resent.
type CheckoutJournal interface {
	// Find returns the record for key, or nil when unknown.
	Find(ctx context.Context, key string) (*CheckoutRecord, error)
	// Record stores a confirmed checkout. Recording an existing key is a no-op.
	Record(ctx context.Context, record CheckoutRecord) error
}
