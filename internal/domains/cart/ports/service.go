package ports

import (
	"context"

	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
)

// Service exposes cart use cases to adapters.
type Service interface {
	GetCart(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, input carttypes.AddItemInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, input carttypes.UpdateQuantityInput) (*domain.Cart, error)
	Increment(ctx context.Context, id carttypes.ItemIdentifier) (*domain.Cart, error)
	Decrement(ctx context.Context, id carttypes.ItemIdentifier) (*domain.Cart, error)
	RemoveItem(ctx context.Context, id carttypes.ItemIdentifier) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) error
	SubmitCheckout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error)
	Checkout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error)
}
