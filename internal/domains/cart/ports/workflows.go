package ports

import (
	"context"

	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
)

// CheckoutOrchestrator runs the checkout flow, either inline or as a durable workflow.
type CheckoutOrchestrator interface {
	Checkout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error)
}
