package cart

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	cartapp "github.com/Apurer/petcare-portal/internal/domains/cart/application"
	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	cartports "github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

const (
	// SubmitCheckoutActivityName sends the cart to the external cart service without clearing it.
	SubmitCheckoutActivityName = "cart.activities.SubmitCheckout"
	// ClearCartActivityName empties a cart after a confirmed checkout.
	ClearCartActivityName = "cart.activities.ClearCart"

	// Application error types surfaced to the workflow caller.
	ErrTypeCheckoutRejected    = "CheckoutRejected"
	ErrTypeInvalidCheckout     = "InvalidCheckout"
	ErrTypeCheckoutUnavailable = "CheckoutUnavailable"
)

// Activities groups activities that operate on the cart bounded context.
type Activities struct {
	service cartports.Service
}

func NewActivities(service cartports.Service) *Activities {
	return &Activities{service: service}
}

// SubmitCheckout submits the cart. Rejections and invalid carts are non-retryable.
func (a *Activities) SubmitCheckout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("checkout activity not initialized", "ownerId", input.OwnerID)
		return nil, errors.New("checkout activity not initialized")
	}
	logger.Info("SubmitCheckout activity started", "ownerId", input.OwnerID)
	confirmation, err := a.service.SubmitCheckout(ctx, input)
	if err != nil {
		logger.Error("SubmitCheckout activity failed", "ownerId", input.OwnerID, "error", err)
		return nil, toApplicationError(err)
	}
	logger.Info("SubmitCheckout activity completed", "ownerId", input.OwnerID, "items", confirmation.ItemCount)
	return confirmation, nil
}

// ClearCart empties the cart. A heartbeat marks completion so a retried attempt is a no-op.
func (a *Activities) ClearCart(ctx context.Context, ownerID string) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("clear cart activity not initialized", "ownerId", ownerID)
		return errors.New("clear cart activity not initialized")
	}
	var hb clearHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("ClearCart already completed in prior attempt; skipping", "ownerId", ownerID)
		return nil
	}
	if err := a.service.Clear(ctx, ownerID); err != nil {
		logger.Error("ClearCart activity failed", "ownerId", ownerID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, clearHeartbeat{Completed: true})
	logger.Info("ClearCart activity completed", "ownerId", ownerID)
	return nil
}

type clearHeartbeat struct {
	Completed bool
}

func toApplicationError(err error) error {
	var rejection *cartapp.RejectionError
	switch {
	case errors.As(err, &rejection):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeCheckoutRejected, err, rejection.Message)
	case errors.Is(err, cartapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidCheckout, err, err.Error())
	case errors.Is(err, cartapp.ErrCheckoutUnavailable):
		return temporal.NewApplicationErrorWithCause(err.Error(), ErrTypeCheckoutUnavailable, err, err.Error())
	default:
		return err
	}
}
