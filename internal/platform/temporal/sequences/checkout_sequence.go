package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	cartactivities "github.com/Apurer/petcare-portal/internal/platform/temporal/activities/cart"
)

// RunCheckoutSequence submits the checkout once and clears the cart when the order was accepted.
func RunCheckoutSequence(ctx workflow.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("checkout sequence started", "ownerId", input.OwnerID)
	// The external checkout is not retried; the shopper decides whether to try again.
	submitOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	clearOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var confirmation carttypes.CheckoutConfirmation
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, submitOptions), cartactivities.SubmitCheckoutActivityName, input).Get(ctx, &confirmation)
	if err != nil {
		logger.Error("checkout sequence submit failed", "ownerId", input.OwnerID, "error", err)
		return nil, err
	}
	if confirmation.Replayed {
		logger.Info("checkout sequence replayed, cart left as is", "ownerId", input.OwnerID)
		return &confirmation, nil
	}
	logger.Info("checkout sequence confirmed", "ownerId", input.OwnerID, "items", confirmation.ItemCount)

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, clearOptions), cartactivities.ClearCartActivityName, confirmation.OwnerID).Get(ctx, nil); err != nil {
		logger.Error("checkout sequence clear failed", "ownerId", input.OwnerID, "error", err)
		return &confirmation, err
	}
	logger.Info("checkout sequence cleared cart", "ownerId", input.OwnerID)
	return &confirmation, nil
}
