package checkout

import (
	"go.temporal.io/sdk/workflow"

	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	"github.com/Apurer/petcare-portal/internal/platform/temporal/sequences"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the workflow.
	CheckoutWorkflowName = "cart.workflows.Checkout"
	// CheckoutTaskQueue is the queue consumed by the worker processing checkout workflows.
	CheckoutTaskQueue = "CART_CHECKOUT"
)

// CheckoutWorkflowInput carries the checkout command and the caller's trace id.
type CheckoutWorkflowInput struct {
	Command carttypes.CheckoutInput
	TraceID string
}

// CheckoutWorkflow submits a cart checkout and clears the cart once it is confirmed.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*carttypes.CheckoutConfirmation, error) {
	logger := workflow.GetLogger(ctx)
	ownerID := input.Command.OwnerID
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "ownerId", ownerID)...)
	confirmation, err := sequences.RunCheckoutSequence(ctx, input.Command)
	if err != nil {
		logger.Error("CheckoutWorkflow failed", withTraceID(input.TraceID, "ownerId", ownerID, "error", err)...)
		return nil, err
	}
	logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "ownerId", ownerID)...)
	return confirmation, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
