package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	cartapp "github.com/Apurer/petcare-portal/internal/domains/cart/application"
	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
	cartactivities "github.com/Apurer/petcare-portal/internal/platform/temporal/activities/cart"
	checkoutworkflows "github.com/Apurer/petcare-portal/internal/platform/temporal/workflows/checkout"
)

var (
	_ ports.CheckoutOrchestrator = (*TemporalCheckoutWorkflows)(nil)
	_ ports.CheckoutOrchestrator = (*InlineCheckoutWorkflows)(nil)
)

// TemporalCheckoutWorkflows runs checkouts as workflows on a Temporal cluster.
type TemporalCheckoutWorkflows struct {
	client    client.Client
	taskQueue string
}

func NewTemporalCheckoutWorkflows(c client.Client) *TemporalCheckoutWorkflows {
	return &TemporalCheckoutWorkflows{client: c, taskQueue: checkoutworkflows.CheckoutTaskQueue}
}

// Checkout starts the checkout workflow and waits for its outcome. Workflow failures are
// translated back to the cart application errors.
func (o *TemporalCheckoutWorkflows) Checkout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal checkout workflows not configured")
	}
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		input.IdempotencyKey = uuid.NewString()
	}
	workflowID := buildCheckoutWorkflowID(input.IdempotencyKey)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		checkoutworkflows.CheckoutWorkflowName,
		checkoutworkflows.CheckoutWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: start checkout workflow: %w", cartapp.ErrCheckoutUnavailable, err)
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var confirmation carttypes.CheckoutConfirmation
	if err := run.Get(ctx, &confirmation); err != nil {
		return nil, translateWorkflowError(err)
	}
	return &confirmation, nil
}

// InlineCheckoutWorkflows executes the service directly without Temporal.
type InlineCheckoutWorkflows struct {
	service ports.Service
}

func NewInlineCheckoutWorkflows(service ports.Service) *InlineCheckoutWorkflows {
	return &InlineCheckoutWorkflows{service: service}
}

func (o *InlineCheckoutWorkflows) Checkout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline checkout workflows not configured")
	}
	return o.service.Checkout(ctx, input)
}

func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return fmt.Errorf("%w: %w", cartapp.ErrCheckoutUnavailable, err)
	}
	var detail string
	if appErr.HasDetails() {
		_ = appErr.Details(&detail)
	}
	switch appErr.Type() {
	case cartactivities.ErrTypeCheckoutRejected:
		return cartapp.NewRejectionError(detail)
	case cartactivities.ErrTypeInvalidCheckout:
		return fmt.Errorf("%w: %s", cartapp.ErrInvalidInput, detail)
	default:
		return fmt.Errorf("%w: %w", cartapp.ErrCheckoutUnavailable, err)
	}
}

func buildCheckoutWorkflowID(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return fmt.Sprintf("cart-checkout-idem-%s", hex.EncodeToString(sum[:8]))
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
