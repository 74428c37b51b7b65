package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	cartapp "github.com/Apurer/petcare-portal/internal/domains/cart/application"
	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	cartdomain "github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	cartports "github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

const tracerName = "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/observability"

// Service decorates the cart service with tracing, logging, and metrics.
type Service struct {
	inner   cartports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core cart service.
func New(inner cartports.Service, opts ...Option) cartports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) GetCart(ctx context.Context, ownerID string) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart", trace.WithAttributes(attribute.String("cart.owner_id", ownerID)))
	defer span.End()

	result, err := s.inner.GetCart(ctx, ownerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("owner.id", ownerID))
	}
	span.SetAttributes(attribute.Int("cart.lines", len(result.Items)))
	return result, nil
}

func (s *Service) AddItem(ctx context.Context, input carttypes.AddItemInput) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem",
		trace.WithAttributes(attribute.String("cart.owner_id", input.OwnerID), attribute.String("cart.product_id", input.ProductID)))
	defer span.End()

	s.logInfo(ctx, "adding cart item", slog.String("owner.id", input.OwnerID), slog.String("product.id", input.ProductID), slog.Int("quantity", input.Quantity))
	result, err := s.inner.AddItem(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add cart item", slog.String("owner.id", input.OwnerID), slog.String("product.id", input.ProductID))
	}
	s.metrics.recordMutation(ctx, "add")
	return result, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, input carttypes.UpdateQuantityInput) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity",
		trace.WithAttributes(attribute.String("cart.owner_id", input.OwnerID), attribute.String("cart.product_id", input.ProductID), attribute.Int("cart.quantity", input.Quantity)))
	defer span.End()

	result, err := s.inner.UpdateQuantity(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart quantity", slog.String("owner.id", input.OwnerID), slog.String("product.id", input.ProductID))
	}
	s.metrics.recordMutation(ctx, "update")
	return result, nil
}

func (s *Service) Increment(ctx context.Context, id carttypes.ItemIdentifier) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Increment", itemAttributes(id))
	defer span.End()

	result, err := s.inner.Increment(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to increment cart item", slog.String("owner.id", id.OwnerID), slog.String("product.id", id.ProductID))
	}
	s.metrics.recordMutation(ctx, "increment")
	return result, nil
}

func (s *Service) Decrement(ctx context.Context, id carttypes.ItemIdentifier) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Decrement", itemAttributes(id))
	defer span.End()

	result, err := s.inner.Decrement(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to decrement cart item", slog.String("owner.id", id.OwnerID), slog.String("product.id", id.ProductID))
	}
	s.metrics.recordMutation(ctx, "decrement")
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, id carttypes.ItemIdentifier) (*cartdomain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem", itemAttributes(id))
	defer span.End()

	s.logInfo(ctx, "removing cart item", slog.String("owner.id", id.OwnerID), slog.String("product.id", id.ProductID))
	result, err := s.inner.RemoveItem(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove cart item", slog.String("owner.id", id.OwnerID), slog.String("product.id", id.ProductID))
	}
	s.metrics.recordMutation(ctx, "remove")
	return result, nil
}

func (s *Service) Clear(ctx context.Context, ownerID string) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Clear", trace.WithAttributes(attribute.String("cart.owner_id", ownerID)))
	defer span.End()

	s.logInfo(ctx, "clearing cart", slog.String("owner.id", ownerID))
	if err := s.inner.Clear(ctx, ownerID); err != nil {
		return s.handleError(ctx, span, err, "failed to clear cart", slog.String("owner.id", ownerID))
	}
	s.metrics.recordMutation(ctx, "clear")
	return nil
}

func (s *Service) SubmitCheckout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.SubmitCheckout", trace.WithAttributes(attribute.String("cart.owner_id", input.OwnerID)))
	defer span.End()
	return s.checkout(ctx, span, "submit", input, s.inner.SubmitCheckout)
}

func (s *Service) Checkout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Checkout", trace.WithAttributes(attribute.String("cart.owner_id", input.OwnerID)))
	defer span.End()
	return s.checkout(ctx, span, "checkout", input, s.inner.Checkout)
}

func (s *Service) checkout(
	ctx context.Context,
	span trace.Span,
	stage string,
	input carttypes.CheckoutInput,
	fn func(context.Context, carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error),
) (*carttypes.CheckoutConfirmation, error) {
	s.logInfo(ctx, "checking out cart", slog.String("owner.id", input.OwnerID), slog.String("stage", stage), slog.Time("pickup_at", input.PickupAt))
	result, err := fn(ctx, input)
	if err != nil {
		s.metrics.recordCheckout(ctx, checkoutOutcome(err))
		if errors.Is(err, cartapp.ErrCheckoutRejected) {
			span.SetAttributes(attribute.Bool("cart.checkout.rejected", true))
			s.logInfo(ctx, "checkout rejected", slog.String("owner.id", input.OwnerID), slog.String("reason", err.Error()))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "checkout failed", slog.String("owner.id", input.OwnerID), slog.String("stage", stage))
	}
	s.metrics.recordCheckout(ctx, "confirmed")
	span.SetAttributes(attribute.Int("cart.checkout.items", result.ItemCount), attribute.Bool("cart.checkout.replayed", result.Replayed))
	s.logInfo(ctx, "checkout confirmed", slog.String("owner.id", result.OwnerID), slog.Int("items", result.ItemCount), slog.String("total", result.Total.StringFixed(2)))
	return result, nil
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, cartapp.ErrCheckoutRejected):
		return "rejected"
	case errors.Is(err, cartapp.ErrCheckoutUnavailable):
		return "unavailable"
	case errors.Is(err, cartapp.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

func itemAttributes(id carttypes.ItemIdentifier) trace.SpanStartEventOption {
	return trace.WithAttributes(attribute.String("cart.owner_id", id.OwnerID), attribute.String("cart.product_id", id.ProductID))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	mutations metric.Int64Counter
	checkouts metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	mutations, _ := m.Int64Counter("cart.service.mutations", metric.WithDescription("Number of cart mutations by kind"))
	checkouts, _ := m.Int64Counter("cart.service.checkouts", metric.WithDescription("Number of checkouts by outcome"))
	return serviceMetrics{mutations: mutations, checkouts: checkouts}
}

func (m serviceMetrics) recordMutation(ctx context.Context, kind string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("cart.mutation", kind)))
	}
}

func (m serviceMetrics) recordCheckout(ctx context.Context, outcome string) {
	if m.checkouts != nil {
		m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("cart.checkout.outcome", outcome)))
	}
}

var _ cartports.Service = (*Service)(nil)
