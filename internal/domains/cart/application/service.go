package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

// Service orchestrates cart use cases.
type Service struct {
	repo      ports.Repository
	gateway   ports.CheckoutGateway
	journal   ports.CheckoutJournal
	logger    *slog.Logger
	clock     func() time.Time
	formatter datetime.Formatter
	locks     *ownerLocks
}

// Option configures the cart service.
type Option func(*Service)

// WithClock overrides the time source used for default pickup times and timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithFormatter overrides how pickup times are rendered in confirmation messages.
func WithFormatter(f datetime.Formatter) Option {
	return func(s *Service) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithJournal enables replay of checkouts already confirmed under the same idempotency key.
func WithJournal(j ports.CheckoutJournal) Option {
	return func(s *Service) { s.journal = j }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo ports.Repository, gateway ports.CheckoutGateway, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		gateway:   gateway,
		logger:    slog.Default(),
		clock:     time.Now,
		formatter: datetime.LocalFormatter,
		locks:     newOwnerLocks(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GetCart returns the owner's cart, or an empty one if nothing was stored yet.
func (s *Service) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, strings.TrimSpace(ownerID))
	if errors.Is(err, ports.ErrNotFound) {
		empty, err := domain.NewCart(ownerID)
		if err != nil {
			return nil, mapError(err)
		}
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, input carttypes.AddItemInput) (*domain.Cart, error) {
	item, err := domain.NewItem(input.ProductID, input.Name, input.Price, input.Quantity, input.ImageURL)
	if err != nil {
		return nil, mapError(err)
	}
	return s.mutate(ctx, input.OwnerID, func(cart *domain.Cart) error {
		cart.Add(item)
		return nil
	})
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, input carttypes.UpdateQuantityInput) (*domain.Cart, error) {
	return s.mutate(ctx, input.OwnerID, func(cart *domain.Cart) error {
		return cart.SetQuantity(input.ProductID, input.Quantity)
	})
}

func (s *Service) Increment(ctx context.Context, id carttypes.ItemIdentifier) (*domain.Cart, error) {
	return s.step(ctx, id, 1)
}

// Decrement lowers a line by one. A line at quantity 1 is removed.
func (s *Service) Decrement(ctx context.Context, id carttypes.ItemIdentifier) (*domain.Cart, error) {
	return s.step(ctx, id, -1)
}

func (s *Service) RemoveItem(ctx context.Context, id carttypes.ItemIdentifier) (*domain.Cart, error) {
	return s.mutate(ctx, id.OwnerID, func(cart *domain.Cart) error {
		return cart.Remove(id.ProductID)
	})
}

func (s *Service) Clear(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return mapError(domain.ErrEmptyOwner)
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()
	return s.clear(ctx, ownerID)
}

func (s *Service) clear(ctx context.Context, ownerID string) error {
	if err := s.repo.Delete(ctx, ownerID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	return nil
}

// SubmitCheckout sends the current lines to the cart service without touching local state.
func (s *Service) SubmitCheckout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	if s.gateway == nil {
		return nil, errors.New("checkout gateway not configured")
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if replayed, err := s.replay(ctx, input.OwnerID, key); err != nil || replayed != nil {
		return replayed, err
	}
	cart, err := s.GetCart(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	pickupAt := input.PickupAt
	if pickupAt.IsZero() {
		pickupAt = s.clock()
	}
	req, err := cart.NewCheckoutRequest(pickupAt)
	if err != nil {
		return nil, mapError(err)
	}
	if key == "" {
		key = uuid.NewString()
	}
	result, err := s.gateway.Checkout(ctx, req, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckoutUnavailable, err)
	}
	if !result.OK {
		return nil, NewRejectionError(strings.TrimSpace(result.Message))
	}
	message := strings.TrimSpace(result.Message)
	if message == "" {
		message = fmt.Sprintf("Order confirmed for pickup at %s", s.formatter(pickupAt))
	}
	confirmation := &carttypes.CheckoutConfirmation{
		OwnerID:   req.OwnerID,
		PickupAt:  pickupAt,
		Total:     req.Total,
		ItemCount: cart.Count(),
		Message:   message,
	}
	s.journalize(ctx, key, req, confirmation)
	return confirmation, nil
}

// Checkout submits the order and clears the cart once the cart service accepted it.
// Rejected, failed and replayed checkouts leave the cart untouched.
// The owner stays locked from submit to clear.
func (s *Service) Checkout(ctx context.Context, input carttypes.CheckoutInput) (*carttypes.CheckoutConfirmation, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, mapError(domain.ErrEmptyOwner)
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	confirmation, err := s.SubmitCheckout(ctx, input)
	if err != nil {
		return nil, err
	}
	if confirmation.Replayed {
		return confirmation, nil
	}
	if err := s.clear(ctx, confirmation.OwnerID); err != nil {
		return nil, fmt.Errorf("clear cart after checkout: %w", err)
	}
	return confirmation, nil
}

func (s *Service) replay(ctx context.Context, ownerID, key string) (*carttypes.CheckoutConfirmation, error) {
	if s.journal == nil || key == "" {
		return nil, nil
	}
	record, err := s.journal.Find(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load checkout journal: %w", err)
	}
	if record == nil {
		return nil, nil
	}
	if record.OwnerID != strings.TrimSpace(ownerID) {
		return nil, fmt.Errorf("%w: idempotency key belongs to another cart", ErrInvalidInput)
	}
	return &carttypes.CheckoutConfirmation{
		OwnerID:   record.OwnerID,
		PickupAt:  record.PickupAt,
		Total:     record.Total,
		ItemCount: record.ItemCount,
		Message:   record.Message,
		Replayed:  true,
	}, nil
}

func (s *Service) journalize(ctx context.Context, key string, req domain.CheckoutRequest, confirmation *carttypes.CheckoutConfirmation) {
	if s.journal == nil {
		return
	}
	productIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	err := s.journal.Record(ctx, ports.CheckoutRecord{
		Key:        key,
		OwnerID:    confirmation.OwnerID,
		PickupAt:   confirmation.PickupAt,
		Total:      confirmation.Total,
		ProductIDs: productIDs,
		ItemCount:  confirmation.ItemCount,
		Message:    confirmation.Message,
		CreatedAt:  s.clock(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to journal confirmed checkout",
			slog.String("owner.id", confirmation.OwnerID), slog.String("error", err.Error()))
	}
}

func (s *Service) step(ctx context.Context, id carttypes.ItemIdentifier, delta int) (*domain.Cart, error) {
	return s.mutate(ctx, id.OwnerID, func(cart *domain.Cart) error {
		item, ok := cart.Item(id.ProductID)
		if !ok {
			return domain.ErrItemNotFound
		}
		next := item.Quantity + delta
		if next < 0 {
			next = 0
		}
		return cart.SetQuantity(id.ProductID, next)
	})
}

// mutate serializes read-modify-write per owner. Repositories implementing ports.Updater also
// make the update atomic across processes.
func (s *Service) mutate(ctx context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, mapError(domain.ErrEmptyOwner)
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	apply := func(cart *domain.Cart) error {
		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = s.clock()
		return nil
	}
	var (
		cart *domain.Cart
		err  error
	)
	if updater, ok := s.repo.(ports.Updater); ok {
		cart, err = updater.Update(ctx, ownerID, apply)
	} else {
		cart, err = s.readModifyWrite(ctx, ownerID, apply)
	}
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, fmt.Errorf("%w: %w", ports.ErrNotFound, err)
		}
		return nil, mapError(err)
	}
	return cart, nil
}

func (s *Service) readModifyWrite(ctx context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, cart)
}

var _ ports.Service = (*Service)(nil)
