package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
)

var (
	// ErrInvalidInput signals the request violated a cart invariant.
	ErrInvalidInput = errors.New("invalid cart input")
	// ErrCheckoutRejected signals the cart service answered ok=false.
	ErrCheckoutRejected = errors.New("checkout rejected")
	// ErrCheckoutUnavailable signals the checkout call itself failed.
	ErrCheckoutUnavailable = errors.New("checkout unavailable")
)

// DefaultRejectionMessage is shown when the cart service rejects a checkout without a reason.
const DefaultRejectionMessage = "The store could not accept this order. Please review your cart and try again."

// RejectionError carries the user-visible reason for a rejected checkout.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("checkout rejected: %s", e.Message)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrCheckoutRejected
}

// NewRejectionError defaults an empty reason to DefaultRejectionMessage.
func NewRejectionError(message string) *RejectionError {
	if message == "" {
		message = DefaultRejectionMessage
	}
	return &RejectionError{Message: message}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyOwner) ||
		errors.Is(err, domain.ErrEmptyProductID) ||
		errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrAddQuantity) ||
		errors.Is(err, domain.ErrEmptyCart) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
