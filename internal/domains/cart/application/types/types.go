// Package types holds the cart use-case inputs and outputs shared by adapters and workflows.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemIdentifier addresses one line in one cart.
type ItemIdentifier struct {
	OwnerID   string
	ProductID string
}

// AddItemInput adds a product line.
type AddItemInput struct {
	OwnerID   string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	ImageURL  *string
}

// UpdateQuantityInput sets a line's quantity. Zero removes the line.
type UpdateQuantityInput struct {
	ItemIdentifier
	Quantity int
}

// CheckoutInput starts a checkout. A zero PickupAt means "now".
type CheckoutInput struct {
	OwnerID        string
	PickupAt       time.Time
	IdempotencyKey string
}

// CheckoutConfirmation is returned once the external cart service accepted the order.
type CheckoutConfirmation struct {
	OwnerID   string
	PickupAt  time.Time
	Total     decimal.Decimal
	ItemCount int
	Message   string
	// Replayed is set when the confirmation came from an earlier submission with the same key.
	Replayed bool
}
