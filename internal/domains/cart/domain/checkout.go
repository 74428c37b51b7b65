package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest is built at submit time from the pickup moment and the current lines.
type CheckoutRequest struct {
	OwnerID  string
	PickupAt time.Time
	Items    []Item
	Total    decimal.Decimal
}

// CheckoutResult is the external cart service's verdict.
type CheckoutResult struct {
	OK      bool
	Message string
}

// NewCheckoutRequest snapshots the cart. An empty cart cannot be checked out.
func (c *Cart) NewCheckoutRequest(pickupAt time.Time) (CheckoutRequest, error) {
	if c.IsEmpty() {
		return CheckoutRequest{}, ErrEmptyCart
	}
	snapshot := c.Clone()
	return CheckoutRequest{
		OwnerID:  snapshot.OwnerID,
		PickupAt: pickupAt,
		Items:    snapshot.Items,
		Total:    snapshot.Total(),
	}, nil
}
