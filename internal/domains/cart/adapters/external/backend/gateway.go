// Package backend adapts the pet-care backend client to the cart checkout port.
package backend

import (
	"context"
	"errors"

	"github.com/Apurer/petcare-portal/internal/clients/http/petcare"
	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

var _ ports.CheckoutGateway = (*Gateway)(nil)

// Gateway submits checkouts through POST /api/cart/checkout.
type Gateway struct {
	client    *petcare.Client
	formatter datetime.Formatter
}

// NewGateway wires the backend client. A nil formatter renders local wall-clock time.
func NewGateway(client *petcare.Client, formatter datetime.Formatter) *Gateway {
	if formatter == nil {
		formatter = datetime.LocalFormatter
	}
	return &Gateway{client: client, formatter: formatter}
}

func (g *Gateway) Checkout(ctx context.Context, req domain.CheckoutRequest, idempotencyKey string) (domain.CheckoutResult, error) {
	if g == nil || g.client == nil {
		return domain.CheckoutResult{}, errors.New("checkout gateway not configured")
	}
	resp, err := g.client.Checkout(ctx, ToCheckoutPayload(req, g.formatter), petcare.WithIdempotencyKey(idempotencyKey))
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	return domain.CheckoutResult{OK: resp.OK, Message: resp.Message}, nil
}

// ToCheckoutPayload builds the wire body { pickupDate, items: [{productId, quantity}] }.
func ToCheckoutPayload(req domain.CheckoutRequest, formatter datetime.Formatter) petcare.CheckoutRequest {
	items := make([]petcare.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, petcare.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return petcare.CheckoutRequest{PickupDate: formatter(req.PickupAt), Items: items}
}
