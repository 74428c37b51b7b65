package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

// Item is the HTTP representation of one cart line.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ImageURL  *string         `json:"imageUrl,omitempty"`
}

// Cart is the HTTP representation of the cart view.
type Cart struct {
	OwnerID   string          `json:"ownerId"`
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// AddItemRequest is the body of POST /v1/carts/:ownerId/items.
type AddItemRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"imageUrl,omitempty"`
}

// UpdateQuantityRequest is the body of PATCH /v1/carts/:ownerId/items/:productId.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CheckoutRequest is the optional body of POST /v1/carts/:ownerId/checkout.
type CheckoutRequest struct {
	PickupDate string `json:"pickupDate,omitempty"`
}

// CheckoutConfirmation is returned by a successful checkout.
type CheckoutConfirmation struct {
	OwnerID    string          `json:"ownerId"`
	PickupDate string          `json:"pickupDate"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"itemCount"`
	Message    string          `json:"message"`
	Replayed   bool            `json:"replayed,omitempty"`
}

// ToAddItemInput converts the transport payload. A missing quantity means one unit.
func ToAddItemInput(ownerID string, req AddItemRequest) carttypes.AddItemInput {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return carttypes.AddItemInput{
		OwnerID:   ownerID,
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  quantity,
		ImageURL:  req.ImageURL,
	}
}

// ToCheckoutInput parses the optional pickup date in any of the accepted layouts.
func ToCheckoutInput(ownerID, idempotencyKey string, req CheckoutRequest) (carttypes.CheckoutInput, error) {
	input := carttypes.CheckoutInput{OwnerID: ownerID, IdempotencyKey: idempotencyKey}
	if raw := strings.TrimSpace(req.PickupDate); raw != "" {
		pickupAt, err := datetime.Parse(raw)
		if err != nil {
			return carttypes.CheckoutInput{}, err
		}
		input.PickupAt = pickupAt
	}
	return input, nil
}

// FromDomainCart converts a domain cart to the transport representation.
func FromDomainCart(cart *domain.Cart) Cart {
	if cart == nil {
		return Cart{Items: []Item{}}
	}
	out := Cart{
		OwnerID:   cart.OwnerID,
		Items:     make([]Item, 0, len(cart.Items)),
		Total:     cart.Total(),
		ItemCount: cart.Count(),
	}
	if !cart.UpdatedAt.IsZero() {
		updatedAt := cart.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	for _, item := range cart.Items {
		out.Items = append(out.Items, Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
			ImageURL:  item.ImageURL,
		})
	}
	return out
}

// FromConfirmation renders the pickup moment with formatter.
func FromConfirmation(c *carttypes.CheckoutConfirmation, formatter datetime.Formatter) CheckoutConfirmation {
	if c == nil {
		return CheckoutConfirmation{}
	}
	if formatter == nil {
		formatter = datetime.LocalFormatter
	}
	return CheckoutConfirmation{
		OwnerID:    c.OwnerID,
		PickupDate: formatter(c.PickupAt),
		Total:      c.Total,
		ItemCount:  c.ItemCount,
		Message:    c.Message,
		Replayed:   c.Replayed,
	}
}
