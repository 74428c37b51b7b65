package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOwner      = errors.New("cart owner is required")
	ErrEmptyProductID  = errors.New("product id is required")
	ErrEmptyName       = errors.New("item name is required")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrAddQuantity     = errors.New("quantity to add must be greater than zero")
	ErrItemNotFound    = errors.New("item is not in the cart")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Item is one cart line keyed by product.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	ImageURL  *string
}

// NewItem validates and constructs a line to be added to a cart.
func NewItem(productID, name string, price decimal.Decimal, quantity int, imageURL *string) (Item, error) {
	item := Item{
		ProductID: strings.TrimSpace(productID),
		Name:      strings.TrimSpace(name),
		Price:     price,
		Quantity:  quantity,
	}
	if imageURL != nil {
		if trimmed := strings.TrimSpace(*imageURL); trimmed != "" {
			item.ImageURL = &trimmed
		}
	}
	if item.ProductID == "" {
		return Item{}, ErrEmptyProductID
	}
	if item.Name == "" {
		return Item{}, ErrEmptyName
	}
	if price.IsNegative() {
		return Item{}, ErrNegativePrice
	}
	if quantity <= 0 {
		return Item{}, ErrAddQuantity
	}
	return item, nil
}

// Subtotal is price x quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the owner's current set of lines, in insertion order.
type Cart struct {
	OwnerID   string
	Items     []Item
	UpdatedAt time.Time
}

// NewCart returns an empty cart for owner.
func NewCart(ownerID string) (*Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrEmptyOwner
	}
	return &Cart{OwnerID: ownerID}, nil
}

// Add appends item or, when the product is already present, increases its quantity.
func (c *Cart) Add(item Item) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].Name = item.Name
			c.Items[i].Price = item.Price
			if item.ImageURL != nil {
				c.Items[i].ImageURL = item.ImageURL
			}
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity sets a line's quantity. Zero removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	if quantity == 0 {
		c.removeAt(idx)
		return nil
	}
	c.Items[idx].Quantity = quantity
	return nil
}

// Remove drops a line.
func (c *Cart) Remove(productID string) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	c.removeAt(idx)
	return nil
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.Items = nil
}

// Item looks up a line by product.
func (c *Cart) Item(productID string) (Item, bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return Item{}, false
	}
	return c.Items[idx], true
}

// Total is the sum of price x quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Items != nil {
		clone.Items = make([]Item, len(c.Items))
		for i, item := range c.Items {
			if item.ImageURL != nil {
				url := *item.ImageURL
				item.ImageURL = &url
			}
			clone.Items[i] = item
		}
	}
	return &clone
}

// Validate re-applies line invariants, used by adapters before persisting.
func (c *Cart) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrEmptyOwner
	}
	for _, item := range c.Items {
		if item.ProductID == "" {
			return ErrEmptyProductID
		}
		if item.Price.IsNegative() {
			return ErrNegativePrice
		}
		if item.Quantity < 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func (c *Cart) indexOf(productID string) int {
	productID = strings.TrimSpace(productID)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if len(c.Items) == 0 {
		c.Items = nil
	}
}
