package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, id, name, price string, qty int) Item {
	t.Helper()
	item, err := NewItem(id, name, decimal.RequireFromString(price), qty, nil)
	require.NoError(t, err)
	return item
}

func TestNewItem_Validates(t *testing.T) {
	_, err := NewItem(" ", "Food", decimal.NewFromInt(1), 1, nil)
	require.ErrorIs(t, err, ErrEmptyProductID)
	_, err = NewItem("p1", "", decimal.NewFromInt(1), 1, nil)
	require.ErrorIs(t, err, ErrEmptyName)
	_, err = NewItem("p1", "Food", decimal.NewFromInt(-1), 1, nil)
	require.ErrorIs(t, err, ErrNegativePrice)
	_, err = NewItem("p1", "Food", decimal.NewFromInt(1), 0, nil)
	require.ErrorIs(t, err, ErrAddQuantity)

	blank := "  "
	item, err := NewItem("p1", "Food", decimal.NewFromInt(1), 1, &blank)
	require.NoError(t, err)
	require.Nil(t, item.ImageURL)
}

func TestTotal_SumsPriceTimesQuantity(t *testing.T) {
	cart, err := NewCart("owner-1")
	require.NoError(t, err)
	cart.Add(mustItem(t, "kibble", "Kibble", "12.50", 2))
	cart.Add(mustItem(t, "bath", "Bath", "30.00", 1))

	require.True(t, decimal.RequireFromString("55.00").Equal(cart.Total()))
	require.Equal(t, 3, cart.Count())
}

func TestAdd_MergesSameProduct(t *testing.T) {
	cart, _ := NewCart("owner-1")
	cart.Add(mustItem(t, "kibble", "Kibble", "12.50", 2))
	cart.Add(mustItem(t, "kibble", "Kibble", "12.50", 3))

	require.Len(t, cart.Items, 1)
	require.Equal(t, 5, cart.Items[0].Quantity)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	cart, _ := NewCart("owner-1")
	cart.Add(mustItem(t, "kibble", "Kibble", "12.50", 2))
	cart.Add(mustItem(t, "bath", "Bath", "30.00", 1))

	require.NoError(t, cart.SetQuantity("bath", 0))
	_, ok := cart.Item("bath")
	require.False(t, ok)
	require.True(t, decimal.RequireFromString("25.00").Equal(cart.Total()))

	require.ErrorIs(t, cart.SetQuantity("kibble", -1), ErrInvalidQuantity)
	require.ErrorIs(t, cart.SetQuantity("missing", 1), ErrItemNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	cart, _ := NewCart("owner-1")
	cart.Add(mustItem(t, "kibble", "Kibble", "12.50", 2))

	require.ErrorIs(t, cart.Remove("missing"), ErrItemNotFound)
	require.NoError(t, cart.Remove("kibble"))
	require.True(t, cart.IsEmpty())

	cart.Add(mustItem(t, "kibble", "Kibble", "12.50", 2))
	cart.Clear()
	require.True(t, cart.IsEmpty())
	require.True(t, cart.Total().IsZero())
}

func TestClone_IsDeep(t *testing.T) {
	url := "https://img.example/kibble.png"
	item, err := NewItem("kibble", "Kibble", decimal.NewFromInt(5), 1, &url)
	require.NoError(t, err)
	cart, _ := NewCart("owner-1")
	cart.Add(item)

	clone := cart.Clone()
	clone.Items[0].Quantity = 9
	*clone.Items[0].ImageURL = "changed"

	require.Equal(t, 1, cart.Items[0].Quantity)
	require.Equal(t, url, *cart.Items[0].ImageURL)
}

func TestNewCheckoutRequest(t *testing.T) {
	cart, _ := NewCart("owner-1")
	_, err := cart.NewCheckoutRequest(time.Now())
	require.ErrorIs(t, err, ErrEmptyCart)

	cart.Add(mustItem(t, "kibble", "Kibble", "12.50", 2))
	pickup := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.Local)
	req, err := cart.NewCheckoutRequest(pickup)
	require.NoError(t, err)
	require.Equal(t, "owner-1", req.OwnerID)
	require.True(t, pickup.Equal(req.PickupAt))
	require.Len(t, req.Items, 1)
	require.True(t, decimal.RequireFromString("25").Equal(req.Total))

	req.Items[0].Quantity = 100
	require.Equal(t, 2, cart.Items[0].Quantity)
}
