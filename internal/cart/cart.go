// Package cart builds an order draft from catalog selections. Pure local
// state: no network calls, no persistence, one cart per order screen.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/washlink/app/internal/api"
)

// Submission preconditions, checked before the create-order call is attempted.
var (
	ErrNoItems           = errors.New("select at least one service")
	ErrNoPickupAddress   = errors.New("pickup address is required")
	ErrNoDeliveryAddress = errors.New("delivery address is required")
)

// Line is one draft entry. UnitPrice and Category are snapshots taken when
// the entry was first selected; a catalog price change mid-session does not
// reprice the draft. Quantity is always >= 1 while the line exists.
type Line struct {
	ProductID   int64
	ServiceType string
	Category    string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Cart aggregates selections keyed by catalog identifier, preserving the
// order of first selection. Not safe for concurrent use; it is screen-scoped
// state mutated only from the UI.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add records one more unit of item, creating the line on first selection.
func (c *Cart) Add(item api.Item) {
	for i := range c.lines {
		if c.lines[i].ProductID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID:   item.ID,
		ServiceType: item.Name,
		Category:    item.Category,
		UnitPrice:   item.Price,
		Quantity:    1,
	})
}

// Remove drops one unit of the given product, deleting the line when its
// quantity reaches zero. No-op when the product is not in the draft.
func (c *Cart) Remove(productID int64) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		if c.lines[i].Quantity > 1 {
			c.lines[i].Quantity--
			return
		}
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
}

// QuantityOf returns the draft quantity for a product, zero when absent.
func (c *Cart) QuantityOf(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return c.lines[i].Quantity
		}
	}
	return 0
}

// Total is the sum of unit price times quantity over all lines. Exact; any
// two-decimal rounding happens at display time.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.lines {
		total = total.Add(c.lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.lines[i].Quantity))))
	}
	return total
}

// Lines returns a copy of the current draft lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Empty reports whether the draft has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// BuildOrder validates the submission preconditions and assembles the
// create-order request. When no separate delivery is requested the pickup
// address doubles as the delivery address, matching the remote contract.
func (c *Cart) BuildOrder(pickupAddress, deliveryAddress string, delivery bool, notes string) (api.CreateOrderRequest, error) {
	if pickupAddress == "" {
		return api.CreateOrderRequest{}, ErrNoPickupAddress
	}
	if delivery && deliveryAddress == "" {
		return api.CreateOrderRequest{}, ErrNoDeliveryAddress
	}
	if c.Empty() {
		return api.CreateOrderRequest{}, ErrNoItems
	}

	items := make([]api.OrderItem, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, api.OrderItem{
			ProductID:   line.ProductID,
			CategoryID:  api.CategoryID(line.Category),
			Quantity:    line.Quantity,
			Price:       line.UnitPrice,
			ServiceType: line.ServiceType,
		})
	}

	if !delivery {
		deliveryAddress = pickupAddress
	}
	return api.CreateOrderRequest{
		PickupAddress:   pickupAddress,
		DeliveryAddress: deliveryAddress,
		Delivery:        delivery,
		Items:           items,
		Notes:           notes,
	}, nil
}
