package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/washlink/app/internal/api"
	"github.com/washlink/app/internal/cart"
)

func testItem(id int64, name, category string, price int64) api.Item {
	return api.Item{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromInt(price),
		Currency: "ETB",
		IsActive: true,
	}
}

func TestAddIncrementsExistingLine(t *testing.T) {
	c := cart.New()
	wash := testItem(1, "Regular Wash", api.CategoryRegular, 100)

	c.Add(wash)
	c.Add(wash)

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", lines[0].Quantity)
	}
	if got := c.Total(); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("total: got %s, want 200", got)
	}
}

func TestRemoveDecrementsThenDeletes(t *testing.T) {
	c := cart.New()
	wash := testItem(1, "Regular Wash", api.CategoryRegular, 100)
	c.Add(wash)
	c.Add(wash)

	c.Remove(1)
	if got := c.QuantityOf(1); got != 1 {
		t.Errorf("quantity after first remove: got %d, want 1", got)
	}
	if got := c.Total(); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total after first remove: got %s, want 100", got)
	}

	c.Remove(1)
	if got := c.QuantityOf(1); got != 0 {
		t.Errorf("quantity after second remove: got %d, want 0", got)
	}
	if !c.Empty() {
		t.Error("cart should be empty after removing the last unit")
	}
	if got := c.Total(); !got.Equal(decimal.Zero) {
		t.Errorf("total after second remove: got %s, want 0", got)
	}
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	c := cart.New()
	c.Add(testItem(1, "Regular Wash", api.CategoryRegular, 100))

	c.Remove(99)

	if got := c.QuantityOf(1); got != 1 {
		t.Errorf("quantity: got %d, want 1", got)
	}
}

func TestAddThenRemoveRoundTrip(t *testing.T) {
	c := cart.New()
	c.Add(testItem(1, "Regular Wash", api.CategoryRegular, 100))
	before := c.Total()

	extra := testItem(2, "Express Wash", api.CategoryExpress, 180)
	c.Add(extra)
	c.Remove(2)

	if got := c.Total(); !got.Equal(before) {
		t.Errorf("total after round trip: got %s, want %s", got, before)
	}
	if got := c.QuantityOf(2); got != 0 {
		t.Errorf("round-tripped item still present with quantity %d", got)
	}
	if got := len(c.Lines()); got != 1 {
		t.Errorf("lines: got %d, want 1", got)
	}
}

func TestPriceSnapshotSurvivesCatalogChange(t *testing.T) {
	c := cart.New()
	wash := testItem(1, "Regular Wash", api.CategoryRegular, 100)
	c.Add(wash)

	// Catalog reprices mid-session; a further Add must not reprice the line.
	wash.Price = decimal.NewFromInt(500)
	c.Add(wash)

	if got := c.Total(); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("total: got %s, want 200 (original unit price kept)", got)
	}
}

func TestMixedSequenceNeverCorruptsDraft(t *testing.T) {
	c := cart.New()
	wash := testItem(1, "Regular Wash", api.CategoryRegular, 100)
	iron := testItem(2, "Regular Iron", api.CategoryRegular, 40)

	steps := []func(){
		func() { c.Add(wash) },
		func() { c.Add(iron) },
		func() { c.Remove(1) },
		func() { c.Add(wash) },
		func() { c.Add(wash) },
		func() { c.Remove(2) },
		func() { c.Remove(2) },
		func() { c.Add(iron) },
	}

	for i, step := range steps {
		step()

		seen := make(map[int64]bool)
		want := decimal.Zero
		for _, line := range c.Lines() {
			if line.Quantity < 1 {
				t.Fatalf("step %d: line %d has quantity %d", i, line.ProductID, line.Quantity)
			}
			if seen[line.ProductID] {
				t.Fatalf("step %d: duplicate line for product %d", i, line.ProductID)
			}
			seen[line.ProductID] = true
			want = want.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		if got := c.Total(); !got.Equal(want) {
			t.Fatalf("step %d: total %s != recomputed %s", i, got, want)
		}
	}
}

func TestBuildOrderValidation(t *testing.T) {
	withItem := func() *cart.Cart {
		c := cart.New()
		c.Add(testItem(1, "Regular Wash", api.CategoryRegular, 100))
		return c
	}

	tests := []struct {
		name     string
		cart     *cart.Cart
		pickup   string
		delivery bool
		addr     string
		wantErr  error
	}{
		{"missing pickup", withItem(), "", false, "", cart.ErrNoPickupAddress},
		{"missing delivery address", withItem(), "Bole Road 12", true, "", cart.ErrNoDeliveryAddress},
		{"empty cart", cart.New(), "Bole Road 12", false, "", cart.ErrNoItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cart.BuildOrder(tt.pickup, tt.addr, tt.delivery, "")
			if err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildOrderDefaultsDeliveryAddress(t *testing.T) {
	c := cart.New()
	c.Add(testItem(3, "Express Wash", api.CategoryExpress, 180))

	req, err := c.BuildOrder("Bole Road 12", "", false, "ring twice")
	if err != nil {
		t.Fatalf("build order: %v", err)
	}

	if req.DeliveryAddress != "Bole Road 12" {
		t.Errorf("delivery address: got %q, want pickup address", req.DeliveryAddress)
	}
	if req.Delivery {
		t.Error("delivery flag should be false")
	}
	if len(req.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(req.Items))
	}
	item := req.Items[0]
	if item.ProductID != 3 || item.Quantity != 1 || item.ServiceType != "Express Wash" {
		t.Errorf("unexpected line: %+v", item)
	}
	if item.CategoryID != api.CategoryID(api.CategoryExpress) {
		t.Errorf("category id: got %d, want %d", item.CategoryID, api.CategoryID(api.CategoryExpress))
	}
	if !item.Price.Equal(decimal.NewFromInt(180)) {
		t.Errorf("price: got %s, want 180", item.Price)
	}
	if req.Notes != "ring twice" {
		t.Errorf("notes: got %q", req.Notes)
	}
}
