package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxLineQuantity caps the units of one product in a cart.
	MaxLineQuantity = 9999
	// MaxPriceScale is the number of fractional digits a unit price may carry.
	MaxPriceScale = 4
)

// MaxUnitPrice is the largest accepted unit price.
var MaxUnitPrice = decimal.New(1, 12)

// LineItem is a product reference inside a cart. UnitPrice is captured when
// the product is first added and is not updated afterwards.
type LineItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns quantity × unit price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is the per-user collection of line items pending checkout.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []LineItem `json:"items"`
	Version   int64      `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewCart returns an empty cart for userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []LineItem{}}
}

// IsEmpty reports whether the cart holds no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem increments the quantity of an existing line for productID or
// appends a new one. The first-seen unit price wins.
func (c *Cart) AddItem(productID string, quantity int, unitPrice decimal.Decimal) error {
	if productID == "" {
		return ErrInvalidInput
	}
	if quantity < 1 || quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if err := ValidatePrice(unitPrice); err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if c.Items[i].Quantity > MaxLineQuantity-quantity {
				return ErrInvalidQuantity
			}
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	c.Items = append(c.Items, LineItem{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice})
	return nil
}

// RemoveItem drops the line for productID, keeping the order of the rest.
func (c *Cart) RemoveItem(productID string) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// ValidatePrice rejects negative prices and prices outside MaxUnitPrice or
// MaxPriceScale.
func ValidatePrice(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(MaxUnitPrice) {
		return ErrInvalidPrice
	}
	if !p.Equal(p.Truncate(MaxPriceScale)) {
		return ErrInvalidPrice
	}
	return nil
}

// Subtract removes the quantities held in checkedOut from c. Lines that drop
// to zero are removed; anything added after checkedOut was taken stays.
func (c *Cart) Subtract(checkedOut *Cart) {
	if checkedOut == nil {
		return
	}
	taken := make(map[string]int, len(checkedOut.Items))
	for _, li := range checkedOut.Items {
		taken[li.ProductID] += li.Quantity
	}
	kept := make([]LineItem, 0, len(c.Items))
	for _, li := range c.Items {
		li.Quantity -= taken[li.ProductID]
		if li.Quantity > 0 {
			kept = append(kept, li)
		}
	}
	c.Items = kept
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
}

// Total sums the subtotals of every line item.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// Clone returns a deep copy of c.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = make([]LineItem, len(c.Items))
	copy(clone.Items, c.Items)
	return &clone
}
