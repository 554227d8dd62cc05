package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartIdentity scopes a cart. The service runs with a single guest identity
// but every operation takes one explicitly.
type CartIdentity string

const GuestCart CartIdentity = "VibeGuestCart"

type LineItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Qty       int             `json:"qty"`
}

type Cart struct {
	OwnerID   CartIdentity
	Items     []LineItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCart(owner CartIdentity) *Cart {
	return &Cart{OwnerID: owner, Items: []LineItem{}}
}

func (c *Cart) IndexOf(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Without drops every line for productID and reports whether the length changed.
func (c *Cart) Without(productID int64) bool {
	before := len(c.Items)
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return len(c.Items) != before
}

func (c *Cart) Clear() {
	c.Items = []LineItem{}
}

// CloneItems returns a copy that does not alias the cart's backing array.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
