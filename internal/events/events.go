package events

import "time"

const (
	TypeCartItemAdded     = "cart_item_added"
	TypeCartItemUpdated   = "cart_item_updated"
	TypeCartItemRemoved   = "cart_item_removed"
	TypeCheckoutCompleted = "checkout_completed"
)

type CartEvent struct {
	Type      string    `json:"type"`
	CartID    string    `json:"cartID"`
	ProductID int64     `json:"productID"`
	Qty       int       `json:"qty"`
	Total     string    `json:"total"`
	At        time.Time `json:"at"`
}

type CheckoutEvent struct {
	Type       string    `json:"type"`
	CartID     string    `json:"cartID"`
	OrderID    string    `json:"orderID"`
	ItemsCount int       `json:"itemsCount"`
	Total      string    `json:"total"`
	At         time.Time `json:"at"`
}
