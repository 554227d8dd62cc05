package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const ReceiptMessage = "Mock Checkout Successful! Your receipt is below."

type Receipt struct {
	OrderID       string
	CustomerName  string
	CustomerEmail string
	ItemsCount    int
	Items         []LineItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Timestamp     time.Time
}
