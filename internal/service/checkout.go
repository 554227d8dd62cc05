package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/events"
	"github.com/Skotchmaster/mock_cart/internal/pricing"
	"github.com/Skotchmaster/mock_cart/internal/repo"
)

// Checkout prices the cart, empties it and stores the receipt in one
// transaction. A failure at any step leaves the cart as it was.
func (s *CartService) Checkout(ctx context.Context, owner domain.CartIdentity, name, email string) (*domain.Receipt, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, invalid("name is required")
	}
	if email == "" {
		return nil, invalid("email is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	receipt, err := s.checkout(ctx, owner, name, email)
	if err != nil {
		return nil, err
	}

	if s.Observer != nil {
		s.Observer.CheckoutCompleted()
	}
	s.publish(ctx, events.TopicOrder, receipt.OrderID, events.CheckoutEvent{
		Type:       events.TypeCheckoutCompleted,
		CartID:     string(owner),
		OrderID:    receipt.OrderID,
		ItemsCount: receipt.ItemsCount,
		Total:      receipt.Total.StringFixed(pricing.Places),
		At:         receipt.Timestamp,
	})
	return receipt, nil
}

// checkout holds the cart lock for the store transaction only; observers and
// events run after it is released.
func (s *CartService) checkout(ctx context.Context, owner domain.CartIdentity, name, email string) (*domain.Receipt, error) {
	unlock, err := s.locks.acquire(ctx, owner)
	if err != nil {
		return nil, persistence("acquire cart lock", err)
	}
	defer unlock()

	receipt, err := s.Store.CheckoutCart(ctx, owner, func(c *domain.Cart) (*domain.Receipt, error) {
		if len(c.Items) == 0 {
			return nil, ErrEmptyCart
		}
		snap := pricing.Compute(c.Items, s.TaxRate)
		now := s.now().UTC()
		r := &domain.Receipt{
			OrderID:       newOrderID(now.UnixMilli()),
			CustomerName:  name,
			CustomerEmail: email,
			ItemsCount:    len(snap.Items),
			Items:         snap.Items,
			Subtotal:      snap.Subtotal,
			Tax:           snap.Tax,
			Total:         snap.Total,
			Timestamp:     now,
		}
		c.Clear()
		return r, nil
	})
	switch {
	case err == nil:
		return receipt, nil
	case errors.Is(err, repo.ErrCartNotFound), errors.Is(err, ErrEmptyCart):
		return nil, ErrEmptyCart
	default:
		return nil, persistence("checkout", err)
	}
}

func (s *CartService) Receipt(ctx context.Context, orderID string) (*domain.Receipt, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, invalid("order id is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r, err := s.Store.FindReceipt(ctx, orderID)
	if errors.Is(err, repo.ErrReceiptNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, persistence("find receipt", err)
	}
	return r, nil
}

func newOrderID(ms int64) string {
	return fmt.Sprintf("VIBE-%d-%s", ms, uuid.NewString()[:8])
}
