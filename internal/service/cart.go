package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mock_cart/internal/catalog"
	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/events"
	"github.com/Skotchmaster/mock_cart/internal/pricing"
	"github.com/Skotchmaster/mock_cart/internal/repo"
	"github.com/Skotchmaster/mock_cart/pkg/logging"
)

const DefaultTimeout = 5 * time.Second

type CartStore interface {
	LoadCart(ctx context.Context, owner domain.CartIdentity) (*domain.Cart, error)
	MutateCart(ctx context.Context, owner domain.CartIdentity, create bool, fn func(*domain.Cart) error) (*domain.Cart, error)
	CheckoutCart(ctx context.Context, owner domain.CartIdentity, fn func(*domain.Cart) (*domain.Receipt, error)) (*domain.Receipt, error)
	FindReceipt(ctx context.Context, orderID string) (*domain.Receipt, error)
}

type CheckoutObserver interface {
	CheckoutCompleted()
}

// CartService owns the cart aggregate and the checkout transaction. Every
// mutation holds the per-identity lock and runs inside one store transaction.
type CartService struct {
	Store    CartStore
	Catalog  catalog.Lookup
	TaxRate  decimal.Decimal
	Timeout  time.Duration
	Events   events.Publisher
	Observer CheckoutObserver
	Now      func() time.Time

	locks keyedLocker
}

func NewCartService(store CartStore, lookup catalog.Lookup, taxRate decimal.Decimal) *CartService {
	return &CartService{
		Store:   store,
		Catalog: lookup,
		TaxRate: taxRate,
		Timeout: DefaultTimeout,
		Events:  events.Nop{},
	}
}

func (s *CartService) Read(ctx context.Context, owner domain.CartIdentity) (pricing.Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cart, err := s.Store.LoadCart(ctx, owner)
	if errors.Is(err, repo.ErrCartNotFound) {
		return pricing.Empty(), nil
	}
	if err != nil {
		return pricing.Snapshot{}, persistence("load cart", err)
	}
	return s.price(cart), nil
}

func (s *CartService) AddOrIncrement(ctx context.Context, owner domain.CartIdentity, productID int64, qty int) (pricing.Snapshot, error) {
	if productID <= 0 {
		return pricing.Snapshot{}, invalid("product id must be positive")
	}
	if qty <= 0 {
		return pricing.Snapshot{}, invalid("quantity must be more than zero")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	product, err := s.Catalog.FindByID(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return pricing.Snapshot{}, ErrProductNotFound
	}
	if err != nil {
		return pricing.Snapshot{}, persistence("catalog lookup", err)
	}

	cart, err := s.mutate(ctx, owner, true, func(c *domain.Cart) error {
		if i := c.IndexOf(productID); i >= 0 {
			if c.Items[i].Qty > math.MaxInt-qty {
				return invalid("quantity too large")
			}
			c.Items[i].Qty += qty
			return nil
		}
		// display fields are captured now; later catalog edits do not reach this line
		c.Items = append(c.Items, domain.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.PrimaryImage(),
			Qty:       qty,
		})
		return nil
	})
	if err != nil {
		return pricing.Snapshot{}, err
	}

	snap := s.price(cart)
	s.publishCart(ctx, events.TypeCartItemAdded, owner, productID, qtyOf(cart, productID), snap)
	return snap, nil
}

func (s *CartService) SetQuantity(ctx context.Context, owner domain.CartIdentity, productID int64, qty int) (pricing.Snapshot, error) {
	if productID <= 0 {
		return pricing.Snapshot{}, invalid("product id must be positive")
	}
	if qty < 0 {
		return pricing.Snapshot{}, invalid("quantity must not be negative")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cart, err := s.mutate(ctx, owner, false, func(c *domain.Cart) error {
		i := c.IndexOf(productID)
		if i < 0 {
			return ErrItemNotFound
		}
		if qty == 0 {
			c.Without(productID)
			return nil
		}
		c.Items[i].Qty = qty
		return nil
	})
	if err != nil {
		return pricing.Snapshot{}, err
	}

	snap := s.price(cart)
	typ := events.TypeCartItemUpdated
	if qty == 0 {
		typ = events.TypeCartItemRemoved
	}
	s.publishCart(ctx, typ, owner, productID, qty, snap)
	return snap, nil
}

func (s *CartService) Remove(ctx context.Context, owner domain.CartIdentity, productID int64) (pricing.Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cart, err := s.mutate(ctx, owner, false, func(c *domain.Cart) error {
		if !c.Without(productID) {
			return ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		return pricing.Snapshot{}, err
	}

	snap := s.price(cart)
	s.publishCart(ctx, events.TypeCartItemRemoved, owner, productID, 0, snap)
	return snap, nil
}

func (s *CartService) mutate(ctx context.Context, owner domain.CartIdentity, create bool, fn func(*domain.Cart) error) (*domain.Cart, error) {
	unlock, err := s.locks.acquire(ctx, owner)
	if err != nil {
		return nil, persistence("acquire cart lock", err)
	}
	defer unlock()

	cart, err := s.Store.MutateCart(ctx, owner, create, fn)
	switch {
	case err == nil:
		return cart, nil
	case errors.Is(err, repo.ErrCartNotFound):
		return nil, ErrCartNotFound
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrInvalidInput):
		return nil, err
	default:
		return nil, persistence("save cart", err)
	}
}

func (s *CartService) price(cart *domain.Cart) pricing.Snapshot {
	return pricing.Compute(cart.Items, s.TaxRate)
}

func (s *CartService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	t := s.Timeout
	if t <= 0 {
		t = DefaultTimeout
	}
	return context.WithTimeout(ctx, t)
}

func (s *CartService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CartService) publishCart(ctx context.Context, typ string, owner domain.CartIdentity, productID int64, qty int, snap pricing.Snapshot) {
	s.publish(ctx, events.TopicCart, string(owner), events.CartEvent{
		Type:      typ,
		CartID:    string(owner),
		ProductID: productID,
		Qty:       qty,
		Total:     snap.Total.StringFixed(pricing.Places),
		At:        s.now().UTC(),
	})
}

// publish is best effort: a lost event never fails a committed operation.
func (s *CartService) publish(ctx context.Context, topic, key string, event any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(context.WithoutCancel(ctx), topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "topic", topic, "error", err)
	}
}

func qtyOf(cart *domain.Cart, productID int64) int {
	if i := cart.IndexOf(productID); i >= 0 {
		return cart.Items[i].Qty
	}
	return 0
}
