package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/mock_cart/internal/catalog"
	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/events"
	"github.com/Skotchmaster/mock_cart/internal/models"
	"github.com/Skotchmaster/mock_cart/internal/pricing"
	"github.com/Skotchmaster/mock_cart/internal/repo"
	pkgdb "github.com/Skotchmaster/mock_cart/pkg/db"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	err      error
}

func (f *fakeCatalog) FindByID(_ context.Context, id int64) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) rename(id int64, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Name = name
	f.products[id] = p
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type failingPublisher struct{}

func (failingPublisher) PublishEvent(context.Context, string, string, any) error {
	return errors.New("broker down")
}
func (failingPublisher) Close() error { return nil }

// blockingPublisher holds order events until release is closed.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *blockingPublisher) PublishEvent(ctx context.Context, topic, _ string, _ any) error {
	if topic != events.TopicOrder {
		return nil
	}
	p.once.Do(func() { close(p.started) })
	<-p.release
	return nil
}

func (p *blockingPublisher) Close() error { return nil }

type countingObserver struct{ n int }

func (o *countingObserver) CheckoutCompleted() { o.n++ }

func product(id int64, name, price string) domain.Product {
	return domain.Product{
		ID:     id,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Images: []string{"https://img.example/" + name + ".png"},
	}
}

func newTestCartService(t *testing.T) (*CartService, *fakeCatalog, *repo.GormRepo) {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate())

	cat := &fakeCatalog{products: map[int64]domain.Product{
		1: product(1, "mug", "10.00"),
		2: product(2, "tee", "5.00"),
		3: product(3, "cap", "19.99"),
	}}
	svc := NewCartService(r, cat, pricing.DefaultTaxRate)
	return svc, cat, r
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRead_MissingCartIsEmpty(t *testing.T) {
	svc, _, _ := newTestCartService(t)

	snap, err := svc.Read(context.Background(), domain.GuestCart)
	require.NoError(t, err)
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
	assert.True(t, snap.Total.IsZero())
}

func TestAddOrIncrement_PricesCart(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 2)
	require.NoError(t, err)
	snap, err := svc.AddOrIncrement(ctx, domain.GuestCart, 2, 1)
	require.NoError(t, err)

	require.Len(t, snap.Items, 2)
	assert.True(t, dec("25").Equal(snap.Subtotal), snap.Subtotal.String())
	assert.True(t, dec("2").Equal(snap.Tax), snap.Tax.String())
	assert.True(t, dec("27").Equal(snap.Total), snap.Total.String())

	read, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	assert.True(t, snap.Total.Equal(read.Total))
	assert.EqualValues(t, 1, read.Items[0].ProductID)
	assert.Equal(t, "https://img.example/mug.png", read.Items[0].Image)
}

func TestAddOrIncrement_IncrementsExistingLine(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 3, 2)
	require.NoError(t, err)
	snap, err := svc.AddOrIncrement(ctx, domain.GuestCart, 3, 3)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 5, snap.Items[0].Qty)
}

func TestAddOrIncrement_KeepsCapturedDisplayFields(t *testing.T) {
	svc, cat, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)
	cat.rename(1, "renamed mug")

	snap, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "mug", snap.Items[0].Name)
	assert.Equal(t, 2, snap.Items[0].Qty)
}

func TestAddOrIncrement_Validation(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 99, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestAddOrIncrement_CatalogFailureIsPersistence(t *testing.T) {
	svc, cat, _ := newTestCartService(t)
	cat.err = errors.New("db gone")

	_, err := svc.AddOrIncrement(context.Background(), domain.GuestCart, 1, 1)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestSetQuantity(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.SetQuantity(ctx, domain.GuestCart, 1, 3)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)

	snap, err := svc.SetQuantity(ctx, domain.GuestCart, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Items[0].Qty)

	_, err = svc.SetQuantity(ctx, domain.GuestCart, 2, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = svc.SetQuantity(ctx, domain.GuestCart, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	a, _, _ := newTestCartService(t)
	b, _, _ := newTestCartService(t)
	ctx := context.Background()

	for _, svc := range []*CartService{a, b} {
		_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 2)
		require.NoError(t, err)
		_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 2, 1)
		require.NoError(t, err)
	}

	viaUpdate, err := a.SetQuantity(ctx, domain.GuestCart, 1, 0)
	require.NoError(t, err)
	viaRemove, err := b.Remove(ctx, domain.GuestCart, 1)
	require.NoError(t, err)

	require.Len(t, viaUpdate.Items, 1)
	require.Len(t, viaRemove.Items, 1)
	assert.Equal(t, viaRemove.Items[0].ProductID, viaUpdate.Items[0].ProductID)
	assert.True(t, viaRemove.Total.Equal(viaUpdate.Total))
}

func TestRemove_ItemNotFoundLeavesCart(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.Remove(ctx, domain.GuestCart, 1)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)

	_, err = svc.Remove(ctx, domain.GuestCart, 2)
	assert.ErrorIs(t, err, ErrItemNotFound)

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
}

func TestAddOrIncrement_ConcurrentIncrements(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, n, snap.Items[0].Qty)
}

func TestCartEventsArePublished(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	pub := &recordingPublisher{}
	svc.Events = pub
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 2)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, domain.GuestCart, 1)
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TopicCart, pub.topics[0])
	added := pub.events[0].(events.CartEvent)
	assert.Equal(t, events.TypeCartItemAdded, added.Type)
	assert.Equal(t, 2, added.Qty)
	assert.Equal(t, "21.60", added.Total)
	assert.Equal(t, events.TypeCartItemRemoved, pub.events[1].(events.CartEvent).Type)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	svc.Events = failingPublisher{}

	snap, err := svc.AddOrIncrement(context.Background(), domain.GuestCart, 1, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
}

func TestCheckout(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	obs := &countingObserver{}
	pub := &recordingPublisher{}
	svc.Observer = obs
	svc.Events = pub
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 2, 1)
	require.NoError(t, err)

	r, err := svc.Checkout(ctx, domain.GuestCart, "  Ada ", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", r.CustomerName)
	assert.Equal(t, "ada@example.com", r.CustomerEmail)
	assert.Equal(t, 2, r.ItemsCount)
	assert.Len(t, r.Items, 2)
	assert.True(t, dec("25").Equal(r.Subtotal))
	assert.True(t, dec("2").Equal(r.Tax))
	assert.True(t, dec("27").Equal(r.Total))
	assert.Equal(t, fixed, r.Timestamp)
	assert.True(t, strings.HasPrefix(r.OrderID, "VIBE-1767323045000-"), r.OrderID)
	assert.Len(t, r.OrderID, len("VIBE-1767323045000-")+8)
	assert.Equal(t, 1, obs.n)

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.True(t, snap.Total.IsZero())

	stored, err := svc.Receipt(ctx, r.OrderID)
	require.NoError(t, err)
	assert.Equal(t, r.OrderID, stored.OrderID)
	assert.True(t, r.Total.Equal(stored.Total))
	assert.Len(t, stored.Items, 2)

	last := pub.events[len(pub.events)-1].(events.CheckoutEvent)
	assert.Equal(t, events.TypeCheckoutCompleted, last.Type)
	assert.Equal(t, r.OrderID, last.OrderID)
	assert.Equal(t, "27.00", last.Total)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	obs := &countingObserver{}
	svc.Observer = obs
	ctx := context.Background()

	_, err := svc.Checkout(ctx, domain.GuestCart, "Ada", "ada@example.com")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, domain.GuestCart, 1)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, domain.GuestCart, "Ada", "ada@example.com")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, obs.n)
}

func TestCheckout_Validation(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, domain.GuestCart, "   ", "ada@example.com")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Checkout(ctx, domain.GuestCart, "Ada", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1, "rejected checkout keeps the cart")
}

func TestReceipt_NotFound(t *testing.T) {
	svc, _, _ := newTestCartService(t)

	_, err := svc.Receipt(context.Background(), "VIBE-1-deadbeef")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = svc.Receipt(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCartsAreScopedByIdentity(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, "alice", 1, 1)
	require.NoError(t, err)

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestAddOrIncrement_QuantityOverflow(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)

	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 1, math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrPersistence)

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Qty)
}

func TestCheckout_FailedPersistKeepsCart(t *testing.T) {
	svc, _, r := newTestCartService(t)
	obs := &countingObserver{}
	pub := &recordingPublisher{}
	svc.Observer = obs
	svc.Events = pub
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddOrIncrement(ctx, domain.GuestCart, 2, 1)
	require.NoError(t, err)

	require.NoError(t, r.DB.Migrator().DropTable(&models.ReceiptItem{}))

	receipt, err := svc.Checkout(ctx, domain.GuestCart, "Ada", "ada@example.com")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, receipt)
	assert.Zero(t, obs.n)
	for _, topic := range pub.topics {
		assert.NotEqual(t, events.TopicOrder, topic)
	}

	snap, err := svc.Read(ctx, domain.GuestCart)
	require.NoError(t, err)
	require.Len(t, snap.Items, 2, "rolled back checkout keeps the cart")
	assert.True(t, dec("27").Equal(snap.Total))
}

func TestCheckout_SlowPublisherDoesNotHoldCartLock(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	pub := newBlockingPublisher()
	svc.Events = pub
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, domain.GuestCart, 1, 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(ctx, domain.GuestCart, "Ada", "ada@example.com")
		done <- err
	}()

	select {
	case <-pub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("checkout never published")
	}

	addCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	snap, err := svc.AddOrIncrement(addCtx, domain.GuestCart, 2, 1)
	require.NoError(t, err, "cart writes proceed while the order event is in flight")
	require.Len(t, snap.Items, 1)
	assert.EqualValues(t, 2, snap.Items[0].ProductID)

	close(pub.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("checkout did not return after publish was released")
	}
}
