package service

import (
	"context"
	"sync"

	"github.com/Skotchmaster/mock_cart/internal/domain"
)

// keyedLocker serialises operations per cart identity inside one process.
// Acquisition honours context cancellation.
type keyedLocker struct {
	mu    sync.Mutex
	slots map[domain.CartIdentity]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func (k *keyedLocker) acquire(ctx context.Context, id domain.CartIdentity) (func(), error) {
	k.mu.Lock()
	if k.slots == nil {
		k.slots = make(map[domain.CartIdentity]*slot)
	}
	s, ok := k.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[id] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				k.release(id, s)
			})
		}, nil
	case <-ctx.Done():
		k.release(id, s)
		return nil, ctx.Err()
	}
}

func (k *keyedLocker) release(id domain.CartIdentity, s *slot) {
	k.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, id)
	}
	k.mu.Unlock()
}
