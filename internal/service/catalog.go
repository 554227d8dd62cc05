package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/mock_cart/internal/domain"
)

const (
	DefaultSeedLimit = 20
	seedTimeout      = 15 * time.Second
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	InsertProducts(ctx context.Context, products []domain.Product) error
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []domain.Product, error)
}

type ProductSource interface {
	FetchProducts(ctx context.Context, offset, limit int) ([]domain.Product, error)
}

type ProductIndex interface {
	IndexProducts(ctx context.Context, products []domain.Product) error
	Search(ctx context.Context, query string, from, size int) (int64, []domain.Product, error)
}

// ProductService serves the catalogue. The first listing against an empty
// store seeds it from Source; concurrent first requests share one fetch.
type ProductService struct {
	Store     ProductStore
	Source    ProductSource
	Index     ProductIndex
	SeedLimit int
	Timeout   time.Duration
	Log       *slog.Logger

	sfg singleflight.Group
}

func NewProductService(store ProductStore, source ProductSource, index ProductIndex, log *slog.Logger) *ProductService {
	if log == nil {
		log = slog.Default()
	}
	return &ProductService{
		Store:     store,
		Source:    source,
		Index:     index,
		SeedLimit: DefaultSeedLimit,
		Timeout:   DefaultTimeout,
		Log:       log,
	}
}

type SearchResult struct {
	Total int64
	Items []domain.Product
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.Store.CountProducts(ctx)
	if err != nil {
		return nil, persistence("count products", err)
	}
	if n == 0 {
		if err := s.seed(ctx); err != nil {
			return nil, err
		}
	}

	products, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, persistence("list products", err)
	}
	return products, nil
}

// seed runs at most once at a time. The shared fetch is detached from the
// caller so one client hanging up does not fail everyone waiting on it.
func (s *ProductService) seed(ctx context.Context) error {
	ch := s.sfg.DoChan("seed", func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), seedTimeout)
		defer cancel()

		n, err := s.Store.CountProducts(sctx)
		if err != nil {
			return nil, persistence("count products", err)
		}
		if n > 0 {
			return nil, nil
		}
		if s.Source == nil {
			return nil, ErrCatalogSource
		}

		limit := s.SeedLimit
		if limit <= 0 {
			limit = DefaultSeedLimit
		}
		products, err := s.Source.FetchProducts(sctx, 0, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogSource, err)
		}
		if err := s.Store.InsertProducts(sctx, products); err != nil {
			return nil, persistence("insert products", err)
		}
		s.Log.Info("catalog_seeded", "count", len(products))

		if s.Index != nil {
			if err := s.Index.IndexProducts(sctx, products); err != nil {
				s.Log.Warn("catalog_index_error", "error", err)
			}
		}
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return persistence("seed catalog", ctx.Err())
	}
}

// SearchProducts queries the search index when one is configured and falls
// back to a substring match in the store otherwise or when the index fails.
func (s *ProductService) SearchProducts(ctx context.Context, q string, from, size int) (SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return SearchResult{Items: []domain.Product{}}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, from, size)
		if err == nil {
			return SearchResult{Total: total, Items: nonNil(items)}, nil
		}
		if errors.Is(err, context.Canceled) {
			return SearchResult{}, err
		}
		s.Log.Warn("search_index_error", "query", q, "error", err)
	}

	total, items, err := s.Store.SearchProducts(ctx, q, from, size)
	if err != nil {
		return SearchResult{}, persistence("search products", err)
	}
	return SearchResult{Total: total, Items: nonNil(items)}, nil
}

func (s *ProductService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	t := s.Timeout
	if t <= 0 {
		t = DefaultTimeout
	}
	return context.WithTimeout(ctx, t)
}

func nonNil(items []domain.Product) []domain.Product {
	if items == nil {
		return []domain.Product{}
	}
	return items
}
