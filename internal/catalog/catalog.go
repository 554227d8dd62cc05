package catalog

import (
	"context"
	"errors"

	"github.com/Skotchmaster/mock_cart/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Lookup resolves a product id to its current display attributes.
// Implementations return ErrProductNotFound for unknown ids.
type Lookup interface {
	FindByID(ctx context.Context, id int64) (domain.Product, error)
}
