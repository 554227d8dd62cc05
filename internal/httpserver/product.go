package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mock_cart/internal/service"
	"github.com/Skotchmaster/mock_cart/internal/transport"
	"github.com/Skotchmaster/mock_cart/internal/util"
	"github.com/Skotchmaster/mock_cart/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	l.Info("get_products_success", "count", len(products))
	return c.JSON(http.StatusOK, transport.FromProducts(products))
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	res, err := h.Svc.SearchProducts(ctx, q, from, limit)
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	return c.JSON(http.StatusOK, transport.SearchResponse{
		Data: transport.FromProducts(res.Items),
		Meta: transport.SearchMeta{
			Page:       page,
			Size:       limit,
			Total:      res.Total,
			TotalPages: (res.Total + int64(limit) - 1) / int64(limit),
			HasPrev:    page > 1,
			HasNext:    int64(from+limit) < res.Total,
		},
	})
}
