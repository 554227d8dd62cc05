package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/service"
	"github.com/Skotchmaster/mock_cart/internal/transport"
	"github.com/Skotchmaster/mock_cart/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

// identity is fixed until carts are scoped by a caller.
func (h *CartHTTP) identity(echo.Context) domain.CartIdentity {
	return domain.GuestCart
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	snap, err := h.Svc.Read(ctx, h.identity(c))
	if err != nil {
		return fail(l, "get_cart_error", err)
	}

	return c.JSON(http.StatusOK, transport.FromSnapshot(snap))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == nil || req.Qty == nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "productId and qty are required")
	}

	snap, err := h.Svc.AddOrIncrement(ctx, h.identity(c), *req.ProductID, *req.Qty)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("item added to cart", "product_id", *req.ProductID, "qty", *req.Qty)
	return c.JSON(http.StatusOK, transport.FromSnapshot(snap))
}

func (h *CartHTTP) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == nil || req.Qty == nil {
		l.Warn("update_cart_error", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "productId and qty are required")
	}

	snap, err := h.Svc.SetQuantity(ctx, h.identity(c), *req.ProductID, *req.Qty)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}

	l.Info("cart quantity updated", "product_id", *req.ProductID, "qty", *req.Qty)
	return c.JSON(http.StatusOK, transport.FromSnapshot(snap))
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "reason", "productId is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "productId must be an integer")
	}

	snap, err := h.Svc.Remove(ctx, h.identity(c), productID)
	if err != nil {
		return fail(l, "remove_from_cart_error", err)
	}

	l.Info("item removed from cart", "product_id", productID)
	return c.JSON(http.StatusOK, transport.FromSnapshot(snap))
}
