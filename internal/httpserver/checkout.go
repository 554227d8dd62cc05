package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mock_cart/internal/transport"
	"github.com/Skotchmaster/mock_cart/pkg/logging"
)

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	receipt, err := h.Svc.Checkout(ctx, h.identity(c), req.Name, req.Email)
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout completed", "order_id", receipt.OrderID, "items", receipt.ItemsCount)
	return c.JSON(http.StatusOK, transport.FromReceipt(receipt))
}

func (h *CartHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	receipt, err := h.Svc.Receipt(ctx, c.Param("orderId"))
	if err != nil {
		return fail(l, "get_order_error", err)
	}

	return c.JSON(http.StatusOK, transport.FromReceipt(receipt))
}
