package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mock_cart/internal/service"
)

// fail logs err under event and turns it into the HTTP error the client sees.
// Expected outcomes are logged at Warn, everything else at Error with a
// generic message so driver details do not leak.
func fail(l *slog.Logger, event string, err error) error {
	code, msg := classify(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, service.ErrEmptyCart.Error()
	case errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound, service.ErrProductNotFound.Error()
	case errors.Is(err, service.ErrCartNotFound):
		return http.StatusNotFound, service.ErrCartNotFound.Error()
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, service.ErrItemNotFound.Error()
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, service.ErrOrderNotFound.Error()
	case errors.Is(err, service.ErrCatalogSource):
		return http.StatusInternalServerError, "failed to load products"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
