package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/checkout"
	"go.uber.org/zap"
)

func (h *Handler) registerOrderRoutes(e *echo.Echo) {
	e.POST("/orders", h.createOrder)
	e.GET("/orders/:id", h.getOrder)
}

func (h *Handler) createOrder(c echo.Context) error {
	var req checkout.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "malformed order payload")
	}
	order, err := h.placer.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		return checkoutError(c, err)
	}
	return created(c, order)
}

func (h *Handler) getOrder(c echo.Context) error {
	order, err := h.placer.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return checkoutError(c, err)
	}
	return ok(c, order)
}

// checkoutError maps the order placement error taxonomy to http statuses
func checkoutError(c echo.Context, err error) error {
	var (
		validation   *checkout.ValidationError
		notFound     *checkout.NotFoundError
		insufficient *checkout.InsufficientStockError
		conflict     *checkout.ConcurrentStockConflictError
		timeout      *checkout.PersistenceTimeoutError
	)
	switch {
	case errors.As(err, &validation):
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Message)
	case errors.As(err, &notFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", notFound.Error())
	case errors.As(err, &insufficient):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", insufficient.Error())
	case errors.As(err, &conflict):
		return fail(c, http.StatusConflict, "STOCK_CONFLICT", conflict.Error())
	case errors.As(err, &timeout):
		zap.L().Error("order persistence timeout",
			zap.String("namespace", "api"),
			zap.String("op", timeout.Op),
			zap.Error(timeout.Err),
		)
		return fail(c, http.StatusInternalServerError, "PERSISTENCE_TIMEOUT", "the order store did not respond in time")
	default:
		return internalError(c, "order request failed", err)
	}
}
