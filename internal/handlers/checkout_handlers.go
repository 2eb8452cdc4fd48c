package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"acp_checkout_echo/internal/services"
)

const idempotencyKeyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	checkout *services.CheckoutService
}

func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// CreateSession handles POST /checkout/sessions
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := validateItems(req.Items); err != nil {
		return err
	}
	if err := validateCurrency(req.Currency); err != nil {
		return err
	}
	if req.Buyer.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "buyer.email is required")
	}

	key := c.Request().Header.Get(idempotencyKeyHeader)
	if key == "" {
		key = req.IdempotencyKey
	}

	view, err := h.checkout.Create(c.Request().Context(), services.CreateSessionInput{
		Items:              req.Items,
		Buyer:              req.Buyer,
		Currency:           req.Currency,
		SharedPaymentToken: req.SharedPaymentToken,
		IdempotencyKey:     key,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// UpdateSession handles POST /checkout/sessions/:id
func (h *CheckoutHandler) UpdateSession(c echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid session id")
	}

	var req UpdateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Items != nil {
		if err := validateItems(req.Items); err != nil {
			return err
		}
	}
	if req.Currency != nil {
		if err := validateCurrency(*req.Currency); err != nil {
			return err
		}
	}

	view, err := h.checkout.Update(c.Request().Context(), sessionID, services.UpdateSessionInput{
		Items:     req.Items,
		Buyer:     req.Buyer,
		Currency:  req.Currency,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// CompleteSession handles POST /checkout/sessions/:id/complete
func (h *CheckoutHandler) CompleteSession(c echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid session id")
	}

	key := c.Request().Header.Get(idempotencyKeyHeader)

	view, err := h.checkout.Complete(c.Request().Context(), sessionID, key)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// mapServiceError translates service-layer sentinels into HTTP errors.
// Anything unrecognized falls through to the 500 handler.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownProduct):
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown product_id")
	case errors.Is(err, services.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	case errors.Is(err, services.ErrSessionCompleted):
		return echo.NewHTTPError(http.StatusConflict, "Session is already completed")
	case errors.Is(err, services.ErrPaymentGateway):
		return echo.NewHTTPError(http.StatusBadGateway, "Payment gateway error")
	}
	return err
}
