package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ifixzone/shop/internal/cart"
	"github.com/ifixzone/shop/internal/logging"
)

type CartHandler struct {
	Svc       *cart.Service
	JWTSecret []byte
}

func (h *CartHandler) GetCart(c echo.Context) error {
	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	lines, err := h.Svc.Items(c.Request().Context(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, lines)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, summary, err := h.Svc.AddItem(ctx, id.UserID, req.ProductID, req.Quantity)
	if err != nil {
		l.Warn("add_to_cart_error", "user_id", id.UserID, "product_id", req.ProductID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"item":    item,
		"summary": summary,
	})
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || itemID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateQuantity(ctx, id.UserID, uint(itemID), req.Quantity)
	if err != nil {
		l.Warn("update_quantity_error", "user_id", id.UserID, "item_id", itemID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || itemID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	removed, err := h.Svc.RemoveItem(c.Request().Context(), id.UserID, uint(itemID))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"removed": removed})
}
