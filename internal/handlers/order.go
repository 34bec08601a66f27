package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ifixzone/shop/internal/logging"
	"github.com/ifixzone/shop/internal/order"
	"github.com/ifixzone/shop/internal/util"
)

type OrderHandler struct {
	Svc       *order.Service
	JWTSecret []byte
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		SelectedItemIDs []uint          `json:"selected_item_ids"`
		BuyNow          *order.BuyNow   `json:"buy_now"`
		Recipient       order.Recipient `json:"recipient"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.Checkout(ctx, id.UserID, order.CheckoutInput{
		SelectedItemIDs: req.SelectedItemIDs,
		BuyNow:          req.BuyNow,
		Recipient:       req.Recipient,
	})
	if err != nil {
		l.Warn("checkout_error", "user_id", id.UserID, "error", err)
		return respondError(c, err)
	}

	l.Info("checkout_success", "user_id", id.UserID, "order_id", o.ID, "code", o.Code)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) History(c echo.Context) error {
	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.History(c.Request().Context(), id.UserID, c.QueryParam("status"), offset, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := h.Svc.Get(c.Request().Context(), uint(orderID), id.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, o)
}

// Cancel is the customer-initiated cancellation: it always runs through the
// customer rules, whatever the caller's actual role is.
func (h *OrderHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor := order.Actor{UserID: id.UserID, Role: order.RoleCustomer}
	o, err := h.Svc.Transition(ctx, uint(orderID), order.StatusCancelled, actor)
	if err != nil {
		l.Warn("cancel_error", "user_id", id.UserID, "order_id", orderID, "error", err)
		return respondError(c, err)
	}

	l.Info("cancel_success", "user_id", id.UserID, "order_id", o.ID)
	return c.JSON(http.StatusOK, o)
}

// AdminList is the back-office order listing with search and status filter.
func (h *OrderHandler) AdminList(c echo.Context) error {
	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}
	if id.Role != order.RoleAdmin && id.Role != order.RoleStaff {
		return echo.NewHTTPError(http.StatusForbidden, "operator role required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.AdminList(c.Request().Context(), c.QueryParam("q"), c.QueryParam("status"), offset, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// UpdateStatus is the operator transition endpoint.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := GetIdentity(c, h.JWTSecret)
	if err != nil {
		return err
	}
	if id.Role != order.RoleAdmin && id.Role != order.RoleStaff {
		return echo.NewHTTPError(http.StatusForbidden, "operator role required")
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	actor := order.Actor{UserID: id.UserID, Role: id.Role}
	o, err := h.Svc.Transition(ctx, uint(orderID), order.Status(req.Status), actor)
	if err != nil {
		l.Warn("update_status_error", "order_id", orderID, "status", req.Status, "error", err)
		return respondError(c, err)
	}

	l.Info("update_status_success", "order_id", o.ID, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}
