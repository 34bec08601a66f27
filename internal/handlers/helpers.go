package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ifixzone/shop/internal/cart"
	"github.com/ifixzone/shop/internal/inventory"
	"github.com/ifixzone/shop/internal/order"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Identity is the explicit (userID, role) pair extracted from the access
// token. The core packages receive it as parameters, never through ambient
// request state.
type Identity struct {
	UserID uint
	Role   order.Role
}

func GetIdentity(c echo.Context, jwtSecret []byte) (Identity, error) {
	cookie, err := c.Cookie("accessToken")
	if err != nil {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
	}
	tokenString := cookie.Value
	if tokenString == "" {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token: "+err.Error())
	}
	if !token.Valid {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	subRaw, ok := claims["sub"].(float64)
	if !ok {
		return Identity{}, echo.NewHTTPError(http.StatusBadRequest, "invalid subject claim")
	}

	role := order.RoleCustomer
	if r, ok := claims["role"].(string); ok && r != "" {
		role = order.Role(r)
	}

	return Identity{UserID: uint(subRaw), Role: role}, nil
}

// respondError maps the typed core outcomes onto HTTP statuses so the client
// can render a specific message. Anything unrecognized is an infrastructure
// failure.
func respondError(c echo.Context, err error) error {
	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusConflict, map[string]any{
			"status":     "error",
			"message":    "insufficient stock",
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
		})
	}

	switch {
	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound):
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: err.Error()})
	case errors.Is(err, order.ErrForbidden):
		return c.JSON(http.StatusForbidden, Response{Status: "error", Message: err.Error()})
	case errors.Is(err, order.ErrEmptySelection):
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: err.Error()})
	case errors.Is(err, order.ErrNoOp),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, order.ErrProductUnavailable):
		return c.JSON(http.StatusConflict, Response{Status: "error", Message: err.Error()})
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
