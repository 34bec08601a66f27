package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ifixzone/shop/internal/models"
	"github.com/ifixzone/shop/internal/order"
)

// checkout seeds a one-line cart and turns it into an order.
func checkout(t *testing.T, env *testEnv, u models.User, p models.Product, qty uint) models.Order {
	t.Helper()
	ck := env.accessCookie(u.ID, u.Role)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart",
		map[string]uint{"product_id": p.ID, "quantity": qty}, ck)
	require.NoError(t, env.Cart.AddToCart(c))

	var item models.CartItem
	require.NoError(t, env.DB.Order("id DESC").First(&item).Error)

	body := map[string]any{
		"selected_item_ids": []uint{item.ID},
		"recipient":         map[string]string{"name": "Alice", "phone": "0399", "address": "12 Elm St"},
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/checkout", body, ck)
	require.NoError(t, env.Order.Checkout(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var o models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	return o
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")
	p := env.seedProduct("phone", 100, int64Ptr(5))

	o := checkout(t, env, u, p, 2)
	require.True(t, strings.HasPrefix(o.Code, "DH"))
	require.Equal(t, "new", o.Status)
	require.Len(t, o.Details, 1)

	var fresh models.Product
	require.NoError(t, env.DB.First(&fresh, p.ID).Error)
	require.Equal(t, int64(3), *fresh.Stock)
}

func TestCheckoutEmptySelection(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/checkout",
		map[string]any{}, env.accessCookie(u.ID, u.Role))
	require.NoError(t, env.Order.Checkout(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")
	p := env.seedProduct("phone", 100, int64Ptr(5))

	body := map[string]any{
		"buy_now": map[string]uint{"product_id": p.ID, "quantity": 9},
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/checkout", body, env.accessCookie(u.ID, u.Role))
	require.NoError(t, env.Order.Checkout(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Available int64 `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(5), resp.Available)
}

func TestCancelOwnNewOrder(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")
	p := env.seedProduct("phone", 100, int64Ptr(5))
	o := checkout(t, env, u, p, 2)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders/"+strconv.Itoa(int(o.ID))+"/cancel",
		nil, env.accessCookie(u.ID, u.Role))
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(o.ID)))
	require.NoError(t, env.Order.Cancel(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh models.Product
	require.NoError(t, env.DB.First(&fresh, p.ID).Error)
	require.Equal(t, int64(5), *fresh.Stock)
}

// The cancel endpoint applies customer rules even for operator tokens, so a
// confirmed order is refused there and must go through the status endpoint.
func TestCancelAfterConfirmationForbidden(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")
	admin := env.seedUser("root", "admin")
	p := env.seedProduct("phone", 100, int64Ptr(5))
	o := checkout(t, env, u, p, 1)

	_, err := env.Order.Svc.Transition(context.Background(), o.ID, order.StatusConfirmed,
		order.Actor{UserID: admin.ID, Role: order.RoleAdmin})
	require.NoError(t, err)

	rec, ec := env.doJSONRequest(http.MethodPost, "/api/v1/orders/"+strconv.Itoa(int(o.ID))+"/cancel",
		nil, env.accessCookie(u.ID, u.Role))
	ec.SetParamNames("id")
	ec.SetParamValues(strconv.Itoa(int(o.ID)))
	require.NoError(t, env.Order.Cancel(ec))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminListRequiresOperator(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")

	_, ec := env.doJSONRequest(http.MethodGet, "/api/v1/admin/orders", nil, env.accessCookie(u.ID, u.Role))
	err := env.Order.AdminList(ec)
	require.Equal(t, http.StatusForbidden, httpStatusOf(t, err))
}

func TestUpdateStatusAsOperator(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")
	staff := env.seedUser("staffer", "staff")
	p := env.seedProduct("phone", 100, int64Ptr(5))
	o := checkout(t, env, u, p, 1)

	rec, ec := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/orders/"+strconv.Itoa(int(o.ID))+"/status",
		map[string]string{"status": "confirmed"}, env.accessCookie(staff.ID, staff.Role))
	ec.SetParamNames("id")
	ec.SetParamValues(strconv.Itoa(int(o.ID)))
	require.NoError(t, env.Order.UpdateStatus(ec))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "confirmed", got.Status)

	// The owner got a notification row.
	var n int64
	require.NoError(t, env.DB.Model(&models.Notification{}).Where("user_id = ?", u.ID).Count(&n).Error)
	require.Equal(t, int64(1), n)
}

func TestUpdateStatusInvalidEdge(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser("alice", "customer")
	staff := env.seedUser("staffer", "staff")
	p := env.seedProduct("phone", 100, int64Ptr(5))
	o := checkout(t, env, u, p, 1)

	rec, ec := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/orders/"+strconv.Itoa(int(o.ID))+"/status",
		map[string]string{"status": "shipping"}, env.accessCookie(staff.ID, staff.Role))
	ec.SetParamNames("id")
	ec.SetParamValues(strconv.Itoa(int(o.ID)))
	require.NoError(t, env.Order.UpdateStatus(ec))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetOrderScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser("alice", "customer")
	bob := env.seedUser("bob", "customer")
	p := env.seedProduct("phone", 100, int64Ptr(5))
	o := checkout(t, env, alice, p, 1)

	rec, ec := env.doJSONRequest(http.MethodGet, "/api/v1/orders/"+strconv.Itoa(int(o.ID)),
		nil, env.accessCookie(bob.ID, bob.Role))
	ec.SetParamNames("id")
	ec.SetParamValues(strconv.Itoa(int(o.ID)))
	require.NoError(t, env.Order.GetOrder(ec))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
