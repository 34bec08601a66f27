package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ifixzone/shop/internal/cart"
	"github.com/ifixzone/shop/internal/models"
	"github.com/ifixzone/shop/internal/notify"
	"github.com/ifixzone/shop/internal/order"
)

type testEnv struct {
	T         *testing.T
	E         *echo.Echo
	DB        *gorm.DB
	Cart      *CartHandler
	Order     *OrderHandler
	Cat       *CategoryHandler
	Notif     *NotificationHandler
	JWTSecret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderDetail{},
		&models.OrderStatusHistory{},
		&models.Notification{},
	))

	secret := []byte("test-secret")
	notifier := &notify.Notifier{DB: db}

	return &testEnv{
		T:         t,
		E:         echo.New(),
		DB:        db,
		Cart:      &CartHandler{Svc: &cart.Service{DB: db}, JWTSecret: secret},
		Order:     &OrderHandler{Svc: &order.Service{DB: db, Notifier: notifier}, JWTSecret: secret},
		Cat:       &CategoryHandler{DB: db},
		Notif:     &NotificationHandler{Notifier: notifier, JWTSecret: secret},
		JWTSecret: secret,
	}
}

// accessCookie mints a signed token the way the auth service would, so the
// handlers can be exercised without the login flow.
func (env *testEnv) accessCookie(userID uint, role string) *http.Cookie {
	claims := jwt.MapClaims{
		"sub":  float64(userID),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(env.JWTSecret)
	require.NoError(env.T, err)
	return &http.Cookie{Name: "accessToken", Value: token, Path: "/"}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) seedUser(username, role string) models.User {
	u := models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(env.T, env.DB.Create(&u).Error)
	return u
}

func (env *testEnv) seedProduct(name string, price float64, stock *int64) models.Product {
	p := models.Product{
		Name:       name,
		CategoryID: 1,
		Price:      decimal.NewFromFloat(price),
		Stock:      stock,
		Active:     true,
	}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}

func int64Ptr(v int64) *int64 { return &v }

func httpStatusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
