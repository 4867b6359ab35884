package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/example/stockdesk/pkg/models"
	"github.com/example/stockdesk/pkg/payment"
	"github.com/example/stockdesk/pkg/repository/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const paymentSecret = "gw-secret"

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error) {
	return &models.GatewayOrder{ID: "order_" + receipt, Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(paymentSecret, orderID, paymentID, signature)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	t        *testing.T
	handler  http.Handler
	store    *memstore.Store
	sessions *memstore.Sessions
	gw       *Gateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "jwt-secret", TokenTTL: time.Hour, CookieName: "token"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	store := memstore.New()
	svc := inventory.New(inventory.Deps{
		Users:      store,
		Categories: store,
		Suppliers:  store,
		Products:   store,
		Orders:     store,
		Payments:   store,
		Gateway:    stubGateway{},
		Ledger:     store,
		AuditLog:   store,
	}, inventory.Options{})

	_, err := svc.EnsureAdmin(context.Background(), inventory.UserInput{
		Name: "Root", Email: "root@example.com", Password: "pw", Address: "HQ",
	})
	require.NoError(t, err)

	sessions := memstore.NewSessions(time.Minute)
	gw := NewGateway(cfg, zap.NewNop(), svc, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), sessions)
	gw.AddHealthCheck("storage", store)
	gw.SetupRoutes()
	return &testServer{t: t, handler: gw.Handler(), store: store, sessions: sessions, gw: gw}
}

type reply struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	raw     map[string]json.RawMessage
	code    int
	cookies []*http.Cookie
}

func (r *reply) decode(t *testing.T, key string, dst interface{}) {
	t.Helper()
	require.Contains(t, r.raw, key)
	require.NoError(t, json.Unmarshal(r.raw[key], dst))
}

func (s *testServer) do(method, path, token string, body interface{}) *reply {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	r := &reply{code: rec.Code, cookies: rec.Result().Cookies()}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &r.raw), rec.Body.String())
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), r))
	return r
}

func sessionCookie(t *testing.T, r *reply) string {
	t.Helper()
	for _, c := range r.cookies {
		if c.Name == "token" {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	r := s.do(http.MethodPost, "/api/users/login", "", obj{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, r.code, r.Message)
	return sessionCookie(s.t, r)
}

func (s *testServer) customer(email string) string {
	s.t.Helper()
	r := s.do(http.MethodPost, "/api/users/register", "", obj{
		"name": "Cara", "email": email, "password": "pw", "address": "Street 1",
	})
	require.Equal(s.t, http.StatusCreated, r.code, r.Message)
	return sessionCookie(s.t, r)
}

type obj = map[string]interface{}

func TestRegisterSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)
	r := s.do(http.MethodPost, "/api/users/register", "", obj{
		"name": "Cara", "email": "Cara@Example.com", "password": "pw", "address": "Street 1",
	})
	require.Equal(t, http.StatusCreated, r.code)
	assert.True(t, r.Success)
	assert.Equal(t, "User registered successfully", r.Message)
	assert.NotContains(t, string(r.raw["user"]), "password")

	var cookie *http.Cookie
	for _, c := range r.cookies {
		if c.Name == "token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)

	me := s.do(http.MethodGet, "/api/frontend/me", cookie.Value, nil)
	require.Equal(t, http.StatusOK, me.code)
	var who auth.Identity
	me.decode(t, "user", &who)
	assert.Equal(t, "cara@example.com", who.Email)
	assert.Equal(t, models.RoleCustomer, who.Role)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/frontend/me"},
		{http.MethodGet, "/api/product/getAllProducts"},
		{http.MethodPost, "/api/order/placeOrder"},
		{http.MethodPost, "/api/payment/verify-payment"},
	}
	for _, p := range paths {
		t.Run(p.path, func(t *testing.T) {
			r := s.do(p.method, p.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, r.code)
			assert.False(t, r.Success)
		})
	}

	r := s.do(http.MethodGet, "/api/frontend/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, r.code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	r := s.do(http.MethodPost, "/api/users/login", "", obj{"email": "root@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, r.code)
	r = s.do(http.MethodPost, "/api/users/login", "", obj{"email": "ghost@example.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, r.code)
	r = s.do(http.MethodPost, "/api/users/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, r.code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login("root@example.com", "pw")
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/frontend/me", token, nil).code)

	r := s.do(http.MethodPost, "/api/users/logout", token, nil)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Logged out successfully", r.Message)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/frontend/me", token, nil).code)
}

func TestDeletedUserLosesAccess(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("root@example.com", "pw")
	cust := s.customer("cara@example.com")

	me := s.do(http.MethodGet, "/api/frontend/me", cust, nil)
	var who auth.Identity
	me.decode(t, "user", &who)

	r := s.do(http.MethodDelete, "/api/users/deleteUser/"+who.UserID.Hex(), admin, nil)
	require.Equal(t, http.StatusOK, r.code, r.Message)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/frontend/me", cust, nil).code)
}

func TestDeleteUserInvalidatesTrimmedID(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("root@example.com", "pw")
	cust := s.customer("cara@example.com")

	var who auth.Identity
	s.do(http.MethodGet, "/api/frontend/me", cust, nil).decode(t, "user", &who)
	_, err := s.sessions.GetUserCache(context.Background(), who.UserID.Hex())
	require.NoError(t, err)

	r := s.do(http.MethodDelete, "/api/users/deleteUser/%20"+who.UserID.Hex()+"%20", admin, nil)
	require.Equal(t, http.StatusOK, r.code, r.Message)

	_, err = s.sessions.GetUserCache(context.Background(), who.UserID.Hex())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/frontend/me", cust, nil).code)
}

func TestCatalogAccess(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("root@example.com", "pw")
	cust := s.customer("cara@example.com")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/category/getAllCategories", cust, nil).code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/users/getAllUsers", cust, nil).code)

	body := obj{"name": "Beverages", "description": "drinks"}
	r := s.do(http.MethodPost, "/api/category/addCategory", admin, body)
	require.Equal(t, http.StatusCreated, r.code)

	r = s.do(http.MethodPost, "/api/category/addCategory", admin, body)
	assert.Equal(t, http.StatusConflict, r.code)
	assert.False(t, r.Success)

	r = s.do(http.MethodPatch, "/api/category/updateCategory/"+"64b7f0c2a1b2c3d4e5f60718", admin, body)
	assert.Equal(t, http.StatusNotFound, r.code)

	r = s.do(http.MethodGet, "/api/category/getAllCategories", admin, nil)
	require.Equal(t, http.StatusOK, r.code)
	var cats []models.Category
	r.decode(t, "categories", &cats)
	assert.Len(t, cats, 1)
}

func (s *testServer) addProduct(admin string, stock int) string {
	s.t.Helper()
	r := s.do(http.MethodPost, "/api/category/addCategory", admin, obj{"name": "Tea", "description": "leaf"})
	require.Equal(s.t, http.StatusCreated, r.code)
	var cat models.Category
	r.decode(s.t, "category", &cat)

	r = s.do(http.MethodPost, "/api/supplier/addSupplier", admin, obj{
		"name": "Leaf Co", "email": "leaf@co.io", "phone": "1", "address": "Hills",
	})
	require.Equal(s.t, http.StatusCreated, r.code)
	var sup models.Supplier
	r.decode(s.t, "supplier", &sup)

	r = s.do(http.MethodPost, "/api/product/addProduct", admin, obj{
		"name": "Green Tea", "stock": stock, "price": 2.5,
		"categoryId": cat.ID.Hex(), "supplierId": sup.ID.Hex(),
	})
	require.Equal(s.t, http.StatusCreated, r.code, r.Message)
	var p struct {
		ID string `json:"_id"`
	}
	r.decode(s.t, "product", &p)
	return p.ID
}

func (s *testServer) stockOf(token, productID string) int {
	s.t.Helper()
	r := s.do(http.MethodGet, "/api/product/getAllProducts", token, nil)
	require.Equal(s.t, http.StatusOK, r.code)
	var products []struct {
		ID    string `json:"_id"`
		Stock int    `json:"stock"`
	}
	r.decode(s.t, "products", &products)
	for _, p := range products {
		if p.ID == productID {
			return p.Stock
		}
	}
	s.t.Fatalf("product %s not listed", productID)
	return 0
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("root@example.com", "pw")
	cust := s.customer("cara@example.com")
	productID := s.addProduct(admin, 8)

	r := s.do(http.MethodPost, "/api/order/placeOrder", cust, obj{"productId": productID, "quantity": 10})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, 8, s.stockOf(cust, productID))

	r = s.do(http.MethodPost, "/api/order/placeOrder", cust, obj{"productId": productID, "quantity": 3})
	require.Equal(t, http.StatusCreated, r.code, r.Message)
	assert.Equal(t, "Order placed successfully", r.Message)
	var order models.Order
	r.decode(t, "order", &order)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 5, s.stockOf(cust, productID))

	r = s.do(http.MethodPatch, "/api/order/changeOrderStatus", cust, obj{"orderId": order.ID.Hex(), "status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, r.code)

	r = s.do(http.MethodPatch, "/api/order/changeOrderStatus", admin, obj{"orderId": order.ID.Hex(), "status": "lost"})
	assert.Equal(t, http.StatusBadRequest, r.code)

	r = s.do(http.MethodPatch, "/api/order/changeOrderStatus", admin, obj{"orderId": order.ID.Hex(), "status": "cancelled"})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	assert.Equal(t, 8, s.stockOf(cust, productID))

	r = s.do(http.MethodPatch, "/api/order/changeOrderStatus", admin, obj{"orderId": order.ID.Hex(), "status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, r.code)

	r = s.do(http.MethodGet, "/api/order/getUserOrders", cust, nil)
	require.Equal(t, http.StatusOK, r.code)
	var mine []models.OrderDetail
	r.decode(t, "orders", &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, models.OrderCancelled, mine[0].Status)

	// deleting returns the line items again, whatever the status was
	r = s.do(http.MethodDelete, "/api/order/deleteOrder/"+order.ID.Hex(), cust, nil)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, 11, s.stockOf(cust, productID))

	r = s.do(http.MethodGet, "/api/product/stockHistory/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, r.code)
	var moves []models.StockMovement
	r.decode(t, "movements", &moves)
	assert.Len(t, moves, 4)
}

func TestVerifyPayment(t *testing.T) {
	s := newTestServer(t)
	cust := s.customer("cara@example.com")

	r := s.do(http.MethodPost, "/api/payment/create-order", cust, obj{"amount": 499.5})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	var order models.GatewayOrder
	r.decode(t, "order", &order)
	assert.Equal(t, int64(49950), order.Amount)

	tampered := obj{
		"razorpay_order_id":   order.ID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign(paymentSecret, order.ID, "pay_2"),
	}
	r = s.do(http.MethodPost, "/api/payment/verify-payment", cust, tampered)
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "payment verification failed", r.Message)

	p, err := s.store.PaymentByGatewayOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCreated, p.Status)

	r = s.do(http.MethodPost, "/api/payment/verify-payment", cust, obj{
		"razorpay_order_id":   order.ID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign(paymentSecret, order.ID, "pay_1"),
	})
	require.Equal(t, http.StatusOK, r.code, r.Message)
	var paid models.Payment
	r.decode(t, "payment", &paid)
	assert.Equal(t, models.PaymentPaid, paid.Status)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/product/getAllProducts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	r := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, r.code)

	s.gw.AddHealthCheck("ledger", downPinger{})
	r = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, r.code)
	assert.JSONEq(t, `{"storage":"up","ledger":"down"}`, string(r.raw["dependencies"]))
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestSwaggerDocs(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/order/placeOrder")
	assert.Contains(t, doc.Paths, "/payment/verify-payment")
}

func TestGatewayLeavesDecimalEncodingAlone(t *testing.T) {
	newTestServer(t)
	assert.False(t, decimal.MarshalJSONWithoutQuotes)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind inventory.Kind
		want int
	}{
		{inventory.KindValidation, http.StatusBadRequest},
		{inventory.KindInsufficientStock, http.StatusBadRequest},
		{inventory.KindInvalidTransition, http.StatusBadRequest},
		{inventory.KindPaymentVerification, http.StatusBadRequest},
		{inventory.KindUnauthorized, http.StatusUnauthorized},
		{inventory.KindForbidden, http.StatusForbidden},
		{inventory.KindNotFound, http.StatusNotFound},
		{inventory.KindConflict, http.StatusConflict},
		{inventory.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.kind))
		})
	}
}
