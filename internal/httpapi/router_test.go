package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/domain"
	"github.com/engineermuzamil/modernstore/internal/repository"
	"github.com/engineermuzamil/modernstore/internal/service"
)

type testEnv struct {
	server *httptest.Server
	store  *repository.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	cartSvc := service.NewCartService(store, nil)
	router := NewRouter(RouterDeps{
		Auth:     service.NewAuthService(store, issuer),
		Products: service.NewProductService(store),
		Cart:     cartSvc,
		Checkout: service.NewCheckoutService(store, cartSvc),
		Tokens:   issuer,
		Users:    store,
		Timeout:  10 * time.Second,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (e *testEnv) registerCustomer(t *testing.T, email string) string {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var out AuthResponseDTO
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Token
}

// seedAdmin creates an admin account directly; the public API only registers
// customers.
func (e *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, e.store.CreateUser(context.Background(), &domain.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}))

	resp, raw := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out AuthResponseDTO
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Token
}

func (e *testEnv) createProduct(t *testing.T, adminToken string, price float64, stock int) uuid.UUID {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/products", adminToken, map[string]interface{}{
		"title": "Widget",
		"price": price,
		"stock": stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var product domain.Product
	require.NoError(t, json.Unmarshal(raw, &product))
	return product.ID
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_FullCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)
	productID := env.createProduct(t, adminToken, 10.00, 5)
	token := env.registerCustomer(t, "jane@example.com")

	// Stage two units.
	resp, raw := env.do(t, http.MethodPost, "/api/cart", token, map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = env.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lines []domain.CartLine
	require.NoError(t, json.Unmarshal(raw, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 10.00, lines[0].Price)

	// Place the order.
	resp, raw = env.do(t, http.MethodPost, "/api/orders", token, map[string]string{
		"name":        "Jane Doe",
		"address":     "1 Main St",
		"city":        "Springfield",
		"postal_code": "12345",
		"country":     "US",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var order domain.Order
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.Equal(t, 20.00, order.Total)

	// Cart is now empty and the order shows up in history.
	resp, raw = env.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &lines))
	assert.Empty(t, lines)

	resp, raw = env.do(t, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(raw, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	// Single-order lookup, scoped to the owner.
	resp, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%s", order.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched domain.Order
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, 20.00, fetched.Total)

	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%s", uuid.New()), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Stock drawn down to 3, visible on the public catalog.
	resp, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%s", productID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var product domain.Product
	require.NoError(t, json.Unmarshal(raw, &product))
	assert.Equal(t, 3, product.Stock)
}

func TestRouter_InsufficientStockOnCheckout(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)
	productID := env.createProduct(t, adminToken, 10.00, 5)

	// Two customers both stage 3 of the 5 units; the second checkout fails.
	first := env.registerCustomer(t, "first@example.com")
	second := env.registerCustomer(t, "second@example.com")
	for _, token := range []string{first, second} {
		resp, raw := env.do(t, http.MethodPost, "/api/cart", token, map[string]interface{}{
			"product_id": productID.String(),
			"quantity":   3,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}

	shipping := map[string]string{
		"name": "J", "address": "1 Main St", "city": "S", "postal_code": "1", "country": "US",
	}
	resp, _ := env.do(t, http.MethodPost, "/api/orders", first, shipping)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := env.do(t, http.MethodPost, "/api/orders", second, shipping)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "insufficient_stock", errResp.Code)

	// The failed checkout left the second cart staged.
	resp, raw = env.do(t, http.MethodGet, "/api/cart", second, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lines []domain.CartLine
	require.NoError(t, json.Unmarshal(raw, &lines))
	assert.Len(t, lines, 1)
}

func TestRouter_RolePartition(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)
	productID := env.createProduct(t, adminToken, 10.00, 5)
	customerToken := env.registerCustomer(t, "jane@example.com")

	// Customer cannot mutate the catalog.
	resp, raw := env.do(t, http.MethodPost, "/api/products", customerToken, map[string]interface{}{
		"title": "Nope", "price": 1.0,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "forbidden", errResp.Code)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%s", productID), customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin cannot act as a shopper.
	resp, _ = env.do(t, http.MethodPost, "/api/cart", adminToken, map[string]interface{}{
		"product_id": productID.String(), "quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/orders", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_AuthRequired(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/auth/me"},
	} {
		resp, _ := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)

		resp, _ = env.do(t, tc.method, tc.path, "garbage-token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_CartQuantityUpdateAndRemove(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)
	productID := env.createProduct(t, adminToken, 10.00, 9)
	token := env.registerCustomer(t, "jane@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/cart", token, map[string]interface{}{
		"product_id": productID.String(), "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := env.do(t, http.MethodPut, fmt.Sprintf("/api/cart/%s", productID), token, map[string]int{
		"quantity": 7,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var item domain.CartItem
	require.NoError(t, json.Unmarshal(raw, &item))
	assert.Equal(t, 7, item.Quantity)

	// Setting zero removes the line.
	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/cart/%s", productID), token, map[string]int{
		"quantity": 0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = env.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lines []domain.CartLine
	require.NoError(t, json.Unmarshal(raw, &lines))
	assert.Empty(t, lines)

	// Removing again is a no-op, not an error.
	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/cart/%s", productID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	env := newTestEnv(t)
	env.registerCustomer(t, "jane@example.com")

	resp, raw := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "jane@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "duplicate_email", errResp.Code)
}
