package routes

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

	"github.com/prometheus/client_golang/prometheus"

	cartsvc "github.com/cartshare/cartshare-backend/internal/carts"
	"github.com/cartshare/cartshare-backend/internal/cartstore"
	"github.com/cartshare/cartshare-backend/internal/checkout"
	"github.com/cartshare/cartshare-backend/internal/currency"
	"github.com/cartshare/cartshare-backend/internal/discounts"
	"github.com/cartshare/cartshare-backend/internal/inventory"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/internal/savedcarts"
	"github.com/cartshare/cartshare-backend/pkg/config"
	"github.com/cartshare/cartshare-backend/pkg/db"
	"github.com/cartshare/cartshare-backend/pkg/logger"
	invupstream "github.com/cartshare/cartshare-backend/pkg/upstream/inventory"
	"github.com/cartshare/cartshare-backend/pkg/upstream/products"
	"github.com/cartshare/cartshare-backend/pkg/upstream/rates"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{UseSQLite: true, SQLitePath: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	discountRepo := discounts.NewRepository(client)
	if err := discounts.Seed(context.Background(), discountRepo); err != nil {
		t.Fatalf("seeding discounts: %v", err)
	}

	manager := lifecycle.NewManager(cartstore.NewStore(), cartstore.NewLocks())
	productStub := products.NewStubWithFixtures()
	stockCoordinator := inventory.NewCoordinator(invupstream.NewStubWithFixtures(), nil)
	converter := currency.NewConverter(rates.NewStub())

	service := cartsvc.NewService(
		manager,
		productStub,
		stockCoordinator,
		discountRepo,
		converter,
		savedcarts.NewRepository(client),
		nil,
		nil,
		24*time.Hour,
	)
	coordinator := checkout.NewCoordinator(manager, productStub, stockCoordinator, converter, nil, nil, 5*time.Minute)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{Output: io.Discard})

	return NewRouter(cfg, logg, client, nil, service, coordinator, prometheus.NewRegistry())
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decoding data: %v (body %s)", err, rec.Body.String())
	}
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding error envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope.Error.Code
}

type cartBody struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	SubtotalCents int64  `json:"subtotalCents"`
	TotalCents    int64  `json:"totalCents"`
	Status        string `json:"status"`
	Items         []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	CurrencyView *struct {
		Currency      string `json:"currency"`
		SubtotalCents int64  `json:"subtotalCents"`
	} `json:"currencyView"`
}

func createCart(t *testing.T, handler http.Handler, userID string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts", map[string]string{"userId": userID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var cart cartBody
	decodeData(t, rec, &cart)
	return cart.ID
}

func TestRouterCartLifecycle(t *testing.T) {
	t.Parallel()

	handler := newTestRouter(t)
	cartID := createCart(t, handler, "user_a")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		map[string]any{"userId": "user_a", "productId": "prod_001", "quantity": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var cart cartBody
	decodeData(t, rec, &cart)
	if cart.SubtotalCents != 5998 {
		t.Fatalf("expected subtotal 5998, got %d", cart.SubtotalCents)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/carts/"+cartID+"?userId=user_a&currency=EUR", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &cart)
	if cart.CurrencyView == nil || cart.CurrencyView.Currency != "EUR" {
		t.Fatalf("expected EUR currency view, got %+v", cart.CurrencyView)
	}
	if cart.CurrencyView.SubtotalCents != 5488 {
		t.Fatalf("expected EUR subtotal 5488, got %d", cart.CurrencyView.SubtotalCents)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/carts/"+cartID+"?userId=user_a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/carts/"+cartID+"?userId=user_a", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestRouterCheckoutFlow(t *testing.T) {
	t.Parallel()

	handler := newTestRouter(t)
	cartID := createCart(t, handler, "user_a")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		map[string]any{"userId": "user_a", "productId": "prod_002", "quantity": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/checkout",
		map[string]string{"userId": "user_a", "currency": "EUR"})
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var validation struct {
		Valid        bool `json:"valid"`
		ExchangeRate *struct {
			To string `json:"to"`
		} `json:"exchangeRate"`
	}
	decodeData(t, rec, &validation)
	if !validation.Valid {
		t.Fatalf("expected valid checkout, body %s", rec.Body.String())
	}
	if validation.ExchangeRate == nil || validation.ExchangeRate.To != "EUR" {
		t.Fatalf("expected pinned EUR rate, body %s", rec.Body.String())
	}

	// Locked cart rejects mutations and repeat initiations.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		map[string]any{"userId": "user_a", "productId": "prod_001", "quantity": 1})
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423 during lock, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "CART_LOCKED" {
		t.Fatalf("expected CART_LOCKED, got %s", code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/checkout",
		map[string]string{"userId": "user_a"})
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423 on re-initiate, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/carts/"+cartID+"/checkout?userId=user_a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		map[string]any{"userId": "user_a", "productId": "prod_001", "quantity": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected mutation after cancel, got %d (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRouterCheckoutBlockedReturnsIssues(t *testing.T) {
	t.Parallel()

	handler := newTestRouter(t)
	cartID := createCart(t, handler, "user_a")

	// prod_004 has zero stock so the add itself is refused, leaving the cart
	// empty; use an empty cart for the 400 path instead.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		map[string]any{"userId": "user_a", "productId": "prod_004", "quantity": 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-stock add, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "STOCK_ERROR" {
		t.Fatalf("expected STOCK_ERROR, got %s", code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/checkout",
		map[string]string{"userId": "user_a"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart checkout, got %d (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRouterMembershipAndValidation(t *testing.T) {
	t.Parallel()

	handler := newTestRouter(t)
	cartID := createCart(t, handler, "user_a")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		map[string]any{"userId": "stranger", "productId": "prod_001", "quantity": 1})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for stranger, got %d (body %s)", rec.Code, rec.Body.String())
	}

	// Unknown fields are rejected at the decode layer.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts",
		map[string]string{"userId": "user_a", "bogus": "field"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}

	// Missing userId query on fetch.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/carts/"+cartID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing userId, got %d", rec.Code)
	}
}

func TestRouterSavedCartEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestRouter(t)
	cartID := createCart(t, handler, "user_a")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		map[string]any{"userId": "user_a", "productId": "prod_001", "quantity": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+cartID+"/save",
		map[string]string{"userId": "user_a", "name": "weekly run"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var saved struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &saved)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/users/user_a/saved-carts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list saved: expected 200, got %d", rec.Code)
	}
	var list []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, rec, &list)
	if len(list) != 1 || list[0].Name != "weekly run" {
		t.Fatalf("expected one snapshot named 'weekly run', got %+v", list)
	}

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/carts/%s/restore/%s", cartID, saved.ID),
		map[string]string{"userId": "user_a", "mode": "merge"})
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var restore struct {
		Cart   cartBody `json:"cart"`
		Issues []any    `json:"issues"`
	}
	decodeData(t, rec, &restore)
	if len(restore.Cart.Items) != 1 || restore.Cart.Items[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %+v", restore.Cart.Items)
	}
	if restore.Issues == nil {
		t.Fatalf("expected empty issues array, got null")
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	t.Parallel()

	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, handler, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}
