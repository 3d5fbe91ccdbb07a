package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

func TestHTTPClientGetProduct(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/prod_001":
			json.NewEncoder(w).Encode(Product{ID: "prod_001", Name: "Wireless Headphones", PriceCents: 2999})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	product, err := client.GetProduct(context.Background(), "prod_001")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product == nil || product.PriceCents != 2999 {
		t.Fatalf("unexpected product %+v", product)
	}

	missing, err := client.GetProduct(context.Background(), "prod_999")
	if err != nil {
		t.Fatalf("unknown product must not error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown product, got %+v", missing)
	}
}

func TestHTTPClientGetProductsBatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ids") != "prod_001,prod_999" {
			t.Errorf("unexpected ids query %q", r.URL.Query().Get("ids"))
		}
		json.NewEncoder(w).Encode(map[string][]Product{
			"products": {{ID: "prod_001", Name: "Wireless Headphones", PriceCents: 2999}},
		})
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	result, err := client.GetProducts(context.Background(), []string{"prod_001", "prod_999"})
	if err != nil {
		t.Fatalf("get products failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected unknown ids omitted, got %d entries", len(result))
	}
	if result["prod_001"].Name != "Wireless Headphones" {
		t.Fatalf("unexpected product %+v", result["prod_001"])
	}
}

func TestHTTPClientUpstreamFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	_, err = client.GetProduct(context.Background(), "prod_001")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
