package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func newIdempotentRouter(store *memoryStore, calls *int) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, nil))
	r.Post("/api/v1/carts/{cartID}/checkout", func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"valid":true}}`))
	})
	r.Post("/api/v1/carts/{cartID}/collaborators", func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart_1/checkout", strings.NewReader(`{"userId":"user_a"}`))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"valid":true`) {
			t.Fatalf("request %d: unexpected body %s", i, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart_1/checkout", strings.NewReader(`{"userId":"user_a"}`))
	first.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart_1/checkout", strings.NewReader(`{"userId":"user_b"}`))
	second.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, second)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyIgnoresUnlistedRoutesAndMissingKey(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	// Unlisted route: never intercepted even with a key.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart_1/collaborators", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	// Listed route without a key: passes through uncached.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/cart_1/checkout", strings.NewReader(`{}`))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 3 {
		t.Fatalf("expected 3 handler runs, got %d", calls)
	}
}
