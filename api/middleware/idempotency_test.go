package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func storeRequest(method, url, body, key string, storeID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	return req.WithContext(WithStoreID(req.Context(), storeID))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	return payload.ErrorCode
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, IdempotencyOptions{}, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, storeRequest(http.MethodPost, "/api/v1/orders", `{}`, "", uuid.New()))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be stored without a key")
	}
}

func TestIdempotencyIgnoresSafeMethodsAndNilStore(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	store := newFakeStore()
	rec := httptest.NewRecorder()
	Idempotency(store, IdempotencyOptions{}, nil)(handler).ServeHTTP(rec, storeRequest(http.MethodGet, "/api/v1/orders", "", "k1", uuid.New()))
	if rec.Code != http.StatusOK || len(store.data) != 0 {
		t.Fatalf("GET should bypass idempotency, status=%d stored=%d", rec.Code, len(store.data))
	}

	rec = httptest.NewRecorder()
	Idempotency(nil, IdempotencyOptions{}, nil)(handler).ServeHTTP(rec, storeRequest(http.MethodPost, "/api/v1/orders", `{}`, "k1", uuid.New()))
	if rec.Code != http.StatusOK {
		t.Fatalf("nil store should pass through, got %d", rec.Code)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	opts := IdempotencyOptions{LockTTL: time.Minute, ResponseTTL: 24 * time.Hour}
	mw := Idempotency(store, opts, nil)
	storeID := uuid.New()
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	})

	first := httptest.NewRecorder()
	mw(handler).ServeHTTP(first, storeRequest(http.MethodPost, "/api/v1/orders", `{"a":1}`, "abc", storeID))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	mw(handler).ServeHTTP(replay, storeRequest(http.MethodPost, "/api/v1/orders", `{"a":1}`, "abc", storeID))
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", replay.Code)
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if strings.TrimSpace(replay.Body.String()) != `{"data":{"id":"1"}}` {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}

	key := store.IdempotencyKey(storeID.String()+"|POST|/api/v1/orders", "abc")
	if store.ttls[key] != 24*time.Hour {
		t.Fatalf("expected response ttl 24h, got %v", store.ttls[key])
	}
}

func TestIdempotencyScopesKeysPerStore(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, IdempotencyOptions{}, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), storeRequest(http.MethodPost, "/api/v1/orders", `{}`, "same", uuid.New()))
	mw(handler).ServeHTTP(httptest.NewRecorder(), storeRequest(http.MethodPost, "/api/v1/orders", `{}`, "same", uuid.New()))
	if calls != 2 {
		t.Fatalf("expected both tenants to execute, got %d", calls)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, IdempotencyOptions{}, nil)
	storeID := uuid.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), storeRequest(http.MethodPost, "/api/v1/orders", `{"foo":"bar"}`, "xyz", storeID))

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, storeRequest(http.MethodPost, "/api/v1/orders", `{"foo":"diff"}`, "xyz", storeID))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, code)
	}
}

func TestIdempotencyRejectsConcurrentDuplicate(t *testing.T) {
	store := newFakeStore()
	opts := IdempotencyOptions{LockTTL: 60 * time.Second}
	mw := Idempotency(store, opts, nil)
	storeID := uuid.New()

	var inner *httptest.ResponseRecorder
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inner == nil {
			inner = httptest.NewRecorder()
			mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatalf("duplicate should not reach the handler")
			})).ServeHTTP(inner, storeRequest(http.MethodPost, "/api/v1/payments/process", `{}`, "dup", storeID))
		}
		w.WriteHeader(http.StatusOK)
	})

	key := store.IdempotencyKey(storeID.String()+"|POST|/api/v1/payments/process", "dup")
	mw(handler).ServeHTTP(httptest.NewRecorder(), storeRequest(http.MethodPost, "/api/v1/payments/process", `{}`, "dup", storeID))

	if inner.Code != http.StatusConflict {
		t.Fatalf("expected in-flight duplicate to get 409, got %d", inner.Code)
	}
	if code := decodeErrorCode(t, inner); code != string(pkgerrors.CodeInProgress) {
		t.Fatalf("expected %s got %s", pkgerrors.CodeInProgress, code)
	}
	if store.ttls[key] == 60*time.Second {
		t.Fatalf("expected lock ttl to be replaced by response ttl after completion")
	}
}

func TestIdempotencyReleasesKeyOnFailure(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, IdempotencyOptions{}, nil)
	storeID := uuid.New()
	status := http.StatusBadRequest
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	})

	first := httptest.NewRecorder()
	mw(handler).ServeHTTP(first, storeRequest(http.MethodPost, "/api/v1/payments/process", `{}`, "retry", storeID))
	if first.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", first.Code)
	}
	if len(store.data) != 0 {
		t.Fatalf("failed response should release the key, have %v", store.data)
	}

	status = http.StatusOK
	second := httptest.NewRecorder()
	mw(handler).ServeHTTP(second, storeRequest(http.MethodPost, "/api/v1/payments/process", `{}`, "retry", storeID))
	if second.Code != http.StatusOK || calls != 2 {
		t.Fatalf("expected retry to execute, status=%d calls=%d", second.Code, calls)
	}
}

func TestIdempotencyCapsBodySize(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, IdempotencyOptions{MaxBodyBytes: 16}, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	body := `{"notes":"` + strings.Repeat("x", 64) + `"}`
	mw(handler).ServeHTTP(rec, storeRequest(http.MethodPost, "/api/v1/orders", body, "big-1", uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %s", code)
	}
	if calls != 0 {
		t.Fatalf("handler must not run for an oversized body")
	}
	if len(store.data) != 0 {
		t.Fatalf("no idempotency key should be taken, got %v", store.data)
	}
}
