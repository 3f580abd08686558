package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type sampleBody struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","quantity":0}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", pkgerrors.As(err).Details())
	}
	if details["name"] != "is required" || details["quantity"] != "must be greater than 0" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","quantity":1,"extra":true}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
}

func TestDecodeJSONBodyOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"widget","quantity":2}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Name != "widget" || body.Quantity != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsTrailingDocuments(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","quantity":1}{"name":"b"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) || pkgerrors.As(err).Message() != "request body must contain a single JSON object" {
		t.Fatalf("expected single object error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	payload := `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) || !strings.Contains(pkgerrors.As(err).Message(), "exceeds") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestDecodeOptionalJSONBody(t *testing.T) {
	for _, raw := range []string{"", "   \n"} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		var body sampleBody
		if err := DecodeOptionalJSONBody(req, &body); err != nil {
			t.Fatalf("empty body %q should be accepted, got %v", raw, err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","quantity":1}`))
	var body sampleBody
	if err := DecodeOptionalJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("non-empty body must still validate, got %v", err)
	}
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	rctx.URLParams.Add("bad", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "id")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
	if _, err := ParseUUIDParam(req, "bad"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseUUIDParam(req, "missing"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing param, got %v", err)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10&cursor=abc", nil)
	params, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 10 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=1000", nil)
	if _, err := ParsePagination(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected out of range error, got %v", err)
	}
}
