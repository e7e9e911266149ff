package square

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sq "github.com/square/square-go-sdk"
	sqcore "github.com/square/square-go-sdk/core"

	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
)

func TestEnsureIdempotencyKey(t *testing.T) {
	c := &Client{}
	if got := c.ensureIdempotencyKey("pref", "custom-key"); got != "custom-key" {
		t.Fatalf("expected provided key, got %q", got)
	}
	if got := c.ensureIdempotencyKey("prefix", ""); !strings.HasPrefix(got, "prefix-") {
		t.Fatalf("generated idempotency key %q missing prefix", got)
	}
}

func TestRedact(t *testing.T) {
	c := &Client{}
	out := c.redact("payment_token", "abc123")
	if out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	if v := c.redact("status", "ok"); v != "ok" {
		t.Fatalf("unexpected redaction for safe key")
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestMapSquareError(t *testing.T) {
	c := &Client{}
	table := []struct {
		name     string
		status   int
		payload  string
		wantCode pkgerrors.Code
	}{
		{
			name:     "authentication error",
			status:   http.StatusUnauthorized,
			payload:  `{"errors":[{"category":"AUTHENTICATION_ERROR","code":"UNAUTHORIZED"}]}`,
			wantCode: pkgerrors.CodeUnauthorized,
		},
		{
			name:     "idempotency key reused",
			status:   http.StatusConflict,
			payload:  `{"errors":[{"category":"API_ERROR","code":"IDEMPOTENCY_KEY_REUSED"}]}`,
			wantCode: pkgerrors.CodeIdempotency,
		},
	}
	for _, tt := range table {
		err := sqcore.NewAPIError(tt.status, errors.New(tt.payload))
		mapped := c.mapSquareError(err, "operation")
		if mapped == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		typed := pkgerrors.As(mapped)
		if typed == nil {
			t.Fatalf("%s: result is not pkgerror", tt.name)
		}
		if typed.Code() != tt.wantCode {
			t.Fatalf("%s: expected code %s, got %s", tt.name, tt.wantCode, typed.Code())
		}
	}
}

func TestExtractSquareErrors(t *testing.T) {
	c := &Client{}
	payload := `{"errors":[{"category":"API_ERROR","code":"BAD_REQUEST","detail":"oops"}]}`
	apiErr := sqcore.NewAPIError(http.StatusBadRequest, errors.New(payload))
	got := c.extractSquareErrors(apiErr)
	if len(got) != 1 {
		t.Fatalf("expected 1 error, got %d", len(got))
	}
	if got[0].GetCode() != sq.ErrorCodeBadRequest {
		t.Fatalf("unexpected error code %s", got[0].GetCode())
	}
}

func TestListCatalogUnconfigured(t *testing.T) {
	c := &Client{}
	if _, err := c.ListCatalog(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestListCatalogMergesInventoryCounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v2/catalog/list"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"objects": []map[string]any{
					{
						"type": "ITEM",
						"id":   "I1",
						"item_data": map[string]any{
							"name": "Estate Merlot",
							"variations": []map[string]any{
								{"id": "V1", "item_variation_data": map[string]any{"name": "750ml", "price_money": map[string]any{"amount": 2900, "currency": "USD"}}},
							},
						},
					},
					{"type": "CATEGORY", "id": "C1", "category_data": map[string]any{"name": "Reds"}},
				},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/inventory/counts/batch-retrieve":
			var req inventoryCountsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode counts request: %v", err)
			}
			if len(req.CatalogObjectIDs) != 1 || req.CatalogObjectIDs[0] != "V1" {
				t.Errorf("unexpected catalog object ids %v", req.CatalogObjectIDs)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"counts": []map[string]any{
					{"catalog_object_id": "V1", "state": "IN_STOCK", "quantity": "5"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := &Client{
		http:        server.Client(),
		accessToken: "tok",
		baseURL:     server.URL,
	}

	objects, err := c.ListCatalog(context.Background())
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}
	item := objects[0]
	if item.ItemData == nil || len(item.ItemData.Variations) != 1 {
		t.Fatalf("unexpected item payload %+v", item)
	}
	if got := item.ItemData.Variations[0].AvailableCount; got != 5 {
		t.Fatalf("expected merged count 5, got %d", got)
	}
}

func TestAttributeResolution(t *testing.T) {
	values := map[string]CustomAttributeValue{
		"Square:def-1": {Name: "Varietal", StringValue: "Merlot"},
		"color":        {Name: "Color", StringValue: "Red"},
	}
	if got := Attribute(values, "varietal"); got != "Merlot" {
		t.Fatalf("expected name match, got %q", got)
	}
	if got := Attribute(values, "color"); got != "Red" {
		t.Fatalf("expected key match, got %q", got)
	}
	if got := Attribute(values, "sweetness"); got != "" {
		t.Fatalf("expected empty for missing attribute, got %q", got)
	}
}

func TestAttributeNameTieResolvesByLowestKey(t *testing.T) {
	values := map[string]CustomAttributeValue{
		"Square:def-9": {Name: "Varietal", StringValue: "Syrah"},
		"Square:def-2": {Name: "Varietal", StringValue: "Merlot"},
		"Square:def-5": {Name: "Varietal", StringValue: "Pinot"},
	}
	// Duplicate names must resolve the same way on every call.
	for i := 0; i < 20; i++ {
		if got := Attribute(values, "varietal"); got != "Merlot" {
			t.Fatalf("expected lowest-key winner Merlot, got %q", got)
		}
	}
}
