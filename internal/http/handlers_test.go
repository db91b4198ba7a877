package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledger/internal/engine"
	applog "ledger/internal/log"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	eng := engine.New(engine.Options{
		WindowMonths: 6,
		Clock:        func() time.Time { return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC) },
		Logger:       logger,
	})
	s := NewServer(":0", eng, time.Minute, logger)
	t.Cleanup(func() { s.limiter.stop(); s.queryCache.Stop(); s.seriesCache.Stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, r)
	return w
}

func createTransaction(t *testing.T, s *Server, payload map[string]any) transactionDTO {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/transactions", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	var dto transactionDTO
	if err := json.Unmarshal(w.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return dto
}

func TestTransactionEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("create and query", func(t *testing.T) {
		dto := createTransaction(t, s, map[string]any{
			"amount":   "45.00",
			"category": "Groceries",
			"date":     "2026-08-10",
			"type":     "expense",
		})
		if dto.AmountCents != 4500 || dto.Category != "Groceries" {
			t.Errorf("unexpected transaction: %+v", dto)
		}

		w := doJSON(t, s, http.MethodGet, "/api/transactions?category=groc", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("query returned %d", w.Code)
		}
		var list []transactionDTO
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(list) != 1 || list[0].ID != dto.ID {
			t.Errorf("unexpected query result: %+v", list)
		}
	})

	t.Run("invalid type is rejected", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
			"amount": "10",
			"type":   "transfer",
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", w.Code)
		}
	})

	t.Run("unparsable amount is accepted and defaulted", func(t *testing.T) {
		dto := createTransaction(t, s, map[string]any{
			"amount":   "lots",
			"category": "Misc",
			"type":     "expense",
		})
		if dto.AmountCents != 0 || !dto.AmountDefaulted {
			t.Errorf("expected a defaulted zero amount, got %+v", dto)
		}
	})

	t.Run("update", func(t *testing.T) {
		dto := createTransaction(t, s, map[string]any{
			"amount": "10", "category": "Transport", "type": "expense",
		})

		w := doJSON(t, s, http.MethodPut, "/api/transactions/"+dto.ID, map[string]any{
			"amount": "20", "category": "Transport", "type": "expense",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("update returned %d: %s", w.Code, w.Body.String())
		}
		var updated transactionDTO
		if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if updated.AmountCents != 2000 || updated.ID != dto.ID {
			t.Errorf("unexpected updated transaction: %+v", updated)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPut, "/api/transactions/00000000-0000-0000-0000-000000000001", map[string]any{
			"amount": "20", "type": "expense",
		})
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		dto := createTransaction(t, s, map[string]any{
			"amount": "5", "category": "Misc", "type": "expense",
		})

		w := doJSON(t, s, http.MethodDelete, "/api/transactions/"+dto.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", w.Code)
		}
		w = doJSON(t, s, http.MethodDelete, "/api/transactions/"+dto.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204 on repeat delete, got %d", w.Code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doJSON(t, s, http.MethodDelete, "/api/transactions/not-a-uuid", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("method check", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPatch, "/api/transactions", nil)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})
}

func TestDashboardEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{
		"name": "Groceries", "limit_cents": 1000,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("set budget returned %d: %s", w.Code, w.Body.String())
	}

	createTransaction(t, s, map[string]any{
		"amount": "20.00", "category": "Groceries", "date": "2026-08-10", "type": "expense",
	})
	createTransaction(t, s, map[string]any{
		"amount": "5.00", "category": "Dining", "date": "2026-08-11", "type": "expense",
	})

	t.Run("budget overview with unbudgeted", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/api/budgets", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("overview returned %d", w.Code)
		}
		var resp struct {
			Budgets    []budgetDTO `json:"budgets"`
			Unbudgeted []string    `json:"unbudgeted"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Budgets) != 1 || resp.Budgets[0].SpentCents != 2000 {
			t.Errorf("unexpected budgets: %+v", resp.Budgets)
		}
		if len(resp.Unbudgeted) != 1 || resp.Unbudgeted[0] != "Dining" {
			t.Errorf("unexpected unbudgeted list: %v", resp.Unbudgeted)
		}
	})

	t.Run("empty budget name rejected", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{
			"name": "  ", "limit_cents": 1000,
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", w.Code)
		}
	})

	t.Run("series", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/api/series", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("series returned %d", w.Code)
		}
		var buckets []seriesBucketDTO
		if err := json.Unmarshal(w.Body.Bytes(), &buckets); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(buckets) != 6 {
			t.Fatalf("expected 6 buckets, got %d", len(buckets))
		}
		if buckets[5].ExpenseCents != 2500 {
			t.Errorf("expected 2500 in the reference bucket, got %d", buckets[5].ExpenseCents)
		}
	})

	t.Run("breakdown chart floor", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{
			"name": "Transport", "limit_cents": 5000,
		})
		if w.Code != http.StatusNoContent {
			t.Fatalf("set budget returned %d", w.Code)
		}

		w = doJSON(t, s, http.MethodGet, "/api/breakdown", nil)
		var exact []breakdownEntryDTO
		if err := json.Unmarshal(w.Body.Bytes(), &exact); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if exact[1].Name != "Transport" || exact[1].AmountCents != 0 {
			t.Errorf("expected exact zero, got %+v", exact[1])
		}

		w = doJSON(t, s, http.MethodGet, "/api/breakdown?chart=true", nil)
		var chart []breakdownEntryDTO
		if err := json.Unmarshal(w.Body.Bytes(), &chart); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if chart[1].AmountCents != 1 {
			t.Errorf("expected the chart placeholder, got %+v", chart[1])
		}
	})

	t.Run("alert", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/api/alert", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("alert returned %d", w.Code)
		}
		var resp struct {
			Alert *lossAlertDTO `json:"alert"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Alert == nil {
			t.Fatal("expected an active alert: only expenses were recorded")
		}
		if resp.Alert.TotalLossCents != 2500 {
			t.Errorf("expected loss of 2500 cents, got %d", resp.Alert.TotalLossCents)
		}
		if len(resp.Alert.OverBudgetCategories) != 1 || resp.Alert.OverBudgetCategories[0] != "Groceries" {
			t.Errorf("unexpected causes: %v", resp.Alert.OverBudgetCategories)
		}
	})

	t.Run("remove budget", func(t *testing.T) {
		w := doJSON(t, s, http.MethodDelete, "/api/budgets/Transport", nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", w.Code)
		}
	})

	t.Run("health", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/healthz", nil)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestQueryCachingAcrossMutations(t *testing.T) {
	s := newTestServer(t)

	createTransaction(t, s, map[string]any{
		"amount": "10", "category": "Groceries", "date": "2026-08-10", "type": "expense",
	})

	w := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	var first []transactionDTO
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(first))
	}

	// a mutation changes the generation, so the cached result cannot be
	// served again
	createTransaction(t, s, map[string]any{
		"amount": "20", "category": "Transport", "date": "2026-08-11", "type": "expense",
	})

	w = doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	var second []transactionDTO
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(second) != 2 {
		t.Errorf("expected 2 transactions after the mutation, got %d", len(second))
	}
}

func TestAlertExpiryOverHTTP(t *testing.T) {
	logger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	eng := engine.New(engine.Options{
		WindowMonths: 6,
		LossAlertTTL: time.Minute,
		Clock:        func() time.Time { return clock() },
		Logger:       logger,
	})
	s := NewServer(":0", eng, time.Minute, logger)
	defer func() { s.limiter.stop(); s.queryCache.Stop(); s.seriesCache.Stop() }()

	createTransaction(t, s, map[string]any{
		"amount": "10", "category": "Misc", "date": "2026-08-10", "type": "expense",
	})

	w := doJSON(t, s, http.MethodGet, "/api/alert", nil)
	var resp struct {
		Alert *lossAlertDTO `json:"alert"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Alert == nil {
		t.Fatal("expected an active alert")
	}

	now = now.Add(2 * time.Minute)
	w = doJSON(t, s, http.MethodGet, "/api/alert", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Alert != nil {
		t.Error("expected the alert to expire")
	}
}
