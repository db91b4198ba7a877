package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseTransactionPayload(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		body := `{"amount":"12.50","category":"Groceries","date":"2026-08-15","notes":"weekly","type":"expense"}`
		r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(body))

		raw, err := parseTransactionPayload(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw.Amount != "12.50" || raw.Category != "Groceries" || raw.Type != "expense" {
			t.Errorf("unexpected payload: %+v", raw)
		}
		want := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
		if !raw.Date.Equal(want) {
			t.Errorf("expected date %v, got %v", want, raw.Date)
		}
	})

	t.Run("RFC3339 date", func(t *testing.T) {
		body := `{"amount":"1","date":"2026-08-15T10:30:00Z","type":"income"}`
		r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(body))

		raw, err := parseTransactionPayload(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw.Date.Hour() != 10 {
			t.Errorf("expected timestamp precision, got %v", raw.Date)
		}
	})

	t.Run("missing date stays zero", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(`{"amount":"1","type":"income"}`))
		raw, err := parseTransactionPayload(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !raw.Date.IsZero() {
			t.Errorf("expected zero date, got %v", raw.Date)
		}
	})

	t.Run("malformed date rejects", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(`{"amount":"1","date":"15/08/2026","type":"income"}`))
		if _, err := parseTransactionPayload(r); err == nil {
			t.Error("expected an error for a malformed date")
		}
	})

	t.Run("malformed JSON rejects", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(`{not json`))
		if _, err := parseTransactionPayload(r); err == nil {
			t.Error("expected an error for malformed JSON")
		}
	})

	t.Run("control characters are stripped", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(`{"amount":"1","category":"Gro\u0001ceries","type":"expense"}`))
		raw, err := parseTransactionPayload(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw.Category != "Groceries" {
			t.Errorf("expected sanitized category, got %q", raw.Category)
		}
	})
}

func TestParseFilter(t *testing.T) {
	t.Run("all parameters", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/transactions?category=groc&notes=shop&from=2026-08-01&to=2026-08-31", nil)
		f, err := parseFilter(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Category != "groc" || f.Notes != "shop" {
			t.Errorf("unexpected filter: %+v", f)
		}
		if f.From == nil || f.To == nil {
			t.Fatal("expected both range bounds to be set")
		}
		if f.From.Day() != 1 || f.To.Day() != 31 {
			t.Errorf("unexpected bounds: %v .. %v", f.From, f.To)
		}
	})

	t.Run("no parameters", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/transactions", nil)
		f, err := parseFilter(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Category != "" || f.Notes != "" || f.From != nil || f.To != nil {
			t.Errorf("expected an empty filter, got %+v", f)
		}
	})

	t.Run("bad date rejects", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/transactions?from=yesterday", nil)
		if _, err := parseFilter(r); err == nil {
			t.Error("expected an error for a bad from date")
		}
	})
}

func TestParseWindowMonths(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"?months=12", 12},
		{"?months=0", 0},
		{"?months=-3", 0},
		{"?months=abc", 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/series"+tt.query, nil)
		if got := parseWindowMonths(r); got != tt.want {
			t.Errorf("parseWindowMonths(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("unexpected result %q", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Errorf("newlines must survive, got %q", got)
	}
}
