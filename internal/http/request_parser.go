// This file parses and sanitizes incoming request data: JSON payloads for
// mutations, query parameters for the transaction filter.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ledger/internal/engine"
)

// transactionPayload is the mutation body. Amount stays a raw string so the
// engine's lenient parsing policy applies instead of JSON number coercion.
type transactionPayload struct {
	Amount     string `json:"amount"`
	Category   string `json:"category"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
	ReceiptRef string `json:"receipt_ref"`
	Type       string `json:"type"`
}

func parseTransactionPayload(r *http.Request) (engine.RawTransaction, error) {
	var p transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return engine.RawTransaction{}, fmt.Errorf("decode payload: %w", err)
	}

	raw := engine.RawTransaction{
		Amount:     strings.TrimSpace(p.Amount),
		Category:   sanitizeInput(p.Category),
		Notes:      sanitizeInput(p.Notes),
		ReceiptRef: sanitizeInput(p.ReceiptRef),
		Type:       strings.TrimSpace(p.Type),
	}

	if d := strings.TrimSpace(p.Date); d != "" {
		date, err := parseDate(d)
		if err != nil {
			return engine.RawTransaction{}, fmt.Errorf("invalid date %q", p.Date)
		}
		raw.Date = date
	}

	return raw, nil
}

type budgetPayload struct {
	Name                 string `json:"name"`
	LimitCents           int64  `json:"limit_cents"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

func parseBudgetPayload(r *http.Request) (budgetPayload, error) {
	var p budgetPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return budgetPayload{}, fmt.Errorf("decode payload: %w", err)
	}
	p.Name = sanitizeInput(p.Name)
	return p, nil
}

// parseFilter builds the transaction filter from query parameters. A bad
// date is an error; everything else left empty simply stays unrestricted.
func parseFilter(r *http.Request) (engine.Filter, error) {
	q := r.URL.Query()
	f := engine.Filter{
		Category: sanitizeInput(q.Get("category")),
		Notes:    sanitizeInput(q.Get("notes")),
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return engine.Filter{}, fmt.Errorf("invalid from date %q", v)
		}
		f.From = &d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return engine.Filter{}, fmt.Errorf("invalid to date %q", v)
		}
		f.To = &d
	}

	return f, nil
}

// parseDate accepts RFC3339 timestamps and bare YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseWindowMonths reads the months query parameter; 0 means "use the
// configured window".
func parseWindowMonths(r *http.Request) int {
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
