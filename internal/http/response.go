// Package http exposes the ledger over a JSON API.
//
// This file holds the response envelope helpers shared by all handlers so
// every endpoint serializes errors and payloads the same way.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"ledger/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// transactionDTO is the wire form of a ledger record. The amount travels
// both as cents and as a formatted decimal string so clients never re-derive
// one from the other.
type transactionDTO struct {
	ID              string `json:"id"`
	Amount          string `json:"amount"`
	AmountCents     int64  `json:"amount_cents"`
	AmountDefaulted bool   `json:"amount_defaulted,omitempty"`
	Category        string `json:"category"`
	Date            string `json:"date"`
	Notes           string `json:"notes,omitempty"`
	ReceiptRef      string `json:"receipt_ref,omitempty"`
	Type            string `json:"type"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:              t.ID.String(),
		Amount:          t.Amount.String(),
		AmountCents:     t.Amount.Cents,
		AmountDefaulted: t.AmountDefaulted,
		Category:        t.Category,
		Date:            t.Date.Format(time.RFC3339),
		Notes:           t.Notes,
		ReceiptRef:      t.ReceiptRef,
		Type:            string(t.Type),
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, len(txs))
	for i, t := range txs {
		out[i] = toTransactionDTO(t)
	}
	return out
}

type budgetDTO struct {
	Name                 string `json:"name"`
	Limit                string `json:"limit"`
	LimitCents           int64  `json:"limit_cents"`
	Spent                string `json:"spent"`
	SpentCents           int64  `json:"spent_cents"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

func toBudgetDTO(c core.BudgetCategory) budgetDTO {
	return budgetDTO{
		Name:                 c.Name,
		Limit:                c.Limit.String(),
		LimitCents:           c.Limit.Cents,
		Spent:                c.Spent.String(),
		SpentCents:           c.Spent.Cents,
		NotificationsEnabled: c.NotificationsEnabled,
	}
}

type seriesBucketDTO struct {
	Month        int    `json:"month"`
	Income       string `json:"income"`
	IncomeCents  int64  `json:"income_cents"`
	Expense      string `json:"expense"`
	ExpenseCents int64  `json:"expense_cents"`
}

func toSeriesDTO(buckets []core.TimeSeriesBucket) []seriesBucketDTO {
	out := make([]seriesBucketDTO, len(buckets))
	for i, b := range buckets {
		out[i] = seriesBucketDTO{
			Month:        b.Month,
			Income:       b.IncomeSum.String(),
			IncomeCents:  b.IncomeSum.Cents,
			Expense:      b.ExpenseSum.String(),
			ExpenseCents: b.ExpenseSum.Cents,
		}
	}
	return out
}

type breakdownEntryDTO struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

func toBreakdownDTO(entries []core.CategoryBreakdownEntry) []breakdownEntryDTO {
	out := make([]breakdownEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = breakdownEntryDTO{
			Name:        e.Name,
			Amount:      e.Amount.String(),
			AmountCents: e.Amount.Cents,
		}
	}
	return out
}

type lossAlertDTO struct {
	TotalLoss            string   `json:"total_loss"`
	TotalLossCents       int64    `json:"total_loss_cents"`
	OverBudgetCategories []string `json:"over_budget_categories"`
	CreatedAt            string   `json:"created_at"`
	ExpiresAt            string   `json:"expires_at"`
}

func toLossAlertDTO(a *core.LossAlert) *lossAlertDTO {
	if a == nil {
		return nil
	}
	return &lossAlertDTO{
		TotalLoss:            a.TotalLoss.String(),
		TotalLossCents:       a.TotalLoss.Cents,
		OverBudgetCategories: a.OverBudgetCategories,
		CreatedAt:            a.CreatedAt.Format(time.RFC3339),
		ExpiresAt:            a.CreatedAt.Add(a.TTL).Format(time.RFC3339),
	}
}
