package engine

import (
	"sort"
	"strings"
	"time"

	"ledger/internal/core"
)

// Filter selects transactions. Zero-valued fields leave that dimension
// unrestricted; the predicate is the conjunction of all set fields.
type Filter struct {
	Category string // case-insensitive substring match on category
	Notes    string // case-insensitive substring match on notes
	From     *time.Time
	To       *time.Time // inclusive on both ends
}

func (f Filter) matches(t core.Transaction) bool {
	if f.Category != "" && !containsFold(t.Category, f.Category) {
		return false
	}
	if f.Notes != "" && !containsFold(t.Notes, f.Notes) {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	return true
}

// FilterTransactions returns the matching transactions sorted by date
// descending; equal dates keep their relative insertion order. The input
// slice is never modified, so the function is safe against store snapshots
// and idempotent for an unchanged input.
func FilterTransactions(txs []core.Transaction, f Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
