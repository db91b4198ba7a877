package engine

import "ledger/internal/core"

// chartFloorCents is the placeholder substituted for zero-amount entries so
// a proportional chart can still render a slice. It exists only in the chart
// view; the underlying Spent stays exactly zero inside the engine.
const chartFloorCents = 1

// BreakdownFromBudgets derives {name, amount} entries from the configured
// budget categories' spent totals. Deriving from BudgetCategory.Spent rather
// than re-summing transactions keeps a single source of derived truth.
func BreakdownFromBudgets(categories []core.BudgetCategory) []core.CategoryBreakdownEntry {
	out := make([]core.CategoryBreakdownEntry, 0, len(categories))
	for _, c := range categories {
		out = append(out, core.CategoryBreakdownEntry{Name: c.Name, Amount: c.Spent})
	}
	return out
}

// ChartSlices applies the zero-value placeholder at the presentation
// boundary, returning a copy.
func ChartSlices(entries []core.CategoryBreakdownEntry) []core.CategoryBreakdownEntry {
	out := make([]core.CategoryBreakdownEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Amount.IsZero() {
			out[i].Amount = core.Money{Cents: chartFloorCents}
		}
	}
	return out
}
