package engine

import (
	"sort"

	"ledger/internal/core"
)

// BudgetAggregator keeps the configured budget categories and their derived
// spent totals. Spent is never patched incrementally: Recompute rebuilds it
// wholesale from the current transaction set, which keeps the invariant
// "Spent equals the expense sum for that category" trivially true.
type BudgetAggregator struct {
	categories map[string]core.BudgetCategory
}

func NewBudgetAggregator() *BudgetAggregator {
	return &BudgetAggregator{
		categories: make(map[string]core.BudgetCategory),
	}
}

// Set adds or replaces a budget category configuration. The derived Spent of
// an existing category is preserved until the next recomputation.
func (b *BudgetAggregator) Set(c core.BudgetCategory) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if existing, ok := b.categories[c.Name]; ok {
		c.Spent = existing.Spent
	} else {
		c.Spent = core.Money{}
	}
	b.categories[c.Name] = c
	return nil
}

// Remove drops a category configuration. Removing an unknown name is a no-op.
func (b *BudgetAggregator) Remove(name string) {
	delete(b.categories, name)
}

// Recompute derives Spent for every configured category: one pass building a
// name->sum map over expense transactions, then a merge into the configured
// set. Categories seen in transactions but never configured stay invisible
// here; Unbudgeted exposes them to callers who want the gap.
func (b *BudgetAggregator) Recompute(txs []core.Transaction) {
	sums := make(map[string]core.Money, len(b.categories))
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}

	for name, c := range b.categories {
		c.Spent = sums[name]
		b.categories[name] = c
	}
}

// Overview returns the configured categories sorted by name.
func (b *BudgetAggregator) Overview() []core.BudgetCategory {
	out := make([]core.BudgetCategory, 0, len(b.categories))
	for _, c := range b.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OverBudget returns the names of categories whose spend exceeds the limit,
// sorted by name.
func (b *BudgetAggregator) OverBudget() []string {
	var names []string
	for name, c := range b.categories {
		if c.Spent.Cents > c.Limit.Cents {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Unbudgeted returns expense categories present in the transaction set with
// no configured budget. Their spend contributes nothing to Overview, which
// is a deliberate gap the caller can detect with this helper.
func (b *BudgetAggregator) Unbudgeted(txs []core.Transaction) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range txs {
		if t.Type != core.Expense || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		if _, ok := b.categories[t.Category]; !ok {
			names = append(names, t.Category)
		}
	}
	sort.Strings(names)
	return names
}
