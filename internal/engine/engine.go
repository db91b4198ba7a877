// Package engine implements the transaction ledger and its derived
// aggregates: per-category budgets, monthly income/expense series, category
// breakdowns and the loss alert. Mutations flow through a single pipeline —
// normalize, store, recompute every view, notify collaborators — so the
// aggregates always reflect the current transaction set.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

// Change describes one successful mutation. Transaction carries the record
// as stored (for OpDelete only its ID survives); Snapshot is the full
// transaction set after the mutation, in insertion order.
type Change struct {
	Op          core.ChangeOp
	Transaction core.Transaction
	Snapshot    []core.Transaction
}

// ChangeListener is notified after every successful mutation. Notification
// is fire-and-forget: failures are logged and never propagate to the
// mutating caller.
type ChangeListener interface {
	OnChange(ctx context.Context, change Change) error
}

// TransactionLoader seeds the engine at startup, typically from persistence.
type TransactionLoader interface {
	LoadAll(ctx context.Context) ([]core.Transaction, error)
}

// Options configures an Engine. The zero value gets usable defaults.
type Options struct {
	WindowMonths int           // analytics window size, default 6
	LossAlertTTL time.Duration // default DefaultLossAlertTTL
	Clock        func() time.Time
	Logger       *applog.Logger
}

// DefaultWindowMonths is the analytics window used when none is configured.
const DefaultWindowMonths = 6

// Engine owns the store and every derived view and exposes the ledger API.
// Each operation behaves atomically from the caller's perspective: the
// recompute pipeline runs to completion inside the mutating call.
type Engine struct {
	mu        sync.Mutex
	store     *Store
	validator *Validator
	budgets   *BudgetAggregator
	loss      *LossDetector
	listeners []ChangeListener
	logger    *applog.Logger
	now       func() time.Time

	windowMonths int

	// derived views, rebuilt wholesale after every mutation
	series    []core.TimeSeriesBucket
	breakdown []core.CategoryBreakdownEntry
}

func New(opts Options) *Engine {
	if opts.WindowMonths <= 0 {
		opts.WindowMonths = DefaultWindowMonths
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	e := &Engine{
		store:        NewStore().WithClock(opts.Clock),
		validator:    NewValidator(opts.Clock),
		budgets:      NewBudgetAggregator(),
		loss:         NewLossDetector(opts.LossAlertTTL, opts.Clock),
		logger:       opts.Logger.WithComponent(applog.ComponentEngine),
		now:          opts.Clock,
		windowMonths: opts.WindowMonths,
	}
	e.store.Subscribe(e.recompute)
	e.recompute()
	return e
}

// Subscribe registers a change listener. Not safe to call concurrently with
// mutations; register listeners during startup.
func (e *Engine) Subscribe(l ChangeListener) {
	e.listeners = append(e.listeners, l)
}

// Seed loads the initial transaction set from the persistence collaborator.
// Listeners are not notified: seeding restores state rather than changing it.
func (e *Engine) Seed(ctx context.Context, loader TransactionLoader) error {
	txs, err := loader.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load initial transactions: %w", err)
	}
	e.store.Seed(txs)
	e.recompute()
	e.logger.InfoContext(ctx, "Ledger seeded", applog.FieldCount, len(txs))
	return nil
}

// AddTransaction normalizes raw input, stores it and returns the stored
// record. Only an invalid transaction type can fail.
func (e *Engine) AddTransaction(ctx context.Context, raw RawTransaction) (core.Transaction, error) {
	t, err := e.validator.Normalize(raw)
	if err != nil {
		return core.Transaction{}, err
	}

	stored := e.store.Add(t)
	e.logger.InfoContext(ctx, "Transaction added",
		applog.FieldTransactionID, stored.ID,
		applog.FieldType, stored.Type,
		applog.FieldCategory, stored.Category,
		applog.FieldAmountCents, stored.Amount.Cents)

	e.notifyListeners(ctx, Change{Op: core.OpAdd, Transaction: stored, Snapshot: e.store.All()})
	return stored, nil
}

// UpdateTransaction replaces the record for id with a re-normalized version
// of raw, exactly as on creation. Returns core.ErrTransactionNotFound for an
// unknown id; updating never creates a record.
func (e *Engine) UpdateTransaction(ctx context.Context, id uuid.UUID, raw RawTransaction) (core.Transaction, error) {
	t, err := e.validator.Normalize(raw)
	if err != nil {
		return core.Transaction{}, err
	}

	stored, err := e.store.Update(id, t)
	if err != nil {
		return core.Transaction{}, err
	}
	e.logger.InfoContext(ctx, "Transaction updated",
		applog.FieldTransactionID, stored.ID,
		applog.FieldCategory, stored.Category,
		applog.FieldAmountCents, stored.Amount.Cents)

	e.notifyListeners(ctx, Change{Op: core.OpUpdate, Transaction: stored, Snapshot: e.store.All()})
	return stored, nil
}

// DeleteTransaction removes the record if present. Deleting an unknown id is
// a no-op and leaves every aggregate untouched.
func (e *Engine) DeleteTransaction(ctx context.Context, id uuid.UUID) {
	if !e.store.Remove(id) {
		return
	}
	e.logger.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id)

	e.notifyListeners(ctx, Change{
		Op:          core.OpDelete,
		Transaction: core.Transaction{ID: id},
		Snapshot:    e.store.All(),
	})
}

// QueryTransactions applies the filter to a snapshot of the store and
// returns the matches sorted by date descending. The store is not mutated.
func (e *Engine) QueryTransactions(f Filter) []core.Transaction {
	return FilterTransactions(e.store.All(), f)
}

// SetBudget adds or replaces a budget category configuration and recomputes
// the derived views so its Spent is current immediately.
func (e *Engine) SetBudget(c core.BudgetCategory) error {
	e.mu.Lock()
	err := e.budgets.Set(c)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.recompute()
	return nil
}

// RemoveBudget drops a budget category configuration.
func (e *Engine) RemoveBudget(name string) {
	e.mu.Lock()
	e.budgets.Remove(name)
	e.mu.Unlock()
	e.recompute()
}

// BudgetOverview returns the configured categories with their derived spend,
// sorted by name.
func (e *Engine) BudgetOverview() []core.BudgetCategory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.budgets.Overview()
}

// UnbudgetedCategories lists expense categories with no configured budget.
func (e *Engine) UnbudgetedCategories() []string {
	txs := e.store.All()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.budgets.Unbudgeted(txs)
}

// MonthlySeries returns the income/expense series. The configured window is
// served from the precomputed view; other window sizes are projected fresh
// from the same snapshot semantics.
func (e *Engine) MonthlySeries(windowMonths int) []core.TimeSeriesBucket {
	if windowMonths <= 0 {
		windowMonths = e.windowMonths
	}
	if windowMonths != e.windowMonths {
		return ProjectMonthlySeries(e.store.All(), e.now(), windowMonths)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.TimeSeriesBucket, len(e.series))
	copy(out, e.series)
	return out
}

// CategoryBreakdown returns the per-category totals with exact amounts; a
// category that spent nothing reports exactly zero.
func (e *Engine) CategoryBreakdown() []core.CategoryBreakdownEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.CategoryBreakdownEntry, len(e.breakdown))
	copy(out, e.breakdown)
	return out
}

// ChartBreakdown is CategoryBreakdown with the zero-slice placeholder
// applied for proportional rendering.
func (e *Engine) ChartBreakdown() []core.CategoryBreakdownEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ChartSlices(e.breakdown)
}

// LossAlert returns the active alert or nil. Non-nil exactly while the last
// recomputation observed negative net savings and the TTL has not elapsed.
func (e *Engine) LossAlert() *core.LossAlert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loss.Current()
}

// Generation mirrors the store's mutation counter for cache keying.
func (e *Engine) Generation() uint64 {
	return e.store.Generation()
}

// recompute rebuilds every derived view from the current transaction set.
// It runs synchronously as a store observer, inside the mutating call.
func (e *Engine) recompute() {
	txs := e.store.All()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.budgets.Recompute(txs)
	e.series = ProjectMonthlySeries(txs, e.now(), e.windowMonths)
	e.breakdown = BreakdownFromBudgets(e.budgets.Overview())

	var income, expense core.Money
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	e.loss.Evaluate(income, expense, e.budgets.OverBudget())
}

func (e *Engine) notifyListeners(ctx context.Context, change Change) {
	for _, l := range e.listeners {
		if err := l.OnChange(ctx, change); err != nil {
			e.logger.ErrorContext(ctx, "Change listener failed",
				applog.FieldOperation, change.Op,
				applog.FieldError, err)
		}
	}
}
