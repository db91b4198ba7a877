package engine

import (
	"testing"
	"time"

	"ledger/internal/core"
)

type movableClock struct {
	t time.Time
}

func (c *movableClock) now() time.Time          { return c.t }
func (c *movableClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLossDetector(t *testing.T) {
	base := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("clear while net is non-negative", func(t *testing.T) {
		d := NewLossDetector(time.Minute, fixedClock(base))

		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 1000}, nil)
		if d.Current() != nil {
			t.Error("breaking even must not raise an alert")
		}

		d.Evaluate(core.Money{Cents: 2000}, core.Money{Cents: 1000}, nil)
		if d.Current() != nil {
			t.Error("positive net must not raise an alert")
		}
	})

	t.Run("raises on negative net with cause snapshot", func(t *testing.T) {
		d := NewLossDetector(time.Minute, fixedClock(base))

		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 1500}, []string{"Groceries"})

		a := d.Current()
		if a == nil {
			t.Fatal("expected an active alert")
		}
		if a.TotalLoss.Cents != 500 {
			t.Errorf("expected loss 500, got %d", a.TotalLoss.Cents)
		}
		if len(a.OverBudgetCategories) != 1 || a.OverBudgetCategories[0] != "Groceries" {
			t.Errorf("unexpected causes: %v", a.OverBudgetCategories)
		}
	})

	t.Run("only the loss amount tracks while alerting", func(t *testing.T) {
		d := NewLossDetector(time.Minute, fixedClock(base))

		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 1500}, []string{"Groceries"})
		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 2500}, []string{"Groceries", "Transport"})

		a := d.Current()
		if a == nil {
			t.Fatal("expected an active alert")
		}
		if a.TotalLoss.Cents != 1500 {
			t.Errorf("expected loss 1500, got %d", a.TotalLoss.Cents)
		}
		if len(a.OverBudgetCategories) != 1 {
			t.Errorf("cause snapshot must not change while alerting, got %v", a.OverBudgetCategories)
		}
	})

	t.Run("recovery clears and a relapse resnapshots", func(t *testing.T) {
		d := NewLossDetector(time.Minute, fixedClock(base))

		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 1500}, []string{"Groceries"})
		d.Evaluate(core.Money{Cents: 3000}, core.Money{Cents: 1500}, nil)
		if d.Current() != nil {
			t.Fatal("recovery must clear the alert")
		}

		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 1200}, []string{"Transport"})
		a := d.Current()
		if a == nil {
			t.Fatal("expected a fresh alert")
		}
		if len(a.OverBudgetCategories) != 1 || a.OverBudgetCategories[0] != "Transport" {
			t.Errorf("expected a fresh cause snapshot, got %v", a.OverBudgetCategories)
		}
	})

	t.Run("alert expires after the ttl", func(t *testing.T) {
		clock := &movableClock{t: base}
		d := NewLossDetector(time.Minute, clock.now)

		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 1500}, nil)
		if d.Current() == nil {
			t.Fatal("expected an active alert")
		}

		clock.advance(2 * time.Minute)
		if d.Current() != nil {
			t.Error("expected the alert to expire")
		}

		// still losing money: the next evaluation raises a new alert
		d.Evaluate(core.Money{Cents: 1000}, core.Money{Cents: 1500}, []string{"Groceries"})
		a := d.Current()
		if a == nil {
			t.Fatal("expected a new alert after expiry")
		}
		if !a.CreatedAt.Equal(clock.t) {
			t.Errorf("expected CreatedAt %v, got %v", clock.t, a.CreatedAt)
		}
	})

	t.Run("current returns an independent copy", func(t *testing.T) {
		d := NewLossDetector(time.Minute, fixedClock(base))
		d.Evaluate(core.Money{Cents: 0}, core.Money{Cents: 500}, []string{"Groceries"})

		a := d.Current()
		a.OverBudgetCategories[0] = "mutated"
		a.TotalLoss = core.Money{Cents: 9999}

		b := d.Current()
		if b.OverBudgetCategories[0] != "Groceries" || b.TotalLoss.Cents != 500 {
			t.Error("mutating a returned alert must not affect the detector")
		}
	})
}
