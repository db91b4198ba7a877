package engine

import (
	"time"

	"ledger/internal/core"
)

// DefaultLossAlertTTL bounds how long a raised alert stays visible without a
// recomputation clearing it first.
const DefaultLossAlertTTL = 5 * time.Minute

// LossDetector is a two-state machine over net savings: Clear and Alerting.
//
// Entering Alerting snapshots the over-budget category names used to compose
// the human-readable cause list. While already Alerting only the loss amount
// tracks subsequent recomputations; the cause snapshot is replaced on the
// next fresh Clear->Alerting transition.
type LossDetector struct {
	ttl   time.Duration
	now   func() time.Time
	alert *core.LossAlert
}

func NewLossDetector(ttl time.Duration, now func() time.Time) *LossDetector {
	if ttl <= 0 {
		ttl = DefaultLossAlertTTL
	}
	if now == nil {
		now = time.Now
	}
	return &LossDetector{ttl: ttl, now: now}
}

// Evaluate runs on every recomputation with the latest totals.
func (d *LossDetector) Evaluate(totalIncome, totalExpense core.Money, overBudget []string) {
	net := totalIncome.Sub(totalExpense)
	if !net.Negative() {
		d.alert = nil
		return
	}

	loss := net.Abs()
	if d.active() {
		d.alert.TotalLoss = loss
		return
	}

	d.alert = &core.LossAlert{
		TotalLoss:            loss,
		OverBudgetCategories: append([]string(nil), overBudget...),
		CreatedAt:            d.now(),
		TTL:                  d.ttl,
	}
}

// Current returns a copy of the alert, or nil when clear or past its TTL.
func (d *LossDetector) Current() *core.LossAlert {
	if !d.active() {
		return nil
	}
	a := *d.alert
	a.OverBudgetCategories = append([]string(nil), d.alert.OverBudgetCategories...)
	return &a
}

func (d *LossDetector) active() bool {
	return d.alert != nil && !d.alert.Expired(d.now())
}
