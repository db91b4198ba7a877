package engine

import (
	"time"

	"ledger/internal/core"
)

// ProjectMonthlySeries buckets transactions into a fixed window of
// windowMonths calendar months ending at the month of reference. Bucket 0 is
// the oldest month, the last bucket is the reference month.
//
// Transactions dated outside the window are silently excluded: the window is
// a fixed calendar span, not a rolling one, and out-of-window data is a
// reporting-scope limitation rather than an error.
func ProjectMonthlySeries(txs []core.Transaction, reference time.Time, windowMonths int) []core.TimeSeriesBucket {
	if windowMonths <= 0 {
		return nil
	}

	buckets := make([]core.TimeSeriesBucket, windowMonths)
	for i := range buckets {
		buckets[i].Month = i
	}

	start := monthStart(reference).AddDate(0, -(windowMonths - 1), 0)
	for _, t := range txs {
		idx := monthsSince(start, t.Date)
		if idx < 0 || idx >= windowMonths {
			continue
		}
		switch t.Type {
		case core.Income:
			buckets[idx].IncomeSum = buckets[idx].IncomeSum.Add(t.Amount)
		case core.Expense:
			buckets[idx].ExpenseSum = buckets[idx].ExpenseSum.Add(t.Amount)
		}
	}

	return buckets
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthsSince(start, t time.Time) int {
	return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
}
