package engine

import (
	"strings"
	"time"

	"ledger/internal/core"
)

// RawTransaction is unvalidated caller input. The amount arrives as free
// text so the ledger can apply its lenient parse-or-zero policy instead of
// bouncing partial input back to the caller.
type RawTransaction struct {
	Amount     string
	Category   string
	Date       time.Time
	Notes      string
	ReceiptRef string
	Type       string
}

// Validator normalizes raw input into storable transaction fields. It is the
// only place malformed input is handled; the rest of the engine never
// special-cases it.
type Validator struct {
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Normalize applies the boundary substitutions: an unparsable or negative
// amount becomes zero (flagged via AmountDefaulted), an empty category
// becomes core.DefaultCategory, a missing date becomes the current time.
// Only the transaction type can reject, since it has no sensible default.
func (v *Validator) Normalize(raw RawTransaction) (core.Transaction, error) {
	typ, err := core.ParseTransactionType(raw.Type)
	if err != nil {
		return core.Transaction{}, err
	}

	amount, defaulted := core.ParseAmount(raw.Amount)

	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = core.DefaultCategory
	}

	date := raw.Date
	if date.IsZero() {
		date = v.now()
	}

	return core.Transaction{
		Amount:          amount,
		Category:        category,
		Date:            date,
		Notes:           raw.Notes,
		ReceiptRef:      strings.TrimSpace(raw.ReceiptRef),
		Type:            typ,
		AmountDefaulted: defaulted,
	}, nil
}
