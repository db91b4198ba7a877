package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DefaultCategory is substituted when input carries no category label.
const DefaultCategory = "Others"

type (
	TransactionType string

	// Transaction is the canonical ledger record. It is immutable by
	// replacement: updates swap the whole record for a given ID.
	Transaction struct {
		ID         uuid.UUID
		Amount     Money
		Category   string
		Date       time.Time
		Notes      string
		ReceiptRef string
		Type       TransactionType
		// AmountDefaulted marks amounts coerced to zero from unparsable
		// input, so callers can tell them apart from an explicit zero.
		AmountDefaulted bool
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	// BudgetCategory pairs configuration (Name, Limit,
	// NotificationsEnabled) with the derived Spent total maintained by
	// the budget aggregator.
	BudgetCategory struct {
		Name                 string
		Limit                Money
		Spent                Money
		NotificationsEnabled bool
	}

	// TimeSeriesBucket is one calendar month inside the analytics window.
	TimeSeriesBucket struct {
		Month      int // 0-based index within the window
		IncomeSum  Money
		ExpenseSum Money
	}

	CategoryBreakdownEntry struct {
		Name   string
		Amount Money
	}

	// LossAlert exists only while net savings are negative; it carries
	// the loss amount and the over-budget category names snapshotted
	// when the alert was raised.
	LossAlert struct {
		TotalLoss            Money
		OverBudgetCategories []string
		CreatedAt            time.Time
		TTL                  time.Duration
	}
)

// ChangeOp labels the mutation that produced a ledger change.
type ChangeOp string

const (
	OpAdd    ChangeOp = "add"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

var (
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrEmptyBudgetName        = errors.New("empty budget category name")
	ErrInvalidBudgetLimit     = errors.New("invalid budget limit")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	}
	return false
}

// ParseTransactionType normalizes a raw type label. The type is the one
// input field with no sensible default, so unknown labels are rejected.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidTransactionType
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if strings.TrimSpace(t.Category) == "" {
		return errors.New("empty category")
	}
	return nil
}

func (b BudgetCategory) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyBudgetName
	}
	if b.Limit.Cents < 0 {
		return ErrInvalidBudgetLimit
	}
	return nil
}

// Expired reports whether the alert outlived its time-to-live at now.
func (a LossAlert) Expired(now time.Time) bool {
	return now.Sub(a.CreatedAt) >= a.TTL
}
