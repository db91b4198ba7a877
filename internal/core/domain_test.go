package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input   string
		want    TransactionType
		wantErr bool
	}{
		{"income", Income, false},
		{"expense", Expense, false},
		{" Expense ", Expense, false},
		{"INCOME", Income, false},
		{"transfer", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransactionType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransactionType) {
					t.Fatalf("expected ErrInvalidTransactionType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		ID:       uuid.New(),
		Amount:   Money{Cents: 1000},
		Category: "Food",
		Date:     time.Now(),
		Type:     Expense,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	t.Run("negative amount", func(t *testing.T) {
		tx := valid
		tx.Amount = Money{Cents: -1}
		if !errors.Is(tx.Validate(), ErrInvalidAmount) {
			t.Error("expected ErrInvalidAmount")
		}
	})

	t.Run("bad type", func(t *testing.T) {
		tx := valid
		tx.Type = "transfer"
		if !errors.Is(tx.Validate(), ErrInvalidTransactionType) {
			t.Error("expected ErrInvalidTransactionType")
		}
	})

	t.Run("zero date", func(t *testing.T) {
		tx := valid
		tx.Date = time.Time{}
		if tx.Validate() == nil {
			t.Error("expected error for zero date")
		}
	})
}

func TestBudgetCategoryValidate(t *testing.T) {
	if err := (BudgetCategory{Name: "Food", Limit: Money{Cents: 50000}}).Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	if !errors.Is((BudgetCategory{Name: "  "}).Validate(), ErrEmptyBudgetName) {
		t.Error("expected ErrEmptyBudgetName")
	}
	if !errors.Is((BudgetCategory{Name: "Food", Limit: Money{Cents: -1}}).Validate(), ErrInvalidBudgetLimit) {
		t.Error("expected ErrInvalidBudgetLimit")
	}
}

func TestLossAlertExpired(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	alert := LossAlert{CreatedAt: created, TTL: time.Minute}

	if alert.Expired(created.Add(30 * time.Second)) {
		t.Error("alert should still be live before TTL")
	}
	if !alert.Expired(created.Add(time.Minute)) {
		t.Error("alert should expire at TTL")
	}
}
