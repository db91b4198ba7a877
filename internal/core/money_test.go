package core

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cents     int64
		defaulted bool
	}{
		{"integer", "150", 15000, false},
		{"dot decimal", "12.34", 1234, false},
		{"comma decimal", "12,34", 1234, false},
		{"rounds half up", "12.345", 1235, false},
		{"rounds down", "12.344", 1234, false},
		{"zero", "0", 0, false},
		{"explicit zero decimal", "0.00", 0, false},
		{"leading whitespace", "  42.50", 4250, false},
		{"not a number", "not-a-number", 0, true},
		{"empty", "", 0, true},
		{"negative coerced", "-10", 0, true},
		{"two separators", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, defaulted := ParseAmount(tt.input)
			if m.Cents != tt.cents {
				t.Errorf("ParseAmount(%q) cents = %d, want %d", tt.input, m.Cents, tt.cents)
			}
			if defaulted != tt.defaulted {
				t.Errorf("ParseAmount(%q) defaulted = %v, want %v", tt.input, defaulted, tt.defaulted)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1500}
	b := Money{Cents: 700}

	if got := a.Add(b); got.Cents != 2200 {
		t.Errorf("Add = %d, want 2200", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -800 {
		t.Errorf("Sub = %d, want -800", got.Cents)
	}
	if got := b.Sub(a).Abs(); got.Cents != 800 {
		t.Errorf("Abs = %d, want 800", got.Cents)
	}
	if !b.Sub(a).Negative() {
		t.Error("Sub(a) should be negative")
	}
	if !(Money{}).IsZero() {
		t.Error("zero Money should report IsZero")
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 1234}).String(); got != "12.34" {
		t.Errorf("String = %q, want %q", got, "12.34")
	}
	if got := (Money{Cents: 5}).String(); got != "0.05" {
		t.Errorf("String = %q, want %q", got, "0.05")
	}
	if got := (Money{Cents: 1234}).Units(); got != 12.34 {
		t.Errorf("Units = %v, want 12.34", got)
	}
}
