package handler

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney(t *testing.T) {
	tests := map[string]string{
		"13.5":    "13.50",
		"0":       "0.00",
		"10":      "10.00",
		"1.5000":  "1.50",
		"0.0001":  "0.0001",
		"2.12345": "2.12345",
	}
	for in, want := range tests {
		if got := money(decimal.RequireFromString(in)); got != want {
			t.Fatalf("money(%s) = %s, want %s", in, got, want)
		}
	}
}
