package engine

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"binary half cent", 1.005, "1.01"},
		{"classic float trap", 2.675, "2.68"},
		{"negative half away from zero", -1.005, "-1.01"},
		{"sum artifact", 0.1 + 0.2, "0.3"},
		{"already rounded", 1480, "1480"},
		{"below half", 0.004, "0"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.in)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("RoundFloat(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundIdempotent(t *testing.T) {
	values := []float64{0, 1.005, 2.675, -3.14159, 123456.789, 0.015, 1e6 / 3, 99.995, -0.005}
	for _, v := range values {
		once := RoundFloat(v)
		twice := RoundFloat(once.InexactFloat64())
		if !once.Equal(twice) {
			t.Errorf("RoundFloat not idempotent for %v: %s then %s", v, once, twice)
		}
		if !Round(once).Equal(once) {
			t.Errorf("Round(%s) changed an already rounded value", once)
		}
		if !once.Equal(once.Truncate(2)) {
			t.Errorf("RoundFloat(%v) = %s has more than 2 decimals", v, once)
		}
	}
}

func TestRoundDecimal(t *testing.T) {
	got := Round(decimal.RequireFromString("10.125"))
	if !got.Equal(decimal.RequireFromString("10.13")) {
		t.Errorf("Round(10.125) = %s, want 10.13", got)
	}
	got = Round(decimal.RequireFromString("-10.125"))
	if !got.Equal(decimal.RequireFromString("-10.13")) {
		t.Errorf("Round(-10.125) = %s, want -10.13", got)
	}
}
