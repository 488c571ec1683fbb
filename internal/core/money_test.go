package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1234.56", "1234.56", true},
		{"1234,56", "1234.56", true},
		{"1.234,56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"R$ 1.480,00", "1480", true},
		{"1.000.000", "1000000", true},
		{" 2.50 ", "2.5", true},
		{"-10,5", "-10.5", true},
		{"abc", "0", false},
		{"1,2,3", "0", false},
		{"", "0", false},
		{".", "0", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if !got.Equal(d(tc.out)) {
			t.Fatalf("%q parsed to %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestParseCents(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"148000", "1480", true},
		{"589", "5.89", true},
		{"R$ 12,34", "12.34", true},
		{"0", "0", true},
		{"", "0", false},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("%q err = %v, ok = %v", tc.in, err, tc.ok)
		}
		if !got.Equal(d(tc.out)) {
			t.Fatalf("%q parsed to %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0", "R$ 0,00"},
		{"5.5", "R$ 5,50"},
		{"1480", "R$ 1.480,00"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-680", "-R$ 680,00"},
	}
	for _, tc := range cases {
		if got := FormatBRL(d(tc.in)); got != tc.out {
			t.Fatalf("FormatBRL(%s) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"number", `1480.5`, "1480.5", false},
		{"plain string", `"1480.50"`, "1480.5", false},
		{"brazilian format", `"1.480,50"`, "1480.5", false},
		{"currency prefix", `"R$ 1.480,00"`, "1480", false},
		{"negative", `-12`, "-12", false},
		{"null", `null`, "0", false},
		{"letters", `"abc"`, "", true},
		{"empty string", `""`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.input), &a)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("UnmarshalJSON(%s) error = %v, want %v", tt.input, err, ErrInvalidAmount)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalJSON(%s) error = %v", tt.input, err)
			}
			if !a.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("UnmarshalJSON(%s) = %v, want %s", tt.input, a.Decimal, tt.want)
			}
		})
	}
}
