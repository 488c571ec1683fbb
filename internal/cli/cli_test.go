package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatSpan(t *testing.T) {
	tests := []struct {
		months int
		want   string
	}{
		{0, "0m"},
		{-3, "0m"},
		{5, "5m"},
		{12, "1y"},
		{27, "2y 3m"},
	}
	for _, tt := range tests {
		if got := FormatSpan(tt.months); got != tt.want {
			t.Errorf("FormatSpan(%d) = %q, want %q", tt.months, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(decimal.RequireFromString("1234.5")); got != "R$ 1.234,50" {
		t.Errorf("FormatMoney() = %q, want %q", got, "R$ 1.234,50")
	}
	if got := FormatPerKm(decimal.RequireFromString("0.9")); got != "R$ 0,90/km" {
		t.Errorf("FormatPerKm() = %q, want %q", got, "R$ 0,90/km")
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Breakdown",
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Farmácia", "R$ 45,50"},
			{SeparatorRow},
			{"Total", "R$ 1.045,50"},
		},
	})

	for _, want := range []string{"Breakdown", "Farmácia", "R$ 1.045,50", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTable() missing %q in:\n%s", want, out)
		}
	}

	// title, top, header, header rule, row, separator, row, bottom
	if got := strings.Count(out, "\n"); got != 8 {
		t.Errorf("RenderTable() has %d lines, want 8", got)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestColumnWidths_CountsDisplayCells(t *testing.T) {
	widths := columnWidths(Table{Rows: [][]string{{"Farmácia", "1"}, {"ab", "12345"}}})
	if widths[0] != 8 || widths[1] != 5 {
		t.Errorf("columnWidths() = %v, want [8 5]", widths)
	}
}

func TestRenderProgressBar_Clamps(t *testing.T) {
	if got := RenderProgressBar(1.7, 10); !strings.Contains(got, "100.0%") {
		t.Errorf("RenderProgressBar(1.7) = %q, want 100.0%%", got)
	}
	if got := RenderProgressBar(-1, 10); !strings.Contains(got, "0.0%") {
		t.Errorf("RenderProgressBar(-1) = %q, want 0.0%%", got)
	}
}
