package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
)

// FormatMoney renders d as "R$ 1.234,56".
func FormatMoney(d decimal.Decimal) string {
	return core.FormatBRL(d)
}

// FormatSpan renders a month count as years and months.
// e.g., 27 -> "2y 3m", 12 -> "1y", 5 -> "5m", 0 -> "0m"
func FormatSpan(months int) string {
	if months <= 0 {
		return "0m"
	}
	years, rem := months/12, months%12
	var parts []string
	if years > 0 {
		parts = append(parts, fmt.Sprintf("%dy", years))
	}
	if rem > 0 {
		parts = append(parts, fmt.Sprintf("%dm", rem))
	}
	return strings.Join(parts, " ")
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatPerKm renders a per-km rate with two decimals.
func FormatPerKm(d decimal.Decimal) string {
	return core.FormatBRL(d) + "/km"
}
