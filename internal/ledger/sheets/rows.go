package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
)

// Column layouts, one row per record below a header row.
var (
	transactionHeader = []any{"ID", "Data", "Tipo", "Descrição", "Categoria", "Pagamento", "Valor", "Fixa", "Criado em"}
	goalHeader        = []any{"ID", "Descrição", "Tipo", "Meta", "Atual", "Prazo", "Criado em"}
	sessionHeader     = []any{"ID", "Data", "Receita", "Despesas", "Corridas", "Horas", "Km", "Notas", "Criado em"}
)

// lastColumn returns the A1 column letter for a header of n columns.
func lastColumn(n int) string {
	return string(rune('A' + n - 1))
}

func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.String(),
		string(tx.Type),
		tx.Description,
		tx.Category,
		tx.PaymentMethod,
		tx.Amount.StringFixed(2),
		strconv.FormatBool(tx.Fixed),
		formatTime(tx.CreatedAt),
	}
}

func parseTransactionRow(row []any) (core.Transaction, error) {
	cols := toStrings(row, len(transactionHeader))
	date, err := core.ParseDate(cols[1])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseAmount(cols[6])
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:            cols[0],
		Date:          date,
		Type:          core.TransactionType(strings.ToLower(cols[2])),
		Description:   cols[3],
		Category:      cols[4],
		PaymentMethod: cols[5],
		Amount:        amount,
		Fixed:         parseBool(cols[7]),
		CreatedAt:     parseTime(cols[8]),
	}, nil
}

func goalRow(g core.Goal) []any {
	return []any{
		g.ID,
		g.Description,
		string(g.Type),
		g.Target.StringFixed(2),
		g.Current.StringFixed(2),
		g.Deadline.String(),
		formatTime(g.CreatedAt),
	}
}

func parseGoalRow(row []any) (core.Goal, error) {
	cols := toStrings(row, len(goalHeader))
	target, err := parseAmount(cols[3])
	if err != nil {
		return core.Goal{}, err
	}
	current, err := parseAmount(cols[4])
	if err != nil {
		return core.Goal{}, err
	}
	deadline, err := core.ParseDate(cols[5])
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		ID:          cols[0],
		Description: cols[1],
		Type:        core.GoalType(strings.ToLower(cols[2])),
		Target:      target,
		Current:     current,
		Deadline:    deadline,
		CreatedAt:   parseTime(cols[6]),
	}, nil
}

func sessionRow(s core.DriverSession) []any {
	return []any{
		s.ID,
		s.Date.String(),
		s.Revenue.StringFixed(2),
		s.Expenses.StringFixed(2),
		s.Trips,
		s.Hours.String(),
		s.Km.String(),
		s.Notes,
		formatTime(s.CreatedAt),
	}
}

func parseSessionRow(row []any) (core.DriverSession, error) {
	cols := toStrings(row, len(sessionHeader))
	date, err := core.ParseDate(cols[1])
	if err != nil {
		return core.DriverSession{}, err
	}
	s := core.DriverSession{ID: cols[0], Date: date, Notes: cols[7], CreatedAt: parseTime(cols[8])}
	if cols[4] != "" {
		trips, err := strconv.Atoi(cols[4])
		if err != nil {
			return core.DriverSession{}, fmt.Errorf("trips %q: %w", cols[4], core.ErrInvalidAmount)
		}
		s.Trips = trips
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&s.Revenue, cols[2]},
		{&s.Expenses, cols[3]},
		{&s.Hours, cols[5]},
		{&s.Km, cols[6]},
	} {
		v, err := parseAmount(f.src)
		if err != nil {
			return core.DriverSession{}, err
		}
		*f.dst = v
	}
	return s, nil
}

// toStrings pads the row to n columns; Sheets drops trailing empty cells.
func toStrings(in []any, n int) []string {
	out := make([]string, max(n, len(in)))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// parseAmount accepts both the plain "1480.00" this store writes and the
// "R$ 1.480,00" a person may type into the sheet. Empty is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}
	return core.ParseAmount(s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "sim", "yes", "x":
		return true
	default:
		return false
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// findRow returns the 1-based sheet row holding id in the first column, or
// 0. values is the column read from row 1.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}
