package core

import (
	"sort"

	"fincontrol/internal/engine"
)

// Statement is the list of entries shown for a month: every fixed
// transaction plus the dated ones that fall in the period.
type Statement struct {
	Period  string
	Entries []Transaction
}

// BuildStatement selects the transactions visible in period, newest first.
// Fixed transactions have no date and sort after dated ones.
func BuildStatement(txs []Transaction, period engine.Period) Statement {
	entries := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Fixed || period.Matches(t.Date.String()) {
			entries = append(entries, t)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date.Time)
	})
	return Statement{Period: period.Key, Entries: entries}
}
