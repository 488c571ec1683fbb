package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// seriesLength is the number of months in the rolling expense series.
const seriesLength = 6

type RecordType int

const (
	IncomeRecord RecordType = iota + 1
	ExpenseRecord
)

// Record is a transaction as seen by the aggregator. Recurring records have
// no date and count in every period.
type Record struct {
	Description string
	Category    string
	Amount      decimal.Decimal
	Type        RecordType
	Date        string // YYYY-MM-DD, empty when recurring
	Recurring   bool
}

type CategoryAmount struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type SeriesPoint struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// PeriodAggregate is the dashboard summary for one period.
type PeriodAggregate struct {
	Period       string           `json:"period"`
	TotalIncome  decimal.Decimal  `json:"total_income"`
	TotalExpense decimal.Decimal  `json:"total_expense"`
	Balance      decimal.Decimal  `json:"balance"`
	Categories   []CategoryAmount `json:"categories"`
	Series       []SeriesPoint    `json:"series"`
}

func (r Record) in(p Period) bool {
	return r.Recurring || p.Matches(r.Date)
}

// Aggregate reduces records to the totals, category breakdown and rolling
// six month expense series for period. The series ends at the month of now.
func Aggregate(records []Record, period Period, now time.Time) PeriodAggregate {
	income, expense := decimal.Zero, decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, r := range records {
		if !r.in(period) {
			continue
		}
		switch r.Type {
		case IncomeRecord:
			income = income.Add(r.Amount)
		case ExpenseRecord:
			expense = expense.Add(r.Amount)
			byCategory[r.Category] = byCategory[r.Category].Add(r.Amount)
		}
	}

	categories := make([]CategoryAmount, 0, len(byCategory))
	for name, v := range byCategory {
		categories = append(categories, CategoryAmount{Name: name, Value: Round(v)})
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Value.Equal(categories[j].Value) {
			return categories[i].Value.GreaterThan(categories[j].Value)
		}
		return categories[i].Name < categories[j].Name
	})

	return PeriodAggregate{
		Period:       period.Key,
		TotalIncome:  Round(income),
		TotalExpense: Round(expense),
		Balance:      Round(income.Sub(expense)),
		Categories:   categories,
		Series:       ExpenseSeries(records, now),
	}
}

// ExpenseSeries returns recurring plus dated expenses for each of the six
// months ending at now, oldest first.
func ExpenseSeries(records []Record, now time.Time) []SeriesPoint {
	fixed := decimal.Zero
	for _, r := range records {
		if r.Recurring && r.Type == ExpenseRecord {
			fixed = fixed.Add(r.Amount)
		}
	}

	series := make([]SeriesPoint, 0, seriesLength)
	for i := seriesLength - 1; i >= 0; i-- {
		month := monthStart(now, -i)
		p := PeriodOf(month)
		total := fixed
		for _, r := range records {
			if !r.Recurring && r.Type == ExpenseRecord && p.Matches(r.Date) {
				total = total.Add(r.Amount)
			}
		}
		series = append(series, SeriesPoint{
			Key:   p.Key,
			Label: SeriesLabel(month),
			Value: Round(total),
		})
	}
	return series
}

// Session is one driver shift as seen by the aggregator.
type Session struct {
	Date     string
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	Trips    int
	Hours    decimal.Decimal
	Km       decimal.Decimal
}

// DriverMetrics are the period totals and per-unit rates of a driver.
type DriverMetrics struct {
	Period         string          `json:"period"`
	Sessions       int             `json:"sessions"`
	Revenue        decimal.Decimal `json:"revenue"`
	Expenses       decimal.Decimal `json:"expenses"`
	Profit         decimal.Decimal `json:"profit"`
	Trips          int             `json:"trips"`
	Hours          decimal.Decimal `json:"hours"`
	Km             decimal.Decimal `json:"km"`
	RevenuePerTrip decimal.Decimal `json:"revenue_per_trip"`
	RevenuePerHour decimal.Decimal `json:"revenue_per_hour"`
	RevenuePerKm   decimal.Decimal `json:"revenue_per_km"`
	ProfitPerTrip  decimal.Decimal `json:"profit_per_trip"`
	ProfitPerHour  decimal.Decimal `json:"profit_per_hour"`
	ProfitPerKm    decimal.Decimal `json:"profit_per_km"`
}

// perUnit divides for a rate display; a zero or negative divisor yields 0.
func perUnit(total, divisor decimal.Decimal) decimal.Decimal {
	if !divisor.IsPositive() {
		return decimal.Zero
	}
	return Round(total.Div(divisor))
}

// DriverSummary totals the sessions in period and derives per trip, hour
// and km rates.
func DriverSummary(sessions []Session, period Period) DriverMetrics {
	m := DriverMetrics{Period: period.Key}
	revenue, expenses, hours, km := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, s := range sessions {
		if !period.Matches(s.Date) {
			continue
		}
		m.Sessions++
		m.Trips += s.Trips
		revenue = revenue.Add(s.Revenue)
		expenses = expenses.Add(s.Expenses)
		hours = hours.Add(s.Hours)
		km = km.Add(s.Km)
	}
	profit := revenue.Sub(expenses)
	trips := decimal.NewFromInt(int64(m.Trips))

	m.Revenue = Round(revenue)
	m.Expenses = Round(expenses)
	m.Profit = Round(profit)
	m.Hours = Round(hours)
	m.Km = Round(km)
	m.RevenuePerTrip = perUnit(revenue, trips)
	m.RevenuePerHour = perUnit(revenue, hours)
	m.RevenuePerKm = perUnit(revenue, km)
	m.ProfitPerTrip = perUnit(profit, trips)
	m.ProfitPerHour = perUnit(profit, hours)
	m.ProfitPerKm = perUnit(profit, km)
	return m
}
