package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fincontrol/internal/cli"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
)

var flagPeriod string

var aggregateCmd = &cobra.Command{
	Use:   "aggregate FILE",
	Short: "Summarize a JSON records file for a month or a day",
	Long: `Reads {"transactions": [...], "sessions": [...]} from FILE ("-" for stdin)
and prints the period totals, the category breakdown, the six month expense
series and, when sessions are present, the driver summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVarP(&flagPeriod, "period", "p", "", "YYYY-MM or YYYY-MM-DD (default current month)")
	rootCmd.AddCommand(aggregateCmd)
}

type recordsFile struct {
	Transactions []transactionRecord `json:"transactions"`
	Sessions     []sessionRecord     `json:"sessions"`
}

type transactionRecord struct {
	Description string      `json:"description"`
	Amount      core.Amount `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Fixed       bool        `json:"fixed"`
}

type sessionRecord struct {
	Date     string      `json:"date"`
	Revenue  core.Amount `json:"revenue"`
	Expenses core.Amount `json:"expenses"`
	Trips    int         `json:"trips"`
	Hours    core.Amount `json:"hours"`
	Km       core.Amount `json:"km"`
}

// readRecords decodes and validates a records file. The position of the
// first invalid entry is reported.
func readRecords(r io.Reader) ([]core.Transaction, []core.DriverSession, error) {
	var f recordsFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("decoding records: %w", err)
	}

	txs := make([]core.Transaction, 0, len(f.Transactions))
	for i, rec := range f.Transactions {
		date, err := core.ParseDate(rec.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		tx := core.Transaction{
			Description: strings.TrimSpace(rec.Description),
			Amount:      rec.Amount.Decimal,
			Type:        core.TransactionType(strings.ToLower(strings.TrimSpace(rec.Type))),
			Category:    strings.TrimSpace(rec.Category),
			Date:        date,
			Fixed:       rec.Fixed,
		}
		if err := tx.Validate(); err != nil {
			return nil, nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}

	sessions := make([]core.DriverSession, 0, len(f.Sessions))
	for i, rec := range f.Sessions {
		date, err := core.ParseDate(rec.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("session %d: %w", i+1, err)
		}
		s := core.DriverSession{
			Date:     date,
			Revenue:  rec.Revenue.Decimal,
			Expenses: rec.Expenses.Decimal,
			Trips:    rec.Trips,
			Hours:    rec.Hours.Decimal,
			Km:       rec.Km.Decimal,
		}
		if err := s.Validate(); err != nil {
			return nil, nil, fmt.Errorf("session %d: %w", i+1, err)
		}
		sessions = append(sessions, s)
	}
	return txs, sessions, nil
}

// parsePeriod picks the granularity from the key length.
func parsePeriod(key string, now time.Time) (engine.Period, error) {
	key = strings.TrimSpace(key)
	switch len(key) {
	case 0:
		return engine.PeriodOf(now), nil
	case len("2006-01-02"):
		return engine.DayPeriod(key)
	default:
		return engine.MonthPeriod(key)
	}
}

func runAggregate(_ *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	txs, sessions, err := readRecords(in)
	if err != nil {
		return err
	}
	now := time.Now()
	period, err := parsePeriod(flagPeriod, now)
	if err != nil {
		return err
	}

	agg := engine.Aggregate(core.Records(txs), period, now)
	var driver *engine.DriverMetrics
	if len(sessions) > 0 {
		m := engine.DriverSummary(core.Sessions(sessions), period)
		driver = &m
	}

	if flagJSON {
		return printJSON(struct {
			engine.PeriodAggregate
			Driver *engine.DriverMetrics `json:"driver,omitempty"`
		}{agg, driver})
	}
	renderAggregate(agg, driver)
	return nil
}

func renderAggregate(agg engine.PeriodAggregate, driver *engine.DriverMetrics) {
	money := cli.FormatMoney
	fmt.Println()
	fmt.Println(cli.RenderTitle("PERIOD " + agg.Period))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Totals",
		Headers: []string{"", "Amount"},
		Rows: [][]string{
			{"Income", money(agg.TotalIncome)},
			{"Expenses", money(agg.TotalExpense)},
			{cli.SeparatorRow},
			{"Balance", cli.Signed(money(agg.Balance), !agg.Balance.IsNegative())},
		},
	}))

	if len(agg.Categories) > 0 {
		rows := make([][]string, 0, len(agg.Categories))
		for _, c := range agg.Categories {
			share := ""
			if agg.TotalExpense.IsPositive() {
				share = cli.FormatPercent(c.Value.Div(agg.TotalExpense).InexactFloat64())
			}
			rows = append(rows, []string{c.Name, money(c.Value), share})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Title: "Expenses by category", Headers: []string{"Category", "Amount", "Share"}, Rows: rows}))
	}

	rows := make([][]string, 0, len(agg.Series))
	for _, p := range agg.Series {
		rows = append(rows, []string{p.Label, money(p.Value)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Title: "Expenses, last six months", Headers: []string{"Month", "Amount"}, Rows: rows}))

	if driver != nil {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Driver",
			Headers: []string{"", "Total", "Per trip", "Per hour", "Per km"},
			Rows: [][]string{
				{"Revenue", money(driver.Revenue), money(driver.RevenuePerTrip), money(driver.RevenuePerHour), money(driver.RevenuePerKm)},
				{"Profit", money(driver.Profit), money(driver.ProfitPerTrip), money(driver.ProfitPerHour), money(driver.ProfitPerKm)},
				{cli.SeparatorRow},
				{"Expenses", money(driver.Expenses), "", "", ""},
				{"Sessions", fmt.Sprint(driver.Sessions), "", "", ""},
				{"Trips", fmt.Sprint(driver.Trips), "", "", ""},
				{"Hours", driver.Hours.String(), "", "", ""},
				{"Km", driver.Km.String(), "", "", ""},
			},
		}))
	}
	fmt.Println()
}
