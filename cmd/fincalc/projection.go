package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fincontrol/internal/cli"
	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/services"
)

// projectionFlags are the inputs shared by the projection commands. Amounts
// are strings so "1.480,00" and "R$ 1.480,00" work on the command line.
type projectionFlags struct {
	initial      string
	contribution string
	withdrawal   string
	monthlyCost  string
	rate         float64
	ratePeriod   string
	duration     int
	unit         string
	start        string
	employment   string
	coverage     int
	solve        string
}

func init() {
	rootCmd.AddCommand(
		newProjectionCmd(engine.ModeCompound, "compound", "Grow a balance with monthly contributions"),
		newProjectionCmd(engine.ModeIncome, "drawdown", "Withdraw a fixed monthly income from a balance"),
		newProjectionCmd(engine.ModeEmergency, "emergency", "Time to build an emergency fund"),
		newProjectionCmd(engine.ModeMillion, "million", "Reach one million by term or by monthly amount"),
	)
}

func newProjectionCmd(mode engine.Mode, use, short string) *cobra.Command {
	f := &projectionFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProjection(cmd, mode, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.initial, "initial", "", "Starting balance")
	fs.Float64Var(&f.rate, "rate", 0, "Interest rate in percent (default from config)")
	fs.StringVar(&f.ratePeriod, "rate-period", "", "Rate period: annual or monthly")
	fs.StringVar(&f.start, "start", "", "Start date YYYY-MM-DD (default today)")

	switch mode {
	case engine.ModeCompound:
		fs.StringVar(&f.contribution, "contribution", "", "Monthly contribution")
		addDurationFlags(cmd, f)
	case engine.ModeIncome:
		fs.StringVar(&f.withdrawal, "withdrawal", "", "Monthly withdrawal")
		addDurationFlags(cmd, f)
	case engine.ModeEmergency:
		fs.StringVar(&f.contribution, "contribution", "", "Monthly contribution")
		fs.StringVar(&f.monthlyCost, "monthly-cost", "", "Monthly cost of living")
		fs.StringVar(&f.employment, "employment", "", "Employment: clt, self_employed, public_sector or custom")
		fs.IntVar(&f.coverage, "coverage", 0, "Months of coverage when employment is custom")
	case engine.ModeMillion:
		fs.StringVar(&f.contribution, "contribution", "", "Monthly contribution (term mode)")
		fs.StringVar(&f.solve, "solve", "term", "Unknown to solve for: term or amount")
		addDurationFlags(cmd, f)
	}
	return cmd
}

func addDurationFlags(cmd *cobra.Command, f *projectionFlags) {
	cmd.Flags().IntVar(&f.duration, "duration", 0, "Duration (default from config)")
	cmd.Flags().StringVar(&f.unit, "unit", "", "Duration unit: years or months")
}

// parseMoney accepts an empty value as zero.
func parseMoney(name, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s %q: %w", name, s, err)
	}
	return d, nil
}

// request turns the flags into the same request the HTTP API accepts, so
// unset flags take the configured defaults the same way.
func (f *projectionFlags) request(cmd *cobra.Command, mode engine.Mode) (services.ProjectionRequest, error) {
	req := services.ProjectionRequest{
		Mode:         mode.String(),
		MillionMode:  f.solve,
		RatePeriod:   f.ratePeriod,
		DurationUnit: f.unit,
		StartDate:    f.start,
		Employment:   f.employment,
	}

	var err error
	for _, m := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"initial", f.initial, &req.Initial.Decimal},
		{"contribution", f.contribution, &req.Contribution.Decimal},
		{"withdrawal", f.withdrawal, &req.Withdrawal.Decimal},
		{"monthly-cost", f.monthlyCost, &req.MonthlyCost.Decimal},
	} {
		if *m.dst, err = parseMoney(m.name, m.raw); err != nil {
			return req, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		req.Rate = &f.rate
	}
	if flags.Changed("duration") {
		req.Duration = &f.duration
	}
	if flags.Changed("coverage") {
		req.CustomCoverage = &f.coverage
	}
	return req, nil
}

func runProjection(cmd *cobra.Command, mode engine.Mode, f *projectionFlags) error {
	defaults, err := loadDefaults()
	if err != nil {
		return err
	}
	req, err := f.request(cmd, mode)
	if err != nil {
		return err
	}
	in, err := req.Input(defaults)
	if err != nil {
		return err
	}
	res, err := engine.Project(in)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(res)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(strings.ToUpper(cmd.Name())))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Result",
		Headers: []string{"", "Value"},
		Rows:    projectionRows(in, res),
	}))
	if len(res.Timeline) > 0 {
		rows := make([][]string, 0, len(res.Timeline))
		for _, p := range res.Timeline {
			rows = append(rows, []string{p.Label, cli.FormatMoney(p.Value)})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Title: "Timeline", Headers: []string{"Month", "Balance"}, Rows: rows}))
	}
	fmt.Println()
	return nil
}

func projectionRows(in engine.ProjectionInput, res engine.ProjectionResult) [][]string {
	money := cli.FormatMoney
	switch in.Mode {
	case engine.ModeCompound:
		return [][]string{
			{"Invested", money(res.Invested)},
			{"Interest", money(res.Interest)},
			{cli.SeparatorRow},
			{"Total", money(res.Total)},
			{"Term", cli.FormatSpan(res.Months)},
		}
	case engine.ModeIncome:
		lasted := cli.Signed("lasted the whole term", true)
		if !res.Reached {
			lasted = cli.Signed("ran out after "+cli.FormatSpan(res.Months), false)
		}
		return [][]string{
			{"Initial", money(res.Invested)},
			{"Withdrawn", money(res.TotalWithdrawn)},
			{"Interest", money(res.Interest)},
			{cli.SeparatorRow},
			{"Final balance", money(res.FinalBalance)},
			{"Balance", lasted},
		}
	case engine.ModeEmergency:
		rows := [][]string{
			{"Target", money(res.Target)},
			{"Missing", money(res.Missing)},
			{"Saved at target", money(res.Total)},
		}
		if res.Reached {
			rows = append(rows, []string{"Time", cli.FormatSpan(res.Months)}, []string{"Reached in", res.TargetLabel})
		} else {
			rows = append(rows, []string{"Time", cli.Warn("not reachable with these inputs")})
		}
		return append(rows, []string{"Progress", progress(in.Initial, res.Target)})
	default:
		if in.MillionMode == engine.MillionAmountMode {
			return [][]string{
				{"Monthly contribution", money(res.NeededAmount)},
				{"Term", cli.FormatSpan(res.Months)},
				{"Target", money(res.Target)},
			}
		}
		rows := [][]string{
			{"Invested", money(res.Invested)},
			{"Interest", money(res.Interest)},
			{"Total", money(res.Total)},
		}
		if res.Reached && res.Months > 0 {
			rows = append(rows, []string{"Time", cli.FormatSpan(res.Months)}, []string{"Reached in", res.TargetLabel})
		} else if !res.Reached {
			rows = append(rows, []string{"Time", cli.Warn("not reachable with these inputs")})
		}
		return append(rows, []string{"Progress", progress(in.Initial, res.Target)})
	}
}

func progress(current, target decimal.Decimal) string {
	if !target.IsPositive() {
		return cli.RenderProgressBar(1, 20)
	}
	return cli.RenderProgressBar(current.Div(target).InexactFloat64(), 20)
}
