package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MillionTarget is the goal of the million calculator.
const MillionTarget = 1_000_000

// timelineKeep is how many yearly markers a result carries.
const timelineKeep = 6

// ProjectionInput is everything a projection mode may read.
// Fields a mode does not use are ignored.
type ProjectionInput struct {
	Mode           Mode
	MillionMode    MillionMode
	Initial        decimal.Decimal
	Contribution   decimal.Decimal
	Withdrawal     decimal.Decimal
	MonthlyCost    decimal.Decimal
	Rate           float64 // percent
	RatePeriod     RatePeriod
	Duration       Span
	StartDate      time.Time
	Employment     EmploymentType
	CustomCoverage int
}

type TimelinePoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// ProjectionResult carries the outcome of one projection. Every amount is
// rounded to two places.
type ProjectionResult struct {
	Mode           string          `json:"mode"`
	Total          decimal.Decimal `json:"total"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	Invested       decimal.Decimal `json:"invested"`
	Interest       decimal.Decimal `json:"interest"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	Target         decimal.Decimal `json:"target"`
	Missing        decimal.Decimal `json:"missing"`
	NeededAmount   decimal.Decimal `json:"needed_amount"`
	Months         int             `json:"months"`
	Years          int             `json:"years"`
	RemMonths      int             `json:"rem_months"`
	TargetDate     time.Time       `json:"target_date"`
	TargetLabel    string          `json:"target_label,omitempty"`
	Reached        bool            `json:"reached"`
	Timeline       []TimelinePoint `json:"timeline,omitempty"`
}

// Project dispatches to the calculator selected by in.Mode.
func Project(in ProjectionInput) (ProjectionResult, error) {
	switch in.Mode {
	case ModeCompound:
		return Compound(in)
	case ModeIncome:
		return Drawdown(in)
	case ModeEmergency:
		return EmergencyFund(in)
	case ModeMillion:
		switch in.MillionMode {
		case MillionTermMode:
			return MillionTerm(in)
		case MillionAmountMode:
			return MillionAmount(in)
		default:
			return ProjectionResult{}, fmt.Errorf("%w: %v", ErrUnknownMillionMode, in.MillionMode)
		}
	default:
		return ProjectionResult{}, fmt.Errorf("%w: %v", ErrUnknownMode, in.Mode)
	}
}

type params struct {
	rate         float64
	months       int
	initial      float64
	contribution float64
	withdrawal   float64
	start        time.Time
}

// prepare converts the inputs to float64 loop parameters. The duration is
// resolved only for the fixed-term modes; the others solve for time.
func prepare(in ProjectionInput, fixedTerm bool) (params, error) {
	r, err := MonthlyRate(in.Rate, in.RatePeriod)
	if err != nil {
		return params{}, err
	}
	var n int
	if fixedTerm {
		if n, err = in.Duration.Months(); err != nil {
			return params{}, err
		}
	}
	start := in.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	return params{
		rate:         r,
		months:       n,
		initial:      toFloat(in.Initial),
		contribution: toFloat(in.Contribution),
		withdrawal:   toFloat(in.Withdrawal),
		start:        start,
	}, nil
}

// timeline records a point every 12 months and at the last month.
type timeline struct {
	start time.Time
	last  int
	pts   []TimelinePoint
}

func (t *timeline) record(m int, v float64) {
	if m%12 != 0 && m != t.last {
		return
	}
	t.pts = append(t.pts, TimelinePoint{
		Label: ShortLabel(monthStart(t.start, m)),
		Value: RoundFloat(v),
	})
}

func (t *timeline) points() []TimelinePoint {
	if len(t.pts) <= timelineKeep {
		return t.pts
	}
	out := make([]TimelinePoint, timelineKeep)
	copy(out, t.pts[len(t.pts)-timelineKeep:])
	return out
}

func withTarget(res ProjectionResult, start time.Time, months int) ProjectionResult {
	res.Months = months
	res.Years = months / 12
	res.RemMonths = months % 12
	res.TargetDate = monthStart(start, months)
	res.TargetLabel = LongLabel(res.TargetDate)
	return res
}

// Compound grows the balance with a fixed monthly contribution over the
// whole duration.
func Compound(in ProjectionInput) (ProjectionResult, error) {
	p, err := prepare(in, true)
	if err != nil {
		return ProjectionResult{}, err
	}

	bal, invested := p.initial, p.initial
	tl := timeline{start: p.start, last: p.months}
	for m := 1; m <= p.months; m++ {
		bal = bal*(1+p.rate) + p.contribution
		invested += p.contribution
		tl.record(m, bal)
	}

	return ProjectionResult{
		Mode:     ModeCompound.String(),
		Total:    RoundFloat(bal),
		Invested: RoundFloat(invested),
		Interest: RoundFloat(bal - invested),
		Months:   p.months,
		Timeline: tl.points(),
	}, nil
}

// Drawdown withdraws a fixed amount each month from a growing balance.
// The loop stops early, with the balance pinned to zero, once the
// balance is exhausted. Reached reports that the balance lasted the whole
// duration.
func Drawdown(in ProjectionInput) (ProjectionResult, error) {
	p, err := prepare(in, true)
	if err != nil {
		return ProjectionResult{}, err
	}

	bal, withdrawn := p.initial, 0.0
	months := 0
	tl := timeline{start: p.start, last: p.months}
	for m := 1; m <= p.months; m++ {
		bal = bal*(1+p.rate) - p.withdrawal
		withdrawn += p.withdrawal
		months = m
		tl.record(m, math.Max(0, bal))
		if bal <= 0 {
			bal = 0
			break
		}
	}

	return ProjectionResult{
		Mode:           ModeIncome.String(),
		Total:          RoundFloat(bal),
		FinalBalance:   RoundFloat(bal),
		TotalWithdrawn: RoundFloat(withdrawn),
		Invested:       RoundFloat(p.initial),
		Interest:       RoundFloat(math.Max(0, bal+withdrawn-p.initial)),
		Months:         months,
		Reached:        bal > 0,
		Timeline:       tl.points(),
	}, nil
}

// EmergencyFund finds how long it takes to save monthlyCost times the
// coverage months of the employment preset.
func EmergencyFund(in ProjectionInput) (ProjectionResult, error) {
	p, err := prepare(in, false)
	if err != nil {
		return ProjectionResult{}, err
	}
	coverage, err := in.Employment.CoverageMonths(in.CustomCoverage)
	if err != nil {
		return ProjectionResult{}, err
	}

	target := RoundFloat(toFloat(in.MonthlyCost) * float64(coverage))
	targetF := toFloat(target)
	missing := decimal.Max(decimal.Zero, Round(target.Sub(in.Initial)))

	bal, months := p.initial, 0
	if missing.IsPositive() && (p.contribution > 0 || p.rate > 0) {
		for bal < targetF && months < MaxMonths {
			bal = bal*(1+p.rate) + p.contribution
			months++
		}
	}

	res := ProjectionResult{
		Mode:     ModeEmergency.String(),
		Total:    RoundFloat(bal),
		Target:   target,
		Missing:  missing,
		Invested: RoundFloat(p.initial + p.contribution*float64(months)),
		Reached:  bal >= targetF,
	}
	return withTarget(res, p.start, months), nil
}

// MillionTerm finds how many months of contributions reach one million.
func MillionTerm(in ProjectionInput) (ProjectionResult, error) {
	if res, ok := alreadyMillionaire(in); ok {
		return res, nil
	}
	p, err := prepare(in, false)
	if err != nil {
		return ProjectionResult{}, err
	}

	bal, months := p.initial, 0
	for bal < MillionTarget && months < MaxMonths {
		bal = bal*(1+p.rate) + p.contribution
		months++
	}
	invested := p.initial + p.contribution*float64(months)

	res := ProjectionResult{
		Mode:     ModeMillion.String(),
		Total:    RoundFloat(bal),
		Target:   decimal.NewFromInt(MillionTarget),
		Invested: RoundFloat(invested),
		Interest: RoundFloat(bal - invested),
		Reached:  bal >= MillionTarget,
	}
	return withTarget(res, p.start, months), nil
}

// MillionAmount solves the annuity equation for the monthly contribution
// that reaches one million at the end of the given duration.
func MillionAmount(in ProjectionInput) (ProjectionResult, error) {
	if res, ok := alreadyMillionaire(in); ok {
		return res, nil
	}
	p, err := prepare(in, true)
	if err != nil {
		return ProjectionResult{}, err
	}

	n := float64(p.months)
	factor := math.Pow(1+p.rate, n)
	fv := p.initial * factor
	annuity := n
	if p.rate != 0 {
		annuity = (factor - 1) / p.rate
	}

	var needed float64
	if annuity > 0 {
		needed = (MillionTarget - fv) / annuity
	} else {
		needed = MillionTarget - fv
	}

	return ProjectionResult{
		Mode:         ModeMillion.String(),
		NeededAmount: RoundFloat(math.Max(0, finite(needed))),
		Total:        decimal.NewFromInt(MillionTarget),
		Target:       decimal.NewFromInt(MillionTarget),
		Invested:     Round(in.Initial),
		Months:       p.months,
		Years:        p.months / 12,
		RemMonths:    p.months % 12,
	}, nil
}

func alreadyMillionaire(in ProjectionInput) (ProjectionResult, bool) {
	if in.Initial.LessThan(decimal.NewFromInt(MillionTarget)) {
		return ProjectionResult{}, false
	}
	return ProjectionResult{
		Mode:     ModeMillion.String(),
		Total:    Round(in.Initial),
		Invested: Round(in.Initial),
		Target:   decimal.NewFromInt(MillionTarget),
		Reached:  true,
	}, true
}
