// This file implements the Strategy Pattern for goal pacing. Each goal type
// decides how the monthly effort still needed is expressed.

package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/engine"
)

type GoalStatus string

const (
	StatusCompleted GoalStatus = "completed"
	StatusOpen      GoalStatus = "open" // no deadline
	StatusOnTrack   GoalStatus = "on_track"
	StatusBehind    GoalStatus = "behind"
	StatusOverdue   GoalStatus = "overdue"
)

// GoalView is a goal with its progress figures and pace.
type GoalView struct {
	core.Goal
	Progress      decimal.Decimal `json:"progress"`
	Remaining     decimal.Decimal `json:"remaining"`
	Status        GoalStatus      `json:"status"`
	MonthsLeft    int             `json:"months_left"`
	MonthlyNeeded decimal.Decimal `json:"monthly_needed"`
}

// PaceStrategy spreads what is left of a goal over the months until its deadline.
type PaceStrategy interface {
	MonthlyNeeded(remaining decimal.Decimal, monthsLeft int) decimal.Decimal
}

// MoneyPace splits the remaining amount evenly, rounded to cents.
type MoneyPace struct{}

func (MoneyPace) MonthlyNeeded(remaining decimal.Decimal, monthsLeft int) decimal.Decimal {
	if monthsLeft <= 0 {
		return engine.Round(remaining)
	}
	return engine.Round(remaining.Div(decimal.NewFromInt(int64(monthsLeft))))
}

// PointsPace splits the remaining percent points, rounded up to whole points.
type PointsPace struct{}

func (PointsPace) MonthlyNeeded(remaining decimal.Decimal, monthsLeft int) decimal.Decimal {
	if monthsLeft <= 0 {
		return remaining.Ceil()
	}
	return remaining.Div(decimal.NewFromInt(int64(monthsLeft))).Ceil()
}

var paceStrategies = map[core.GoalType]PaceStrategy{
	core.FinancialGoal: MoneyPace{},
	core.ActivityGoal:  PointsPace{},
}

// GetPaceStrategy returns the pacing rule of a goal type.
func GetPaceStrategy(typ core.GoalType) (PaceStrategy, error) {
	s, ok := paceStrategies[typ]
	if !ok {
		return nil, fmt.Errorf("unknown goal type: %s", typ)
	}
	return s, nil
}

// monthsUntil counts calendar months from now to the deadline, counting the
// deadline month itself. A past deadline yields 0.
func monthsUntil(now time.Time, deadline core.Date) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if deadline.Before(today) {
		return 0
	}
	return (deadline.Year()-now.Year())*12 + int(deadline.Month()-now.Month()) + 1
}

// Pace classifies g as of now. Goals created before their deadline are
// behind when the current amount trails a straight line from creation to
// deadline.
func Pace(g core.Goal, now time.Time) GoalView {
	v := GoalView{
		Goal:          g,
		Progress:      g.Progress(),
		Remaining:     g.Remaining(),
		MonthlyNeeded: decimal.Zero,
	}

	switch {
	case g.Completed():
		v.Status = StatusCompleted
		return v
	case g.Deadline.IsEmpty():
		v.Status = StatusOpen
		return v
	}

	v.MonthsLeft = monthsUntil(now, g.Deadline)
	if s, err := GetPaceStrategy(g.Type); err == nil {
		v.MonthlyNeeded = s.MonthlyNeeded(v.Remaining, v.MonthsLeft)
	}

	if v.MonthsLeft == 0 {
		v.Status = StatusOverdue
		return v
	}

	v.Status = StatusOnTrack
	if g.CreatedAt.IsZero() || !g.CreatedAt.Before(g.Deadline.Time) {
		return v
	}
	total := g.Deadline.Sub(g.CreatedAt).Hours()
	elapsed := now.Sub(g.CreatedAt).Hours()
	if elapsed <= 0 {
		return v
	}
	expected := g.Target.Mul(decimal.NewFromFloat(min(elapsed/total, 1)))
	if g.Current.LessThan(engine.Round(expected)) {
		v.Status = StatusBehind
	}
	return v
}
