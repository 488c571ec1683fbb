package engine

import (
	"fmt"
	"math"
	"time"
)

// MaxMonths bounds every month-stepped simulation (100 years).
const MaxMonths = 1200

// MonthlyRate converts a percentage rate into the effective monthly rate.
// Annual rates use the geometric conversion (1+a)^(1/12)-1, not a/12.
func MonthlyRate(rate float64, period RatePeriod) (float64, error) {
	rate = finite(rate)
	switch period {
	case Annual:
		return finite(math.Pow(1+rate/100, 1.0/12) - 1), nil
	case Monthly:
		return rate / 100, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnknownRatePeriod, period)
	}
}

// Span is a duration expressed in whole years or months.
type Span struct {
	Value int
	Unit  DurationUnit
}

// Months normalizes the span, clamped to [0, MaxMonths].
func (s Span) Months() (int, error) {
	var n int
	switch s.Unit {
	case Years:
		if s.Value > MaxMonths/12 {
			return MaxMonths, nil
		}
		n = s.Value * 12
	case Months:
		n = s.Value
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnknownUnit, s.Unit)
	}
	if n < 0 {
		return 0, nil
	}
	if n > MaxMonths {
		return MaxMonths, nil
	}
	return n, nil
}

// monthStart is the first day of the month m months after start.
func monthStart(start time.Time, m int) time.Time {
	return time.Date(start.Year(), start.Month()+time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}
