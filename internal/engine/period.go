// This file implements the Strategy Pattern for matching dated records to
// a selected period. Each granularity owns its matching rule.

package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

type Granularity int

const (
	Month Granularity = iota + 1
	Day
)

func (g Granularity) String() string {
	switch g {
	case Month:
		return "month"
	case Day:
		return "day"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// PeriodMatcher decides whether an ISO date string belongs to a period key.
type PeriodMatcher interface {
	Matches(date, key string) bool
}

// MonthMatcher matches any date starting with a "YYYY-MM" key.
type MonthMatcher struct{}

func (MonthMatcher) Matches(date, key string) bool {
	return date != "" && key != "" && strings.HasPrefix(date, key)
}

// DayMatcher matches only the exact "YYYY-MM-DD" day.
type DayMatcher struct{}

func (DayMatcher) Matches(date, key string) bool {
	return date != "" && date == key
}

var periodMatchers = map[Granularity]PeriodMatcher{
	Month: MonthMatcher{},
	Day:   DayMatcher{},
}

// MatcherFor returns the matching strategy for a granularity.
func MatcherFor(g Granularity) (PeriodMatcher, error) {
	m, ok := periodMatchers[g]
	if !ok {
		return nil, fmt.Errorf("%w: unknown granularity %v", ErrInvalidPeriod, g)
	}
	return m, nil
}

// Period is a selected month or day.
type Period struct {
	Key         string
	Granularity Granularity
}

// MonthPeriod builds a month period from a "YYYY-MM" key.
func MonthPeriod(key string) (Period, error) {
	key = strings.TrimSpace(key)
	if _, err := time.Parse("2006-01", key); err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
	}
	return Period{Key: key, Granularity: Month}, nil
}

// DayPeriod builds a day period from a "YYYY-MM-DD" key.
func DayPeriod(key string) (Period, error) {
	key = strings.TrimSpace(key)
	if _, err := time.Parse("2006-01-02", key); err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
	}
	return Period{Key: key, Granularity: Day}, nil
}

// PeriodOf is the month period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Key: t.Format("2006-01"), Granularity: Month}
}

// Matches reports whether date falls in p. Unknown granularities match nothing.
func (p Period) Matches(date string) bool {
	m, err := MatcherFor(p.Granularity)
	if err != nil {
		return false
	}
	return m.Matches(date, p.Key)
}

// Shift moves a month period by n months. Day periods move by n days.
func (p Period) Shift(n int) Period {
	switch p.Granularity {
	case Day:
		t, err := time.Parse("2006-01-02", p.Key)
		if err != nil {
			return p
		}
		return Period{Key: t.AddDate(0, 0, n).Format("2006-01-02"), Granularity: Day}
	default:
		t, err := time.Parse("2006-01", p.Key)
		if err != nil {
			return p
		}
		return Period{Key: monthStart(t, n).Format("2006-01"), Granularity: Month}
	}
}
