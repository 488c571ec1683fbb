package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/engine"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	FinancialGoal GoalType = "financial"
	ActivityGoal  GoalType = "activity"
)

// ActivityTarget is the implicit target of an activity goal, in percent points.
var ActivityTarget = decimal.NewFromInt(100)

const dateLayout = "2006-01-02"

type (
	TransactionType string

	GoalType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID            string
		Description   string
		Amount        decimal.Decimal
		Type          TransactionType
		Category      string
		PaymentMethod string
		Date          Date // zero for fixed transactions
		Fixed         bool
		CreatedAt     time.Time
	}

	Goal struct {
		ID          string
		Description string
		Type        GoalType
		Target      decimal.Decimal
		Current     decimal.Decimal
		Deadline    Date
		CreatedAt   time.Time
	}

	DriverSession struct {
		ID        string
		Date      Date
		Revenue   decimal.Decimal
		Expenses  decimal.Decimal
		Trips     int
		Hours     decimal.Decimal
		Km        decimal.Decimal
		Notes     string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrMissingDate         = errors.New("missing date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrInvalidType         = errors.New("invalid type")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidContribution = errors.New("contribution must be positive")
	ErrNegativeValue       = errors.New("negative value")
	ErrNotFound            = errors.New("not found")
)

// IsValidation reports whether err is one of the input validation sentinels.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDate, ErrMissingDate, ErrInvalidAmount, ErrEmptyDescription,
		ErrDescriptionTooLong, ErrInvalidType, ErrEmptyCategory,
		ErrInvalidContribution, ErrNegativeValue,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// IsEmpty returns true if the date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (g GoalType) Valid() bool {
	return g == FinancialGoal || g == ActivityGoal
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	if len(s) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Fixed && t.Date.IsEmpty() {
		return ErrMissingDate
	}
	return nil
}

// ToRecord projects the transaction onto the aggregation input.
func (t Transaction) ToRecord() engine.Record {
	typ := engine.ExpenseRecord
	if t.Type == Income {
		typ = engine.IncomeRecord
	}
	return engine.Record{
		Description: t.Description,
		Category:    t.Category,
		Amount:      t.Amount,
		Type:        typ,
		Date:        t.Date.String(),
		Recurring:   t.Fixed,
	}
}

// Records converts a transaction list for engine.Aggregate.
func Records(txs []Transaction) []engine.Record {
	out := make([]engine.Record, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ToRecord())
	}
	return out
}

// NewGoal builds a goal with zero progress. Activity goals always target 100.
func NewGoal(description string, typ GoalType, target decimal.Decimal, deadline Date) Goal {
	if typ == ActivityGoal {
		target = ActivityTarget
	}
	return Goal{
		Description: description,
		Type:        typ,
		Target:      target,
		Current:     decimal.Zero,
		Deadline:    deadline,
	}
}

func (g Goal) Validate() error {
	if err := validateDescription(g.Description); err != nil {
		return err
	}
	if !g.Type.Valid() {
		return ErrInvalidType
	}
	if !g.Target.IsPositive() {
		return ErrInvalidAmount
	}
	if g.Current.IsNegative() {
		return ErrNegativeValue
	}
	return nil
}

// Contribute returns the goal with amount added, capped at the target.
func (g Goal) Contribute(amount decimal.Decimal) (Goal, error) {
	if !amount.IsPositive() {
		return g, ErrInvalidContribution
	}
	g.Current = decimal.Min(g.Target, g.Current.Add(amount))
	return g, nil
}

// Progress is the completion percentage, capped at 100.
func (g Goal) Progress() decimal.Decimal {
	if !g.Target.IsPositive() {
		return decimal.Zero
	}
	p := g.Current.Div(g.Target).Mul(decimal.NewFromInt(100))
	return engine.Round(decimal.Min(p, decimal.NewFromInt(100)))
}

func (g Goal) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, g.Target.Sub(g.Current))
}

func (g Goal) Completed() bool {
	return g.Target.IsPositive() && g.Current.GreaterThanOrEqual(g.Target)
}

func (s DriverSession) Validate() error {
	if s.Date.IsEmpty() {
		return ErrMissingDate
	}
	if s.Revenue.IsNegative() || s.Expenses.IsNegative() || s.Hours.IsNegative() || s.Km.IsNegative() || s.Trips < 0 {
		return ErrNegativeValue
	}
	return nil
}

// ToSession projects the session onto the driver metrics input.
func (s DriverSession) ToSession() engine.Session {
	return engine.Session{
		Date:     s.Date.String(),
		Revenue:  s.Revenue,
		Expenses: s.Expenses,
		Trips:    s.Trips,
		Hours:    s.Hours,
		Km:       s.Km,
	}
}

// Sessions converts a session list for engine.DriverSummary.
func Sessions(ss []DriverSession) []engine.Session {
	out := make([]engine.Session, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ToSession())
	}
	return out
}
