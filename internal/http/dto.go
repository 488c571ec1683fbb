package http

import (
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/services"
)

type transactionJSON struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Date          string          `json:"date,omitempty"`
	Fixed         bool            `json:"fixed"`
	CreatedAt     time.Time       `json:"created_at"`
}

func newTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:            t.ID,
		Description:   t.Description,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Date:          t.Date.String(),
		Fixed:         t.Fixed,
		CreatedAt:     t.CreatedAt,
	}
}

func transactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionJSON(t))
	}
	return out
}

type transactionRequest struct {
	Description   string      `json:"description"`
	Amount        core.Amount `json:"amount"`
	Type          string      `json:"type"`
	Category      string      `json:"category"`
	PaymentMethod string      `json:"payment_method"`
	Date          string      `json:"date"`
	Fixed         bool        `json:"fixed"`
}

func (req transactionRequest) transaction() (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Description:   sanitizeInput(req.Description),
		Amount:        req.Amount.Decimal,
		Type:          core.TransactionType(sanitizeInput(req.Type)),
		Category:      sanitizeInput(req.Category),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Date:          date,
		Fixed:         req.Fixed,
	}, nil
}

type statementJSON struct {
	Period  string            `json:"period"`
	Entries []transactionJSON `json:"entries"`
}

type goalJSON struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Type          string          `json:"type"`
	Target        decimal.Decimal `json:"target"`
	Current       decimal.Decimal `json:"current"`
	Deadline      string          `json:"deadline,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Progress      decimal.Decimal `json:"progress"`
	Remaining     decimal.Decimal `json:"remaining"`
	Status        string          `json:"status"`
	MonthsLeft    int             `json:"months_left"`
	MonthlyNeeded decimal.Decimal `json:"monthly_needed"`
}

func newGoalJSON(v services.GoalView) goalJSON {
	return goalJSON{
		ID:            v.ID,
		Description:   v.Description,
		Type:          string(v.Type),
		Target:        v.Target,
		Current:       v.Current,
		Deadline:      v.Deadline.String(),
		CreatedAt:     v.CreatedAt,
		Progress:      v.Progress,
		Remaining:     v.Remaining,
		Status:        string(v.Status),
		MonthsLeft:    v.MonthsLeft,
		MonthlyNeeded: v.MonthlyNeeded,
	}
}

type goalRequest struct {
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Target      core.Amount `json:"target"`
	Deadline    string      `json:"deadline"`
}

type contributionRequest struct {
	Amount core.Amount `json:"amount"`
}

type sessionJSON struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	Trips     int             `json:"trips"`
	Hours     decimal.Decimal `json:"hours"`
	Km        decimal.Decimal `json:"km"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func newSessionJSON(ds core.DriverSession) sessionJSON {
	return sessionJSON{
		ID:        ds.ID,
		Date:      ds.Date.String(),
		Revenue:   ds.Revenue,
		Expenses:  ds.Expenses,
		Trips:     ds.Trips,
		Hours:     ds.Hours,
		Km:        ds.Km,
		Notes:     ds.Notes,
		CreatedAt: ds.CreatedAt,
	}
}

type sessionRequest struct {
	Date     string      `json:"date"`
	Revenue  core.Amount `json:"revenue"`
	Expenses core.Amount `json:"expenses"`
	Trips    int         `json:"trips"`
	Hours    core.Amount `json:"hours"`
	Km       core.Amount `json:"km"`
	Notes    string      `json:"notes"`
}

func (req sessionRequest) session() (core.DriverSession, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.DriverSession{}, err
	}
	return core.DriverSession{
		Date:     date,
		Revenue:  req.Revenue.Decimal,
		Expenses: req.Expenses.Decimal,
		Trips:    req.Trips,
		Hours:    req.Hours.Decimal,
		Km:       req.Km.Decimal,
		Notes:    sanitizeInput(req.Notes),
	}, nil
}
