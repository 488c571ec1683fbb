package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
)

// EventAction says what the mirror should do with a transaction.
type EventAction string

const (
	ActionUpsert EventAction = "upsert"
	ActionDelete EventAction = "delete"
)

var ErrMalformedEvent = errors.New("malformed transaction event")

// TransactionPayload is the wire form of core.Transaction.
type TransactionPayload struct {
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

// TransactionEvent is published after every ledger write. Delete events
// carry only the ID.
type TransactionEvent struct {
	Action      EventAction         `json:"action"`
	ID          string              `json:"id"`
	Transaction *TransactionPayload `json:"transaction,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

func NewUpsertEvent(tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:      ActionUpsert,
		ID:          tx.ID,
		Transaction: PayloadFrom(tx),
		Timestamp:   time.Now(),
	}
}

func NewDeleteEvent(id string) *TransactionEvent {
	return &TransactionEvent{
		Action:    ActionDelete,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func PayloadFrom(tx core.Transaction) *TransactionPayload {
	p := &TransactionPayload{
		ID:            tx.ID,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Category:      tx.Category,
		PaymentMethod: tx.PaymentMethod,
		Fixed:         tx.Fixed,
		CreatedAt:     tx.CreatedAt,
	}
	if !tx.Date.IsEmpty() {
		p.Date = tx.Date.String()
	}
	return p
}

// Transaction converts the payload back into a domain value.
func (p *TransactionPayload) Transaction() (core.Transaction, error) {
	tx := core.Transaction{
		ID:            p.ID,
		Description:   p.Description,
		Amount:        p.Amount,
		Type:          core.TransactionType(p.Type),
		Category:      p.Category,
		PaymentMethod: p.PaymentMethod,
		Fixed:         p.Fixed,
		CreatedAt:     p.CreatedAt,
	}
	if p.Date != "" {
		d, err := core.ParseDate(p.Date)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Date = d
	}
	return tx, nil
}

// ToJSON converts the message to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Validate checks that the event can be applied.
func (e *TransactionEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}
	switch e.Action {
	case ActionDelete:
		return nil
	case ActionUpsert:
		if e.Transaction == nil {
			return fmt.Errorf("%w: upsert without transaction", ErrMalformedEvent)
		}
		if e.Transaction.ID != e.ID {
			return fmt.Errorf("%w: id mismatch", ErrMalformedEvent)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown action %q", ErrMalformedEvent, e.Action)
	}
}

// TransactionEventFromJSON decodes and validates an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
