// Package dynamo persists the ledger in DynamoDB, one table per collection.
//
// Table requirements:
//   - PK: id (string)
//
// Amounts are stored as decimal strings so no precision is lost in transit.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"fincontrol/internal/core"
	"fincontrol/internal/ledger"
)

type transactionItem struct {
	ID            string `dynamodbav:"id"`
	Description   string `dynamodbav:"description"`
	Amount        string `dynamodbav:"amount"`
	Type          string `dynamodbav:"type"`
	Category      string `dynamodbav:"category"`
	PaymentMethod string `dynamodbav:"payment_method,omitempty"`
	Date          string `dynamodbav:"date,omitempty"`
	Fixed         bool   `dynamodbav:"fixed"`
	CreatedAt     string `dynamodbav:"created_at"`
}

type goalItem struct {
	ID          string `dynamodbav:"id"`
	Description string `dynamodbav:"description"`
	Type        string `dynamodbav:"type"`
	Target      string `dynamodbav:"target"`
	Current     string `dynamodbav:"current"`
	Deadline    string `dynamodbav:"deadline,omitempty"`
	CreatedAt   string `dynamodbav:"created_at"`
}

type sessionItem struct {
	ID        string `dynamodbav:"id"`
	Date      string `dynamodbav:"date"`
	Revenue   string `dynamodbav:"revenue"`
	Expenses  string `dynamodbav:"expenses"`
	Trips     int    `dynamodbav:"trips"`
	Hours     string `dynamodbav:"hours"`
	Km        string `dynamodbav:"km"`
	Notes     string `dynamodbav:"notes,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
}

// Tables names the three collections.
type Tables struct {
	Transactions string
	Goals        string
	Sessions     string
}

// TablesWithPrefix returns the default table names under prefix.
func TablesWithPrefix(prefix string) Tables {
	return Tables{
		Transactions: prefix + "transactions",
		Goals:        prefix + "goals",
		Sessions:     prefix + "sessions",
	}
}

// All lists the table names.
func (t Tables) All() []string {
	return []string{t.Transactions, t.Goals, t.Sessions}
}

type Store struct {
	api    API
	tables Tables
}

var _ ledger.Store = (*Store)(nil)

func NewStore(api API, tables Tables) *Store {
	return &Store{api: api, tables: tables}
}

func (s *Store) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	return s.put(ctx, s.tables.Transactions, transactionItem{
		ID:            tx.ID,
		Description:   tx.Description,
		Amount:        tx.Amount.String(),
		Type:          string(tx.Type),
		Category:      tx.Category,
		PaymentMethod: tx.PaymentMethod,
		Date:          tx.Date.String(),
		Fixed:         tx.Fixed,
		CreatedAt:     formatTime(tx.CreatedAt),
	})
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	items, err := scanAll[transactionItem](ctx, s.api, s.tables.Transactions)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(items))
	for _, it := range items {
		amount, err := decimal.NewFromString(it.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", it.ID, err)
		}
		date, err := core.ParseDate(it.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", it.ID, err)
		}
		out = append(out, core.Transaction{
			ID:            it.ID,
			Description:   it.Description,
			Amount:        amount,
			Type:          core.TransactionType(it.Type),
			Category:      it.Category,
			PaymentMethod: it.PaymentMethod,
			Date:          date,
			Fixed:         it.Fixed,
			CreatedAt:     parseTime(it.CreatedAt),
		})
	}
	return out, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.delete(ctx, s.tables.Transactions, id)
}

func (s *Store) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return s.put(ctx, s.tables.Goals, goalItem{
		ID:          g.ID,
		Description: g.Description,
		Type:        string(g.Type),
		Target:      g.Target.String(),
		Current:     g.Current.String(),
		Deadline:    g.Deadline.String(),
		CreatedAt:   formatTime(g.CreatedAt),
	})
}

func (s *Store) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tables.Goals),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	if len(out.Item) == 0 {
		return core.Goal{}, core.ErrNotFound
	}
	var it goalItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return core.Goal{}, fmt.Errorf("decode goal: %w", err)
	}
	return goalFromItem(it)
}

func (s *Store) ListGoals(ctx context.Context) ([]core.Goal, error) {
	items, err := scanAll[goalItem](ctx, s.api, s.tables.Goals)
	if err != nil {
		return nil, err
	}
	out := make([]core.Goal, 0, len(items))
	for _, it := range items {
		g, err := goalFromItem(it)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return s.delete(ctx, s.tables.Goals, id)
}

func (s *Store) SaveSession(ctx context.Context, ds core.DriverSession) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	return s.put(ctx, s.tables.Sessions, sessionItem{
		ID:        ds.ID,
		Date:      ds.Date.String(),
		Revenue:   ds.Revenue.String(),
		Expenses:  ds.Expenses.String(),
		Trips:     ds.Trips,
		Hours:     ds.Hours.String(),
		Km:        ds.Km.String(),
		Notes:     ds.Notes,
		CreatedAt: formatTime(ds.CreatedAt),
	})
}

func (s *Store) ListSessions(ctx context.Context) ([]core.DriverSession, error) {
	items, err := scanAll[sessionItem](ctx, s.api, s.tables.Sessions)
	if err != nil {
		return nil, err
	}
	out := make([]core.DriverSession, 0, len(items))
	for _, it := range items {
		ds, err := sessionFromItem(it)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.delete(ctx, s.tables.Sessions, id)
}

func (s *Store) put(ctx context.Context, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put item in %s: %w", table, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, table, id string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(table),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return core.ErrNotFound
		}
		return fmt.Errorf("delete item from %s: %w", table, err)
	}
	return nil
}

func scanAll[T any](ctx context.Context, api dynamodb.ScanAPIClient, table string) ([]T, error) {
	var out []T
	p := dynamodb.NewScanPaginator(api, &dynamodb.ScanInput{TableName: aws.String(table)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		var items []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", table, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func goalFromItem(it goalItem) (core.Goal, error) {
	target, err := decimal.NewFromString(it.Target)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %s target: %w", it.ID, err)
	}
	current, err := decimal.NewFromString(it.Current)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %s current: %w", it.ID, err)
	}
	deadline, err := core.ParseDate(it.Deadline)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %s: %w", it.ID, err)
	}
	return core.Goal{
		ID:          it.ID,
		Description: it.Description,
		Type:        core.GoalType(it.Type),
		Target:      target,
		Current:     current,
		Deadline:    deadline,
		CreatedAt:   parseTime(it.CreatedAt),
	}, nil
}

func sessionFromItem(it sessionItem) (core.DriverSession, error) {
	date, err := core.ParseDate(it.Date)
	if err != nil {
		return core.DriverSession{}, fmt.Errorf("session %s: %w", it.ID, err)
	}
	ds := core.DriverSession{
		ID:        it.ID,
		Date:      date,
		Trips:     it.Trips,
		Notes:     it.Notes,
		CreatedAt: parseTime(it.CreatedAt),
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&ds.Revenue, it.Revenue},
		{&ds.Expenses, it.Expenses},
		{&ds.Hours, it.Hours},
		{&ds.Km, it.Km},
	} {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return core.DriverSession{}, fmt.Errorf("session %s: %w", it.ID, err)
		}
		*f.dst = v
	}
	return ds, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
