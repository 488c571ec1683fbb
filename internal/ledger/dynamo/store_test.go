package dynamo

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"fincontrol/internal/ledger"
	"fincontrol/internal/ledger/ledgertest"
)

// fakeAPI keeps items per table in insertion order.
type fakeAPI struct {
	mu     sync.Mutex
	tables map[string]bool
	order  map[string][]string
	items  map[string]map[string]map[string]types.AttributeValue
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tables: map[string]bool{},
		order:  map[string][]string{},
		items:  map[string]map[string]map[string]types.AttributeValue{},
	}
}

func keyOf(item map[string]types.AttributeValue) string {
	return item["id"].(*types.AttributeValueMemberS).Value
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	if f.items[table] == nil {
		f.items[table] = map[string]map[string]types.AttributeValue{}
	}
	id := keyOf(in.Item)
	if _, ok := f.items[table][id]; !ok {
		f.order[table] = append(f.order[table], id)
	}
	f.items[table][id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[aws.ToString(in.TableName)][keyOf(in.Key)]}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table, id := aws.ToString(in.TableName), keyOf(in.Key)
	if _, ok := f.items[table][id]; !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	delete(f.items[table], id)
	order := f.order[table][:0]
	for _, k := range f.order[table] {
		if k != id {
			order = append(order, k)
		}
	}
	f.order[table] = order
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	var items []map[string]types.AttributeValue
	for _, id := range f.order[table] {
		items = append(items, f.items[table][id])
	}
	return &dynamodb.ScanOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeAPI) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	if !f.tables[name] {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeAPI) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[aws.ToString(in.TableName)] = true
	return &dynamodb.CreateTableOutput{}, nil
}

func TestStoreContract(t *testing.T) {
	ledgertest.Run(t, func(*testing.T) ledger.Store {
		return NewStore(newFakeAPI(), TablesWithPrefix("test_"))
	})
}

func TestEnsureTables(t *testing.T) {
	api := newFakeAPI()
	tables := TablesWithPrefix("fincontrol_")
	api.tables[tables.Goals] = true

	if err := EnsureTables(context.Background(), api, tables.All(), slog.Default()); err != nil {
		t.Fatalf("EnsureTables() error = %v", err)
	}
	for _, name := range tables.All() {
		if !api.tables[name] {
			t.Errorf("table %s not created", name)
		}
	}
}

func TestTablesWithPrefix(t *testing.T) {
	got := TablesWithPrefix("dev_")
	want := Tables{Transactions: "dev_transactions", Goals: "dev_goals", Sessions: "dev_sessions"}
	if got != want {
		t.Errorf("TablesWithPrefix() = %+v, want %+v", got, want)
	}
}
