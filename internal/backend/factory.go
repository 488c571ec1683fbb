package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fincontrol/internal/ledger/dynamo"
	"fincontrol/internal/ledger/memory"
	"fincontrol/internal/ledger/sheets"
	"fincontrol/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case DynamoBackend:
		return f.createDynamoBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.MemorySeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.MemorySeedFile)

	return &BackendResult{Backend: store, Type: MemoryBackend}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Type:    SQLiteBackend,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		CredentialsJSON: config.GoogleCredentialsJSON,
		CredentialsFile: config.GoogleCredentialsFile,
		OAuthTokenFile:  config.GoogleOAuthTokenFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	if err := store.EnsureHeaders(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare Google Sheets tabs: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &BackendResult{Backend: store, Type: SheetsBackend}, nil
}

func (f *DefaultFactory) createDynamoBackend(ctx context.Context, config Config) (*BackendResult, error) {
	client, err := dynamo.NewClient(ctx, dynamo.ClientConfig{
		Region:   config.DynamoRegion,
		Endpoint: config.DynamoEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DynamoDB client: %w", err)
	}
	tables := dynamo.TablesWithPrefix(config.DynamoTablePrefix)
	if err := dynamo.EnsureTables(ctx, client, tables.All(), f.logger); err != nil {
		return nil, fmt.Errorf("failed to prepare DynamoDB tables: %w", err)
	}

	f.logger.Info("Initialized DynamoDB backend",
		"region", config.DynamoRegion,
		"endpoint", config.DynamoEndpoint,
		"table_prefix", config.DynamoTablePrefix)

	return &BackendResult{Backend: dynamo.NewStore(client, tables), Type: DynamoBackend}, nil
}
