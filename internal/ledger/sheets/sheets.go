// Package sheets keeps the ledger in a Google Sheets spreadsheet, one tab per
// collection. It backs DATA_BACKEND=sheets and is the usual mirror target of
// the worker.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fincontrol/internal/core"
	"fincontrol/internal/ledger"
)

var errNoService = errors.New("sheets service not initialized")

// Config selects the spreadsheet and its credentials. The credentials are a
// service account key, or an OAuth client when OAuthTokenFile names a user
// token. Tab names default to Transactions, Goals and Sessions.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	OAuthTokenFile  string

	TransactionsTab string
	GoalsTab        string
	SessionsTab     string
}

type Store struct {
	svc           *gsheet.Service
	spreadsheetID string
	txTab         string
	goalTab       string
	sessionTab    string
	logger        *slog.Logger

	// one writer at a time: row lookup and write are two calls
	mu sync.Mutex
}

var _ ledger.Store = (*Store)(nil)

// New creates a Sheets store.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newStore(svc, cfg, logger), nil
}

func newStore(svc *gsheet.Service, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		txTab:         orDefault(cfg.TransactionsTab, "Transactions"),
		goalTab:       orDefault(cfg.GoalsTab, "Goals"),
		sessionTab:    orDefault(cfg.SessionsTab, "Sessions"),
		logger:        logger,
	}
}

func newSheetsService(ctx context.Context, cfg Config, logger *slog.Logger) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		logger.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	auth := goption.WithCredentialsJSON(credentialsJSON)
	if strings.TrimSpace(cfg.OAuthTokenFile) != "" {
		logger.InfoContext(ctx, "Using OAuth user token", "path", cfg.OAuthTokenFile)
		ts, err := tokenSource(ctx, credentialsJSON, cfg.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		auth = goption.WithTokenSource(ts)
	}

	svc, err := gsheet.NewService(ctx, auth, goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// EnsureHeaders writes the header row of every tab whose first cell is empty.
func (s *Store) EnsureHeaders(ctx context.Context) error {
	if s.svc == nil {
		return errNoService
	}
	for tab, header := range map[string][]any{
		s.txTab:      transactionHeader,
		s.goalTab:    goalHeader,
		s.sessionTab: sessionHeader,
	} {
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, tab+"!A1").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read header of %s: %w", tab, err)
		}
		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			continue
		}
		if err := s.writeRow(ctx, tab, 1, header); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Wrote sheet header", "tab", tab)
	}
	return nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return s.upsert(ctx, s.txTab, tx.ID, transactionRow(tx))
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.readRows(ctx, s.txTab, len(transactionHeader))
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := parseTransactionRow(row)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable transaction row", "tab", s.txTab, "row", i+2, "error", err)
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.txTab, id)
}

func (s *Store) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return s.upsert(ctx, s.goalTab, g.ID, goalRow(g))
}

func (s *Store) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	goals, err := s.ListGoals(ctx)
	if err != nil {
		return core.Goal{}, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, core.ErrNotFound
}

func (s *Store) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := s.readRows(ctx, s.goalTab, len(goalHeader))
	if err != nil {
		return nil, err
	}
	out := make([]core.Goal, 0, len(rows))
	for i, row := range rows {
		g, err := parseGoalRow(row)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable goal row", "tab", s.goalTab, "row", i+2, "error", err)
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.goalTab, id)
}

func (s *Store) SaveSession(ctx context.Context, ds core.DriverSession) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return s.upsert(ctx, s.sessionTab, ds.ID, sessionRow(ds))
}

func (s *Store) ListSessions(ctx context.Context) ([]core.DriverSession, error) {
	rows, err := s.readRows(ctx, s.sessionTab, len(sessionHeader))
	if err != nil {
		return nil, err
	}
	out := make([]core.DriverSession, 0, len(rows))
	for i, row := range rows {
		ds, err := parseSessionRow(row)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable session row", "tab", s.sessionTab, "row", i+2, "error", err)
			continue
		}
		out = append(out, ds)
	}
	return out, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.sessionTab, id)
}

// readRows returns the data rows below the header, skipping blank ones.
func (s *Store) readRows(ctx context.Context, tab string, width int) ([][]any, error) {
	if s.svc == nil {
		return nil, errNoService
	}
	rng := fmt.Sprintf("%s!A2:%s", tab, lastColumn(width))
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	rows := make([][]any, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 || strings.TrimSpace(fmt.Sprint(row[0])) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// upsert overwrites the row holding id, or writes the next empty row.
func (s *Store) upsert(ctx context.Context, tab, id string, values []any) error {
	if s.svc == nil {
		return errNoService
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.idColumn(ctx, tab)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row == 0 {
		row = max(len(ids)+1, 2)
	}
	return s.writeRow(ctx, tab, row, values)
}

func (s *Store) writeRow(ctx context.Context, tab string, row int, values []any) error {
	rng := fmt.Sprintf("%s!A%d:%s%d", tab, row, lastColumn(len(values)), row)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return nil
}

func (s *Store) idColumn(ctx context.Context, tab string) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", tab)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet dimensions for %s: %w", tab, err)
	}
	return resp.Values, nil
}

// deleteByID removes the whole row so later rows shift up.
func (s *Store) deleteByID(ctx context.Context, tab, id string) error {
	if s.svc == nil {
		return errNoService
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.idColumn(ctx, tab)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row < 2 {
		return core.ErrNotFound
	}
	sheetID, err := s.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(row - 1),
			EndIndex:   int64(row),
		}},
	}}}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", row, tab, err)
	}
	return nil
}

func (s *Store) sheetID(ctx context.Context, tab string) (int64, error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("tab %q not found", tab)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
