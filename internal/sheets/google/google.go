// Package google mirrors the records and the balance projection into a
// Google Sheets spreadsheet, one tab per record kind.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financas/internal/core"
	ports "financas/internal/sheets"
)

// Tab names written by ExportSnapshot.
const (
	IncomesTab    = "Receitas"
	ChargesTab    = "Cartao"
	DebitsTab     = "Debito"
	ProjectionTab = "Projecao"
)

const userEntered = "USER_ENTERED"

var _ ports.SnapshotExporter = (*Client)(nil)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID      string
	ServiceAccountFile string
	ServiceAccountJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// NewFromEnv creates a client from GOOGLE_SPREADSHEET_ID and either
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	cfg := Config{
		SpreadsheetID:      strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		ServiceAccountFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
		ServiceAccountJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
	}
	if cfg.ServiceAccountFile == "" && cfg.ServiceAccountJSON == "" {
		cfg.ServiceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return New(ctx, cfg)
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := serviceAccountCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func serviceAccountCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	switch {
	case cfg.ServiceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(cfg.ServiceAccountJSON), nil
	case cfg.ServiceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.ServiceAccountFile)
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ExportSnapshot rewrites every tab from scratch. Tabs are written
// concurrently; the first failure cancels the rest.
func (c *Client) ExportSnapshot(ctx context.Context, s core.Snapshot, balances []core.MonthlyBalance) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	tabs := map[string][][]any{
		IncomesTab:    IncomeRows(s.Incomes),
		ChargesTab:    ChargeRows(s.Charges),
		DebitsTab:     DebitRows(s.Debits),
		ProjectionTab: ProjectionRows(balances),
	}

	g, gctx := errgroup.WithContext(ctx)
	for tab, rows := range tabs {
		g.Go(func() error {
			return c.writeTab(gctx, tab, rows)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Exported snapshot to Google Sheets",
		"incomes", len(s.Incomes),
		"charges", len(s.Charges),
		"debits", len(s.Debits),
		"months", len(balances))
	return nil
}

func (c *Client) writeTab(ctx context.Context, tab string, rows [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", tab)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rng := fmt.Sprintf("%s!A1", tab)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption(userEntered).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}
