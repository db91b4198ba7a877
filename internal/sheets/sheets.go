// Package sheets appends ledger changes to a Google spreadsheet as an export
// journal. Each change becomes one row; deletions are recorded as tombstone
// rows rather than removed, so the sheet keeps a full audit trail.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// Credentials selects service-account auth material. Exactly one of JSON or
// File should be set; with neither, Application Default Credentials apply.
type Credentials struct {
	JSON string
	File string
}

func NewClient(ctx context.Context, spreadsheetID, sheetName string, creds Credentials, logger *applog.Logger) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if sheetName == "" {
		sheetName = "Transactions"
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	switch {
	case creds.JSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(creds.JSON)))
	case creds.File != "":
		opts = append(opts, goption.WithCredentialsFile(creds.File))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}, nil
}

// AppendTransaction writes one journal row for a stored transaction.
// Columns: timestamp, operation, id, type, category, amount, date, notes.
func (c *Client) AppendTransaction(ctx context.Context, op core.ChangeOp, t core.Transaction) error {
	amount := float64(t.Amount.Cents) / 100.0
	return c.appendRow(ctx, []any{
		time.Now().Format(time.RFC3339),
		string(op),
		t.ID.String(),
		string(t.Type),
		t.Category,
		amount,
		t.Date.Format("2006-01-02"),
		t.Notes,
	})
}

// AppendTombstone records a deletion without touching earlier rows.
func (c *Client) AppendTombstone(ctx context.Context, id string) error {
	return c.appendRow(ctx, []any{
		time.Now().Format(time.RFC3339),
		string(core.OpDelete),
		id,
		"", "", "", "", "",
	})
}

func (c *Client) appendRow(ctx context.Context, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to sheet %s: %w", c.sheetName, err)
	}

	c.logger.DebugContext(ctx, "Row appended", applog.FieldPath, c.sheetName)
	return nil
}
