// Package storage persists the ledger in SQLite. The engine owns the
// in-memory state; this repository seeds it at startup and mirrors every
// change back to disk as a full snapshot rewrite inside one transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/engine"
	applog "ledger/internal/log"

	_ "modernc.org/sqlite"
)

const dateFormat = time.RFC3339Nano

type Repository struct {
	db     *sql.DB
	logger *applog.Logger
}

func NewRepository(dbPath string, logger *applog.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadAll implements engine.TransactionLoader. Rows come back in insertion
// order so the engine rebuilds the same ordering it had before shutdown.
func (r *Repository) LoadAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, amount_defaulted, category, tx_date,
		       notes, receipt_ref, tx_type, created_at, updated_at
		FROM transactions
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	r.logger.InfoContext(ctx, "Transactions loaded", applog.FieldCount, len(txs))
	return txs, nil
}

// Get returns a single stored transaction by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount_cents, amount_defaulted, category, tx_date,
		       notes, receipt_ref, tx_type, created_at, updated_at
		FROM transactions
		WHERE id = ?`, id.String())

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// OnChange implements engine.ChangeListener by rewriting the full snapshot.
// The ledger stays small enough that the rewrite costs less than keeping a
// per-operation statement set consistent with the engine's ordering.
func (r *Repository) OnChange(ctx context.Context, change engine.Change) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
			(id, amount_cents, amount_defaulted, category, tx_date,
			 notes, receipt_ref, tx_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range change.Snapshot {
		if _, err := stmt.ExecContext(ctx,
			t.ID.String(),
			t.Amount.Cents,
			t.AmountDefaulted,
			t.Category,
			t.Date.Format(dateFormat),
			t.Notes,
			t.ReceiptRef,
			string(t.Type),
			t.CreatedAt.Format(dateFormat),
			t.UpdatedAt.Format(dateFormat),
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	r.logger.DebugContext(ctx, "Snapshot persisted",
		applog.FieldOperation, change.Op,
		applog.FieldCount, len(change.Snapshot))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                          core.Transaction
		id, date, created, updated string
		txType                     string
	)
	if err := row.Scan(&id, &t.Amount.Cents, &t.AmountDefaulted, &t.Category,
		&date, &t.Notes, &t.ReceiptRef, &txType, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", id, err)
	}
	t.ID = parsed
	t.Type = core.TransactionType(txType)

	if t.Date, err = time.Parse(dateFormat, date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse tx_date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(dateFormat, created); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	if t.UpdatedAt, err = time.Parse(dateFormat, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}

	return t, nil
}
