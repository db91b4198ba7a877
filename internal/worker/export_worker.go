// Package worker runs the Google Sheets export: it consumes change
// notifications from AMQP, fetches the current record from storage and
// appends a journal row to the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ledger/internal/amqp"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

// TransactionReader supplies the current record for a notified change.
type TransactionReader interface {
	Get(ctx context.Context, id uuid.UUID) (core.Transaction, error)
}

// Exporter writes journal rows to the spreadsheet.
type Exporter interface {
	AppendTransaction(ctx context.Context, op core.ChangeOp, t core.Transaction) error
	AppendTombstone(ctx context.Context, id string) error
}

type ExportWorker struct {
	storage  TransactionReader
	exporter Exporter
	logger   *applog.Logger
}

func NewExportWorker(storage TransactionReader, exporter Exporter, logger *applog.Logger) *ExportWorker {
	return &ExportWorker{
		storage:  storage,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleChangeMessage processes a single change notification. The message
// carries only the ID; the record is fetched fresh from storage so the
// export never replays stale values from a backed-up queue.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.TransactionChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		applog.FieldTransactionID, msg.ID,
		applog.FieldOperation, msg.Op)

	if msg.Op == core.OpDelete {
		if err := w.exporter.AppendTombstone(ctx, msg.ID.String()); err != nil {
			return fmt.Errorf("append tombstone: %w", err)
		}
		return nil
	}

	t, err := w.storage.Get(ctx, msg.ID)
	if errors.Is(err, core.ErrTransactionNotFound) {
		// deleted between notification and processing; the tombstone for
		// that delete is on the queue behind us
		w.logger.WarnContext(ctx, "Transaction gone before export",
			applog.FieldTransactionID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exporter.AppendTransaction(ctx, msg.Op, t); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	w.logger.InfoContext(ctx, "Transaction exported",
		applog.FieldTransactionID, msg.ID,
		applog.FieldOperation, msg.Op)
	return nil
}
