package amqp

import (
	"context"

	"ledger/internal/engine"
)

// Notifier bridges engine changes onto the broker.
type Notifier struct {
	client *Client
}

func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// OnChange implements engine.ChangeListener.
func (n *Notifier) OnChange(ctx context.Context, change engine.Change) error {
	return n.client.PublishTransactionChange(ctx,
		NewTransactionChangeMessage(change.Transaction.ID, change.Op))
}
