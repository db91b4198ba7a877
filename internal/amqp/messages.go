package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// TransactionChangeMessage is a lightweight change notification. It carries
// only the transaction ID and the operation; the worker fetches the full
// record from storage, so a stale queue never replays stale field values.
type TransactionChangeMessage struct {
	ID        uuid.UUID     `json:"id"`
	Op        core.ChangeOp `json:"op"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewTransactionChangeMessage(id uuid.UUID, op core.ChangeOp) *TransactionChangeMessage {
	return &TransactionChangeMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TransactionChangeMessageFromJSON(data []byte) (*TransactionChangeMessage, error) {
	var msg TransactionChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
