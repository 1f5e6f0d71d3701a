package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// Operation names a ledger mutation.
type Operation string

const (
	OpAdd    Operation = "add"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// LedgerChangeMessage announces one committed change to an owner's ledger.
// Index is the record position inside Category after the change for add and
// edit, and the removed position for delete.
type LedgerChangeMessage struct {
	Owner       string     `json:"owner"`
	Operation   Operation  `json:"operation"`
	Category    string     `json:"category"`
	Index       int        `json:"index"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

func NewLedgerChangeMessage(owner string, op Operation, category string, index int, amount core.Money, description string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Owner:       owner,
		Operation:   op,
		Category:    category,
		Index:       index,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
