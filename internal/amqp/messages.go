package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record kinds carried by RecordsChangedMessage.
const (
	KindIncome = "income"
	KindCharge = "charge"
	KindDebit  = "debit"
)

// Operations carried by RecordsChangedMessage.
const (
	OpCreate  = "create"
	OpDelete  = "delete"
	OpUpdate  = "update"
	OpReplace = "replace"
)

// RecordsChangedMessage announces that records changed. It carries no record
// data; consumers reload what they need from the store.
type RecordsChangedMessage struct {
	Kind      string    `json:"kind"`
	Operation string    `json:"operation"`
	ID        string    `json:"id,omitempty"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordsChangedMessage(kind, operation, id string, count int) RecordsChangedMessage {
	return RecordsChangedMessage{
		Kind:      kind,
		Operation: operation,
		ID:        id,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m RecordsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordsChangedMessageFromJSON decodes and checks a message body.
func RecordsChangedMessageFromJSON(data []byte) (*RecordsChangedMessage, error) {
	var msg RecordsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindIncome, KindCharge, KindDebit:
	default:
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	return &msg, nil
}
