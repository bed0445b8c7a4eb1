package core

import (
	"encoding/json"
	"time"
)

// transactionJSON is the stored layout: the kind goes under "type" and the
// timestamp is in epoch milliseconds.
type transactionJSON struct {
	Type      Kind  `json:"type"`
	Amount    int   `json:"amount"`
	Timestamp int64 `json:"timestamp"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		Type:      t.Kind,
		Amount:    t.Amount,
		Timestamp: t.Timestamp.UnixMilli(),
	})
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.Kind = raw.Type
	t.Amount = raw.Amount
	t.Timestamp = time.UnixMilli(raw.Timestamp)
	return nil
}

// MarshalJSON always emits "transactions" as an array, never null.
func (c Child) MarshalJSON() ([]byte, error) {
	type plain Child
	p := plain(c)
	if p.Transactions == nil {
		p.Transactions = []Transaction{}
	}
	return json.Marshal(p)
}

// MarshalJSON always emits "children" as an array, never null.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	p := plain(d)
	if p.Children == nil {
		p.Children = []Child{}
	}
	return json.Marshal(p)
}

// DecodeDocument parses a persisted document. A missing "children" field
// yields an empty collection.
func DecodeDocument(b []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, err
	}
	if doc.Children == nil {
		doc.Children = []Child{}
	}
	return doc, nil
}
