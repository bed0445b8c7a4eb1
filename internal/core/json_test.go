package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDocumentLayout(t *testing.T) {
	doc := Document{Children: []Child{{
		ID:     1700000000000,
		Name:   "Sam",
		Points: 3,
		Color:  "#FF0000",
		Transactions: []Transaction{
			{Kind: Debit, Amount: 2, Timestamp: time.UnixMilli(1700000000500)},
		},
	}}}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"children":[{"id":1700000000000,"name":"Sam","points":3,"color":"#FF0000",` +
		`"transactions":[{"type":"remove","amount":2,"timestamp":1700000000500}]}]}`
	if string(b) != want {
		t.Fatalf("unexpected layout\n got: %s\nwant: %s", b, want)
	}
}

func TestEmptyCollectionsMarshalAsArrays(t *testing.T) {
	b, err := json.Marshal(Document{})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"children":[]}` {
		t.Fatalf("got %s", b)
	}
	b, err = json.Marshal(Document{Children: []Child{{ID: 1, Name: "A", Color: "#000"}}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"transactions":[]`) {
		t.Fatalf("expected empty transactions array, got %s", b)
	}
}

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Children == nil || len(doc.Children) != 0 {
		t.Fatalf("expected empty non-nil children, got %#v", doc.Children)
	}

	doc, err = DecodeDocument([]byte(`{"children":[{"id":5,"name":"Lee","points":4,"color":"red",` +
		`"transactions":[{"type":"add","amount":4,"timestamp":1700000000000}]}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Children) != 1 {
		t.Fatalf("expected one child, got %d", len(doc.Children))
	}
	c := doc.Children[0]
	if c.ID != 5 || c.Name != "Lee" || c.Points != 4 || c.Color != "red" {
		t.Fatalf("unexpected child %+v", c)
	}
	if tx := c.Transactions[0]; tx.Kind != Credit || tx.Amount != 4 || tx.Timestamp.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	if _, err := DecodeDocument([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed input")
	}
}
