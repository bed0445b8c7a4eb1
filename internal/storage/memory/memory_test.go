package memory

import (
	"context"
	"testing"
)

func TestGetMissing(t *testing.T) {
	s := New()
	v, ok, err := s.Get(context.Background(), "nope")
	if err != nil || ok || v != nil {
		t.Fatalf("expected absent key, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSetGetCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	in := []byte(`{"children":[]}`)
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'X'

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"children":[]}` {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
	got[0] = 'Y'
	again, _, _ := s.Get(ctx, "k")
	if again[0] != '{' {
		t.Fatalf("returned value aliased stored slice")
	}
}

func TestNewWith(t *testing.T) {
	s := NewWith("k", []byte("v"))
	got, ok, _ := s.Get(context.Background(), "k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected seeded value, got %q ok=%v", got, ok)
	}
}
