package ref

import (
	"encoding/json"
	"testing"
)

type testCustomer struct {
	Id    string `json:"_id"`
	Email string `json:"email"`
}

func (c testCustomer) RefID() string { return c.Id }

func TestUnmarshal_BareID(t *testing.T) {
	var r Ref[testCustomer]
	if err := json.Unmarshal([]byte(`"abc123"`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "abc123" {
		t.Errorf("ID() = %q, want %q", r.ID(), "abc123")
	}
	if _, ok := r.Value(); ok {
		t.Error("bare id must not carry an embedded value")
	}
}

func TestUnmarshal_Embedded(t *testing.T) {
	var r Ref[testCustomer]
	if err := json.Unmarshal([]byte(`{"_id":"u1","email":"a@b.co"}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "u1" {
		t.Errorf("ID() = %q, want %q", r.ID(), "u1")
	}
	v, ok := r.Value()
	if !ok || v.Email != "a@b.co" {
		t.Errorf("Value() = %+v, ok=%v", v, ok)
	}
}

func TestUnmarshal_NumericID(t *testing.T) {
	var r Ref[testCustomer]
	if err := json.Unmarshal([]byte(`42`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "42" {
		t.Errorf("ID() = %q, want %q", r.ID(), "42")
	}
}

func TestUnmarshal_NullAndGarbage(t *testing.T) {
	for _, raw := range []string{`null`, `true`, `[1,2]`} {
		var r Ref[testCustomer]
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			t.Fatalf("unmarshal %s: unexpected error: %v", raw, err)
		}
		if !r.IsZero() {
			t.Errorf("unmarshal %s: expected zero ref", raw)
		}
	}
}
