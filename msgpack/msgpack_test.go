package msgpack

import (
	"testing"
)

type card struct {
	Holder string   `msgpack:"holder"`
	Number string   `msgpack:"number"`
	Tags   []string `msgpack:"tags"`
}

func TestContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/msgpack" {
		t.Errorf("ContentType() = %q, want %q", got, "application/msgpack")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()
	original := card{Holder: "张*", Number: "************1111", Tags: []string{"corp"}}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored card
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if restored.Holder != original.Holder || restored.Number != original.Number || len(restored.Tags) != 1 {
		t.Errorf("round trip = %+v, want %+v", restored, original)
	}
}

func TestMarshalBinary(t *testing.T) {
	c := New()

	data, err := c.Marshal(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	// MessagePack is binary, should not be valid UTF-8 JSON
	if data[0] == '{' {
		t.Error("MessagePack output should be binary, not JSON")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v struct{}
	err := c.Unmarshal([]byte("not msgpack"), &v)
	if err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

func TestUnmarshal_UntypedMap(t *testing.T) {
	c := New()

	data, err := c.Marshal(map[string]any{
		"phone": "138****5678",
		"owner": map[string]any{"name": "张*"},
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var v any
	if err := c.Unmarshal(data, &v); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("Unmarshal() into any = %T, want map[string]any", v)
	}
	if m["phone"] != "138****5678" {
		t.Errorf("phone = %v, want %q", m["phone"], "138****5678")
	}

	owner, ok := m["owner"].(map[string]any)
	if !ok {
		t.Fatalf("owner = %T, want map[string]any", m["owner"])
	}
	if owner["name"] != "张*" {
		t.Errorf("owner.name = %v, want %q", owner["name"], "张*")
	}
}

// Untyped maps keep string keys through a copy, so masking sees the same
// shape a JSON body has.
func TestUnmarshal_NestedInStruct(t *testing.T) {
	type envelope struct {
		Payload any `msgpack:"payload"`
	}

	c := New()
	data, err := c.Marshal(envelope{Payload: map[string]any{"card": "************1111"}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var got envelope
	if err := c.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if _, ok := got.Payload.(map[string]any); !ok {
		t.Errorf("Payload = %T, want map[string]any", got.Payload)
	}
}
