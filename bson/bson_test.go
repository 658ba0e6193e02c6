package bson

import (
	"testing"
)

type account struct {
	Owner   string            `bson:"owner"`
	Card    string            `bson:"card"`
	Labels  map[string]string `bson:"labels"`
	Balance int64             `bson:"balance"`
}

func TestContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/bson" {
		t.Errorf("ContentType() = %q, want %q", got, "application/bson")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()
	original := account{
		Owner:   "张*",
		Card:    "************1111",
		Labels:  map[string]string{"tier": "gold"},
		Balance: 1200,
	}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored account
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if restored.Owner != original.Owner || restored.Card != original.Card ||
		restored.Balance != original.Balance || restored.Labels["tier"] != "gold" {
		t.Errorf("round trip = %+v, want %+v", restored, original)
	}
}

func TestMarshal_TopLevelScalar(t *testing.T) {
	if _, err := New().Marshal("13812345678"); err == nil {
		t.Error("Marshal(string) error = nil, want error")
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	var v account
	if err := New().Unmarshal([]byte("not bson at all"), &v); err == nil {
		t.Error("Unmarshal(invalid) error = nil, want error")
	}
}
