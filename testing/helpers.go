// Package testing provides fixtures and helpers for cloak tests.
package testing

import (
	"context"
	"strings"
	"testing"

	"github.com/zoobzio/cloak"
)

// TestEngine returns an engine on a fresh built-in registry, so tests never
// see registrations made by other tests.
func TestEngine(tb testing.TB, opts ...cloak.Option) *cloak.Engine {
	tb.Helper()
	return cloak.New(append([]cloak.Option{cloak.WithRegistry(cloak.NewBuiltinRegistry())}, opts...)...)
}

// Customer is a test type carrying one directive per common strategy.
type Customer struct {
	ID      string `json:"id" yaml:"id" msgpack:"id" bson:"id" xml:"id"`
	Name    string `json:"name" yaml:"name" msgpack:"name" bson:"name" xml:"name" mask:"NAME"`
	Phone   string `json:"phone" yaml:"phone" msgpack:"phone" bson:"phone" xml:"phone" mask:"PHONE"`
	Email   string `json:"email" yaml:"email" msgpack:"email" bson:"email" xml:"email" mask:"EMAIL"`
	IDCard  string `json:"id_card" yaml:"id_card" msgpack:"id_card" bson:"id_card" xml:"id_card" mask:"ID_CARD"`
	Bank    string `json:"bank" yaml:"bank" msgpack:"bank" bson:"bank" xml:"bank" mask:"BANK"`
	Balance string `json:"balance" yaml:"balance" msgpack:"balance" bson:"balance" xml:"balance" mask:"AMOUNT"`
	Note    string `json:"note" yaml:"note" msgpack:"note" bson:"note" xml:"note" mask:"-"`
}

// Clone implements Cloner[Customer].
func (c Customer) Clone() Customer { return c }

// SampleCustomer returns a Customer with realistic raw values.
func SampleCustomer() Customer {
	return Customer{
		ID:      "c-1",
		Name:    "张三",
		Phone:   "13812345678",
		Email:   "ab12345@github.com",
		IDCard:  "110101199003071234",
		Bank:    "6222021234567890123",
		Balance: "1234.56",
		Note:    "vip",
	}
}

// MaskedCustomer returns SampleCustomer as the built-in strategies mask it.
func MaskedCustomer() Customer {
	return Customer{
		ID:      "c-1",
		Name:    "张*",
		Phone:   "138****5678",
		Email:   "ab****@github.com",
		IDCard:  "110101*********234",
		Bank:    "622202*********0123",
		Balance: "¥1,******",
		Note:    "vip",
	}
}

// Member belongs to a Team and may report to another Member.
type Member struct {
	Name    string `mask:"NAME"`
	Phone   string `mask:"PHONE"`
	Manager *Member
	Team    *Team
}

// Team refers back to its members.
type Team struct {
	Name    string
	Members []*Member
}

// CyclicTeam returns a team whose members point back at it and share one
// manager: cycles and diamonds in one graph.
func CyclicTeam() *Team {
	team := &Team{Name: "core"}
	lead := &Member{Name: "李四", Phone: "13900001111", Team: team}
	team.Members = []*Member{
		lead,
		{Name: "王五", Phone: "13700002222", Manager: lead, Team: team},
		{Name: "赵六", Phone: "13600003333", Manager: lead, Team: team},
	}
	return team
}

// AssertContains fails tb unless every part occurs in s.
func AssertContains(tb testing.TB, s string, parts ...string) {
	tb.Helper()
	for _, p := range parts {
		if !strings.Contains(s, p) {
			tb.Errorf("output %q does not contain %q", s, p)
		}
	}
}

// AssertNotContains fails tb if any part occurs in s.
func AssertNotContains(tb testing.TB, s string, parts ...string) {
	tb.Helper()
	for _, p := range parts {
		if strings.Contains(s, p) {
			tb.Errorf("output %q contains %q", s, p)
		}
	}
}

// MustMask masks v with e and fails tb on error.
func MustMask[T any](tb testing.TB, e *cloak.Engine, v T) T {
	tb.Helper()
	out, err := cloak.MaskCopy(context.Background(), e, v)
	if err != nil {
		tb.Fatalf("MaskCopy() error: %v", err)
	}
	return out
}
