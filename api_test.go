package cloak_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/zoobzio/cloak"
)

type Customer struct {
	Name  string `mask:"NAME"`
	Phone string `mask:"PHONE"`
	Note  string `mask:"-"`
}

func TestString(t *testing.T) {
	got := cloak.String(Customer{Name: "张三", Phone: "13812345678", Note: "vip"})
	if got != "Customer{Name=张*, Phone=138****5678}" {
		t.Errorf("String() = %q", got)
	}
}

func TestMask(t *testing.T) {
	in := &Customer{Name: "张三", Phone: "13812345678"}

	out, err := cloak.Mask(context.Background(), in)
	if err != nil {
		t.Fatalf("Mask() error: %v", err)
	}
	if out.Name != "张*" || out.Phone != "138****5678" {
		t.Errorf("Mask() = %+v", out)
	}
	if in.Name != "张三" {
		t.Error("Mask() modified its input")
	}
}

func TestRegister_CustomStrategy(t *testing.T) {
	type Ticket struct {
		Code string `mask:"TICKET,2"`
	}

	reg := cloak.NewBuiltinRegistry()
	reg.Register(cloak.StrategyFunc("TICKET", func(value string, args []string) string {
		n, err := strconv.Atoi(args[0])
		if err != nil || n > len(value) {
			return value
		}
		return value[:n] + "…"
	}))
	e := cloak.New(cloak.WithRegistry(reg))

	if got := e.Stringify(context.Background(), Ticket{Code: "AB-1234"}); got != "Ticket{Code=AB…}" {
		t.Errorf("Stringify() = %q, want %q", got, "Ticket{Code=AB…}")
	}
}

func ExampleEngine_Stringify() {
	type User struct {
		Name  string `mask:"NAME"`
		Phone string `mask:"PHONE"`
		Email string `mask:"EMAIL"`
	}

	e := cloak.New()
	fmt.Println(e.Stringify(context.Background(), User{
		Name:  "张三",
		Phone: "13812345678",
		Email: "ab12345@github.com",
	}))
	// Output: User{Name=张*, Phone=138****5678, Email=ab****@github.com}
}
