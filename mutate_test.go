package cloak

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Order shares its buyer with other orders.
type Order struct {
	ID    string
	Buyer *Contact
}

// Envelope hides its payload behind an interface.
type Envelope struct {
	Payload any
	Items   [2]Contact
	ByID    map[string]Contact
}

// Row is held by value in large containers.
type Row struct {
	ID    int
	Phone string `mask:"GC_PHONE"`
}

// Account embeds an exported pointer.
type Account struct {
	*Contact
	ID string
}

// PaymentCard masks itself.
type PaymentCard struct {
	Number string
	Holder string `mask:"NAME"`
}

func (c *PaymentCard) Mask(strategies Lookup) error {
	s, ok := strategies.Get(StrategyCard)
	if !ok {
		return errors.New("no card strategy")
	}
	c.Number = s.Apply(c.Number, nil)
	return nil
}

// BrokenCard fails its own masking.
type BrokenCard struct {
	Number string
}

func (c *BrokenCard) Mask(Lookup) error {
	return errors.New("broken")
}

// clonedContact counts Clone calls.
type clonedContact struct {
	Phone string `mask:"PHONE"`
}

var cloneCalls int

func (c clonedContact) Clone() clonedContact {
	cloneCalls++
	return c
}

func TestMutate_NonDestructive(t *testing.T) {
	e := newTestEngine()

	original := &Contact{Email: "ab12345@github.com", Phone: testPhone}
	out, err := e.Mutate(context.Background(), original)
	if err != nil {
		t.Fatalf("Mutate() error: %v", err)
	}

	masked := out.(*Contact)
	if masked == original {
		t.Fatal("Mutate() returned the original pointer")
	}
	if masked.Phone != testPhoneMasked {
		t.Errorf("masked Phone = %q, want %q", masked.Phone, testPhoneMasked)
	}
	if masked.Email != "ab****@github.com" {
		t.Errorf("masked Email = %q, want %q", masked.Email, "ab****@github.com")
	}
	if original.Phone != testPhone || original.Email != "ab12345@github.com" {
		t.Errorf("original modified: %+v", original)
	}
}

func TestMaskCopy_Value(t *testing.T) {
	e := newTestEngine()

	out, err := MaskCopy(context.Background(), e, Contact{Phone: testPhone})
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if out.Phone != testPhoneMasked {
		t.Errorf("MaskCopy() Phone = %q, want %q", out.Phone, testPhoneMasked)
	}
}

func TestMaskCopy_SharedChild(t *testing.T) {
	e := newTestEngine()

	shared := &Contact{Phone: testPhone}
	orders := []Order{{ID: "1", Buyer: shared}, {ID: "2", Buyer: shared}}

	out, err := MaskCopy(context.Background(), e, orders)
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}

	for i, o := range out {
		if o.Buyer.Phone != testPhoneMasked {
			t.Errorf("order %d Buyer.Phone = %q, want %q", i, o.Buyer.Phone, testPhoneMasked)
		}
	}
	if out[0].Buyer != out[1].Buyer {
		t.Error("shared child should stay shared in the copy")
	}
	if shared.Phone != testPhone {
		t.Errorf("original child modified: %q", shared.Phone)
	}
}

func TestMaskCopy_Cycle(t *testing.T) {
	e := newTestEngine()

	n := &Node{Name: "a"}
	n.Self = n

	out, err := MaskCopy(context.Background(), e, n)
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if out == n {
		t.Fatal("MaskCopy() returned the original pointer")
	}
	if out.Self != out {
		t.Error("cycle should be reproduced in the copy")
	}
}

func TestMaskCopy_ContainerCycle(t *testing.T) {
	e := newTestEngine()

	f := &Folder{Name: "root"}
	f.Children = []any{f, &Contact{Phone: testPhone}}

	out, err := MaskCopy(context.Background(), e, f)
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if got := out.Children[1].(*Contact).Phone; got != testPhoneMasked {
		t.Errorf("nested Phone = %q, want %q", got, testPhoneMasked)
	}
	if out.Children[0].(*Folder) != out {
		t.Error("container cycle should point at the copy")
	}
}

func TestMaskCopy_Collections(t *testing.T) {
	e := newTestEngine()

	phone := testPhone
	in := Bag{
		Phones: []string{testPhone},
		ByKind: map[string]string{"home": testPhone},
		Raw:    []byte("password"),
		Ptr:    &phone,
		Any:    testPhone,
		Count:  7,
	}

	out, err := MaskCopy(context.Background(), e, in)
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}

	if out.Phones[0] != testPhoneMasked {
		t.Errorf("Phones[0] = %q, want %q", out.Phones[0], testPhoneMasked)
	}
	if out.ByKind["home"] != testPhoneMasked {
		t.Errorf("ByKind[home] = %q, want %q", out.ByKind["home"], testPhoneMasked)
	}
	if string(out.Raw) != testRedactedValue {
		t.Errorf("Raw = %q, want %q", out.Raw, testRedactedValue)
	}
	if *out.Ptr != testPhoneMasked {
		t.Errorf("*Ptr = %q, want %q", *out.Ptr, testPhoneMasked)
	}
	if out.Any != testPhoneMasked {
		t.Errorf("Any = %v, want %q", out.Any, testPhoneMasked)
	}
	if out.Count != 7 {
		t.Errorf("Count = %d, want 7", out.Count)
	}

	if phone != testPhone || in.Phones[0] != testPhone || in.ByKind["home"] != testPhone || string(in.Raw) != "password" {
		t.Error("MaskCopy() modified its input")
	}
}

func TestMaskCopy_InterfacesArraysMaps(t *testing.T) {
	e := newTestEngine()

	in := Envelope{
		Payload: Contact{Phone: testPhone},
		Items:   [2]Contact{{Phone: testPhone}, {Phone: "15900001111"}},
		ByID:    map[string]Contact{"a": {Phone: testPhone}},
	}

	out, err := MaskCopy(context.Background(), e, in)
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}

	if got := out.Payload.(Contact).Phone; got != testPhoneMasked {
		t.Errorf("Payload.Phone = %q, want %q", got, testPhoneMasked)
	}
	if out.Items[0].Phone != testPhoneMasked || out.Items[1].Phone != "159****1111" {
		t.Errorf("Items = %+v", out.Items)
	}
	if out.ByID["a"].Phone != testPhoneMasked {
		t.Errorf("ByID[a].Phone = %q, want %q", out.ByID["a"].Phone, testPhoneMasked)
	}
	if in.ByID["a"].Phone != testPhone || in.Payload.(Contact).Phone != testPhone {
		t.Error("MaskCopy() modified its input")
	}
}

func TestMaskCopy_EmbeddedPointer(t *testing.T) {
	e := newTestEngine()

	out, err := MaskCopy(context.Background(), e, Account{Contact: &Contact{Phone: testPhone}, ID: "acc"})
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if out.Phone != testPhoneMasked {
		t.Errorf("promoted Phone = %q, want %q", out.Phone, testPhoneMasked)
	}

	empty, err := MaskCopy(context.Background(), e, Account{ID: "acc"})
	if err != nil || empty.Contact != nil {
		t.Errorf("MaskCopy() with nil embedded = %+v, %v", empty, err)
	}
}

func TestMaskCopy_Maskable(t *testing.T) {
	e := newTestEngine()

	out, err := MaskCopy(context.Background(), e, &PaymentCard{Number: "4111111111111111", Holder: "张三"})
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if out.Number != "************1111" {
		t.Errorf("Number = %q, want %q", out.Number, "************1111")
	}
	// The override replaces tag processing.
	if out.Holder != "张三" {
		t.Errorf("Holder = %q, want %q", out.Holder, "张三")
	}
}

func TestMaskCopy_MaskableError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newTestEngine(WithLogger(zap.New(core)))

	out, err := MaskCopy(context.Background(), e, BrokenCard{Number: "4111"})
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if out.Number != "4111" {
		t.Errorf("Number = %q, want %q", out.Number, "4111")
	}
	if logs.FilterMessage("field masking skipped").Len() != 1 {
		t.Error("expected the override failure to be logged")
	}
}

func TestMaskCopy_Cloner(t *testing.T) {
	e := newTestEngine()
	cloneCalls = 0

	out, err := MaskCopy(context.Background(), e, clonedContact{Phone: testPhone})
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if cloneCalls != 1 {
		t.Errorf("Clone() called %d times, want 1", cloneCalls)
	}
	if out.Phone != testPhoneMasked {
		t.Errorf("Phone = %q, want %q", out.Phone, testPhoneMasked)
	}
}

func TestMutate_UnexportedDirective(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newTestEngine(WithLogger(zap.New(core)))

	out, err := MaskCopy(context.Background(), e, User{name: "张三", phone: testPhone})
	if err != nil {
		t.Fatalf("MaskCopy() error: %v", err)
	}
	if out.phone != testPhone {
		t.Errorf("phone = %q, want it left as copied", out.phone)
	}

	entries := logs.FilterMessage("field masking skipped").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d field failures, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["field"]; got != "phone" {
		t.Errorf("logged field = %v, want phone", got)
	}
}

func TestMutate_UnknownStrategy(t *testing.T) {
	ctx := context.Background()

	open, _ := MaskCopy(ctx, newTestEngine(), Secret{Value: "hunter2"})
	if open.Value != "hunter2" {
		t.Errorf("fail-open Value = %q, want raw", open.Value)
	}

	closed, _ := MaskCopy(ctx, newTestEngine(WithPolicy(FailClosed)), Secret{Value: "hunter2"})
	if closed.Value != "*******" {
		t.Errorf("fail-closed Value = %q, want full mask", closed.Value)
	}
}

func TestMutate_Nil(t *testing.T) {
	out, err := newTestEngine().Mutate(context.Background(), nil)
	if out != nil || err != nil {
		t.Errorf("Mutate(nil) = %v, %v, want nil, nil", out, err)
	}
}

func TestMutate_CopyError(t *testing.T) {
	e := newTestEngine(WithCopier(CopierFunc(func(any) (any, error) {
		return nil, errors.New("copy refused")
	})))

	_, err := e.Mutate(context.Background(), Contact{})
	if !errors.Is(err, ErrCopy) {
		t.Errorf("Mutate() error = %v, want ErrCopy", err)
	}

	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Errorf("expected *CodecError, got %T", err)
	}
}

// Masking collects garbage between rows so that a released slot address
// would be reused by the next row.
func TestMaskCopy_ManyValuesInContainers(t *testing.T) {
	phone := PhoneStrategy()
	reg := NewBuiltinRegistry().Register(StrategyFunc("GC_PHONE", func(v string, args []string) string {
		runtime.GC()
		return phone.Apply(v, args)
	}))
	e := newTestEngine(WithRegistry(reg))

	const n = 500
	byAny := make(map[int]any, n)
	byValue := make(map[string]Row, n)
	list := make([]any, n)
	for i := 0; i < n; i++ {
		r := Row{ID: i, Phone: testPhone}
		byAny[i] = r
		byValue[strconv.Itoa(i)] = r
		list[i] = r
	}

	gotAny, err := MaskCopy(context.Background(), e, byAny)
	if err != nil {
		t.Fatalf("MaskCopy(map[int]any) error: %v", err)
	}
	for k, v := range gotAny {
		if p := v.(Row).Phone; p != testPhoneMasked {
			t.Errorf("map[int]any[%d].Phone = %q, want %q", k, p, testPhoneMasked)
		}
	}

	gotValue, err := MaskCopy(context.Background(), e, byValue)
	if err != nil {
		t.Fatalf("MaskCopy(map[string]Row) error: %v", err)
	}
	for k, v := range gotValue {
		if v.Phone != testPhoneMasked {
			t.Errorf("map[string]Row[%s].Phone = %q, want %q", k, v.Phone, testPhoneMasked)
		}
	}

	gotList, err := MaskCopy(context.Background(), e, list)
	if err != nil {
		t.Fatalf("MaskCopy([]any) error: %v", err)
	}
	for i, v := range gotList {
		if p := v.(Row).Phone; p != testPhoneMasked {
			t.Errorf("[]any[%d].Phone = %q, want %q", i, p, testPhoneMasked)
		}
	}
}
