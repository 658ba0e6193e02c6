package cloak

import (
	"context"
	"errors"
	"reflect"
	"time"
)

var errUnexported = errors.New("unexported field")

// mutator masks an addressable graph in place.
type mutator struct {
	*walker

	// rewritten holds the locations already masked in this call, so a
	// child shared by two parents is masked once.
	rewritten map[identity]struct{}

	// slots keeps every temporary slot reachable until the call ends.
	// A collected slot's address could be handed out again and be
	// mistaken for a location already in rewritten.
	slots []reflect.Value
}

// Mutate returns a masked deep copy of v. The argument is never modified.
//
// The copy is made by the engine Copier. Only exported fields are written;
// an unexported field with a directive is reported and left as copied.
func (e *Engine) Mutate(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	start := time.Now()
	w := e.newWalker(ctx, modeMutate)

	cp, err := e.copier.Copy(v)
	if err != nil {
		err = newCodecError(ErrCopy, err)
		e.finishErr(w, start, v, err)
		return nil, err
	}

	out := e.maskValue(w, cp)
	e.finish(w, start, v)
	return out, nil
}

// MaskCopy returns a masked copy of v with its static type preserved.
// Types implementing Cloner[T] provide the copy themselves.
func MaskCopy[T any](ctx context.Context, e *Engine, v T) (T, error) {
	if c, ok := any(v).(Cloner[T]); ok {
		start := time.Now()
		w := e.newWalker(ctx, modeMutate)
		clone := c.Clone()
		e.maskInPlace(w, reflect.ValueOf(&clone).Elem())
		e.finish(w, start, v)
		return clone, nil
	}

	out, err := e.Mutate(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	if out == nil {
		var zero T
		return zero, nil
	}
	return out.(T), nil
}

// maskValue masks cp, a private copy, and returns it. Non-pointer values
// are moved into an addressable slot first.
func (e *Engine) maskValue(w *walker, cp any) any {
	rv := reflect.ValueOf(cp)
	if !rv.IsValid() {
		return cp
	}
	slot := reflect.New(rv.Type()).Elem()
	slot.Set(rv)
	e.maskInPlace(w, slot)
	return slot.Interface()
}

func (e *Engine) maskInPlace(w *walker, v reflect.Value) {
	m := &mutator{walker: w, rewritten: make(map[identity]struct{})}
	m.visit(v)
}

func (m *mutator) visit(v reflect.Value) {
	switch m.e.shapeOf(v) {
	case shapeNull, shapeLeaf:
		return

	case shapeInterface:
		elem := v.Elem()
		if !needsSlot(elem) {
			m.visit(elem)
			return
		}
		if !v.CanSet() {
			return
		}
		slot := m.slot(elem)
		m.visit(slot)
		v.Set(slot)

	case shapePointer:
		elem := v.Elem()
		if m.e.shapeOf(elem) == shapeLeaf {
			return
		}
		id, _ := identityOf(v)
		if !m.enter(id) {
			return
		}
		defer m.leave(id)
		m.visit(elem)

	case shapeSequence:
		id, tracked := identityOf(v)
		if tracked {
			if !m.enter(id) {
				return
			}
			defer m.leave(id)
		}
		if !m.descend() {
			return
		}
		defer m.ascend()
		for i := 0; i < v.Len(); i++ {
			m.visit(v.Index(i))
		}

	case shapeArray:
		if !v.CanAddr() || !m.descend() {
			return
		}
		defer m.ascend()
		for i := 0; i < v.Len(); i++ {
			m.visit(v.Index(i))
		}

	case shapeAssociation:
		id, tracked := identityOf(v)
		if tracked {
			if !m.enter(id) {
				return
			}
			defer m.leave(id)
		}
		if !m.descend() {
			return
		}
		defer m.ascend()
		m.visitMap(v)

	case shapeComposite:
		if !v.CanAddr() || !m.descend() {
			return
		}
		defer m.ascend()
		m.visitStruct(v)
	}
}

// visitMap masks map values. Map elements are not addressable, so values
// that need a slot are copied out, masked and stored back.
func (m *mutator) visitMap(v reflect.Value) {
	if !v.CanInterface() {
		return
	}
	iter := v.MapRange()
	for iter.Next() {
		val := iter.Value()
		if !needsSlot(val) {
			m.visit(val)
			continue
		}
		slot := m.slot(val)
		m.visit(slot)
		v.SetMapIndex(iter.Key(), slot)
	}
}

// slot returns an addressable copy of v that lives as long as the call.
func (m *mutator) slot(v reflect.Value) reflect.Value {
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	m.slots = append(m.slots, ptr)
	return ptr.Elem()
}

func (m *mutator) visitStruct(v reflect.Value) {
	if v.CanAddr() && v.Addr().CanInterface() {
		if mk, ok := v.Addr().Interface().(Maskable); ok {
			if err := mk.Mask(m.e.registry); err != nil {
				m.fail(typeName(v.Type()), "*", "override", err)
			}
			return
		}
	}

	desc := m.descriptor(v.Type())
	for i := range desc.Fields {
		f := &desc.Fields[i]
		if !f.Exported {
			if f.Directive != nil {
				m.fail(desc.Name, f.Name, "write", errUnexported)
			}
			continue
		}

		fv, ok := f.value(v)
		if !ok {
			continue
		}
		if m.e.shapeOf(fv) != shapeLeaf {
			m.visit(fv)
		}
		if f.Directive != nil {
			m.maskField(desc.Name, f, fv)
		}
	}
}

// maskField writes the masked form of a directive-tagged field.
func (m *mutator) maskField(owner string, f *Field, fv reflect.Value) {
	switch t := fv.Type(); {
	case fv.Kind() == reflect.String:
		m.setString(owner, f, fv)

	case fv.Kind() == reflect.Ptr:
		if !fv.IsNil() && fv.Elem().Kind() == reflect.String {
			m.setString(owner, f, fv.Elem())
		}

	case fv.Kind() == reflect.Interface:
		s, ok := stringTarget(fv)
		if !ok || !m.claim(fv) {
			return
		}
		masked := reflect.New(s.Type()).Elem()
		masked.SetString(m.apply(owner, f, s.String()))
		if !masked.Type().AssignableTo(t) || !fv.CanSet() {
			m.fail(owner, f.Name, "write", errors.New("interface value not assignable"))
			return
		}
		fv.Set(masked)

	case isBytes(t):
		if fv.IsNil() || !m.claim(fv) {
			return
		}
		fv.SetBytes([]byte(m.apply(owner, f, string(fv.Bytes()))))

	case isStringSlice(t):
		for i := 0; i < fv.Len(); i++ {
			m.setString(owner, f, fv.Index(i))
		}

	case isStringMap(t):
		if fv.IsNil() {
			return
		}
		if id, _ := identityOf(fv); fv.Len() > 0 && !m.claimID(id) {
			return
		}
		iter := fv.MapRange()
		for iter.Next() {
			masked := reflect.New(t.Elem()).Elem()
			masked.SetString(m.apply(owner, f, iter.Value().String()))
			fv.SetMapIndex(iter.Key(), masked)
		}
	}
}

func (m *mutator) setString(owner string, f *Field, fv reflect.Value) {
	if !fv.CanSet() {
		m.fail(owner, f.Name, "write", errUnexported)
		return
	}
	if !m.claim(fv) {
		return
	}
	fv.SetString(m.apply(owner, f, fv.String()))
}

// claim reports whether the location of fv has not been masked yet in
// this call, and marks it.
func (m *mutator) claim(fv reflect.Value) bool {
	if !fv.CanAddr() {
		return true
	}
	return m.claimID(identity{ptr: fv.UnsafeAddr(), typ: fv.Type()})
}

func (m *mutator) claimID(id identity) bool {
	if _, done := m.rewritten[id]; done {
		return false
	}
	m.rewritten[id] = struct{}{}
	return true
}

// needsSlot reports whether v is a value that must be copied into an
// addressable slot before it can be masked.
func needsSlot(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Struct, reflect.Array:
		return true
	case reflect.Interface:
		return !v.IsNil() && needsSlot(v.Elem())
	}
	return false
}
