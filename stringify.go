package cloak

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Stringify renders v as text with every directive-tagged string masked.
//
// Structs render as Name{field=value, ...}, slices and arrays as [a, b],
// maps as {k=v, ...} sorted by key, and nil as null. A reference that
// closes a cycle renders as [circular reference: Type@0xADDR]. The
// original value is never modified.
func (e *Engine) Stringify(ctx context.Context, v any) string {
	start := time.Now()
	w := e.newWalker(ctx, modeStringify)

	var b strings.Builder
	w.render(&b, reflect.ValueOf(v))

	e.finish(w, start, v)
	return b.String()
}

func (w *walker) render(b *strings.Builder, v reflect.Value) {
	switch w.e.shapeOf(v) {
	case shapeNull:
		b.WriteString("null")

	case shapeLeaf:
		w.renderLeaf(b, v)

	case shapeInterface:
		w.render(b, v.Elem())

	case shapePointer:
		elem := v.Elem()
		if w.e.shapeOf(elem) == shapeLeaf {
			w.renderLeaf(b, elem)
			return
		}
		id, _ := identityOf(v)
		if !w.enter(id) {
			writeCycle(b, v)
			return
		}
		defer w.leave(id)
		w.render(b, elem)

	case shapeSequence, shapeAssociation:
		id, tracked := identityOf(v)
		if tracked {
			if !w.enter(id) {
				writeCycle(b, v)
				return
			}
			defer w.leave(id)
		}
		if !w.descend() {
			b.WriteString("[max depth]")
			return
		}
		defer w.ascend()
		if v.Kind() == reflect.Map {
			w.renderMap(b, v, w.render)
		} else {
			w.renderList(b, v, w.render)
		}

	case shapeArray:
		if !w.descend() {
			b.WriteString("[max depth]")
			return
		}
		defer w.ascend()
		w.renderList(b, v, w.render)

	case shapeComposite:
		if !w.descend() {
			b.WriteString("[max depth]")
			return
		}
		defer w.ascend()
		w.renderStruct(b, v)
	}
}

func (w *walker) renderStruct(b *strings.Builder, v reflect.Value) {
	desc := w.descriptor(v.Type())
	b.WriteString(desc.Name)
	b.WriteByte('{')

	written := 0
	for i := range desc.Fields {
		f := &desc.Fields[i]
		fv, ok := f.value(v)
		if !ok {
			continue
		}
		if written > 0 {
			b.WriteString(", ")
		}
		written++

		b.WriteString(f.Name)
		b.WriteByte('=')
		if f.Directive != nil && w.renderMasked(b, desc.Name, f, fv) {
			continue
		}
		w.render(b, fv)
	}
	b.WriteByte('}')
}

// renderMasked writes the masked form of a directive-tagged field. It
// reports false when the field holds nothing a strategy can mask.
func (w *walker) renderMasked(b *strings.Builder, owner string, f *Field, fv reflect.Value) bool {
	if s, ok := stringTarget(fv); ok {
		w.writeString(b, w.apply(owner, f, s.String()))
		return true
	}

	maskItem := func(b *strings.Builder, item reflect.Value) {
		if s, ok := stringTarget(item); ok {
			w.writeString(b, w.apply(owner, f, s.String()))
			return
		}
		w.render(b, item)
	}

	switch t := fv.Type(); {
	case fv.Kind() == reflect.Interface || fv.Kind() == reflect.Ptr:
		return false
	case isBytes(t) && !fv.IsNil():
		w.writeString(b, w.apply(owner, f, string(fv.Bytes())))
		return true
	case isStringSlice(t) && !fv.IsNil():
		w.renderList(b, fv, maskItem)
		return true
	case isStringMap(t) && !fv.IsNil():
		w.renderMap(b, fv, maskItem)
		return true
	}
	return false
}

func (w *walker) renderList(b *strings.Builder, v reflect.Value, item func(*strings.Builder, reflect.Value)) {
	b.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		item(b, v.Index(i))
	}
	b.WriteByte(']')
}

func (w *walker) renderMap(b *strings.Builder, v reflect.Value, value func(*strings.Builder, reflect.Value)) {
	type entry struct{ key, val string }
	entries := make([]entry, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		var kb, vb strings.Builder
		w.render(&kb, iter.Key())
		value(&vb, iter.Value())
		entries = append(entries, entry{key: kb.String(), val: vb.String()})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].val < entries[j].val
	})

	b.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.key)
		b.WriteByte('=')
		b.WriteString(e.val)
	}
	b.WriteByte('}')
}

func (w *walker) renderLeaf(b *strings.Builder, v reflect.Value) {
	if text, ok := printed(v); ok {
		if v.Kind() == reflect.String {
			w.writeString(b, text)
		} else {
			w.writeText(b, text)
		}
		return
	}

	switch v.Kind() {
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 32))
	case reflect.Float64:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64:
		b.WriteString(strconv.FormatComplex(v.Complex(), 'g', -1, 64))
	case reflect.Complex128:
		b.WriteString(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.String:
		w.writeString(b, v.String())
	case reflect.Slice:
		w.writeString(b, string(v.Bytes()))
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		fmt.Fprintf(b, "%s@%#x", typeName(v.Type()), v.Pointer())
	default:
		b.WriteString("<" + v.Type().String() + ">")
	}
}

// printed returns the text a value gives for itself through time.Time
// formatting, fmt.Stringer or error. Values read through unexported fields
// cannot be asked.
func printed(v reflect.Value) (text string, ok bool) {
	if !v.CanInterface() {
		return "", false
	}

	defer func() {
		if r := recover(); r != nil {
			text, ok = "[unprintable: "+typeName(v.Type())+"]", true
		}
	}()

	switch x := v.Interface().(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return x.String(), true
	case error:
		return x.Error(), true
	}
	if v.CanAddr() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return s.String(), true
		}
	}
	return "", false
}

// writeString writes a string value, quoted when the engine asks for it.
func (w *walker) writeString(b *strings.Builder, s string) {
	if !w.e.quoted {
		w.writeText(b, s)
		return
	}
	b.WriteByte('"')
	w.writeText(b, s)
	b.WriteByte('"')
}

// writeText escapes backslashes and control characters, plus double quotes
// in quoted mode.
func (w *walker) writeText(b *strings.Builder, s string) {
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '"' && w.e.quoted:
			b.WriteString(`\"`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
}

func writeCycle(b *strings.Builder, v reflect.Value) {
	fmt.Fprintf(b, "[circular reference: %s@%#x]", typeName(v.Type()), v.Pointer())
}
