package cloak

import (
	"errors"
	"reflect"
)

// Cloner allows types to provide deep copy logic.
// MaskCopy uses it instead of the engine Copier.
//
// The Clone method must return a deep copy where modifications to the clone
// do not affect the original value. For types containing pointers, slices, or maps,
// ensure these are also copied to achieve true isolation.
//
// For simple value types with no pointers, slices, or maps, Clone can simply return
// the receiver value:
//
//	func (u User) Clone() User { return u }
type Cloner[T any] interface {
	Clone() T
}

// Copier makes the private copy that mutate mode masks.
// The copy must share no mutable state with v.
type Copier interface {
	Copy(v any) (any, error)
}

// CopierFunc adapts a function to the Copier interface.
type CopierFunc func(v any) (any, error)

// Copy calls f(v).
func (f CopierFunc) Copy(v any) (any, error) {
	return f(v)
}

type reflectCopier struct{}

// ReflectCopier returns the default Copier. It deep-copies through exported
// fields, slices, maps, pointers and interfaces. Shared references stay
// shared in the copy and cycles are reproduced. Unexported fields are
// copied shallowly; mutate mode never writes them.
func ReflectCopier() Copier {
	return reflectCopier{}
}

func (reflectCopier) Copy(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	c := &copyState{seen: make(map[identity]reflect.Value)}
	return c.copy(reflect.ValueOf(v)).Interface(), nil
}

type copyState struct {
	seen map[identity]reflect.Value
}

func (c *copyState) copy(src reflect.Value) reflect.Value {
	t := src.Type()
	switch src.Kind() {
	case reflect.Ptr:
		if src.IsNil() {
			return reflect.Zero(t)
		}
		id := identity{ptr: src.Pointer(), typ: t}
		if dst, ok := c.seen[id]; ok {
			return dst
		}
		dst := reflect.New(t.Elem())
		c.seen[id] = dst
		dst.Elem().Set(c.copy(src.Elem()))
		return dst

	case reflect.Interface:
		if src.IsNil() {
			return reflect.Zero(t)
		}
		dst := reflect.New(t).Elem()
		dst.Set(c.copy(src.Elem()))
		return dst

	case reflect.Slice:
		if src.IsNil() {
			return reflect.Zero(t)
		}
		id := identity{ptr: src.Pointer(), n: src.Len(), typ: t}
		if dst, ok := c.seen[id]; ok && src.Len() > 0 {
			return dst
		}
		dst := reflect.MakeSlice(t, src.Len(), src.Len())
		c.seen[id] = dst
		if t.Elem().Kind() == reflect.Uint8 {
			reflect.Copy(dst, src)
			return dst
		}
		for i := 0; i < src.Len(); i++ {
			dst.Index(i).Set(c.copy(src.Index(i)))
		}
		return dst

	case reflect.Map:
		if src.IsNil() {
			return reflect.Zero(t)
		}
		id := identity{ptr: src.Pointer(), typ: t}
		if dst, ok := c.seen[id]; ok {
			return dst
		}
		dst := reflect.MakeMapWithSize(t, src.Len())
		c.seen[id] = dst
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(c.copy(iter.Key()), c.copy(iter.Value()))
		}
		return dst

	case reflect.Struct:
		dst := reflect.New(t).Elem()
		dst.Set(src)
		if !isBuiltinLeaf(t) {
			c.copyFields(dst, src)
		}
		return dst

	case reflect.Array:
		dst := reflect.New(t).Elem()
		for i := 0; i < src.Len(); i++ {
			dst.Index(i).Set(c.copy(src.Index(i)))
		}
		return dst

	default:
		return src
	}
}

// copyFields deep-copies the exported fields of src into dst, including
// the exported fields promoted through unexported embedded structs.
func (c *copyState) copyFields(dst, src reflect.Value) {
	t := src.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		switch {
		case sf.IsExported():
			dst.Field(i).Set(c.copy(src.Field(i)))
		case sf.Anonymous && sf.Type.Kind() == reflect.Struct:
			c.copyFields(dst.Field(i), src.Field(i))
		}
	}
}

var errNilCodec = errors.New("nil codec")

type codecCopier struct {
	codec Codec
}

// CodecCopier returns a Copier that round-trips values through codec.
// The copy has the fields the codec serializes; cyclic graphs fail to
// encode and are reported as ErrCopy by Mutate.
func CodecCopier(codec Codec) Copier {
	return codecCopier{codec: codec}
}

func (c codecCopier) Copy(v any) (any, error) {
	if c.codec == nil {
		return nil, errNilCodec
	}
	if v == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return v, nil
	}

	data, err := c.codec.Marshal(v)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}

	// Pointers decode into a fresh element rather than a pointer to pointer.
	if rv.Kind() == reflect.Ptr {
		out := reflect.New(rv.Type().Elem())
		if err := c.codec.Unmarshal(data, out.Interface()); err != nil {
			return nil, newCodecError(ErrUnmarshal, err)
		}
		return out.Interface(), nil
	}

	out := reflect.New(rv.Type())
	if err := c.codec.Unmarshal(data, out.Interface()); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return out.Elem().Interface(), nil
}
