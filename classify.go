package cloak

import (
	"fmt"
	"math/big"
	"net"
	"net/netip"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// shape is the traversal category of a value.
type shape int

const (
	shapeNull shape = iota
	shapeLeaf
	shapeSequence
	shapeArray
	shapeAssociation
	shapeComposite
	shapePointer
	shapeInterface
)

var stringerType = reflect.TypeFor[fmt.Stringer]()

// builtinLeaves are struct and array types rendered as a whole.
var builtinLeaves = map[reflect.Type]bool{
	reflect.TypeFor[time.Time]():       true,
	reflect.TypeFor[time.Location]():   true,
	reflect.TypeFor[uuid.UUID]():       true,
	reflect.TypeFor[decimal.Decimal](): true,
	reflect.TypeFor[big.Int]():         true,
	reflect.TypeFor[big.Float]():       true,
	reflect.TypeFor[big.Rat]():         true,
	reflect.TypeFor[net.IP]():          true,
	reflect.TypeFor[net.IPNet]():       true,
	reflect.TypeFor[url.URL]():         true,
	reflect.TypeFor[netip.Addr]():      true,
	reflect.TypeFor[netip.Prefix]():    true,
}

func isBuiltinLeaf(t reflect.Type) bool {
	return builtinLeaves[t]
}

// isLeafType reports whether values of t are rendered without descending.
// Structs that print themselves and have no exported or tagged fields are
// leaves, as are arrays that print themselves.
func (e *Engine) isLeafType(t reflect.Type) bool {
	if builtinLeaves[t] || e.leafTypes[t] {
		return true
	}
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Struct:
		if !printsItself(t) {
			return false
		}
		if d := describe(t).desc; d != nil && d.HasDirectives() {
			return false
		}
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).IsExported() {
				return false
			}
		}
		return true
	case reflect.Array:
		return printsItself(t)
	case reflect.Ptr, reflect.Interface, reflect.Map:
		return false
	default:
		return true
	}
}

func printsItself(t reflect.Type) bool {
	return t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)
}

// shapeOf classifies v. Nil pointers, interfaces, maps and slices are null.
func (e *Engine) shapeOf(v reflect.Value) shape {
	if !v.IsValid() {
		return shapeNull
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return shapeNull
		}
		return shapePointer
	case reflect.Interface:
		if v.IsNil() {
			return shapeNull
		}
		return shapeInterface
	case reflect.Map:
		if v.IsNil() {
			return shapeNull
		}
		return shapeAssociation
	case reflect.Slice:
		if v.IsNil() {
			return shapeNull
		}
		if e.isLeafType(v.Type()) {
			return shapeLeaf
		}
		return shapeSequence
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return shapeNull
		}
		return shapeLeaf
	}
	if e.isLeafType(v.Type()) {
		return shapeLeaf
	}
	switch v.Kind() {
	case reflect.Array:
		return shapeArray
	case reflect.Struct:
		return shapeComposite
	}
	return shapeLeaf
}

// identity keys a value with reference semantics in the visited set.
type identity struct {
	ptr uintptr
	n   int
	typ reflect.Type
}

// identityOf returns the identity of a pointer, non-empty slice or non-empty
// map. Values without children have no identity and never close a cycle.
func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Ptr:
		return identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), n: v.Len(), typ: v.Type()}, true
	case reflect.Map:
		if v.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type()}, true
	}
	return identity{}, false
}
