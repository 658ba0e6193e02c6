package cloak

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

// TagName is the struct tag carrying field directives: `mask:"BANK,6,4"`.
const TagName = "mask"

func init() {
	sentinel.Tag(TagName)
}

// Directive is the parsed form of a mask tag.
type Directive struct {
	Strategy string
	Args     []string
}

// parseDirective parses a mask tag value of the form NAME[,arg...].
func parseDirective(tag string) (*Directive, error) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil, ErrInvalidTag
	}

	d := &Directive{Strategy: name}
	for _, arg := range parts[1:] {
		d.Args = append(d.Args, strings.TrimSpace(arg))
	}
	return d, nil
}

// Field describes one field of a flattened struct type.
type Field struct {
	sentinel.FieldMetadata

	// Path is the index path from the described type, through embedded structs.
	Path []int

	// Exported reports whether the field can be written through Path.
	// Fields reached through an unexported embedded pointer cannot.
	Exported bool

	// Directive is nil for fields without a mask tag.
	Directive *Directive

	// deref marks positions in Path where an embedded pointer is dereferenced.
	deref []bool
}

// value walks Path from v, dereferencing embedded pointers.
// Returns false if an embedded pointer on the way is nil.
func (f *Field) value(v reflect.Value) (reflect.Value, bool) {
	current := v
	for i, idx := range f.Path {
		current = current.Field(idx)
		if f.deref[i] {
			if current.IsNil() {
				return reflect.Value{}, false
			}
			current = current.Elem()
		}
	}
	return current, true
}

// Descriptor is the cached field layout of a struct type.
// Fields are ordered ancestor-first: fields of embedded structs precede
// the declaring type's own fields.
type Descriptor struct {
	Type   reflect.Type
	Name   string
	Fields []Field

	// directives reports whether any field carries a directive.
	directives bool
}

// HasDirectives reports whether any field of the type carries a directive.
func (d *Descriptor) HasDirectives() bool {
	return d.directives
}

type descriptorEntry struct {
	desc   *Descriptor
	err    error
	report sync.Once
}

var (
	descriptors   = make(map[reflect.Type]*descriptorEntry)
	descriptorsMu sync.RWMutex
)

// Describe returns the cached descriptor for t, building it on first use.
// Pointer types are dereferenced. A type with invalid tags yields a
// descriptor without the offending directives alongside a *ConfigError.
func Describe(t reflect.Type) (*Descriptor, error) {
	e := describe(t)
	return e.desc, e.err
}

func describe(t reflect.Type) *descriptorEntry {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	// Fast path: read-lock cache check
	descriptorsMu.RLock()
	if cached, ok := descriptors[t]; ok {
		descriptorsMu.RUnlock()
		return cached
	}
	descriptorsMu.RUnlock()

	// Slow path: build and cache with write-lock
	descriptorsMu.Lock()
	defer descriptorsMu.Unlock()

	// Double-check pattern
	if cached, ok := descriptors[t]; ok {
		return cached
	}

	entry := &descriptorEntry{}
	if t.Kind() != reflect.Struct {
		entry.err = newConfigError(ErrNotStruct, "", t.String())
	} else {
		entry.desc, entry.err = buildDescriptor(t)
	}
	descriptors[t] = entry
	return entry
}

// Prepare builds and caches the descriptor of T ahead of the first traversal.
func Prepare[T any]() error {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Struct {
		meta := sentinel.Scan[T]()
		emitTypePrepared(context.Background(), meta.TypeName, len(meta.Fields))
	}
	_, err := Describe(t)
	return err
}

// ResetCache clears the descriptor cache.
// This is primarily useful for test isolation.
func ResetCache() {
	descriptorsMu.Lock()
	defer descriptorsMu.Unlock()
	descriptors = make(map[reflect.Type]*descriptorEntry)
}

func buildDescriptor(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{Type: t, Name: typeName(t)}
	chain := map[reflect.Type]bool{t: true}
	err := collectFields(d, t, nil, nil, true, chain)
	return d, err
}

// collectFields appends the fields of t to d, embedded structs first.
// chain holds the types on the current embedding path; embedding a type
// already on it is kept as a plain field.
func collectFields(d *Descriptor, t reflect.Type, parent, derefs []int, settable bool, chain map[reflect.Type]bool) error {
	var firstErr error
	flattened := make(map[int]bool)
	scanned := scannedFields(t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous || sf.Tag.Get(TagName) == "-" {
			continue
		}

		et, isPtr := sf.Type, false
		if et.Kind() == reflect.Ptr {
			et, isPtr = et.Elem(), true
		}
		if et.Kind() != reflect.Struct || chain[et] || isBuiltinLeaf(et) {
			continue
		}

		path := append(append([]int{}, parent...), i)
		nextDerefs := derefs
		if isPtr {
			nextDerefs = append(append([]int{}, derefs...), len(path)-1)
		}

		chain[et] = true
		err := collectFields(d, et, path, nextDerefs, settable && (sf.IsExported() || !isPtr), chain)
		delete(chain, et)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		flattened[i] = true
	}

	for i := 0; i < t.NumField(); i++ {
		if flattened[i] {
			continue
		}
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}

		path := append(append([]int{}, parent...), i)
		deref := make([]bool, len(path))
		for _, pos := range derefs {
			deref[pos] = true
		}

		f := Field{
			FieldMetadata: fieldMetadata(scanned, sf),
			Path:          path,
			Exported:      settable && sf.IsExported(),
			deref:         deref,
		}

		if tagged {
			f.Tags[TagName] = tag
			dir, err := parseDirective(tag)
			if err != nil {
				if firstErr == nil {
					firstErr = newConfigError(err, tag, d.Name+"."+sf.Name)
				}
			} else {
				f.Directive = dir
				d.directives = true
			}
		}

		d.Fields = append(d.Fields, f)
	}

	return firstErr
}

// scannedFields returns the metadata sentinel already holds for t, keyed
// by field name. Types never passed to Prepare yield nil.
func scannedFields(t reflect.Type) map[string]sentinel.FieldMetadata {
	meta, ok := sentinel.Lookup(t.String())
	if !ok {
		return nil
	}
	fields := make(map[string]sentinel.FieldMetadata, len(meta.Fields))
	for _, fm := range meta.Fields {
		fields[fm.Name] = fm
	}
	return fields
}

// fieldMetadata reuses a scanned entry for sf when one matches its type,
// and builds one otherwise. Tags are always a private copy.
func fieldMetadata(scanned map[string]sentinel.FieldMetadata, sf reflect.StructField) sentinel.FieldMetadata {
	if fm, ok := scanned[sf.Name]; ok && fm.ReflectType == sf.Type {
		tags := make(map[string]string, len(fm.Tags))
		for k, v := range fm.Tags {
			tags[k] = v
		}
		fm.Tags = tags
		fm.Index = sf.Index
		return fm
	}

	fm := sentinel.FieldMetadata{
		Name:        sf.Name,
		Type:        sf.Type.String(),
		ReflectType: sf.Type,
		Index:       sf.Index,
		Tags:        map[string]string{},
	}
	setKind(&fm, sf.Type)
	return fm
}

func setKind(fm *sentinel.FieldMetadata, t reflect.Type) {
	switch t.Kind() {
	case reflect.Struct:
		fm.Kind = sentinel.KindStruct
	case reflect.Ptr:
		fm.Kind = sentinel.KindPointer
	case reflect.Slice, reflect.Array:
		fm.Kind = sentinel.KindSlice
	case reflect.Map:
		fm.Kind = sentinel.KindMap
	case reflect.Interface:
		fm.Kind = sentinel.KindInterface
	default:
		fm.Kind = sentinel.KindScalar
	}
}

// typeName returns the short display name of t.
func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
