package schema

import (
	"fmt"

	"github.com/noders-team/go-dbmgmt/pkg/types"
)

// Record is an instance of a RecordType. Static records are structs embedding
// Presence; dynamic records are *Dynamic.
type Record interface {
	RecordType() *RecordType
	Tracker() *Presence
}

// Presence tracks which fields were explicitly assigned, so an explicit null
// can be told apart from a field that was never touched.
type Presence struct {
	assigned map[string]struct{}
}

// Tracker returns p. Embedding Presence gives a struct the Record method.
func (p *Presence) Tracker() *Presence {
	return p
}

func (p *Presence) MarkAssigned(name string) {
	if p.assigned == nil {
		p.assigned = make(map[string]struct{})
	}
	p.assigned[name] = struct{}{}
}

func (p *Presence) IsAssigned(name string) bool {
	_, ok := p.assigned[name]
	return ok
}

// RecordType describes a record: its ordered fields, how to create an empty
// instance and, for polymorphic families, its discriminator tag.
type RecordType struct {
	name    string
	fields  []*Field
	byName  map[string]*Field
	byWire  map[string]*Field
	factory func() Record

	family *Family
	tag    string
}

// NewRecordType validates the field table and builds a record type. Canonical
// and wire names must each be unique within the record.
func NewRecordType(name string, factory func() Record, fields ...*Field) (*RecordType, error) {
	if name == "" {
		return nil, fmt.Errorf("record type name is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("record type %s: factory is required", name)
	}

	rt := &RecordType{
		name:    name,
		fields:  make([]*Field, 0, len(fields)),
		byName:  make(map[string]*Field, len(fields)),
		byWire:  make(map[string]*Field, len(fields)),
		factory: factory,
	}

	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("record type %s: nil field", name)
		}
		if f.Name == "" || f.Wire == "" {
			return nil, fmt.Errorf("record type %s: field needs both a name and a wire name (name=%q wire=%q)", name, f.Name, f.Wire)
		}
		if !f.Type.IsValid() {
			return nil, fmt.Errorf("record type %s: field %s has invalid type %s", name, f.Name, f.Type)
		}
		if _, dup := rt.byName[f.Name]; dup {
			return nil, fmt.Errorf("record type %s: duplicate field name %s", name, f.Name)
		}
		if _, dup := rt.byWire[f.Wire]; dup {
			return nil, fmt.Errorf("record type %s: duplicate wire name %s", name, f.Wire)
		}
		rt.fields = append(rt.fields, f)
		rt.byName[f.Name] = f
		rt.byWire[f.Wire] = f
	}

	return rt, nil
}

// MustRecordType is like NewRecordType but panics on error. Intended for
// package-level declarations.
func MustRecordType(name string, factory func() Record, fields ...*Field) *RecordType {
	rt, err := NewRecordType(name, factory, fields...)
	if err != nil {
		panic(err)
	}
	return rt
}

func (rt *RecordType) Name() string {
	return rt.name
}

func (rt *RecordType) String() string {
	return rt.name
}

// Fields returns the fields in declaration order.
func (rt *RecordType) Fields() []*Field {
	return append([]*Field(nil), rt.fields...)
}

func (rt *RecordType) NumFields() int {
	return len(rt.fields)
}

func (rt *RecordType) Field(name string) (*Field, bool) {
	f, ok := rt.byName[name]
	return f, ok
}

func (rt *RecordType) FieldByWire(wire string) (*Field, bool) {
	f, ok := rt.byWire[wire]
	return f, ok
}

func (rt *RecordType) WireNameOf(name string) (string, bool) {
	f, ok := rt.byName[name]
	if !ok {
		return "", false
	}
	return f.Wire, true
}

func (rt *RecordType) DeclaredTypeOf(name string) (types.Type, bool) {
	f, ok := rt.byName[name]
	if !ok {
		return types.Type{}, false
	}
	return f.Type, true
}

// Family returns the polymorphic family the type belongs to, as base or as
// variant, or nil.
func (rt *RecordType) Family() *Family {
	return rt.family
}

// Tag is the discriminator value of a family variant. Empty for base types and
// for types outside a family.
func (rt *RecordType) Tag() string {
	return rt.tag
}

// IsPolymorphicBase reports whether hydrating this type should first resolve
// a concrete variant.
func (rt *RecordType) IsPolymorphicBase() bool {
	return rt.family != nil && rt.family.base == rt
}

// New creates an empty instance. Variants of a family get their discriminator
// field stamped with the variant tag.
func (rt *RecordType) New() Record {
	r := rt.factory()
	if rt.family != nil && rt.tag != "" {
		if f, ok := rt.byWire[rt.family.discriminator]; ok {
			if err := f.Set(r, rt.tag); err != nil {
				panic(fmt.Sprintf("record type %s: stamp discriminator: %v", rt.name, err))
			}
		}
	}
	return r
}
