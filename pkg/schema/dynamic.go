package schema

import (
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noders-team/go-dbmgmt/pkg/types"
)

// Dynamic is a record whose values live in a map. Its type is declared at
// runtime, from definition files or an OpenAPI document.
type Dynamic struct {
	Presence
	rt     *RecordType
	values map[string]any
}

func (d *Dynamic) RecordType() *RecordType {
	return d.rt
}

// Get returns the value of the named field and whether the type declares it.
func (d *Dynamic) Get(name string) (any, bool) {
	f, ok := d.rt.byName[name]
	if !ok {
		return nil, false
	}
	v, _ := f.Get(d)
	return v, true
}

func (d *Dynamic) Set(name string, v any) error {
	f, ok := d.rt.byName[name]
	if !ok {
		return fmt.Errorf("record type %s has no field %s", d.rt.name, name)
	}
	return f.Set(d, v)
}

// FieldSpec declares a field of a dynamic record type.
type FieldSpec struct {
	Name string
	Wire string
	Type types.Type
	Enum *Enum
}

func NewDynamicType(name string, specs ...FieldSpec) (*RecordType, error) {
	fields := make([]*Field, len(specs))
	for i, spec := range specs {
		fields[i] = dynamicField(spec)
	}

	var rt *RecordType
	rt, err := NewRecordType(name, func() Record {
		return &Dynamic{rt: rt, values: make(map[string]any)}
	}, fields...)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func dynamicField(spec FieldSpec) *Field {
	name := spec.Name
	return &Field{
		Name: spec.Name,
		Wire: spec.Wire,
		Type: spec.Type,
		Enum: spec.Enum,
		get: func(r Record) (any, error) {
			d, ok := r.(*Dynamic)
			if !ok {
				return nil, fmt.Errorf("field belongs to a dynamic record, got %T", r)
			}
			return d.values[name], nil
		},
		set: func(r Record, v any) error {
			d, ok := r.(*Dynamic)
			if !ok {
				return fmt.Errorf("field belongs to a dynamic record, got %T", r)
			}
			if v == nil {
				delete(d.values, name)
				return nil
			}
			checked, err := checkValue(spec.Type, normalize(v))
			if err != nil {
				return err
			}
			d.values[name] = checked
			return nil
		},
	}
}

// checkValue verifies that a normalized value has the shape of t. Whole
// numbers are accepted for float fields and whole floats for integer fields.
func checkValue(t types.Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	ok := false
	switch t.Kind {
	case types.KindObject:
		return v, nil
	case types.KindString:
		_, ok = v.(string)
	case types.KindBoolean:
		_, ok = v.(bool)
	case types.KindDecimal:
		_, ok = v.(decimal.Decimal)
	case types.KindDateTime, types.KindDate:
		_, ok = v.(time.Time)
	case types.KindInteger:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			i, err := integral(reflect.ValueOf(x))
			if err != nil {
				return nil, err
			}
			return i, nil
		}
	case types.KindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		}
	case types.KindRecord:
		rec, isRecord := v.(Record)
		ok = isRecord && recordOf(rec.RecordType(), t.Record)
	case types.KindList:
		items, isList := v.([]any)
		if !isList {
			break
		}
		out := make([]any, len(items))
		for i, item := range items {
			checked, err := checkValue(t.Element(), item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = checked
		}
		return out, nil
	case types.KindMap:
		entries, isMap := v.(map[string]any)
		if !isMap {
			break
		}
		out := make(map[string]any, len(entries))
		for k, item := range entries {
			checked, err := checkValue(t.Element(), item)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", k, err)
			}
			out[k] = checked
		}
		return out, nil
	}
	if !ok {
		return nil, fmt.Errorf("cannot assign %T to %s", v, t)
	}
	return v, nil
}

// recordOf reports whether rt is the named type or a variant of it.
func recordOf(rt *RecordType, name string) bool {
	if rt.name == name {
		return true
	}
	return rt.family != nil && rt.family.base.name == name
}
