package codec

import (
	"fmt"
	"reflect"

	"github.com/noders-team/go-dbmgmt/pkg/schema"
)

// ToStructure renders r as a wire-keyed map of plain data. Nested records
// recurse, lists drop nil elements, primitives pass through unchanged. A field
// is omitted when it is nil and was never explicitly assigned.
func (c *Codec) ToStructure(r schema.Record) (map[string]any, error) {
	if isNil(r) {
		return nil, nil
	}

	rt := r.RecordType()
	out := make(map[string]any, rt.NumFields())
	for _, f := range rt.Fields() {
		v, err := f.Get(r)
		if err != nil {
			return nil, fmt.Errorf("record type %s: %w", rt.Name(), err)
		}
		if v == nil && (c.excludeNullValues || !r.Tracker().IsAssigned(f.Name)) {
			continue
		}
		s, err := c.structure(v)
		if err != nil {
			return nil, fmt.Errorf("failed to convert field %s: %w", f.Wire, err)
		}
		out[f.Wire] = s
	}
	return out, nil
}

func (c *Codec) structure(v any) (any, error) {
	switch x := v.(type) {
	case schema.Record:
		m, err := c.ToStructure(x)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, nil
		}
		return m, nil
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			if item == nil {
				continue
			}
			s, err := c.structure(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			s, err := c.structure(item)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	default:
		return x, nil
	}
}

func isNil(r schema.Record) bool {
	if r == nil {
		return true
	}
	rv := reflect.ValueOf(r)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
