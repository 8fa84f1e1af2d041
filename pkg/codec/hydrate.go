package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/noders-team/go-dbmgmt/pkg/convert"
	"github.com/noders-team/go-dbmgmt/pkg/schema"
	"github.com/noders-team/go-dbmgmt/pkg/types"
)

// Hydrate fills instance from a wire-keyed property map and returns it.
// Anything other than a map is ignored and yields (nil, nil). Absent and nil
// values leave fields unset; a list field given a non-list is skipped.
func (c *Codec) Hydrate(instance schema.Record, raw any) (schema.Record, error) {
	props, ok := asMap(raw)
	if !ok {
		return nil, nil
	}

	rt := instance.RecordType()
	for _, f := range rt.Fields() {
		v, present := props[f.Wire]
		if !present || v == nil {
			continue
		}
		if err := c.setField(instance, f, v); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Decode resolves the concrete record type for raw, creates an instance and
// hydrates it.
func (c *Codec) Decode(rt *schema.RecordType, raw any) (schema.Record, error) {
	props, ok := asMap(raw)
	if !ok {
		return nil, nil
	}
	return c.Hydrate(c.ResolveSubtype(rt, props).New(), props)
}

// ResolveSubtype returns the family variant named by the discriminator in
// raw. Unknown or missing tags fall back to rt with a warning. Types that are
// not a family base resolve to themselves.
func (c *Codec) ResolveSubtype(rt *schema.RecordType, raw any) *schema.RecordType {
	if !rt.IsPolymorphicBase() {
		return rt
	}

	fam := rt.Family()
	props, _ := asMap(raw)
	concrete, ok := fam.Resolve(props)
	if !ok {
		c.logger.Warn().
			Str("type", rt.Name()).
			Str("discriminator", fam.Discriminator()).
			Interface("value", props[fam.Discriminator()]).
			Msg("unknown subtype, using base type")
	}
	return concrete
}

// setField converts raw to the declared type of f and assigns it.
func (c *Codec) setField(r schema.Record, f *schema.Field, raw any) error {
	rt := r.RecordType()
	if raw == nil {
		return c.assign(r, f, nil)
	}

	if f.Type.Kind == types.KindList {
		items, ok := asList(raw)
		if !ok {
			c.logger.Debug().
				Str("type", rt.Name()).
				Str("field", f.Name).
				Msgf("expected a list, got %T; field left untouched", raw)
			return nil
		}
		converted, err := c.convertItems(f.Type.Element(), items)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", rt.Name(), f.Name, err)
		}
		return c.assign(r, f, converted)
	}

	v, err := c.convertToType(f.Type, raw)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", rt.Name(), f.Name, err)
	}
	return c.assign(r, f, v)
}

// assign stores v, replacing values outside an enum constraint with its
// fallback.
func (c *Codec) assign(r schema.Record, f *schema.Field, v any) error {
	if f.Enum != nil {
		v = c.normalizeEnum(r.RecordType(), f, v)
	}
	if err := f.Set(r, v); err != nil {
		return fmt.Errorf("record type %s: %w", r.RecordType().Name(), err)
	}
	return nil
}

func (c *Codec) normalizeEnum(rt *schema.RecordType, f *schema.Field, v any) any {
	switch x := v.(type) {
	case string:
		return c.enumValue(rt, f, x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			if s, ok := item.(string); ok {
				out[i] = c.enumValue(rt, f, s)
			} else {
				out[i] = item
			}
		}
		return out
	}
	return v
}

func (c *Codec) enumValue(rt *schema.RecordType, f *schema.Field, value string) string {
	normalized, ok := f.Enum.Normalize(value)
	if !ok {
		c.logger.Debug().
			Str("type", rt.Name()).
			Str("field", f.Name).
			Str("value", value).
			Msgf("value is not one of %v, stored as %s", f.Enum.Values, normalized)
	}
	return normalized
}

// convertToType is the single entry point for value conversion. Records,
// lists and maps are handled here, leaves go to the converter.
func (c *Codec) convertToType(t types.Type, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch t.Kind {
	case types.KindRecord:
		return c.convertRecord(t, raw)
	case types.KindList:
		items, ok := asList(raw)
		if !ok {
			return nil, &convert.TypeConversionError{Type: t, Value: raw, Err: errors.New("expected a list")}
		}
		return c.convertItems(t.Element(), items)
	case types.KindMap:
		entries, ok := asMap(raw)
		if !ok {
			return nil, &convert.TypeConversionError{Type: t, Value: raw, Err: errors.New("expected an object")}
		}
		out := make(map[string]any, len(entries))
		for k, v := range entries {
			converted, err := c.convertToType(t.Element(), v)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", k, err)
			}
			out[k] = converted
		}
		return out, nil
	default:
		return c.converter.ConvertToType(t, raw)
	}
}

func (c *Codec) convertItems(elem types.Type, items []any) ([]any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		converted, err := c.convertToType(elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = converted
	}
	return out, nil
}

func (c *Codec) convertRecord(t types.Type, raw any) (any, error) {
	rt, ok := c.lookup(t.Record)
	if !ok {
		return nil, &convert.TypeConversionError{Type: t, Value: raw, Err: fmt.Errorf("unknown record type %s", t.Record)}
	}

	if rec, ok := raw.(schema.Record); ok {
		if !assignable(rt, rec.RecordType()) {
			return nil, &convert.TypeConversionError{Type: t, Value: raw, Err: fmt.Errorf("record of type %s", rec.RecordType().Name())}
		}
		return rec, nil
	}

	props, ok := asMap(raw)
	if !ok {
		return nil, &convert.TypeConversionError{Type: t, Value: raw, Err: errors.New("expected an object")}
	}
	return c.Decode(rt, props)
}

// assignable reports whether a record of type actual may be stored where
// declared is expected: the same type, or a variant of a declared family base.
func assignable(declared, actual *schema.RecordType) bool {
	if declared == actual {
		return true
	}
	return declared.IsPolymorphicBase() && actual.Family() == declared.Family()
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case string, []byte, nil:
		return nil, false
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
