package codec

import (
	"fmt"
	"maps"

	"github.com/noders-team/go-dbmgmt/pkg/schema"
)

// Construct builds a record of type rt from props keyed by canonical or wire
// names. Wire names are checked first; a field given under both names is an
// error whatever the values. A key present with a nil value assigns an
// explicit null.
//
// For a family variant the discriminator wire key is forced to the variant tag
// before the fields are read, so a caller-supplied canonical discriminator
// key trips the dual-key check.
func (c *Codec) Construct(rt *schema.RecordType, props map[string]any) (schema.Record, error) {
	if fam := rt.Family(); fam != nil && rt.Tag() != "" {
		props = maps.Clone(props)
		if props == nil {
			props = make(map[string]any, 1)
		}
		props[fam.Discriminator()] = rt.Tag()
	}

	instance := rt.New()
	for _, f := range rt.Fields() {
		wireValue, hasWire := props[f.Wire]
		nameValue, hasName := props[f.Name]
		if f.Wire != f.Name && hasWire && hasName {
			return nil, &DualKeyError{Type: rt.Name(), Field: f.Name, Wire: f.Wire}
		}

		var v any
		switch {
		case hasWire:
			v = wireValue
		case hasName:
			v = nameValue
		default:
			continue
		}
		if err := c.setField(instance, f, v); err != nil {
			return nil, err
		}
	}

	for key := range props {
		_, byName := rt.Field(key)
		_, byWire := rt.FieldByWire(key)
		if !byName && !byWire {
			c.logger.Debug().Str("type", rt.Name()).Str("key", key).Msg("ignoring unknown attribute")
		}
	}

	return instance, nil
}

// Assign converts v to the declared type of the named field and stores it,
// applying enum normalization. name may be the canonical or the wire name.
func (c *Codec) Assign(r schema.Record, name string, v any) error {
	rt := r.RecordType()
	f, ok := rt.Field(name)
	if !ok {
		if f, ok = rt.FieldByWire(name); !ok {
			return fmt.Errorf("record type %s has no field %s", rt.Name(), name)
		}
	}
	return c.setField(r, f, v)
}
