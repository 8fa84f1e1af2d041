// Package openapi builds dynamic record types from the component schemas of
// an OpenAPI 3 document.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/noders-team/go-dbmgmt/internal/naming"
	"github.com/noders-team/go-dbmgmt/pkg/schema"
	"github.com/noders-team/go-dbmgmt/pkg/types"
)

const schemaRefPrefix = "#/components/schemas/"

type Option func(*loader)

func WithLogger(logger zerolog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

// LoadFile reads an OpenAPI document from fs and passes it to Load.
func LoadFile(ctx context.Context, fs afero.Fs, path string, opts ...Option) (*schema.Registry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return Load(ctx, data, opts...)
}

// Load registers one dynamic record type per object component schema.
// Schemas that are not objects (string enums, aliases) are inlined where they
// are referenced. A schema whose allOf references another becomes its
// variant when the referenced schema declares a discriminator.
func Load(ctx context.Context, data []byte, opts ...Option) (*schema.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	kin := &openapi3.Loader{Context: ctx}
	doc, err := kin.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errors.New("openapi: document has no component schemas")
	}

	l := &loader{
		schemas:  doc.Components.Schemas,
		fields:   make(map[string][]schema.FieldSpec),
		parents:  make(map[string]string),
		visiting: make(map[string]bool),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l.build()
}

type loader struct {
	schemas  openapi3.Schemas
	fields   map[string][]schema.FieldSpec
	parents  map[string]string
	visiting map[string]bool
	logger   zerolog.Logger
}

func (l *loader) build() (*schema.Registry, error) {
	names := make([]string, 0, len(l.schemas))
	for name, ref := range l.schemas {
		if ref == nil || ref.Value == nil || !isRecord(ref.Value) {
			l.logger.Debug().Str("schema", name).Msg("not an object schema, inlined where referenced")
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	rts := make(map[string]*schema.RecordType, len(names))
	ordered := make([]*schema.RecordType, 0, len(names))
	for _, name := range names {
		specs, err := l.resolve(name)
		if err != nil {
			return nil, err
		}
		rt, err := schema.NewDynamicType(name, specs...)
		if err != nil {
			return nil, fmt.Errorf("openapi: schema %s: %w", name, err)
		}
		rts[name] = rt
		ordered = append(ordered, rt)
	}

	for _, name := range names {
		disc := l.schemas[name].Value.Discriminator
		if disc == nil {
			continue
		}
		if err := l.family(name, disc, rts); err != nil {
			return nil, err
		}
	}

	registry, err := schema.NewRegistry(ordered...)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return registry, nil
}

// resolve returns the fields of name: inherited fields first, then its own
// properties sorted by name.
func (l *loader) resolve(name string) ([]schema.FieldSpec, error) {
	if specs, ok := l.fields[name]; ok {
		return specs, nil
	}
	if l.visiting[name] {
		return nil, fmt.Errorf("openapi: schema %s inherits from itself", name)
	}
	l.visiting[name] = true
	defer delete(l.visiting, name)

	ref, ok := l.schemas[name]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("openapi: unknown schema %s", name)
	}
	s := ref.Value

	var specs []schema.FieldSpec
	properties := make(openapi3.Schemas, len(s.Properties))
	for k, v := range s.Properties {
		properties[k] = v
	}
	for _, part := range s.AllOf {
		if part == nil {
			continue
		}
		if target, ok := refName(part.Ref); ok {
			inherited, err := l.resolve(target)
			if err != nil {
				return nil, err
			}
			if _, seen := l.parents[name]; !seen {
				l.parents[name] = target
			}
			specs = appendFields(specs, inherited...)
			continue
		}
		if part.Value != nil {
			for k, v := range part.Value.Properties {
				properties[k] = v
			}
		}
	}

	wires := make([]string, 0, len(properties))
	for wire := range properties {
		wires = append(wires, wire)
	}
	sort.Strings(wires)
	for _, wire := range wires {
		spec, err := l.fieldSpec(wire, properties[wire])
		if err != nil {
			return nil, fmt.Errorf("openapi: schema %s: property %s: %w", name, wire, err)
		}
		specs = appendFields(specs, spec)
	}

	if disc := s.Discriminator; disc != nil && disc.PropertyName != "" && !hasWire(specs, disc.PropertyName) {
		specs = append(specs, schema.FieldSpec{
			Name: naming.ToSnake(disc.PropertyName),
			Wire: disc.PropertyName,
			Type: types.String,
		})
	}

	l.fields[name] = specs
	return specs, nil
}

func (l *loader) fieldSpec(wire string, ref *openapi3.SchemaRef) (schema.FieldSpec, error) {
	typ, err := l.schemaType(ref)
	if err != nil {
		return schema.FieldSpec{}, err
	}
	spec := schema.FieldSpec{Name: naming.ToSnake(wire), Wire: wire, Type: typ}
	if ref != nil && ref.Value != nil {
		spec.Enum = enumOf(ref.Value)
	}
	return spec, nil
}

// schemaType maps a property schema to a declared type. References to object
// schemas become record types; any other reference is inlined.
func (l *loader) schemaType(ref *openapi3.SchemaRef) (types.Type, error) {
	if ref == nil {
		return types.Object, nil
	}
	if target, ok := refName(ref.Ref); ok {
		if t, ok := l.schemas[target]; ok && t.Value != nil && isRecord(t.Value) {
			return types.RecordOf(target), nil
		}
	}
	if ref.Value == nil {
		return types.Type{}, fmt.Errorf("unresolved reference %q", ref.Ref)
	}

	s := ref.Value
	switch {
	case hasType(s, openapi3.TypeArray):
		if s.Items == nil {
			return types.ListOf(types.Object), nil
		}
		elem, err := l.schemaType(s.Items)
		if err != nil {
			return types.Type{}, fmt.Errorf("items: %w", err)
		}
		return types.ListOf(elem), nil
	case hasType(s, openapi3.TypeObject) || (s.Type == nil && s.AdditionalProperties.Schema != nil):
		if s.AdditionalProperties.Schema != nil {
			elem, err := l.schemaType(s.AdditionalProperties.Schema)
			if err != nil {
				return types.Type{}, fmt.Errorf("additionalProperties: %w", err)
			}
			return types.MapOf(elem), nil
		}
		if s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has {
			return types.MapOf(types.Object), nil
		}
		return types.Object, nil
	case hasType(s, openapi3.TypeString):
		switch s.Format {
		case "date-time":
			return types.DateTime, nil
		case "date":
			return types.Date, nil
		case "decimal":
			return types.Decimal, nil
		}
		return types.String, nil
	case hasType(s, openapi3.TypeInteger):
		return types.Integer, nil
	case hasType(s, openapi3.TypeNumber):
		if s.Format == "decimal" {
			return types.Decimal, nil
		}
		return types.Float, nil
	case hasType(s, openapi3.TypeBoolean):
		return types.Boolean, nil
	}
	return types.Object, nil
}

// family registers the direct children of base as its variants. The tag of a
// child comes from the discriminator mapping, or is the child's name.
func (l *loader) family(base string, disc *openapi3.Discriminator, rts map[string]*schema.RecordType) error {
	tags := make(map[string]string, len(disc.Mapping))
	for tag, target := range disc.Mapping {
		name, ok := refName(target)
		if !ok {
			name = target
		}
		tags[name] = tag
	}

	var children []string
	for child, parent := range l.parents {
		if parent == base {
			children = append(children, child)
		}
	}
	slices.Sort(children)

	variants := make([]schema.Variant, 0, len(children))
	for _, child := range children {
		tag, ok := tags[child]
		if !ok {
			tag = child
		}
		variants = append(variants, schema.Variant{Tag: tag, Type: rts[child]})
	}

	if _, err := schema.NewFamily(rts[base], disc.PropertyName, variants...); err != nil {
		return fmt.Errorf("openapi: schema %s: %w", base, err)
	}
	return nil
}

func isRecord(s *openapi3.Schema) bool {
	if len(s.Properties) > 0 || len(s.AllOf) > 0 || s.Discriminator != nil {
		return true
	}
	if !hasType(s, openapi3.TypeObject) {
		return false
	}
	return s.AdditionalProperties.Schema == nil && s.AdditionalProperties.Has == nil
}

func hasType(s *openapi3.Schema, typ string) bool {
	if s.Type == nil {
		return false
	}
	return slices.Contains(s.Type.Slice(), typ)
}

func refName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, schemaRefPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, schemaRefPrefix), true
}

func enumOf(s *openapi3.Schema) *schema.Enum {
	if len(s.Enum) == 0 {
		return nil
	}
	values := make([]string, 0, len(s.Enum))
	for _, v := range s.Enum {
		str, ok := v.(string)
		if !ok {
			return nil
		}
		values = append(values, str)
	}
	return schema.NewEnum(values...)
}

func appendFields(specs []schema.FieldSpec, more ...schema.FieldSpec) []schema.FieldSpec {
	for _, spec := range more {
		if !hasWire(specs, spec.Wire) {
			specs = append(specs, spec)
		}
	}
	return specs
}

func hasWire(specs []schema.FieldSpec, wire string) bool {
	for _, spec := range specs {
		if spec.Wire == wire {
			return true
		}
	}
	return false
}
