package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/noders-team/go-dbmgmt/internal/naming"
	"github.com/noders-team/go-dbmgmt/pkg/types"
)

// Definition declares a dynamic record type in a definitions file.
//
//	types:
//	  - name: DatabaseCredentialDetails
//	    discriminator: credentialType
//	    fields:
//	      - name: credential_type
//	        type: string
//	        enum: [PASSWORD, SECRET]
//	  - name: PasswordCredentialDetails
//	    extends: DatabaseCredentialDetails
//	    tag: PASSWORD
//	    fields:
//	      - name: user_name
//	        type: string
type Definition struct {
	Name          string            `mapstructure:"name"`
	Extends       string            `mapstructure:"extends"`
	Discriminator string            `mapstructure:"discriminator"`
	Tag           string            `mapstructure:"tag"`
	Fields        []FieldDefinition `mapstructure:"fields"`
}

// FieldDefinition declares one field. Either Name or Wire may be omitted; the
// other is derived from it.
type FieldDefinition struct {
	Name     string   `mapstructure:"name"`
	Wire     string   `mapstructure:"wire"`
	Type     string   `mapstructure:"type"`
	Enum     []string `mapstructure:"enum"`
	Fallback string   `mapstructure:"fallback"`
}

type definitionFile struct {
	Types []Definition `mapstructure:"types"`
}

// LoadDefinitions reads a YAML or JSON definitions file from fs.
func LoadDefinitions(fs afero.Fs, path string) (*Registry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions '%s': %w", path, err)
	}
	reg, err := ParseDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("definitions '%s': %w", path, err)
	}
	return reg, nil
}

// ParseDefinitions decodes YAML (or JSON, which YAML accepts) definitions and
// builds a validated registry of dynamic record types.
func ParseDefinitions(data []byte) (*Registry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}

	var file definitionFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &file,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode definitions: %w", err)
	}

	return BuildDefinitions(file.Types)
}

// BuildDefinitions turns definitions into record types. Types extending a
// base inherit its fields; bases declaring a discriminator become family
// bases and their direct descendants become variants, tagged with Tag or,
// when empty, their name.
func BuildDefinitions(defs []Definition) (*Registry, error) {
	b := &definitionBuilder{
		defs:  make(map[string]*Definition, len(defs)),
		specs: make(map[string][]FieldSpec, len(defs)),
		state: make(map[string]int, len(defs)),
	}
	for i := range defs {
		def := &defs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("definition %d has no name", i)
		}
		if _, dup := b.defs[def.Name]; dup {
			return nil, fmt.Errorf("duplicate definition %s", def.Name)
		}
		b.defs[def.Name] = def
		b.order = append(b.order, def.Name)
	}

	reg := &Registry{types: make(map[string]*RecordType, len(defs))}
	for _, name := range b.order {
		specs, err := b.resolve(name)
		if err != nil {
			return nil, err
		}
		rt, err := NewDynamicType(name, specs...)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(rt); err != nil {
			return nil, err
		}
	}

	for _, name := range b.order {
		def := b.defs[name]
		if def.Discriminator == "" {
			continue
		}
		var variants []Variant
		for _, other := range b.order {
			child := b.defs[other]
			if child.Extends != name {
				continue
			}
			tag := child.Tag
			if tag == "" {
				tag = child.Name
			}
			rt, _ := reg.Lookup(child.Name)
			variants = append(variants, Variant{Tag: tag, Type: rt})
		}
		base, _ := reg.Lookup(name)
		if _, err := NewFamily(base, def.Discriminator, variants...); err != nil {
			return nil, err
		}
	}

	for _, name := range b.order {
		def := b.defs[name]
		if def.Tag == "" {
			continue
		}
		if parent, ok := b.defs[def.Extends]; !ok || parent.Discriminator == "" {
			return nil, fmt.Errorf("definition %s has tag %s but its base declares no discriminator", name, def.Tag)
		}
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

const (
	unvisited = iota
	visiting
	done
)

type definitionBuilder struct {
	defs  map[string]*Definition
	order []string
	specs map[string][]FieldSpec
	state map[string]int
}

// resolve returns the full field list of a definition, base fields first.
func (b *definitionBuilder) resolve(name string) ([]FieldSpec, error) {
	switch b.state[name] {
	case done:
		return b.specs[name], nil
	case visiting:
		return nil, fmt.Errorf("definition %s extends itself", name)
	}
	b.state[name] = visiting

	def := b.defs[name]
	var specs []FieldSpec
	if def.Extends != "" {
		if _, ok := b.defs[def.Extends]; !ok {
			return nil, fmt.Errorf("definition %s extends unknown type %s", name, def.Extends)
		}
		inherited, err := b.resolve(def.Extends)
		if err != nil {
			return nil, err
		}
		specs = append(specs, inherited...)
	}

	for _, fd := range def.Fields {
		spec, err := fieldSpec(fd)
		if err != nil {
			return nil, fmt.Errorf("definition %s: %w", name, err)
		}
		specs = append(specs, spec)
	}

	if def.Discriminator != "" && !hasWire(specs, def.Discriminator) {
		specs = append(specs, FieldSpec{
			Name: naming.ToSnake(def.Discriminator),
			Wire: def.Discriminator,
			Type: types.String,
		})
	}

	b.specs[name] = specs
	b.state[name] = done
	return specs, nil
}

func fieldSpec(fd FieldDefinition) (FieldSpec, error) {
	name, wire := fd.Name, fd.Wire
	switch {
	case name == "" && wire == "":
		return FieldSpec{}, fmt.Errorf("field needs a name or a wire name")
	case name == "":
		name = naming.ToSnake(wire)
	case wire == "":
		wire = naming.ToCamel(name)
	}

	typeTag := fd.Type
	if typeTag == "" {
		typeTag = "string"
	}
	typ, err := types.Parse(typeTag)
	if err != nil {
		return FieldSpec{}, fmt.Errorf("field %s: %w", name, err)
	}

	spec := FieldSpec{Name: name, Wire: wire, Type: typ}
	if len(fd.Enum) > 0 {
		spec.Enum = NewEnum(fd.Enum...)
		if fd.Fallback != "" {
			spec.Enum.Fallback = fd.Fallback
		}
	}
	return spec, nil
}

func hasWire(specs []FieldSpec, wire string) bool {
	for _, s := range specs {
		if s.Wire == wire {
			return true
		}
	}
	return false
}
