package schema

import (
	"fmt"
	"sort"

	"github.com/noders-team/go-dbmgmt/pkg/types"
)

// Registry resolves record names used in nested field types. It is filled
// during initialization and only read afterwards.
type Registry struct {
	types map[string]*RecordType
}

func NewRegistry(rts ...*RecordType) (*Registry, error) {
	reg := &Registry{types: make(map[string]*RecordType, len(rts))}
	for _, rt := range rts {
		if err := reg.Register(rt); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// MustRegistry builds a registry and validates its references, panicking on
// error.
func MustRegistry(rts ...*RecordType) *Registry {
	reg, err := NewRegistry(rts...)
	if err != nil {
		panic(err)
	}
	if err := reg.Validate(); err != nil {
		panic(err)
	}
	return reg
}

func (r *Registry) Register(rt *RecordType) error {
	if rt == nil {
		return fmt.Errorf("cannot register nil record type")
	}
	if _, dup := r.types[rt.name]; dup {
		return fmt.Errorf("record type %s is already registered", rt.name)
	}
	r.types[rt.name] = rt
	return nil
}

func (r *Registry) Lookup(name string) (*RecordType, bool) {
	rt, ok := r.types[name]
	return rt, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	return len(r.types)
}

// Validate checks that every nested record reference and every family member
// is registered.
func (r *Registry) Validate() error {
	for _, name := range r.Names() {
		rt := r.types[name]
		for _, f := range rt.fields {
			if err := r.checkType(f.Type); err != nil {
				return fmt.Errorf("record type %s field %s: %w", name, f.Name, err)
			}
		}
		if fam := rt.family; fam != nil {
			if _, ok := r.types[fam.base.name]; !ok {
				return fmt.Errorf("record type %s: family base %s is not registered", name, fam.base.name)
			}
			for _, tag := range fam.Tags() {
				if v := fam.variants[tag]; r.types[v.name] != v {
					return fmt.Errorf("record type %s: family variant %s is not registered", name, v.name)
				}
			}
		}
	}
	return nil
}

func (r *Registry) checkType(t types.Type) error {
	switch t.Kind {
	case types.KindRecord:
		if _, ok := r.types[t.Record]; !ok {
			return fmt.Errorf("unknown record type %s", t.Record)
		}
	case types.KindList, types.KindMap:
		return r.checkType(t.Element())
	}
	return nil
}
