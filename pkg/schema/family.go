package schema

import (
	"fmt"
	"sort"
)

// Family is a polymorphic record family: a base type and one variant per
// discriminator tag. The tag table is fixed once the family is built.
type Family struct {
	base          *RecordType
	discriminator string
	variants      map[string]*RecordType
}

// Variant pairs a discriminator tag with the record type it selects.
type Variant struct {
	Tag  string
	Type *RecordType
}

// NewFamily links base and variants through the discriminator wire field.
// Every variant must declare all base fields with the same wire names and
// types.
func NewFamily(base *RecordType, discriminator string, variants ...Variant) (*Family, error) {
	if base == nil {
		return nil, fmt.Errorf("family base type is required")
	}
	if base.family != nil {
		return nil, fmt.Errorf("record type %s already belongs to a family", base.name)
	}
	if _, ok := base.byWire[discriminator]; !ok {
		return nil, fmt.Errorf("record type %s has no discriminator field %s", base.name, discriminator)
	}

	fam := &Family{
		base:          base,
		discriminator: discriminator,
		variants:      make(map[string]*RecordType, len(variants)),
	}

	for _, v := range variants {
		if v.Tag == "" {
			return nil, fmt.Errorf("family %s: variant %v has an empty tag", base.name, v.Type)
		}
		if v.Type == nil {
			return nil, fmt.Errorf("family %s: variant %s has no type", base.name, v.Tag)
		}
		if v.Type.family != nil || v.Type == base {
			return nil, fmt.Errorf("family %s: record type %s already belongs to a family", base.name, v.Type.name)
		}
		if _, dup := fam.variants[v.Tag]; dup {
			return nil, fmt.Errorf("family %s: duplicate tag %s", base.name, v.Tag)
		}
		for _, bf := range base.fields {
			vf, ok := v.Type.byName[bf.Name]
			if !ok {
				return nil, fmt.Errorf("family %s: variant %s is missing base field %s", base.name, v.Type.name, bf.Name)
			}
			if vf.Wire != bf.Wire || !vf.Type.Equal(bf.Type) {
				return nil, fmt.Errorf("family %s: variant %s redeclares field %s as %s %s", base.name, v.Type.name, bf.Name, vf.Wire, vf.Type)
			}
		}
		fam.variants[v.Tag] = v.Type
	}

	base.family = fam
	for tag, rt := range fam.variants {
		rt.family = fam
		rt.tag = tag
	}
	return fam, nil
}

// MustFamily is like NewFamily but panics on error.
func MustFamily(base *RecordType, discriminator string, variants ...Variant) *Family {
	fam, err := NewFamily(base, discriminator, variants...)
	if err != nil {
		panic(err)
	}
	return fam
}

func (f *Family) Base() *RecordType {
	return f.base
}

// Discriminator is the wire name of the field selecting the variant.
func (f *Family) Discriminator() string {
	return f.discriminator
}

func (f *Family) Lookup(tag string) (*RecordType, bool) {
	rt, ok := f.variants[tag]
	return rt, ok
}

// Resolve picks the variant named by the discriminator in raw. It returns the
// base type and false when the tag is missing or unknown.
func (f *Family) Resolve(raw map[string]any) (*RecordType, bool) {
	tag, _ := raw[f.discriminator].(string)
	if rt, ok := f.variants[tag]; ok {
		return rt, true
	}
	return f.base, false
}

// Tags returns the registered tags in sorted order.
func (f *Family) Tags() []string {
	tags := make([]string, 0, len(f.variants))
	for tag := range f.variants {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
