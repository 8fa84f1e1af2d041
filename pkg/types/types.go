package types

import (
	"fmt"
	"strings"
)

// Kind classifies a declared field type.
type Kind int

const (
	KindInvalid Kind = iota

	KindString
	KindInteger
	KindFloat
	KindDecimal
	KindBoolean
	KindDateTime
	KindDate
	KindObject // passthrough, value kept as decoded
	KindRecord
	KindList
	KindMap
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindString:   "string",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindBoolean:  "boolean",
	KindDateTime: "datetime",
	KindDate:     "date",
	KindObject:   "object",
	KindRecord:   "record",
	KindList:     "list",
	KindMap:      "dict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsPrimitive reports whether values of the kind are leaves handled by a converter.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindString, KindInteger, KindFloat, KindDecimal, KindBoolean, KindDateTime, KindDate, KindObject:
		return true
	default:
		return false
	}
}

// Type is a declared field type tag. Lists and maps carry their element type,
// records carry the name they are registered under.
type Type struct {
	Kind   Kind
	Elem   *Type
	Record string
}

var (
	String   = Type{Kind: KindString}
	Integer  = Type{Kind: KindInteger}
	Float    = Type{Kind: KindFloat}
	Decimal  = Type{Kind: KindDecimal}
	Boolean  = Type{Kind: KindBoolean}
	DateTime = Type{Kind: KindDateTime}
	Date     = Type{Kind: KindDate}
	Object   = Type{Kind: KindObject}
)

func ListOf(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// MapOf declares a string-keyed map with values of elem.
func MapOf(elem Type) Type {
	return Type{Kind: KindMap, Elem: &elem}
}

func RecordOf(name string) Type {
	return Type{Kind: KindRecord, Record: name}
}

// Element returns the element type of a list or map, or the invalid type.
func (t Type) Element() Type {
	if t.Elem == nil {
		return Type{}
	}
	return *t.Elem
}

func (t Type) IsValid() bool {
	switch t.Kind {
	case KindInvalid:
		return false
	case KindRecord:
		return t.Record != ""
	case KindList, KindMap:
		return t.Elem != nil && t.Elem.IsValid()
	default:
		return true
	}
}

func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || t.Record != other.Record {
		return false
	}
	if t.Elem == nil || other.Elem == nil {
		return t.Elem == other.Elem
	}
	return t.Elem.Equal(*other.Elem)
}

func (t Type) String() string {
	switch t.Kind {
	case KindList:
		return "list[" + t.Element().String() + "]"
	case KindMap:
		return "dict(str, " + t.Element().String() + ")"
	case KindRecord:
		return t.Record
	default:
		return t.Kind.String()
	}
}

// Parse reads a declared type tag. Accepted forms are the primitive names and
// their common aliases ("str", "int", "bool", "date-time", ...), "list[T]",
// "[]T", "dict(str, T)", "map[string]T" and bare record names.
func Parse(tag string) (Type, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Type{}, fmt.Errorf("empty type tag")
	}

	switch {
	case strings.HasPrefix(tag, "list[") && strings.HasSuffix(tag, "]"):
		elem, err := Parse(tag[len("list[") : len(tag)-1])
		if err != nil {
			return Type{}, fmt.Errorf("list element of %q: %w", tag, err)
		}
		return ListOf(elem), nil

	case strings.HasPrefix(tag, "[]"):
		elem, err := Parse(strings.TrimPrefix(tag, "[]"))
		if err != nil {
			return Type{}, fmt.Errorf("list element of %q: %w", tag, err)
		}
		return ListOf(elem), nil

	case strings.HasPrefix(tag, "dict(") && strings.HasSuffix(tag, ")"):
		inner := tag[len("dict(") : len(tag)-1]
		key, value, ok := strings.Cut(inner, ",")
		if !ok {
			return Type{}, fmt.Errorf("dict type %q needs a key and a value type", tag)
		}
		if k := strings.TrimSpace(key); k != "str" && k != "string" {
			return Type{}, fmt.Errorf("dict type %q must be keyed by str, got %s", tag, k)
		}
		elem, err := Parse(value)
		if err != nil {
			return Type{}, fmt.Errorf("dict value of %q: %w", tag, err)
		}
		return MapOf(elem), nil

	case strings.HasPrefix(tag, "map[string]"):
		elem, err := Parse(strings.TrimPrefix(tag, "map[string]"))
		if err != nil {
			return Type{}, fmt.Errorf("map value of %q: %w", tag, err)
		}
		return MapOf(elem), nil
	}

	switch strings.ToLower(tag) {
	case "str", "string", "text":
		return String, nil
	case "int", "integer", "int32", "int64", "long":
		return Integer, nil
	case "float", "double", "number", "float64":
		return Float, nil
	case "decimal", "numeric":
		return Decimal, nil
	case "bool", "boolean":
		return Boolean, nil
	case "datetime", "date-time", "timestamp":
		return DateTime, nil
	case "date":
		return Date, nil
	case "object", "any", "interface{}":
		return Object, nil
	}

	if strings.ContainsAny(tag, "[]() ,") {
		return Type{}, fmt.Errorf("malformed type tag %q", tag)
	}
	return RecordOf(tag), nil
}

// MustParse is like Parse but panics on malformed tags. Useful for
// package-level declarations.
func MustParse(tag string) Type {
	t, err := Parse(tag)
	if err != nil {
		panic(err)
	}
	return t
}
