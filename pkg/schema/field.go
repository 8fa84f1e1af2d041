package schema

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noders-team/go-dbmgmt/pkg/types"
)

// Field is one entry of a record's attribute table. Get and Set go through
// accessor closures bound once when the record type is declared.
type Field struct {
	Name string // canonical snake_case name
	Wire string // JSON name
	Type types.Type
	Enum *Enum

	get func(Record) (any, error)
	set func(Record, any) error
}

// WithEnum attaches an enum constraint and returns the field.
func (f *Field) WithEnum(e *Enum) *Field {
	f.Enum = e
	return f
}

// Get returns the normalized value of the field, nil when unset.
func (f *Field) Get(r Record) (any, error) {
	v, err := f.get(r)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", f.Name, err)
	}
	return v, nil
}

// Set stores v and marks the field as explicitly assigned. A nil v clears the
// field but it stays marked.
func (f *Field) Set(r Record, v any) error {
	if err := f.set(r, v); err != nil {
		return fmt.Errorf("set %s: %w", f.Name, err)
	}
	r.Tracker().MarkAssigned(f.Name)
	return nil
}

// Scalar binds a pointer field of R. V is a primitive (or a named type over
// one, such as an enum string type) or a record struct.
func Scalar[R Record, V any](name, wire string, typ types.Type, ref func(R) **V) *Field {
	return &Field{
		Name: name,
		Wire: wire,
		Type: typ,
		get: func(r Record) (any, error) {
			rec, err := as[R](r)
			if err != nil {
				return nil, err
			}
			p := *ref(rec)
			if p == nil {
				return nil, nil
			}
			if nested, ok := any(p).(Record); ok {
				return nested, nil
			}
			return normalize(*p), nil
		},
		set: func(r Record, v any) error {
			rec, err := as[R](r)
			if err != nil {
				return err
			}
			dst := ref(rec)
			if v == nil {
				*dst = nil
				return nil
			}
			switch x := v.(type) {
			case *V:
				*dst = x
				return nil
			case V:
				*dst = &x
				return nil
			}
			val, err := coerce[V](v)
			if err != nil {
				return err
			}
			*dst = &val
			return nil
		},
	}
}

// List binds a slice field of R.
func List[R Record, E any](name, wire string, typ types.Type, ref func(R) *[]E) *Field {
	return &Field{
		Name: name,
		Wire: wire,
		Type: typ,
		get: func(r Record) (any, error) {
			rec, err := as[R](r)
			if err != nil {
				return nil, err
			}
			s := *ref(rec)
			if s == nil {
				return nil, nil
			}
			out := make([]any, len(s))
			for i, e := range s {
				out[i] = normalize(e)
			}
			return out, nil
		},
		set: func(r Record, v any) error {
			rec, err := as[R](r)
			if err != nil {
				return err
			}
			dst := ref(rec)
			if v == nil {
				*dst = nil
				return nil
			}
			if typed, ok := v.([]E); ok {
				*dst = typed
				return nil
			}
			items, ok := normalize(v).([]any)
			if !ok {
				return fmt.Errorf("expected list, got %T", v)
			}
			out := make([]E, 0, len(items))
			for i, item := range items {
				if item == nil && !nillable[E]() {
					continue
				}
				e, err := coerce[E](item)
				if err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				out = append(out, e)
			}
			*dst = out
			return nil
		},
	}
}

// Map binds a string-keyed map field of R.
func Map[R Record, E any](name, wire string, typ types.Type, ref func(R) *map[string]E) *Field {
	return &Field{
		Name: name,
		Wire: wire,
		Type: typ,
		get: func(r Record) (any, error) {
			rec, err := as[R](r)
			if err != nil {
				return nil, err
			}
			m := *ref(rec)
			if m == nil {
				return nil, nil
			}
			out := make(map[string]any, len(m))
			for k, e := range m {
				out[k] = normalize(e)
			}
			return out, nil
		},
		set: func(r Record, v any) error {
			rec, err := as[R](r)
			if err != nil {
				return err
			}
			dst := ref(rec)
			if v == nil {
				*dst = nil
				return nil
			}
			if typed, ok := v.(map[string]E); ok {
				*dst = typed
				return nil
			}
			entries, ok := normalize(v).(map[string]any)
			if !ok {
				return fmt.Errorf("expected map, got %T", v)
			}
			out := make(map[string]E, len(entries))
			for k, item := range entries {
				e, err := coerce[E](item)
				if err != nil {
					return fmt.Errorf("key %s: %w", k, err)
				}
				out[k] = e
			}
			*dst = out
			return nil
		},
	}
}

// Value binds a field stored by value, typically an interface holding one
// variant of a polymorphic family.
func Value[R Record, V any](name, wire string, typ types.Type, ref func(R) *V) *Field {
	return &Field{
		Name: name,
		Wire: wire,
		Type: typ,
		get: func(r Record) (any, error) {
			rec, err := as[R](r)
			if err != nil {
				return nil, err
			}
			return normalize(*ref(rec)), nil
		},
		set: func(r Record, v any) error {
			rec, err := as[R](r)
			if err != nil {
				return err
			}
			val, err := coerce[V](v)
			if err != nil {
				return err
			}
			*ref(rec) = val
			return nil
		},
	}
}

func as[R Record](r Record) (R, error) {
	rec, ok := r.(R)
	if !ok {
		var zero R
		return zero, fmt.Errorf("field belongs to %T, got %T", zero, r)
	}
	return rec, nil
}

func nillable[E any]() bool {
	switch reflect.TypeOf((*E)(nil)).Elem().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

// coerce converts a normalized value into E. Only conversions within the same
// family (string to string, number to number, bool to bool) are allowed.
func coerce[E any](v any) (E, error) {
	var zero E
	if v == nil {
		return zero, nil
	}
	if e, ok := v.(E); ok {
		return e, nil
	}

	target := reflect.TypeOf((*E)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(target) || !sameFamily(rv.Kind(), target.Kind()) {
		return zero, fmt.Errorf("cannot assign %T to %s", v, target)
	}
	if err := checkRange(rv, target); err != nil {
		return zero, fmt.Errorf("cannot assign %v to %s: %w", v, target, err)
	}
	return rv.Convert(target).Interface().(E), nil
}

// checkRange rejects numeric conversions that would truncate or wrap.
func checkRange(v reflect.Value, target reflect.Type) error {
	switch {
	case isSigned(target.Kind()):
		i, err := integral(v)
		if err != nil {
			return err
		}
		if reflect.Zero(target).OverflowInt(i) {
			return fmt.Errorf("%d overflows %s", i, target)
		}
	case isUnsigned(target.Kind()):
		i, err := integral(v)
		if err != nil {
			return err
		}
		if i < 0 && !isUnsigned(v.Kind()) {
			return fmt.Errorf("%d is negative", i)
		}
		if !isUnsigned(v.Kind()) && reflect.Zero(target).OverflowUint(uint64(i)) {
			return fmt.Errorf("%d overflows %s", i, target)
		}
		if isUnsigned(v.Kind()) && reflect.Zero(target).OverflowUint(v.Uint()) {
			return fmt.Errorf("%d overflows %s", v.Uint(), target)
		}
	case target.Kind() == reflect.Float32:
		if isFloat(v.Kind()) && reflect.Zero(target).OverflowFloat(v.Float()) {
			return fmt.Errorf("%v overflows %s", v.Float(), target)
		}
	}
	return nil
}

// integral returns v as an int64 when it holds a whole number in range. For
// unsigned values above MaxInt64 only the unsigned checks apply.
func integral(v reflect.Value) (int64, error) {
	switch {
	case isSigned(v.Kind()):
		return v.Int(), nil
	case isUnsigned(v.Kind()):
		u := v.Uint()
		if u > math.MaxInt64 {
			return math.MaxInt64, nil
		}
		return int64(u), nil
	case isFloat(v.Kind()):
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, fmt.Errorf("%v is not an integer", f)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%v overflows int64", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("%s is not a number", v.Type())
}

func sameFamily(a, b reflect.Kind) bool {
	switch {
	case a == reflect.String && b == reflect.String:
		return true
	case a == reflect.Bool && b == reflect.Bool:
		return true
	case isNumber(a) && isNumber(b):
		return true
	default:
		return false
	}
}

func isNumber(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || isFloat(k)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// normalize maps a stored Go value onto the small set of shapes the codec
// works with: string, int64, float64, bool, decimal.Decimal, time.Time,
// Record, []any, map[string]any and nil.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, int64, float64, bool, decimal.Decimal, time.Time, []any, map[string]any:
		return x
	case Record:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	}
	return v
}

// Normalize exposes the value normalization used by field getters.
func Normalize(v any) any {
	return normalize(v)
}
