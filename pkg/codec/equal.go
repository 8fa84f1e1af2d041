package codec

import (
	"hash/fnv"
	"math"
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noders-team/go-dbmgmt/pkg/schema"
)

// Equal reports whether a and b are records of the same type whose declared
// fields are pairwise equal. Times compare by instant and decimals by value.
func Equal(a, b schema.Record) bool {
	aNil, bNil := isNil(a), isNil(b)
	if aNil || bNil {
		return aNil && bNil
	}
	if same(a, b) {
		return true
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || a.RecordType() != b.RecordType() {
		return false
	}

	for _, f := range a.RecordType().Fields() {
		va, err := f.Get(a)
		if err != nil {
			return false
		}
		vb, err := f.Get(b)
		if err != nil {
			return false
		}
		if !valueEqual(va, vb) {
			return false
		}
	}
	return true
}

func same(a, b schema.Record) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	return ra.Kind() == reflect.Pointer && ra.Type() == rb.Type() && ra.Pointer() == rb.Pointer()
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case schema.Record:
		y, ok := b.(schema.Record)
		return ok && Equal(x, y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !valueEqual(xv, yv) {
				return false
			}
		}
		return true
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Hash combines the record type name and the hash of every declared field in
// order. Records that are Equal hash the same.
func Hash(r schema.Record) uint64 {
	if isNil(r) {
		return 0
	}

	rt := r.RecordType()
	h := hashString(rt.Name())
	for _, f := range rt.Fields() {
		v, _ := f.Get(r)
		h = h*31 + hashValue(v)
	}
	return h
}

func hashValue(v any) uint64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return hashString(x)
	case int64:
		return uint64(x)
	case float64:
		if x == 0 {
			return 0
		}
		return math.Float64bits(x)
	case bool:
		if x {
			return 1231
		}
		return 1237
	case time.Time:
		return uint64(x.UnixNano())
	case decimal.Decimal:
		return hashValue(x.InexactFloat64())
	case schema.Record:
		return Hash(x)
	case []any:
		h := uint64(1)
		for _, item := range x {
			h = h*31 + hashValue(item)
		}
		return h
	case map[string]any:
		// Entry hashes are summed so iteration order does not matter.
		var h uint64
		for k, item := range x {
			h += hashString(k)*31 ^ hashValue(item)
		}
		return h
	default:
		return hashString(reflect.TypeOf(v).String())
	}
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
