package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/noders-team/go-dbmgmt/pkg/types"
)

// Converter turns a raw decoded value into the Go value of a primitive
// declared type.
type Converter interface {
	ConvertToType(t types.Type, raw any) (any, error)
}

// TypeConversionError reports a raw value that could not be converted to its
// declared type.
type TypeConversionError struct {
	Type  types.Type
	Value any
	Err   error
}

func (e *TypeConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %T %v to %s: %v", e.Value, e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("cannot convert %T %v to %s", e.Value, e.Value, e.Type)
}

func (e *TypeConversionError) Unwrap() error {
	return e.Err
}

var errUnsupported = errors.New("unsupported value")

// DefaultDateTimeLayouts are tried in order when parsing datetime strings.
var DefaultDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

const dateLayout = "2006-01-02"

// Default is the stock Converter.
type Default struct {
	// DateTimeLayouts are tried in order for datetime strings.
	DateTimeLayouts []string
}

// NewDefault returns a converter using DefaultDateTimeLayouts.
func NewDefault() *Default {
	return &Default{DateTimeLayouts: DefaultDateTimeLayouts}
}

func (d *Default) ConvertToType(t types.Type, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	var (
		v   any
		err error
	)
	switch t.Kind {
	case types.KindString:
		v, err = toString(raw)
	case types.KindInteger:
		v, err = toInteger(raw)
	case types.KindFloat:
		v, err = toFloat(raw)
	case types.KindDecimal:
		v, err = toDecimal(raw)
	case types.KindBoolean:
		v, err = toBoolean(raw)
	case types.KindDateTime:
		v, err = d.toDateTime(raw)
	case types.KindDate:
		v, err = toDate(raw)
	case types.KindObject:
		v = raw
	default:
		err = fmt.Errorf("%s is not a primitive type", t)
	}
	if err != nil {
		return nil, &TypeConversionError{Type: t, Value: raw, Err: err}
	}
	return v, nil
}

func toString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	}
	return nil, errUnsupported
}

func toInteger(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseInt(v, 10, 64)
	case json.Number:
		return v.Int64()
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case bool:
		return nil, errUnsupported
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case reflect.String:
		return strconv.ParseInt(rv.String(), 10, 64)
	}
	return nil, errUnsupported
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v overflows int64", f)
	}
	return int64(f), nil
}

func toFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	case json.Number:
		return v.Float64()
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	case bool:
		return nil, errUnsupported
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, errUnsupported
}

func toDecimal(raw any) (any, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return nil, errUnsupported
		}
		return *v, nil
	case string:
		return decimal.NewFromString(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case bool:
		return nil, errUnsupported
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromUint64(rv.Uint()), nil
	}
	return nil, errUnsupported
}

func toBoolean(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	}
	return nil, errUnsupported
}

func (d *Default) toDateTime(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return nil, errUnsupported
		}
		return *v, nil
	case *timestamppb.Timestamp:
		if err := v.CheckValid(); err != nil {
			return nil, err
		}
		return v.AsTime(), nil
	case string:
		layouts := d.DateTimeLayouts
		if len(layouts) == 0 {
			layouts = DefaultDateTimeLayouts
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid datetime format: %s", v)
	}
	return nil, errUnsupported
}

func toDate(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		y, m, day := v.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	case string:
		if t, err := time.Parse(dateLayout, v); err == nil {
			return t, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			y, m, day := t.Date()
			return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
		}
		return nil, fmt.Errorf("invalid date format: %s", v)
	}
	return nil, errUnsupported
}

// FormatDate renders a date value the way toDate parses it.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
