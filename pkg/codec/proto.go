package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/noders-team/go-dbmgmt/pkg/schema"
)

// ToProto renders r as a protobuf Struct. Times become RFC 3339 strings and
// decimals their string form, both of which the converter reads back.
func (c *Codec) ToProto(r schema.Record) (*structpb.Struct, error) {
	structure, err := c.ToStructure(r)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to structure: %w", err)
	}
	if structure == nil {
		return nil, nil
	}

	plain, ok := protoValue(structure).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected structure %T", structure)
	}
	s, err := structpb.NewStruct(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to build protobuf struct: %w", err)
	}
	return s, nil
}

// FromProto decodes a protobuf Struct into a record of type rt.
func (c *Codec) FromProto(s *structpb.Struct, rt *schema.RecordType) (schema.Record, error) {
	if s == nil {
		return nil, nil
	}
	return c.Decode(rt, s.AsMap())
}

func protoValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case decimal.Decimal:
		return x.String()
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = protoValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = protoValue(item)
		}
		return out
	default:
		return x
	}
}
