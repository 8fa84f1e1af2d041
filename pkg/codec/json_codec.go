package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/noders-team/go-dbmgmt/pkg/schema"
)

// Marshal renders r as JSON through ToStructure.
func (c *Codec) Marshal(r schema.Record) ([]byte, error) {
	structure, err := c.ToStructure(r)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to structure: %w", err)
	}
	return json.Marshal(structure)
}

// Unmarshal decodes a JSON object into a record of type rt, resolving family
// variants. Numbers are kept as json.Number until converted so large integers
// keep their precision.
func (c *Codec) Unmarshal(data []byte, rt *schema.RecordType) (schema.Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var intermediate any
	if err := decoder.Decode(&intermediate); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	props, ok := intermediate.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object for %s, got %T", rt.Name(), intermediate)
	}
	return c.Decode(rt, props)
}
