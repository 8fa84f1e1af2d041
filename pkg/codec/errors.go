package codec

import (
	"errors"
	"fmt"
)

// ErrAmbiguousField matches every DualKeyError.
var ErrAmbiguousField = errors.New("field given under both its name and its wire name")

// DualKeyError is returned by Construct when a field is supplied under both
// its canonical name and its wire name.
type DualKeyError struct {
	Type  string
	Field string
	Wire  string
}

func (e *DualKeyError) Error() string {
	return fmt.Sprintf("record type %s: cannot specify both %s and %s", e.Type, e.Field, e.Wire)
}

func (e *DualKeyError) Is(target error) bool {
	return target == ErrAmbiguousField
}
