package codec

import (
	"github.com/rs/zerolog"

	"github.com/noders-team/go-dbmgmt/pkg/convert"
	"github.com/noders-team/go-dbmgmt/pkg/schema"
)

// Codec converts between untyped property maps and records. It is immutable
// once built and safe for concurrent use on distinct records.
type Codec struct {
	registry  *schema.Registry
	converter convert.Converter
	logger    zerolog.Logger

	// excludeNullValues drops explicitly assigned nulls from ToStructure
	// output instead of emitting them as nil.
	excludeNullValues bool
}

type Option func(*Codec)

// WithLogger sets the diagnostics sink. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

func WithConverter(converter convert.Converter) Option {
	return func(c *Codec) {
		c.converter = converter
	}
}

// WithDateTimeLayouts replaces the converter with a default converter trying
// the given layouts for datetime strings.
func WithDateTimeLayouts(layouts ...string) Option {
	return func(c *Codec) {
		c.converter = &convert.Default{DateTimeLayouts: layouts}
	}
}

func WithExcludeNullValues(exclude bool) Option {
	return func(c *Codec) {
		c.excludeNullValues = exclude
	}
}

// New creates a Codec resolving nested record types through registry.
func New(registry *schema.Registry, opts ...Option) *Codec {
	c := &Codec{
		registry:  registry,
		converter: convert.NewDefault(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Registry() *schema.Registry {
	return c.registry
}

func (c *Codec) lookup(name string) (*schema.RecordType, bool) {
	if c.registry == nil {
		return nil, false
	}
	return c.registry.Lookup(name)
}
