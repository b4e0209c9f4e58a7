package beanjson

import (
	"reflect"
	"time"

	"github.com/golang-module/carbon/v2"
)

// FieldWriter is the write hook a type can provide to take over its own
// member output. It is invoked with the object container already open; the
// implementation uses the codec's member-write primitives and must not close
// or reopen the container itself.
type FieldWriter interface {
	WriteFields(c *Codec) error
}

// FieldReader is the read hook a type can provide to populate its own state
// from an already-resolved object node.
type FieldReader interface {
	ReadFields(c *Codec, n *Node) error
}

// Serializer gives full read/write control for a registered type, including
// the container shape: an implementation may emit an object, an array, or a
// bare scalar.
type Serializer interface {
	Write(c *Codec, v any, knownType reflect.Type) error
	Read(c *Codec, n *Node, t reflect.Type) (any, error)
}

// ReadOnlySerializer is an embeddable base for serializers that only support
// reading; its Write refuses with ErrConfiguration.
type ReadOnlySerializer struct{}

func (ReadOnlySerializer) Write(c *Codec, v any, knownType reflect.Type) error {
	return newError(ErrConfiguration, "serializer for %T is read-only", v)
}

// TimeSerializer reads and writes time.Time values as timestamp strings:
// RFC3339 on the way out, any layout carbon recognizes on the way in. It is
// registered by default for time.Time.
type TimeSerializer struct{}

func (TimeSerializer) Write(c *Codec, v any, knownType reflect.Type) error {
	t := v.(time.Time)
	return c.WriteRawValue(carbon.CreateFromStdTime(t.UTC()).ToRfc3339String())
}

func (TimeSerializer) Read(c *Codec, n *Node, t reflect.Type) (any, error) {
	s, err := n.AsString()
	if err != nil {
		return nil, err
	}
	parsed := carbon.Parse(s)
	if parsed.Error != nil {
		return nil, wrapError(ErrConversion, parsed.Error, "invalid timestamp %q", s)
	}
	return parsed.ToStdTime(), nil
}
