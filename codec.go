package beanjson

import (
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Codec reads and writes Go object graphs to and from a JSON-like dialect
// without requiring the graph's types to implement any serialization
// protocol. A Codec caches per-type member tables, tag aliases and prototype
// snapshots; reuse one instance across sequential calls. It is not safe for
// concurrent use: first-time population of a type's caches from multiple
// goroutines is a data race, and one write holds the writer state for the
// whole call.
type Codec struct {
	dialect          Dialect
	typeField        string
	usePrototypes    bool
	ignoreUnknown    bool
	ignoreDeprecated bool
	readDeprecated   bool
	sortFields       bool
	useEnumNames     bool

	unknownFieldFilter func(t reflect.Type, memberName string) bool
	defaultSerializer  Serializer
	serializers        map[reflect.Type]Serializer

	fields     map[reflect.Type]*typeMeta
	tagToType  map[string]reflect.Type
	typeToTag  map[reflect.Type]string
	typeNames  map[string]reflect.Type
	enums      map[reflect.Type]*enumSet
	prototypes map[reflect.Type][]reflect.Value

	// writer holds the emitter of the one in-flight top-level write.
	writer *Writer
}

// New returns a Codec with the default configuration: strict dialect, type
// discriminators under "class", prototype elision on, enum constants written
// by their registered names, and a built-in time.Time serializer.
func New() *Codec {
	c := &Codec{
		typeField:     "class",
		usePrototypes: true,
		useEnumNames:  true,
		serializers:   make(map[reflect.Type]Serializer),
		fields:        make(map[reflect.Type]*typeMeta),
		tagToType:     make(map[string]reflect.Type),
		typeToTag:     make(map[reflect.Type]string),
		typeNames:     make(map[string]reflect.Type),
		enums:         make(map[reflect.Type]*enumSet),
		prototypes:    make(map[reflect.Type][]reflect.Value),
	}
	c.SetSerializer(reflect.TypeOf(time.Time{}), TimeSerializer{})
	c.registerBuiltins()
	return c
}

// registerBuiltins makes the predeclared scalar types and the canonical
// dynamic containers resolvable by name, so discriminators written for bare
// scalars and generic containers round-trip without explicit registration.
func (c *Codec) registerBuiltins() {
	for _, v := range []any{
		false, int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0), "",
	} {
		c.RegisterType(reflect.TypeOf(v))
	}
	c.RegisterType(reflect.TypeOf([]any(nil)))
	c.RegisterType(reflect.TypeOf(map[string]any(nil)))
	c.RegisterType(reflect.TypeOf(time.Time{}))
}

// SetDialect selects the output dialect. The read side is dialect-agnostic;
// it depends only on what the active parser driver accepts.
func (c *Codec) SetDialect(d Dialect) { c.dialect = d }

// SetTypeName sets the member name used to store a type discriminator when
// one is required to avoid ambiguity during reading. Set to the empty string
// to never output this information, but be warned that reading such output
// may fail.
func (c *Codec) SetTypeName(name string) { c.typeField = name }

// SetUsePrototypes toggles elision of member values equal to the member's
// default. Enabled by default.
func (c *Codec) SetUsePrototypes(use bool) { c.usePrototypes = use }

// SetIgnoreUnknownFields toggles the unknown-member policy: when enabled,
// input members with no descriptor are skipped instead of failing with
// ErrMemberNotFound.
func (c *Codec) SetIgnoreUnknownFields(ignore bool) { c.ignoreUnknown = ignore }

// SetUnknownFieldFilter installs a per-member predicate consulted for input
// members that have no descriptor; returning true skips the member even when
// the strict policy is active.
func (c *Codec) SetUnknownFieldFilter(fn func(t reflect.Type, memberName string) bool) {
	c.unknownFieldFilter = fn
}

// SetIgnoreDeprecated toggles skipping of members marked via SetDeprecated.
func (c *Codec) SetIgnoreDeprecated(ignore bool) { c.ignoreDeprecated = ignore }

// SetReadDeprecated allows deprecated members to be read even while
// SetIgnoreDeprecated is active.
func (c *Codec) SetReadDeprecated(read bool) { c.readDeprecated = read }

// SetSortFields toggles alphabetical member order; the default is
// declaration order.
func (c *Codec) SetSortFields(sort bool) { c.sortFields = sort }

// SetEnumNames toggles writing enum constants by their registered identifier
// (the default) versus their fmt.Stringer display string.
func (c *Codec) SetEnumNames(useNames bool) { c.useEnumNames = useNames }

// SetSerializer registers full read/write control for a type.
func (c *Codec) SetSerializer(t reflect.Type, s Serializer) {
	c.serializers[derefType(t)] = s
}

// SetDefaultSerializer registers the hook consulted when an object node's
// type cannot be resolved at all.
func (c *Codec) SetDefaultSerializer(s Serializer) { c.defaultSerializer = s }

func (c *Codec) serializerFor(t reflect.Type) Serializer {
	if t == nil {
		return nil
	}
	return c.serializers[t]
}

// ---- write entry points ----

// EncodeString writes v and returns the text. The root known type is v's own
// type, so no discriminator is attached at the root.
func (c *Codec) EncodeString(v any) (string, error) {
	var known reflect.Type
	if v != nil {
		known = reflect.TypeOf(v)
	}
	return c.EncodeStringTyped(v, known, nil)
}

// EncodeStringTyped writes v with an explicit root known type and element
// type hint and returns the text.
func (c *Codec) EncodeStringTyped(v any, knownType, elementType reflect.Type) (string, error) {
	var b strings.Builder
	if err := c.EncodeTyped(&b, v, knownType, elementType); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Encode writes v to w. The root known type is v's own type.
func (c *Codec) Encode(w io.Writer, v any) error {
	var known reflect.Type
	if v != nil {
		known = reflect.TypeOf(v)
	}
	return c.EncodeTyped(w, v, known, nil)
}

// EncodeTyped writes v to w with an explicit root known type and element
// type hint. The writer state lives for exactly this call.
func (c *Codec) EncodeTyped(w io.Writer, v any, knownType, elementType reflect.Type) error {
	c.writer = NewWriter(w)
	c.writer.SetDialect(c.dialect)
	defer func() { c.writer = nil }()
	if err := c.writeValue(v, knownType, elementType); err != nil {
		return err
	}
	return c.writer.Close()
}

// EncodeFile writes v to path, creating or truncating the file. Failures are
// wrapped with the path for context.
func (c *Codec) EncodeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "error writing file: %s", path)
	}
	encErr := c.Encode(f, v)
	closeErr := f.Close()
	if encErr != nil {
		return errors.Wrapf(encErr, "error writing file: %s", path)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "error writing file: %s", path)
	}
	return nil
}

// ---- read entry points ----

// DecodeNode converts a parsed node into a value of type t, using elemType as
// the hint for container elements. A nil node yields a nil result with no
// error.
func (c *Codec) DecodeNode(t, elemType reflect.Type, n *Node) (any, error) {
	rv, err := c.readValue(t, elemType, n)
	if err != nil {
		return nil, err
	}
	if !rv.IsValid() {
		return nil, nil
	}
	return rv.Interface(), nil
}

// Decode parses data with the active driver and converts it to T.
func Decode[T any](c *Codec, data []byte) (T, error) {
	return DecodeElem[T](c, data, nil)
}

// DecodeElem parses data and converts it to T with an element type hint for
// the root container.
func DecodeElem[T any](c *Codec, data []byte, elementType reflect.Type) (T, error) {
	var zero T
	n, err := activeDriver().ParseBytes(data)
	if err != nil {
		return zero, err
	}
	return convertDecoded[T](c, elementType, n)
}

// DecodeString parses s and converts it to T.
func DecodeString[T any](c *Codec, s string) (T, error) {
	return Decode[T](c, []byte(s))
}

// DecodeReader parses r and converts it to T.
func DecodeReader[T any](c *Codec, r io.Reader) (T, error) {
	var zero T
	n, err := activeDriver().Parse(r)
	if err != nil {
		return zero, err
	}
	return convertDecoded[T](c, nil, n)
}

// DecodeFile parses the file at path and converts it to T. Failures are
// wrapped with the path for context, preserving the original cause.
func DecodeFile[T any](c *Codec, path string) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, errors.Wrapf(err, "error reading file: %s", path)
	}
	v, err := DecodeReader[T](c, f)
	closeErr := f.Close()
	if err != nil {
		return zero, errors.Wrapf(err, "error reading file: %s", path)
	}
	if closeErr != nil {
		return zero, errors.Wrapf(closeErr, "error reading file: %s", path)
	}
	return v, nil
}

func convertDecoded[T any](c *Codec, elementType reflect.Type, n *Node) (T, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// T is an interface type; decode dynamically.
		v, err := c.DecodeNode(nil, elementType, n)
		if err != nil {
			return zero, err
		}
		if v == nil {
			return zero, nil
		}
		out, ok := v.(T)
		if !ok {
			return zero, newError(ErrTypeMismatch, "decoded %T does not implement the requested interface", v)
		}
		return out, nil
	}
	v, err := c.DecodeNode(t, elementType, n)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}

// Copy deep-copies a value by writing it through the value tree and reading
// it back into a fresh instance of the same type.
func Copy[T any](c *Codec, v T) (T, error) {
	var zero T
	// The default driver parses strict text, so copy through that dialect
	// regardless of the configured output dialect.
	prev := c.dialect
	c.dialect = Strict
	text, err := c.EncodeString(v)
	c.dialect = prev
	if err != nil {
		return zero, err
	}
	return DecodeString[T](c, text)
}
