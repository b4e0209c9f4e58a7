package beanjson

import (
	"reflect"

	"golang.org/x/exp/slices"
)

// scalarKinds reports the reflect kinds written as bare scalars.
func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// normalizeKnown strips pointers from a static type and discards interface
// types, which carry no concrete knowledge the engine could rely on.
func normalizeKnown(t reflect.Type) reflect.Type {
	t = derefType(t)
	if t != nil && t.Kind() == reflect.Interface {
		return nil
	}
	return t
}

// scalarInterface converts a reflect scalar into the writer's accepted shapes
// without losing the underlying kind.
func scalarInterface(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return v.Interface()
}

// writeValue is the type-directed dispatch at the heart of the write engine.
// It reconciles the static type known from context with the value's actual
// runtime type and picks a representation: bare scalar, bare array, tagged
// object, wrapped array or member-wise object.
func (c *Codec) writeValue(v any, knownType, elemType reflect.Type) error {
	w := c.writer
	if w == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	knownType = normalizeKnown(knownType)
	if v == nil {
		return w.Value(nil)
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return w.Value(nil)
		}
		rv = rv.Elem()
	}
	actual := rv.Type()
	_, isEnum := c.enums[actual]

	// A registered serializer takes the scalar kinds out of the fast path;
	// a named scalar type can carry one, and the read side honors it.
	if !isEnum && isScalarKind(actual.Kind()) && c.serializerFor(actual) == nil {
		if knownType == nil && w.Depth() == 0 && c.typeField != "" {
			// A bare scalar at the root with no static context is wrapped so
			// the discriminator machinery has a member to attach a tag to.
			if err := c.writeObjectStart(actual, nil); err != nil {
				return err
			}
			if err := w.Set("value", scalarInterface(rv)); err != nil {
				return err
			}
			return w.End()
		}
		return w.Value(scalarInterface(rv))
	}

	if fw, ok := fieldWriterFor(v, rv); ok {
		if err := c.writeObjectStart(actual, knownType); err != nil {
			return err
		}
		if err := fw.WriteFields(c); err != nil {
			return err
		}
		return w.End()
	}

	if ser := c.serializerFor(actual); ser != nil {
		return ser.Write(c, rv.Interface(), knownType)
	}

	switch actual.Kind() {
	case reflect.Slice:
		et := elemType
		if et == nil {
			et = normalizeKnown(actual.Elem())
		}
		// Named slice types lose their identity in a bare array, so they are
		// wrapped with a tag and an "items" member when tagging applies.
		if actual.PkgPath() != "" && c.typeField != "" &&
			(knownType == nil || knownType != actual) {
			if err := c.writeObjectStart(actual, nil); err != nil {
				return err
			}
			if err := w.Name("items"); err != nil {
				return err
			}
			if err := c.writeElements(rv, et); err != nil {
				return err
			}
			return w.End()
		}
		return c.writeElements(rv, et)

	case reflect.Array:
		et := elemType
		if et == nil {
			et = normalizeKnown(actual.Elem())
		}
		return c.writeElements(rv, et)

	case reflect.Map:
		if knownType == nil && actual.PkgPath() == "" {
			knownType = actual
		}
		return c.writeMap(rv, knownType, elemType)
	}

	if isEnum {
		es := c.enums[actual]
		name, ok := es.nameOf(rv, c.useEnumNames)
		if !ok {
			return newError(ErrConversion, "unregistered constant %v of enum %s", rv.Interface(), typeName(actual))
		}
		if c.typeField != "" && (knownType == nil || knownType != actual) {
			if err := c.writeObjectStart(actual, nil); err != nil {
				return err
			}
			if err := w.Set("value", name); err != nil {
				return err
			}
			return w.End()
		}
		return w.Value(name)
	}

	if actual.Kind() != reflect.Struct {
		return newError(ErrTypeMismatch, "cannot serialize value of type %s", typeName(actual))
	}
	if err := c.writeObjectStart(actual, knownType); err != nil {
		return err
	}
	if err := c.writeStructFields(rv); err != nil {
		return err
	}
	return w.End()
}

// fieldWriterFor finds a FieldWriter implementation on the original value,
// the dereferenced value, or its address. Checking the original first keeps
// pointer-receiver implementations working when a pointer was handed in.
func fieldWriterFor(orig any, rv reflect.Value) (FieldWriter, bool) {
	if fw, ok := orig.(FieldWriter); ok {
		return fw, true
	}
	if fw, ok := rv.Interface().(FieldWriter); ok {
		return fw, true
	}
	if rv.CanAddr() {
		if fw, ok := rv.Addr().Interface().(FieldWriter); ok {
			return fw, true
		}
	}
	return nil, false
}

func (c *Codec) writeElements(rv reflect.Value, elemType reflect.Type) error {
	if err := c.writer.BeginArray(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		ev := rv.Index(i)
		var item any
		if ev.Kind() == reflect.Interface || ev.Kind() == reflect.Pointer {
			if ev.IsNil() {
				item = nil
			} else {
				item = ev.Interface()
			}
		} else {
			item = ev.Interface()
		}
		if err := c.writeValue(item, elemType, nil); err != nil {
			return err
		}
	}
	return c.writer.End()
}

func (c *Codec) writeMap(rv reflect.Value, knownType, elemType reflect.Type) error {
	if err := c.writeObjectStart(rv.Type(), knownType); err != nil {
		return err
	}
	type pair struct {
		name string
		key  reflect.Value
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{name: c.mapKeyString(iter.Key()), key: iter.Key()})
	}
	// Go map order is randomized; sort for deterministic output.
	slices.SortFunc(pairs, func(a, b pair) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	for _, p := range pairs {
		if err := c.writer.Name(p.name); err != nil {
			return err
		}
		mv := rv.MapIndex(p.key)
		var item any
		if (mv.Kind() == reflect.Interface || mv.Kind() == reflect.Pointer) && mv.IsNil() {
			item = nil
		} else {
			item = mv.Interface()
		}
		if err := c.writeValue(item, elemType, nil); err != nil {
			return annotate(err, ErrConversion, p.name+" ("+typeName(rv.Type())+")")
		}
	}
	return c.writer.End()
}

// mapKeyString stringifies a map key: numbers and booleans verbatim, enum
// constants by their symbolic name, anything else through a generic
// conversion.
func (c *Codec) mapKeyString(k reflect.Value) string {
	for k.Kind() == reflect.Interface || k.Kind() == reflect.Pointer {
		if k.IsNil() {
			return "null"
		}
		k = k.Elem()
	}
	if es, ok := c.enums[k.Type()]; ok {
		if name, ok := es.nameOf(k, c.useEnumNames); ok {
			return name
		}
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	if isScalarKind(k.Kind()) {
		return c.writerlessScalar(k)
	}
	return stringify(k.Interface())
}

func (c *Codec) writerlessScalar(k reflect.Value) string {
	var w Writer
	return w.renderScalar(scalarInterface(k))
}

// writeStructFields writes every member of the struct value, eliding members
// equal to the prototype snapshot at the same index.
func (c *Codec) writeStructFields(rv reflect.Value) error {
	t := rv.Type()
	meta := c.cacheFields(t)
	protos := c.prototypeValues(t)
	for i, m := range meta.members {
		if m.deprecated && c.ignoreDeprecated {
			continue
		}
		fv := fieldValue(rv, m.index)
		if protos != nil && equalToPrototype(fv, protos[i]) {
			continue
		}
		if err := c.writeMember(fv, m, t); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) writeMember(fv reflect.Value, m *member, owner reflect.Type) error {
	if err := c.writer.Name(m.name); err != nil {
		return err
	}
	var item any
	if fv.IsValid() {
		item = fv.Interface()
	}
	if err := c.writeValue(item, m.typ, m.elemType); err != nil {
		return annotate(err, ErrConversion, m.name+" ("+typeName(owner)+")")
	}
	return nil
}

func (c *Codec) writeObjectStart(actualType, knownType reflect.Type) error {
	if err := c.writer.BeginObject(); err != nil {
		return err
	}
	if knownType == nil || knownType != actualType {
		return c.writeTypeTag(actualType)
	}
	return nil
}

func (c *Codec) writeTypeTag(t reflect.Type) error {
	if c.typeField == "" {
		return nil
	}
	tag, ok := c.typeToTag[t]
	if !ok {
		tag = typeName(t)
	}
	return c.writer.Set(c.typeField, tag)
}

// ---- primitives for FieldWriter hooks and serializers ----

// WriteObjectStart opens an object, attaching a type tag when the known type
// is absent or differs from the actual type.
func (c *Codec) WriteObjectStart(actualType, knownType reflect.Type) error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	return c.writeObjectStart(derefType(actualType), normalizeKnown(knownType))
}

// WriteObjectEnd closes the current object.
func (c *Codec) WriteObjectEnd() error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	return c.writer.End()
}

// WriteArrayStart opens an array.
func (c *Codec) WriteArrayStart() error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	return c.writer.BeginArray()
}

// WriteArrayEnd closes the current array.
func (c *Codec) WriteArrayEnd() error { return c.WriteObjectEnd() }

// WriteType emits the type tag member for t into the current object.
func (c *Codec) WriteType(t reflect.Type) error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	return c.writeTypeTag(derefType(t))
}

// WriteRawValue emits a bare scalar at the current position. Serializers use
// it to produce scalar representations instead of objects.
func (c *Codec) WriteRawValue(v any) error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	return c.writer.Value(v)
}

// WriteValue writes a named member whose known type is the value's own type.
func (c *Codec) WriteValue(name string, v any) error {
	var known reflect.Type
	if v != nil {
		known = reflect.TypeOf(v)
	}
	return c.WriteValueTyped(name, v, known, nil)
}

// WriteValueTyped writes a named member with explicit static type knowledge.
func (c *Codec) WriteValueTyped(name string, v any, knownType, elemType reflect.Type) error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	if err := c.writer.Name(name); err != nil {
		return err
	}
	return c.writeValue(v, knownType, elemType)
}

// WriteFields writes all members of v into the currently open object. It is
// the workhorse for FieldWriter hooks.
func (c *Codec) WriteFields(v any) error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return newError(ErrTypeMismatch, "cannot write members of nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return newError(ErrTypeMismatch, "cannot write members of %s", typeName(rv.Type()))
	}
	return c.writeStructFields(rv)
}

// WriteField writes one member of v under its own name.
func (c *Codec) WriteField(v any, memberName string) error {
	return c.WriteFieldNamed(v, memberName, memberName, nil)
}

// WriteFieldNamed writes one member of v under an alternate output name,
// optionally overriding the element type hint.
func (c *Codec) WriteFieldNamed(v any, memberName, outputName string, elemType reflect.Type) error {
	if c.writer == nil {
		return newError(ErrProtocol, "no write in progress")
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return newError(ErrTypeMismatch, "cannot write member of nil value")
		}
		rv = rv.Elem()
	}
	t := rv.Type()
	meta := c.cacheFields(t)
	m, ok := meta.byName[memberName]
	if !ok {
		return newError(ErrMemberNotFound, "member not found: %s (%s)", memberName, typeName(t))
	}
	if elemType == nil {
		elemType = m.elemType
	}
	if err := c.writer.Name(outputName); err != nil {
		return err
	}
	fv := fieldValue(rv, m.index)
	var item any
	if fv.IsValid() {
		item = fv.Interface()
	}
	if err := c.writeValue(item, m.typ, elemType); err != nil {
		return annotate(err, ErrConversion, m.name+" ("+typeName(t)+")")
	}
	return nil
}
