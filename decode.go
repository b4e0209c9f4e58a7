package beanjson

import (
	"reflect"
	"strconv"
)

// readValue is the type-directed dispatch of the read engine: it reconciles
// the static type requested by the caller with the shape of the node and with
// any discriminator the node carries, and produces a typed value. An absent
// node yields an absent (invalid) value with no error.
func (c *Codec) readValue(t, elemType reflect.Type, n *Node) (reflect.Value, error) {
	if n == nil {
		return reflect.Value{}, nil
	}
	if t != nil && t.Kind() == reflect.Interface {
		// Interfaces carry no concrete type; resolution must come from the
		// node itself. Assignability is checked at assignment time.
		t = nil
	}
	if t != nil && t.Kind() == reflect.Pointer {
		if n.IsNull() {
			return reflect.Zero(t), nil
		}
		inner, err := c.readValue(t.Elem(), elemType, n)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		if inner.IsValid() {
			if err := assignValue(p.Elem(), inner); err != nil {
				return reflect.Value{}, err
			}
		}
		return p, nil
	}
	if n.IsNull() {
		if t == nil {
			return reflect.Value{}, nil
		}
		return reflect.Zero(t), nil
	}

	if n.IsObject() {
		return c.readObject(t, elemType, n)
	}

	// Serializer and read hook delegation for non-object shapes.
	if t != nil {
		if ser := c.serializerFor(t); ser != nil {
			v, err := ser.Read(c, n, t)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(v), nil
		}
		if t.Kind() == reflect.Struct {
			if rv, ok, err := c.tryFieldReader(t, n); ok || err != nil {
				return rv, err
			}
		}
	}

	if n.IsArray() {
		return c.readArray(t, elemType, n)
	}
	return c.readScalar(t, n)
}

// readObject handles object nodes: discriminator resolution, the scalar and
// sequence wrapper shapes, hook and serializer delegation, and member-wise or
// key-wise population.
func (c *Codec) readObject(t, elemType reflect.Type, n *Node) (reflect.Value, error) {
	resolved := t
	if c.typeField != "" {
		if disc := n.Remove(c.typeField); disc != nil {
			name, err := disc.AsString()
			if err != nil {
				return reflect.Value{}, err
			}
			typ, ok := c.tagToType[name]
			if !ok {
				typ, ok = c.typeNames[name]
			}
			if !ok {
				return reflect.Value{}, newError(ErrInstantiation, "unknown type name: %q", name)
			}
			resolved = typ
		}
	}

	if resolved == nil {
		if c.defaultSerializer != nil {
			v, err := c.defaultSerializer.Read(c, n, nil)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(v), nil
		}
		// No type knowledge at all: surface the tree itself for dynamic
		// consumption.
		return reflect.ValueOf(n), nil
	}

	// The scalar and enum wrapper shape: {class: ..., value: ...}.
	if _, isEnum := c.enums[resolved]; isEnum || isScalarKind(resolved.Kind()) {
		return c.readValue(resolved, nil, n.Get("value"))
	}

	// The wrapped sequence shape: {class: ..., items: [...]}.
	if resolved.Kind() == reflect.Slice && c.typeField != "" {
		items := n.Get("items")
		if items == nil {
			return reflect.Value{}, newError(ErrTypeMismatch,
				"unable to convert object to array: missing items (%s)", typeName(resolved))
		}
		return c.readArray(resolved, elemType, items)
	}

	if ser := c.serializerFor(resolved); ser != nil {
		v, err := ser.Read(c, n, resolved)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	}

	obj, err := c.newInstance(resolved)
	if err != nil {
		return reflect.Value{}, err
	}

	if obj.CanAddr() {
		if fr, ok := obj.Addr().Interface().(FieldReader); ok {
			if err := fr.ReadFields(c, n); err != nil {
				return reflect.Value{}, err
			}
			return obj, nil
		}
	}

	if resolved.Kind() == reflect.Map {
		if err := c.readMapEntries(obj, elemType, n); err != nil {
			return reflect.Value{}, err
		}
		return obj, nil
	}

	if resolved.Kind() != reflect.Struct {
		return reflect.Value{}, newError(ErrTypeMismatch,
			"unable to convert object to required type: %s (%s)", n, typeName(resolved))
	}
	if err := c.readStructFields(obj, n); err != nil {
		return reflect.Value{}, err
	}
	return obj, nil
}

// tryFieldReader instantiates t and delegates to its FieldReader hook when it
// has one, for nodes that are not objects (a serializer-style scalar or array
// representation).
func (c *Codec) tryFieldReader(t reflect.Type, n *Node) (reflect.Value, bool, error) {
	if !reflect.PointerTo(t).Implements(fieldReaderType) {
		return reflect.Value{}, false, nil
	}
	obj, err := c.newInstance(t)
	if err != nil {
		return reflect.Value{}, true, err
	}
	if err := obj.Addr().Interface().(FieldReader).ReadFields(c, n); err != nil {
		return reflect.Value{}, true, err
	}
	return obj, true, nil
}

var fieldReaderType = reflect.TypeOf((*FieldReader)(nil)).Elem()

// newInstance constructs an addressable zero value of t, with the enum
// first-constant fallback for enumerated types and classified failures for
// kinds that cannot be built.
func (c *Codec) newInstance(t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Interface:
		return reflect.Value{}, newError(ErrInstantiation,
			"cannot instantiate interface type: %s", typeName(t))
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return reflect.Value{}, newError(ErrInstantiation,
			"cannot instantiate type: %s", typeName(t))
	case reflect.Map:
		m := reflect.New(t).Elem()
		m.Set(reflect.MakeMap(t))
		return m, nil
	default:
		if es, ok := c.enums[t]; ok && len(es.values) > 0 {
			v := reflect.New(t).Elem()
			v.Set(es.values[0])
			return v, nil
		}
		return reflect.New(t).Elem(), nil
	}
}

func (c *Codec) readStructFields(obj reflect.Value, n *Node) error {
	t := obj.Type()
	meta := c.cacheFields(t)
	for _, f := range n.Fields() {
		m := meta.lookupMember(f.Name)
		if m == nil {
			if c.ignoreUnknown {
				continue
			}
			if c.unknownFieldFilter != nil && c.unknownFieldFilter(t, f.Name) {
				continue
			}
			return newError(ErrMemberNotFound, "member not found: %s (%s)", f.Name, typeName(t))
		}
		if m.deprecated && c.ignoreDeprecated && !c.readDeprecated {
			continue
		}
		if f.Value == nil {
			continue
		}
		v, err := c.readValue(m.typ, m.elemType, f.Value)
		if err != nil {
			return annotate(err, ErrConversion, m.name+" ("+typeName(t)+")")
		}
		dst := fieldByIndexAlloc(obj, m.index)
		if err := assignValue(dst, v); err != nil {
			return annotate(err, ErrTypeMismatch, m.name+" ("+typeName(t)+")")
		}
	}
	return nil
}

func (c *Codec) readMapEntries(m reflect.Value, elemType reflect.Type, n *Node) error {
	t := m.Type()
	for _, f := range n.Fields() {
		if c.typeField != "" && f.Name == c.typeField {
			// A residual discriminator; the resolution path removes it, but
			// entries fed straight to hooks may still carry one.
			continue
		}
		key, err := c.readScalar(t.Key(), NewString(f.Name))
		if err != nil {
			return annotate(err, ErrConversion, f.Name+" ("+typeName(t)+")")
		}
		et := elemType
		if et == nil {
			et = normalizeKnown(t.Elem())
		}
		v, err := c.readValue(et, nil, f.Value)
		if err != nil {
			return annotate(err, ErrConversion, f.Name+" ("+typeName(t)+")")
		}
		mv := reflect.New(t.Elem()).Elem()
		if err := assignValue(mv, v); err != nil {
			return annotate(err, ErrTypeMismatch, f.Name+" ("+typeName(t)+")")
		}
		m.SetMapIndex(key, mv)
	}
	return nil
}

func (c *Codec) readArray(t, elemType reflect.Type, n *Node) (reflect.Value, error) {
	if t == nil {
		t = reflect.TypeOf([]any(nil))
	}
	switch t.Kind() {
	case reflect.Slice:
		et := elemType
		if et == nil {
			et = normalizeKnown(t.Elem())
		}
		out := reflect.MakeSlice(t, n.Len(), n.Len())
		for i, child := range n.Elems() {
			v, err := c.readValue(et, nil, child)
			if err != nil {
				return reflect.Value{}, err
			}
			if err := assignValue(out.Index(i), v); err != nil {
				return reflect.Value{}, err
			}
		}
		return out, nil
	case reflect.Array:
		if n.Len() > t.Len() {
			return reflect.Value{}, newError(ErrTypeMismatch,
				"array of length %d cannot hold %d elements (%s)", t.Len(), n.Len(), typeName(t))
		}
		et := elemType
		if et == nil {
			et = normalizeKnown(t.Elem())
		}
		out := reflect.New(t).Elem()
		for i, child := range n.Elems() {
			v, err := c.readValue(et, nil, child)
			if err != nil {
				return reflect.Value{}, err
			}
			if err := assignValue(out.Index(i), v); err != nil {
				return reflect.Value{}, err
			}
		}
		return out, nil
	default:
		return reflect.Value{}, newError(ErrTypeMismatch,
			"unable to convert value to required type: %s (%s)", n, typeName(t))
	}
}

// readScalar coerces a scalar node to the requested type using a fixed
// conversion matrix. With no type requested, numbers become int64 when
// integral and float64 otherwise, matching the dynamic shapes of the parser
// drivers.
func (c *Codec) readScalar(t reflect.Type, n *Node) (reflect.Value, error) {
	if t == nil {
		switch n.Kind() {
		case BoolNode:
			b, err := n.AsBool()
			return reflect.ValueOf(b), err
		case NumberNode:
			if i, err := strconv.ParseInt(n.lit, 10, 64); err == nil {
				return reflect.ValueOf(i), nil
			}
			f, err := n.AsFloat64()
			return reflect.ValueOf(f), err
		default:
			s, err := n.AsString()
			return reflect.ValueOf(s), err
		}
	}

	if es, ok := c.enums[t]; ok {
		s, err := n.AsString()
		if err != nil {
			return reflect.Value{}, err
		}
		v, ok := es.valueOf(s, c.useEnumNames)
		if !ok {
			return reflect.Value{}, newError(ErrConversion,
				"unknown constant %q of enum %s", s, typeName(t))
		}
		return v, nil
	}

	switch t.Kind() {
	case reflect.String:
		s, err := n.AsString()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(t), nil
	case reflect.Bool:
		b, err := n.AsBool()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := n.AsInt64()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := n.AsUint64()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		v, err := n.AsFloat64()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v).Convert(t), nil
	default:
		return reflect.Value{}, newError(ErrConversion,
			"unable to convert value to required type: %s (%s)", n, typeName(t))
	}
}

// assignValue stores src into dst, converting between compatible scalar
// categories and rejecting shape mismatches.
func assignValue(dst, src reflect.Value) error {
	if !src.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	st, dt := src.Type(), dst.Type()
	if st.AssignableTo(dt) {
		dst.Set(src)
		return nil
	}
	if convertibleCategory(st.Kind(), dt.Kind()) && st.ConvertibleTo(dt) {
		dst.Set(src.Convert(dt))
		return nil
	}
	return newError(ErrTypeMismatch, "cannot assign %s to %s", typeName(st), typeName(dt))
}

// convertibleCategory limits reflect conversions to same-category scalars so
// that, for example, an int is never silently turned into a string.
func convertibleCategory(s, d reflect.Kind) bool {
	num := func(k reflect.Kind) bool {
		return k >= reflect.Int && k <= reflect.Float64 && k != reflect.Uintptr
	}
	if num(s) && num(d) {
		return true
	}
	return s == d
}

// fieldByIndexAlloc walks an index path like reflect.Value.FieldByIndex but
// allocates nil embedded pointers along the way.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v
}

// ---- primitives for FieldReader hooks and serializers ----

// ReadFields populates all matching members of target, which must be a
// non-nil pointer to a struct, from the object node.
func (c *Codec) ReadFields(target any, n *Node) error {
	obj, err := targetStruct(target)
	if err != nil {
		return err
	}
	return c.readStructFields(obj, n)
}

// ReadField populates one member of target from the child with the same name.
func (c *Codec) ReadField(target any, memberName string, n *Node) error {
	return c.ReadFieldNamed(target, memberName, memberName, nil, n)
}

// ReadFieldNamed populates the member memberName of target from the child
// named inputName, optionally overriding the element type hint. An absent
// child leaves the member untouched.
func (c *Codec) ReadFieldNamed(target any, memberName, inputName string, elemType reflect.Type, n *Node) error {
	obj, err := targetStruct(target)
	if err != nil {
		return err
	}
	t := obj.Type()
	meta := c.cacheFields(t)
	m, ok := meta.byName[memberName]
	if !ok {
		return newError(ErrMemberNotFound, "member not found: %s (%s)", memberName, typeName(t))
	}
	child := n.Get(inputName)
	if child == nil {
		return nil
	}
	if elemType == nil {
		elemType = m.elemType
	}
	v, err := c.readValue(m.typ, elemType, child)
	if err != nil {
		return annotate(err, ErrConversion, m.name+" ("+typeName(t)+")")
	}
	dst := fieldByIndexAlloc(obj, m.index)
	if err := assignValue(dst, v); err != nil {
		return annotate(err, ErrTypeMismatch, m.name+" ("+typeName(t)+")")
	}
	return nil
}

// ReadValueNamed reads the child with the given name as a value of type t.
// An absent child yields nil.
func (c *Codec) ReadValueNamed(name string, t reflect.Type, n *Node) (any, error) {
	return c.DecodeNode(t, nil, n.Get(name))
}

// ReadValueNamedDefault reads the child with the given name as a value of
// type t, returning def when the child is absent.
func (c *Codec) ReadValueNamedDefault(name string, t reflect.Type, def any, n *Node) (any, error) {
	child := n.Get(name)
	if child == nil {
		return def, nil
	}
	return c.DecodeNode(t, nil, child)
}

func targetStruct(target any) (reflect.Value, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, newError(ErrConfiguration, "target must be a non-nil pointer, got %T", target)
	}
	rv = rv.Elem()
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, newError(ErrConfiguration, "target must point to a struct, got %T", target)
	}
	return rv, nil
}
