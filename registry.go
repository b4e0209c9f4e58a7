package beanjson

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/exp/slices"
)

// member describes one serializable member of a struct type: its external
// name, the reflect index path to reach it, its declared type and an optional
// element-type hint for container members.
type member struct {
	name       string
	index      []int
	typ        reflect.Type
	elemType   reflect.Type
	deprecated bool
}

// typeMeta is the cached member table of one struct type.
type typeMeta struct {
	members []*member
	byName  map[string]*member
}

// enumSet is the ordered constant table of a registered enumerated type.
type enumSet struct {
	typ    reflect.Type
	names  []string
	values []reflect.Value
}

func (es *enumSet) nameOf(v reflect.Value, useNames bool) (string, bool) {
	for i, c := range es.values {
		if c.Interface() == v.Interface() {
			if !useNames {
				if s, ok := v.Interface().(fmt.Stringer); ok {
					return s.String(), true
				}
			}
			return es.names[i], true
		}
	}
	return "", false
}

func (es *enumSet) valueOf(name string, useNames bool) (reflect.Value, bool) {
	for i, c := range es.values {
		if !useNames {
			if s, ok := c.Interface().(fmt.Stringer); ok && s.String() == name {
				return c, true
			}
		}
		if es.names[i] == name {
			return c, true
		}
	}
	return reflect.Value{}, false
}

// EnumConstant couples a symbolic identifier with one constant of an
// enumerated type. All constants passed to RegisterEnum must share a type.
type EnumConstant struct {
	Name  string
	Value any
}

// resolveMemberName applies the repository-wide rule for a struct field's
// external name: json tag name when present, the field name otherwise;
// a "-" tag excludes the field.
func resolveMemberName(sf reflect.StructField) string {
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if i == 0 {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// cacheFields builds and caches the member table for a struct type. Embedded
// structs stand in for the ancestry chain and are flattened in declaration
// order; unexported fields and fields tagged "-" are excluded. The first
// member seen under a name wins, mirroring Go's promotion rules.
func (c *Codec) cacheFields(t reflect.Type) *typeMeta {
	if meta, ok := c.fields[t]; ok {
		return meta
	}
	meta := &typeMeta{byName: make(map[string]*member)}
	c.collectFields(t, nil, meta)
	if c.sortFields {
		slices.SortStableFunc(meta.members, func(a, b *member) int {
			return strings.Compare(a.name, b.name)
		})
	}
	c.fields[t] = meta
	return meta
}

func (c *Codec) collectFields(t reflect.Type, prefix []int, meta *typeMeta) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)
		if sf.Anonymous {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && sf.Tag.Get("json") == "" {
				c.collectFields(ft, index, meta)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		name := resolveMemberName(sf)
		if name == "-" {
			continue
		}
		if _, dup := meta.byName[name]; dup {
			continue
		}
		m := &member{name: name, index: index, typ: sf.Type}
		meta.members = append(meta.members, m)
		meta.byName[name] = m
	}
}

// lookupMember finds a descriptor by external name, normalizing '-' and ' '
// separators to '_' and falling back to a case-insensitive scan.
func (meta *typeMeta) lookupMember(name string) *member {
	if m, ok := meta.byName[name]; ok {
		return m
	}
	norm := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return '_'
		}
		return r
	}, name)
	if m, ok := meta.byName[norm]; ok {
		return m
	}
	for _, m := range meta.members {
		if strings.EqualFold(m.name, norm) {
			return m
		}
	}
	return nil
}

// fieldValue resolves a member's value through its index path, allocating
// intermediate nil embedded pointers on the way when addressable.
func fieldValue(v reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v
}

// SetElementType records an element-type hint for a container-typed member of
// t. Unknown members fail with ErrConfiguration.
func (c *Codec) SetElementType(t reflect.Type, memberName string, elemType reflect.Type) error {
	t = derefType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return newError(ErrConfiguration, "element type overrides require a struct type, got %v", t)
	}
	meta := c.cacheFields(t)
	m, ok := meta.byName[memberName]
	if !ok {
		return newError(ErrConfiguration, "member not found: %s (%s)", memberName, typeName(t))
	}
	m.elemType = elemType
	return nil
}

// SetDeprecated marks a member of t as deprecated. With
// SetIgnoreDeprecated(true) the member is skipped on write and, unless
// SetReadDeprecated(true), on read as well. Unknown members fail with
// ErrConfiguration.
func (c *Codec) SetDeprecated(t reflect.Type, memberName string, deprecated bool) error {
	t = derefType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return newError(ErrConfiguration, "deprecation requires a struct type, got %v", t)
	}
	meta := c.cacheFields(t)
	m, ok := meta.byName[memberName]
	if !ok {
		return newError(ErrConfiguration, "member not found: %s (%s)", memberName, typeName(t))
	}
	m.deprecated = deprecated
	return nil
}

// AddTypeTag registers a bidirectional alias between a tag and a type, used
// to shorten or obscure type names in output and to resolve discriminators.
func (c *Codec) AddTypeTag(tag string, t reflect.Type) {
	t = derefType(t)
	c.tagToType[tag] = t
	c.typeToTag[t] = tag
}

// RegisterType makes a type resolvable by its canonical name when it appears
// in a type discriminator without an alias. Go has no runtime type lookup by
// name, so any type expected to round-trip through a discriminator must be
// registered or aliased.
func (c *Codec) RegisterType(t reflect.Type) {
	t = derefType(t)
	c.typeNames[typeName(t)] = t
}

// RegisterEnum registers the ordered constant set of an enumerated type.
// The type is inferred from the first constant; mixing types fails with
// ErrConfiguration.
func (c *Codec) RegisterEnum(constants ...EnumConstant) error {
	if len(constants) == 0 {
		return newError(ErrConfiguration, "at least one enum constant is required")
	}
	t := reflect.TypeOf(constants[0].Value)
	es := &enumSet{typ: t}
	for _, ec := range constants {
		v := reflect.ValueOf(ec.Value)
		if v.Type() != t {
			return newError(ErrConfiguration, "enum constant %q has type %s, want %s",
				ec.Name, typeName(v.Type()), typeName(t))
		}
		es.names = append(es.names, ec.Name)
		es.values = append(es.values, v)
	}
	c.enums[t] = es
	c.RegisterType(t)
	return nil
}

// prototypeValues returns the snapshot of t's member values taken from a
// default-constructed instance, used to elide unchanged members. The first
// lookup constructs and caches the snapshot; types that cannot be
// instantiated are cached as having no prototype.
func (c *Codec) prototypeValues(t reflect.Type) []reflect.Value {
	if !c.usePrototypes {
		return nil
	}
	if values, ok := c.prototypes[t]; ok {
		return values
	}
	if t.Kind() != reflect.Struct {
		c.prototypes[t] = nil
		return nil
	}
	proto := reflect.New(t).Elem()
	meta := c.cacheFields(t)
	values := make([]reflect.Value, len(meta.members))
	for i, m := range meta.members {
		values[i] = fieldValue(proto, m.index)
	}
	c.prototypes[t] = values
	return values
}

// equalToPrototype compares a member value against its prototype slot.
// Slices and arrays of the same element type compare element-wise,
// recursively; everything else compares shallowly and is never elided when
// its type is not comparable.
func equalToPrototype(v, proto reflect.Value) bool {
	if !v.IsValid() || !proto.IsValid() {
		return v.IsValid() == proto.IsValid()
	}
	if v.Type() != proto.Type() {
		return false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && (v.IsNil() != proto.IsNil()) {
			return false
		}
		if v.Len() != proto.Len() {
			return false
		}
		for i := 0; i < v.Len(); i++ {
			if !equalToPrototype(v.Index(i), proto.Index(i)) {
				return false
			}
		}
		return true
	default:
		if !v.Type().Comparable() {
			return false
		}
		return v.Interface() == proto.Interface()
	}
}

// typeName returns the canonical name a type is tagged and registered under.
func typeName(t reflect.Type) string {
	return t.String()
}

// derefType unwraps pointer types; it returns nil for nil input.
func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// stringify renders arbitrary non-scalar values, mainly map keys, as text.
func stringify(v any) string {
	if t, ok := v.(reflect.Type); ok {
		return typeName(t)
	}
	return fmt.Sprint(v)
}
