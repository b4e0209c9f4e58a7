package beanjson

import (
	"strconv"
	"strings"
)

// NodeKind identifies the variant held by a Node.
type NodeKind uint8

const (
	NullNode NodeKind = iota
	BoolNode
	NumberNode
	StringNode
	ArrayNode
	ObjectNode
)

func (k NodeKind) String() string {
	switch k {
	case NullNode:
		return "null"
	case BoolNode:
		return "bool"
	case NumberNode:
		return "number"
	case StringNode:
		return "string"
	case ArrayNode:
		return "array"
	case ObjectNode:
		return "object"
	}
	return "unknown"
}

// Field is a named child of an object node. Child order is insertion order.
type Field struct {
	Name  string
	Value *Node
}

// Node is one element of the value tree: null, bool, number, string, array or
// object. Numbers keep their original textual literal so no precision is lost
// between parsing and coercion. Nodes are produced by parser drivers or by the
// literal-building helpers and consumed by the read engine; the only mutation
// the engine performs is Remove, used to consume a type discriminator.
type Node struct {
	kind   NodeKind
	lit    string // number literal or string content
	b      bool
	elems  []*Node
	fields []Field
}

// NewNull returns a null node.
func NewNull() *Node { return &Node{kind: NullNode} }

// NewBool returns a boolean node.
func NewBool(v bool) *Node { return &Node{kind: BoolNode, b: v} }

// NewNumber returns a number node holding the given literal verbatim.
func NewNumber(lit string) *Node { return &Node{kind: NumberNode, lit: lit} }

// NewInt returns a number node for v.
func NewInt(v int64) *Node { return NewNumber(strconv.FormatInt(v, 10)) }

// NewFloat returns a number node for v. Integral values render without a
// fractional part, matching the writer's output.
func NewFloat(v float64) *Node {
	if v == float64(int64(v)) {
		return NewNumber(strconv.FormatInt(int64(v), 10))
	}
	return NewNumber(strconv.FormatFloat(v, 'g', -1, 64))
}

// NewString returns a string node.
func NewString(v string) *Node { return &Node{kind: StringNode, lit: v} }

// NewArray returns an empty array node.
func NewArray() *Node { return &Node{kind: ArrayNode} }

// NewObject returns an empty object node.
func NewObject() *Node { return &Node{kind: ObjectNode} }

// Kind returns the variant of this node.
func (n *Node) Kind() NodeKind { return n.kind }

func (n *Node) IsNull() bool   { return n.kind == NullNode }
func (n *Node) IsBool() bool   { return n.kind == BoolNode }
func (n *Node) IsNumber() bool { return n.kind == NumberNode }
func (n *Node) IsString() bool { return n.kind == StringNode }
func (n *Node) IsArray() bool  { return n.kind == ArrayNode }
func (n *Node) IsObject() bool { return n.kind == ObjectNode }

// Set adds or replaces the named child of an object node and returns the node
// for chaining. When the name is already present the first occurrence is
// replaced; otherwise the child is appended, preserving insertion order.
func (n *Node) Set(name string, child *Node) *Node {
	for i := range n.fields {
		if n.fields[i].Name == name {
			n.fields[i].Value = child
			return n
		}
	}
	n.fields = append(n.fields, Field{Name: name, Value: child})
	return n
}

// Add appends a named child to an object node without replacing an existing
// child of the same name. Parser drivers use it so duplicate input names
// survive into the tree; Set is the literal-building counterpart.
func (n *Node) Add(name string, child *Node) *Node {
	n.fields = append(n.fields, Field{Name: name, Value: child})
	return n
}

// Append adds a child to an array node and returns the node for chaining.
func (n *Node) Append(child *Node) *Node {
	n.elems = append(n.elems, child)
	return n
}

// Get returns the first child with the given name, or nil when absent or when
// the node is not an object.
func (n *Node) Get(name string) *Node {
	for _, f := range n.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Remove deletes and returns the first child with the given name, or nil.
// This is how the read engine consumes a type discriminator.
func (n *Node) Remove(name string) *Node {
	for i, f := range n.fields {
		if f.Name == name {
			n.fields = append(n.fields[:i], n.fields[i+1:]...)
			return f.Value
		}
	}
	return nil
}

// Fields returns the ordered (name, child) pairs of an object node. The
// returned slice must not be mutated.
func (n *Node) Fields() []Field { return n.fields }

// Elems returns the ordered children of an array node. The returned slice
// must not be mutated.
func (n *Node) Elems() []*Node { return n.elems }

// Len returns the child count of an array or object node, zero otherwise.
func (n *Node) Len() int {
	if n.kind == ObjectNode {
		return len(n.fields)
	}
	return len(n.elems)
}

// AsString coerces a scalar node to its textual form. Null yields "null".
func (n *Node) AsString() (string, error) {
	switch n.kind {
	case StringNode, NumberNode:
		return n.lit, nil
	case BoolNode:
		return strconv.FormatBool(n.b), nil
	case NullNode:
		return "null", nil
	}
	return "", newError(ErrConversion, "cannot convert %s to string", n.kind)
}

// AsInt coerces a scalar node to an int.
func (n *Node) AsInt() (int, error) {
	v, err := n.AsInt64()
	return int(v), err
}

// AsInt64 coerces a scalar node to an int64. Number literals with a
// fractional part are truncated.
func (n *Node) AsInt64() (int64, error) {
	switch n.kind {
	case NumberNode, StringNode:
		if v, err := strconv.ParseInt(n.lit, 10, 64); err == nil {
			return v, nil
		}
		if f, err := strconv.ParseFloat(n.lit, 64); err == nil {
			return int64(f), nil
		}
		return 0, newError(ErrConversion, "cannot convert %q to int", n.lit)
	case BoolNode:
		if n.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, newError(ErrConversion, "cannot convert %s to int", n.kind)
}

// AsUint64 coerces a scalar node to a uint64. Negative literals fail with
// ErrConversion rather than wrapping around.
func (n *Node) AsUint64() (uint64, error) {
	switch n.kind {
	case NumberNode, StringNode:
		if v, err := strconv.ParseUint(n.lit, 10, 64); err == nil {
			return v, nil
		}
		if f, err := strconv.ParseFloat(n.lit, 64); err == nil && f >= 0 {
			return uint64(f), nil
		}
		return 0, newError(ErrConversion, "cannot convert %q to uint", n.lit)
	case BoolNode:
		if n.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, newError(ErrConversion, "cannot convert %s to uint", n.kind)
}

// AsFloat32 coerces a scalar node to a float32.
func (n *Node) AsFloat32() (float32, error) {
	v, err := n.AsFloat64()
	return float32(v), err
}

// AsFloat64 coerces a scalar node to a float64.
func (n *Node) AsFloat64() (float64, error) {
	switch n.kind {
	case NumberNode, StringNode:
		v, err := strconv.ParseFloat(n.lit, 64)
		if err != nil {
			return 0, newError(ErrConversion, "cannot convert %q to float", n.lit)
		}
		return v, nil
	case BoolNode:
		if n.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, newError(ErrConversion, "cannot convert %s to float", n.kind)
}

// AsBool coerces a scalar node to a bool. Numbers are true when non-zero;
// strings must parse as a boolean literal.
func (n *Node) AsBool() (bool, error) {
	switch n.kind {
	case BoolNode:
		return n.b, nil
	case NumberNode:
		f, err := n.AsFloat64()
		if err != nil {
			return false, err
		}
		return f != 0, nil
	case StringNode:
		v, err := strconv.ParseBool(n.lit)
		if err != nil {
			return false, newError(ErrConversion, "cannot convert %q to bool", n.lit)
		}
		return v, nil
	}
	return false, newError(ErrConversion, "cannot convert %s to bool", n.kind)
}

// String renders the node as compact strict-dialect text, mainly for
// diagnostics and error messages.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	switch n.kind {
	case NullNode:
		b.WriteString("null")
	case BoolNode:
		b.WriteString(strconv.FormatBool(n.b))
	case NumberNode:
		b.WriteString(n.lit)
	case StringNode:
		b.WriteString(Strict.QuoteValue(n.lit))
	case ArrayNode:
		b.WriteByte('[')
		for i, e := range n.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			e.render(b)
		}
		b.WriteByte(']')
	case ObjectNode:
		b.WriteByte('{')
		for i, f := range n.fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Strict.QuoteName(f.Name))
			b.WriteByte(':')
			f.Value.render(b)
		}
		b.WriteByte('}')
	}
}
