package beanjson

import (
	"strconv"
	"strings"
)

// PrettyOptions controls the layout of PrettyPrintNode.
type PrettyOptions struct {
	// Dialect selects the quoting rules; structure is unaffected.
	Dialect Dialect
	// FlatOnOneLine keeps containers without nested containers on a single
	// line.
	FlatOnOneLine bool
	// Indent is the unit of indentation; a tab when empty.
	Indent string
}

// PrettyPrint re-emits v as indented text using the codec's dialect.
func (c *Codec) PrettyPrint(v any) (string, error) {
	prev := c.dialect
	c.dialect = Strict
	text, err := c.EncodeString(v)
	c.dialect = prev
	if err != nil {
		return "", err
	}
	n, err := ParseString(text)
	if err != nil {
		return "", err
	}
	return PrettyPrintNode(n, PrettyOptions{Dialect: c.dialect}), nil
}

// PrettyPrintNode lays out a value tree with one member or element per line,
// indenting nested containers.
func PrettyPrintNode(n *Node, opts PrettyOptions) string {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}
	var b strings.Builder
	prettyNode(n, &b, opts, 0)
	return b.String()
}

func prettyNode(n *Node, b *strings.Builder, opts PrettyOptions, indent int) {
	if n == nil {
		b.WriteString("null")
		return
	}
	switch n.Kind() {
	case ObjectNode:
		if n.Len() == 0 {
			b.WriteString("{}")
			return
		}
		newLines := !opts.FlatOnOneLine || !isFlat(n)
		if newLines {
			b.WriteString("{\n")
		} else {
			b.WriteString("{ ")
		}
		for i, f := range n.Fields() {
			if newLines {
				writeIndent(b, opts.Indent, indent+1)
			}
			b.WriteString(opts.Dialect.QuoteName(f.Name))
			b.WriteString(": ")
			prettyNode(f.Value, b, opts, indent+1)
			if i < n.Len()-1 {
				b.WriteString(",")
			}
			if newLines {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		if newLines {
			writeIndent(b, opts.Indent, indent)
		}
		b.WriteString("}")
	case ArrayNode:
		if n.Len() == 0 {
			b.WriteString("[]")
			return
		}
		newLines := !opts.FlatOnOneLine || !isFlat(n)
		if newLines {
			b.WriteString("[\n")
		} else {
			b.WriteString("[ ")
		}
		for i, e := range n.Elems() {
			if newLines {
				writeIndent(b, opts.Indent, indent+1)
			}
			prettyNode(e, b, opts, indent+1)
			if i < n.Len()-1 {
				b.WriteString(",")
			}
			if newLines {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		if newLines {
			writeIndent(b, opts.Indent, indent)
		}
		b.WriteString("]")
	case NullNode:
		b.WriteString("null")
	case BoolNode:
		b.WriteString(strconv.FormatBool(n.b))
	case NumberNode:
		b.WriteString(n.lit)
	case StringNode:
		b.WriteString(opts.Dialect.QuoteValue(n.lit))
	}
}

// isFlat reports whether a container holds no nested containers.
func isFlat(n *Node) bool {
	for _, f := range n.Fields() {
		if f.Value.IsObject() || f.Value.IsArray() {
			return false
		}
	}
	for _, e := range n.Elems() {
		if e.IsObject() || e.IsArray() {
			return false
		}
	}
	return true
}

func writeIndent(b *strings.Builder, unit string, count int) {
	for i := 0; i < count; i++ {
		b.WriteString(unit)
	}
}
