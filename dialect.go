package beanjson

import (
	"regexp"
	"strings"
)

// Dialect selects the quoting rules applied to names and values in emitted
// text. All dialects produce the same structure; they differ only in when
// quotes can be omitted.
type Dialect int

const (
	// Strict is normal JSON, with all its quotes.
	Strict Dialect = iota
	// RelaxedNames quotes names only when they are not bare identifiers.
	RelaxedNames
	// Minimal quotes names and values only when the literal would otherwise
	// be ambiguous with punctuation, whitespace, or the true/false/null
	// literals. Control characters are always escaped.
	Minimal
)

func (d Dialect) String() string {
	switch d {
	case Strict:
		return "strict"
	case RelaxedNames:
		return "relaxed-names"
	case Minimal:
		return "minimal"
	}
	return "unknown"
}

// Bare minimal literals start with a letter, underscore or dollar sign.
// Leading digits, punctuation and YAML indicator characters (anchors,
// aliases, comments, block markers) must be quoted, or a lenient reader
// would assign them structural meaning.
var (
	identifierPattern   = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z_$0-9]*$`)
	minimalNamePattern  = regexp.MustCompile(`^[a-zA-Z_$][^":,{}\[\] ]*$`)
	minimalValuePattern = regexp.MustCompile(`^[a-zA-Z_$][^":,{}\[\]]*$`)
)

// QuoteValue returns the dialect representation of a string value, quoting
// and escaping when required.
func (d Dialect) QuoteValue(value string) string {
	escaped, clean := escapeString(value, false)
	if d == Minimal && clean &&
		value != "true" && value != "false" && value != "null" &&
		!strings.Contains(value, "//") && !strings.Contains(value, "/*") &&
		!strings.Contains(value, " #") &&
		!strings.HasSuffix(value, " ") &&
		minimalValuePattern.MatchString(value) {
		return escaped
	}
	q, _ := escapeString(value, true)
	return `"` + q + `"`
}

// QuoteName returns the dialect representation of an object member name.
func (d Dialect) QuoteName(name string) string {
	escaped, clean := escapeString(name, false)
	switch d {
	case Minimal:
		if clean && minimalNamePattern.MatchString(name) {
			return escaped
		}
	case RelaxedNames:
		if clean && identifierPattern.MatchString(name) {
			return escaped
		}
	}
	q, _ := escapeString(name, true)
	return `"` + q + `"`
}

// escapeString escapes backslashes and control characters. When quoted is
// true, double quotes are escaped as well. The second result reports whether
// the input contained no character that forces quoting: a name or value whose
// escaped form differs from the original can never be emitted bare, because
// the read side would take the escapes literally.
func escapeString(s string, quoted bool) (string, bool) {
	var b strings.Builder
	clean := true
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
			clean = false
		case '\r':
			b.WriteString(`\r`)
			clean = false
		case '\n':
			b.WriteString(`\n`)
			clean = false
		case '\t':
			b.WriteString(`\t`)
			clean = false
		case '"':
			if quoted {
				b.WriteString(`\"`)
			} else {
				b.WriteRune(r)
			}
			clean = false
		default:
			if r < 0x20 {
				b.WriteString(`\u`)
				const hex = "0123456789abcdef"
				b.WriteByte('0')
				b.WriteByte('0')
				b.WriteByte(hex[(r>>4)&0xf])
				b.WriteByte(hex[r&0xf])
				clean = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String(), clean
}
