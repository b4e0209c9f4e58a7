package beanjson

import (
	"io"
	"math"
	"strconv"
)

// Writer emits dialect-correct text from a sequence of structural calls:
// BeginObject, Name, Value, BeginArray, End. It enforces the container
// grammar with a stack of open frames and fails with ErrProtocol on
// violations. A Writer holds the state of exactly one in-flight top-level
// write and must not be shared between concurrent writes.
type Writer struct {
	out     io.Writer
	dialect Dialect
	stack   []writeFrame
	named   bool
}

type writeFrame struct {
	array      bool
	needsComma bool
}

// NewWriter returns a Writer emitting to out in the Strict dialect.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// SetDialect selects the quoting rules for subsequent output.
func (w *Writer) SetDialect(d Dialect) { w.dialect = d }

// Depth returns the number of currently open containers.
func (w *Writer) Depth() int { return len(w.stack) }

func (w *Writer) write(s string) error {
	_, err := io.WriteString(w.out, s)
	return err
}

// beginElement handles the separator and pending-name grammar shared by
// values and container openings.
func (w *Writer) beginElement() error {
	if len(w.stack) == 0 {
		return nil
	}
	cur := &w.stack[len(w.stack)-1]
	if cur.array {
		if cur.needsComma {
			return w.write(",")
		}
		cur.needsComma = true
		return nil
	}
	if !w.named {
		return newError(ErrProtocol, "name must be set before a value in an object")
	}
	w.named = false
	return nil
}

// Name emits a member name inside an object frame.
func (w *Writer) Name(name string) error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].array {
		return newError(ErrProtocol, "current container must be an object")
	}
	if w.named {
		return newError(ErrProtocol, "name %q set while another name is pending", name)
	}
	cur := &w.stack[len(w.stack)-1]
	if cur.needsComma {
		if err := w.write(","); err != nil {
			return err
		}
	}
	cur.needsComma = true
	if err := w.write(w.dialect.QuoteName(name)); err != nil {
		return err
	}
	sep := ":"
	if w.dialect != Strict {
		// Unquoted names make a bare colon ambiguous for lenient parsers, so
		// the relaxed dialects pad it.
		sep = ": "
	}
	if err := w.write(sep); err != nil {
		return err
	}
	w.named = true
	return nil
}

// BeginObject opens an object frame.
func (w *Writer) BeginObject() error {
	if err := w.beginElement(); err != nil {
		return err
	}
	w.stack = append(w.stack, writeFrame{})
	return w.write("{")
}

// BeginArray opens an array frame.
func (w *Writer) BeginArray() error {
	if err := w.beginElement(); err != nil {
		return err
	}
	w.stack = append(w.stack, writeFrame{array: true})
	return w.write("[")
}

// Value emits a scalar: nil, bool, any integer or float width, or a string.
// Inside an object a Name call must precede it.
func (w *Writer) Value(v any) error {
	if err := w.beginElement(); err != nil {
		return err
	}
	return w.write(w.renderScalar(v))
}

func (w *Writer) renderScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return w.dialect.QuoteValue(x)
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	default:
		return w.dialect.QuoteValue(stringify(v))
	}
}

// formatFloat drops the fractional part when the value is integral, so whole
// floats round-trip as plain integers.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f) &&
		math.Abs(f) < 1<<62 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Set emits a name and a scalar value in one call.
func (w *Writer) Set(name string, v any) error {
	if err := w.Name(name); err != nil {
		return err
	}
	return w.Value(v)
}

// End closes the innermost open container.
func (w *Writer) End() error {
	if w.named {
		return newError(ErrProtocol, "expected an object, array, or value since a name was set")
	}
	if len(w.stack) == 0 {
		return newError(ErrProtocol, "no open container to close")
	}
	frame := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if frame.array {
		return w.write("]")
	}
	return w.write("}")
}

// Close pops all remaining frames. It does not close the underlying sink.
func (w *Writer) Close() error {
	for len(w.stack) > 0 {
		if err := w.End(); err != nil {
			return err
		}
	}
	return nil
}
