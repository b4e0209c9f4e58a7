package beanjson

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

// Driver converts raw input into a value tree. Implementations wrap a
// lexical parser; the engine itself never tokenizes text. Malformed input
// fails with ErrSyntax.
type Driver interface {
	Parse(r io.Reader) (*Node, error)
	ParseBytes(b []byte) (*Node, error)
	Name() string
}

var (
	driverMu      sync.RWMutex
	currentDriver Driver = goJSONDriver{}
)

// SetDriver replaces the process-wide parser driver; nil values are ignored.
func SetDriver(d Driver) {
	if d == nil {
		return
	}
	driverMu.Lock()
	currentDriver = d
	driverMu.Unlock()
}

// UseDefaultDriver restores the default go-json-backed driver.
func UseDefaultDriver() {
	driverMu.Lock()
	currentDriver = goJSONDriver{}
	driverMu.Unlock()
}

// DefaultDriver returns the go-json-backed driver without installing it.
func DefaultDriver() Driver { return goJSONDriver{} }

func activeDriver() Driver {
	driverMu.RLock()
	d := currentDriver
	driverMu.RUnlock()
	return d
}

// Parse reads one value tree from r using the active driver.
func Parse(r io.Reader) (*Node, error) { return activeDriver().Parse(r) }

// ParseBytes reads one value tree from b using the active driver.
func ParseBytes(b []byte) (*Node, error) { return activeDriver().ParseBytes(b) }

// ParseString reads one value tree from s using the active driver.
func ParseString(s string) (*Node, error) { return activeDriver().ParseBytes([]byte(s)) }

// goJSONDriver is the default driver: a token-streaming decode on top of
// goccy/go-json, preserving number literals verbatim.
type goJSONDriver struct{}

func (goJSONDriver) Name() string { return "go-json" }

func (d goJSONDriver) Parse(r io.Reader) (*Node, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	n, err := decodeNode(dec)
	if err != nil {
		return nil, wrapError(ErrSyntax, err, "malformed input")
	}
	// Exactly one value per input. Anything after it is a syntax error.
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, wrapError(ErrSyntax, err, "malformed input")
		}
		return nil, newError(ErrSyntax, "unexpected content after value: %v", tok)
	}
	return n, nil
}

func (d goJSONDriver) ParseBytes(b []byte) (*Node, error) {
	return d.Parse(bytes.NewReader(b))
}

func decodeNode(dec *gojson.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return nodeFromToken(dec, tok)
}

func nodeFromToken(dec *gojson.Decoder, tok gojson.Token) (*Node, error) {
	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				// Duplicate names are kept; the read engine tolerates them.
				obj.Add(key, child)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, io.ErrUnexpectedEOF
	case string:
		return NewString(v), nil
	case gojson.Number:
		return NewNumber(v.String()), nil
	case float64:
		return NewFloat(v), nil
	case bool:
		return NewBool(v), nil
	case nil:
		return NewNull(), nil
	}
	return nil, io.ErrUnexpectedEOF
}
