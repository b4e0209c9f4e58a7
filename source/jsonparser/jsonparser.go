// Package jsonparser provides a beanjson.Driver backed by buger/jsonparser,
// a zero-reflection JSON scanner operating directly on the input bytes.
package jsonparser

import (
	"io"

	"github.com/buger/jsonparser"
	"github.com/cockroachdb/errors"

	beanjson "github.com/reoring/beanjson"
)

// Driver returns a beanjson.Driver backed by buger/jsonparser.
func Driver() beanjson.Driver { return driver{} }

type driver struct{}

func (driver) Name() string { return "jsonparser" }

func (d driver) Parse(r io.Reader) (*beanjson.Node, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.ParseBytes(b)
}

func (driver) ParseBytes(b []byte) (*beanjson.Node, error) {
	value, dataType, offset, err := jsonparser.Get(b)
	if err != nil {
		return nil, beanjson.NewSyntaxError(err)
	}
	// Exactly one value per input. Only whitespace may follow it.
	for _, ch := range b[offset:] {
		switch ch {
		case ' ', '\t', '\r', '\n':
		default:
			return nil, beanjson.NewSyntaxError(errors.Newf("unexpected content after value at offset %d", offset))
		}
	}
	return parseValue(value, dataType)
}

func parseValue(data []byte, dataType jsonparser.ValueType) (*beanjson.Node, error) {
	switch dataType {
	case jsonparser.Null:
		return beanjson.NewNull(), nil
	case jsonparser.Boolean:
		v, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return nil, beanjson.NewSyntaxError(err)
		}
		return beanjson.NewBool(v), nil
	case jsonparser.Number:
		// The raw bytes are the literal; keep it verbatim.
		return beanjson.NewNumber(string(data)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return nil, beanjson.NewSyntaxError(err)
		}
		return beanjson.NewString(s), nil
	case jsonparser.Array:
		arr := beanjson.NewArray()
		var inner error
		_, err := jsonparser.ArrayEach(data, func(value []byte, dt jsonparser.ValueType, offset int, cbErr error) {
			if inner != nil {
				return
			}
			if cbErr != nil {
				inner = cbErr
				return
			}
			child, err := parseValue(value, dt)
			if err != nil {
				inner = err
				return
			}
			arr.Append(child)
		})
		if err != nil {
			return nil, beanjson.NewSyntaxError(err)
		}
		if inner != nil {
			return nil, beanjson.NewSyntaxError(inner)
		}
		return arr, nil
	case jsonparser.Object:
		obj := beanjson.NewObject()
		err := jsonparser.ObjectEach(data, func(key, value []byte, dt jsonparser.ValueType, offset int) error {
			child, err := parseValue(value, dt)
			if err != nil {
				return err
			}
			obj.Add(string(key), child)
			return nil
		})
		if err != nil {
			return nil, beanjson.NewSyntaxError(err)
		}
		return obj, nil
	default:
		return nil, beanjson.NewSyntaxError(jsonparser.UnknownValueTypeError)
	}
}
