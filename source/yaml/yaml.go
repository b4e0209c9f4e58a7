// Package yaml provides a beanjson.Driver backed by gopkg.in/yaml.v3.
//
// YAML's flow syntax is a superset of the relaxed-names and minimal output
// dialects: unquoted names and values parse as plain scalars with their
// literal text intact. This makes the driver the natural read side for
// non-strict output, while still accepting ordinary JSON.
package yaml

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	beanjson "github.com/reoring/beanjson"
)

// Driver returns a beanjson.Driver backed by yaml.v3.
func Driver() beanjson.Driver { return driver{} }

type driver struct{}

func (driver) Name() string { return "yaml" }

func (d driver) Parse(r io.Reader) (*beanjson.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return beanjson.NewNull(), nil
		}
		return nil, beanjson.NewSyntaxError(err)
	}
	return convert(&doc)
}

func (d driver) ParseBytes(b []byte) (*beanjson.Node, error) {
	return d.Parse(strings.NewReader(string(b)))
}

func convert(y *yaml.Node) (*beanjson.Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return beanjson.NewNull(), nil
		}
		return convert(y.Content[0])
	case yaml.AliasNode:
		return convert(y.Alias)
	case yaml.MappingNode:
		obj := beanjson.NewObject()
		for i := 0; i+1 < len(y.Content); i += 2 {
			key := y.Content[i]
			child, err := convert(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Add(key.Value, child)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := beanjson.NewArray()
		for _, item := range y.Content {
			child, err := convert(item)
			if err != nil {
				return nil, err
			}
			arr.Append(child)
		}
		return arr, nil
	case yaml.ScalarNode:
		return convertScalar(y), nil
	default:
		return beanjson.NewNull(), nil
	}
}

func convertScalar(y *yaml.Node) *beanjson.Node {
	// Quoted scalars are always strings; plain scalars follow the resolved
	// tag, keeping the literal text for numbers.
	if y.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		return beanjson.NewString(y.Value)
	}
	switch y.Tag {
	case "!!null":
		return beanjson.NewNull()
	case "!!bool":
		return beanjson.NewBool(y.Value == "true" || y.Value == "True" || y.Value == "TRUE")
	case "!!int", "!!float":
		return beanjson.NewNumber(y.Value)
	default:
		return beanjson.NewString(y.Value)
	}
}
