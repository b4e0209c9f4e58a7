package jsonparser_test

import (
	"errors"
	"strings"
	"testing"

	beanjson "github.com/reoring/beanjson"
	"github.com/reoring/beanjson/source/jsonparser"
)

func TestParseBytes(t *testing.T) {
	d := jsonparser.Driver()
	n, err := d.ParseBytes([]byte(`{"a":[1,true,null,"s"],"b":1.5,"c":"e\nf"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := n.Get("a")
	if !arr.IsArray() || arr.Len() != 4 {
		t.Fatalf("unexpected array: %v", arr)
	}
	if v, _ := arr.Elems()[0].AsInt(); v != 1 {
		t.Fatalf("want 1, got %d", v)
	}
	if !arr.Elems()[2].IsNull() {
		t.Fatalf("null element lost")
	}
	if v, _ := n.Get("b").AsFloat64(); v != 1.5 {
		t.Fatalf("want 1.5, got %v", v)
	}
	if v, _ := n.Get("c").AsString(); v != "e\nf" {
		t.Fatalf("escapes must be decoded, got %q", v)
	}
}

func TestParseReader(t *testing.T) {
	d := jsonparser.Driver()
	n, err := d.Parse(strings.NewReader(`[{"k":"v"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := n.Elems()[0].Get("k").AsString(); v != "v" {
		t.Fatalf("unexpected result: %v", n)
	}
}

func TestParseScalarRoot(t *testing.T) {
	d := jsonparser.Driver()
	n, err := d.ParseBytes([]byte(`42`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := n.AsInt(); v != 42 {
		t.Fatalf("want 42, got %v", n)
	}
}

func TestParseDuplicateNames(t *testing.T) {
	d := jsonparser.Driver()
	n, err := d.ParseBytes([]byte(`{"a":1,"a":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Len() != 2 {
		t.Fatalf("duplicate names must be preserved, got %d fields", n.Len())
	}
}

func TestParseMalformed(t *testing.T) {
	d := jsonparser.Driver()
	if _, err := d.ParseBytes([]byte(`{bad`)); !errors.Is(err, beanjson.ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got: %v", err)
	}
}

func TestParseTrailingContent(t *testing.T) {
	d := jsonparser.Driver()
	for _, input := range []string{`{"a":1} nonsense`, `[1] [2]`, `"s" x`} {
		if _, err := d.ParseBytes([]byte(input)); !errors.Is(err, beanjson.ErrSyntax) {
			t.Errorf("%q: expected ErrSyntax, got: %v", input, err)
		}
	}
	if _, err := d.ParseBytes([]byte("{\"a\":1}\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeThroughDriver(t *testing.T) {
	beanjson.SetDriver(jsonparser.Driver())
	defer beanjson.UseDefaultDriver()

	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	c := beanjson.New()
	got, err := beanjson.DecodeString[Person](c, `{"name":"x","age":5}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "x" || got.Age != 5 {
		t.Fatalf("unexpected result: %+v", got)
	}
}
