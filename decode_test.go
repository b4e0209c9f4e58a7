package beanjson_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	beanjson "github.com/reoring/beanjson"
)

func TestUnknownMemberRejected(t *testing.T) {
	c := beanjson.New()
	_, err := beanjson.DecodeString[Person](c, `{"name":"x","unexpected":1}`)
	if !errors.Is(err, beanjson.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got: %v", err)
	}
	if !strings.Contains(err.Error(), "unexpected") {
		t.Fatalf("error must name the offending member: %v", err)
	}
}

func TestUnknownMemberIgnored(t *testing.T) {
	c := beanjson.New()
	c.SetIgnoreUnknownFields(true)
	got, err := beanjson.DecodeString[Person](c, `{"name":"x","unexpected":1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "x" {
		t.Fatalf("known members must still populate, got %+v", got)
	}
}

func TestUnknownMemberFilter(t *testing.T) {
	c := beanjson.New()
	c.SetUnknownFieldFilter(func(_ reflect.Type, name string) bool {
		return strings.HasPrefix(name, "x_")
	})
	got, err := beanjson.DecodeString[Person](c, `{"name":"x","x_extra":1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "x" {
		t.Fatalf("unexpected result: %+v", got)
	}
	_, err = beanjson.DecodeString[Person](c, `{"name":"x","extra":1}`)
	if !errors.Is(err, beanjson.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound for unfiltered member, got: %v", err)
	}
}

func TestMemberNameNormalization(t *testing.T) {
	type Card struct {
		FirstName string `json:"first_name"`
	}
	c := beanjson.New()
	got, err := beanjson.DecodeString[Card](c, `{"first-name":"x"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FirstName != "x" {
		t.Fatalf("dash variant must match, got %+v", got)
	}
	got, err = beanjson.DecodeString[Card](c, `{"First_Name":"y"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FirstName != "y" {
		t.Fatalf("case-insensitive fallback must match, got %+v", got)
	}
}

func TestScalarCoercionMatrix(t *testing.T) {
	c := beanjson.New()
	if got, err := beanjson.DecodeString[string](c, `42`); err != nil || got != "42" {
		t.Fatalf("number as string: want 42, got %q (%v)", got, err)
	}
	if got, err := beanjson.DecodeString[int](c, `"42"`); err != nil || got != 42 {
		t.Fatalf("string as int: want 42, got %d (%v)", got, err)
	}
	if got, err := beanjson.DecodeString[float64](c, `"1.5"`); err != nil || got != 1.5 {
		t.Fatalf("string as float: want 1.5, got %v (%v)", got, err)
	}
	if got, err := beanjson.DecodeString[bool](c, `1`); err != nil || !got {
		t.Fatalf("number as bool: want true, got %v (%v)", got, err)
	}
	if got, err := beanjson.DecodeString[uint8](c, `7`); err != nil || got != 7 {
		t.Fatalf("narrow uint: want 7, got %d (%v)", got, err)
	}
	if _, err := beanjson.DecodeString[int](c, `"abc"`); !errors.Is(err, beanjson.ErrConversion) {
		t.Fatalf("expected ErrConversion, got: %v", err)
	}
}

func TestNegativeIntoUnsigned(t *testing.T) {
	c := beanjson.New()
	if got, err := beanjson.DecodeString[uint8](c, `-1`); !errors.Is(err, beanjson.ErrConversion) {
		t.Fatalf("negative into uint8 must fail, got %d (%v)", got, err)
	}
	type Counter struct {
		N uint32 `json:"n"`
	}
	if _, err := beanjson.DecodeString[Counter](c, `{"n":-5}`); !errors.Is(err, beanjson.ErrConversion) {
		t.Fatalf("negative member into uint32 must fail, got: %v", err)
	}
	// The full unsigned range stays reachable.
	if got, err := beanjson.DecodeString[uint64](c, `18446744073709551615`); err != nil || got != 18446744073709551615 {
		t.Fatalf("want max uint64, got %d (%v)", got, err)
	}
}

func TestNullTargets(t *testing.T) {
	c := beanjson.New()
	if got, err := beanjson.DecodeString[*Person](c, `null`); err != nil || got != nil {
		t.Fatalf("null into pointer: want nil, got %v (%v)", got, err)
	}
	if got, err := beanjson.DecodeString[int](c, `null`); err != nil || got != 0 {
		t.Fatalf("null into int: want 0, got %d (%v)", got, err)
	}
	type Holder struct {
		P *Person `json:"p"`
	}
	got, err := beanjson.DecodeString[Holder](c, `{"p":null}`)
	if err != nil || got.P != nil {
		t.Fatalf("null member into pointer: want nil, got %v (%v)", got.P, err)
	}
}

func TestDynamicDecode(t *testing.T) {
	c := beanjson.New()
	c.RegisterType(reflect.TypeOf(Person{}))

	// A tagged object resolves to its registered type.
	v, err := beanjson.DecodeString[any](c, `{"class":"beanjson_test.Person","name":"x"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := v.(Person)
	if !ok || p.Name != "x" {
		t.Fatalf("want Person, got %T %v", v, v)
	}

	// An untagged object surfaces the raw tree for dynamic consumption.
	v, err = beanjson.DecodeString[any](c, `{"a":1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*beanjson.Node)
	if !ok {
		t.Fatalf("want *Node, got %T", v)
	}
	if got, _ := n.Get("a").AsInt(); got != 1 {
		t.Fatalf("want member a=1, got %d", got)
	}

	// Scalars and arrays have natural dynamic shapes.
	if v, err = beanjson.DecodeString[any](c, `3`); err != nil || v != int64(3) {
		t.Fatalf("want int64 3, got %T %v (%v)", v, v, err)
	}
	if v, err = beanjson.DecodeString[any](c, `2.5`); err != nil || v != 2.5 {
		t.Fatalf("want float64 2.5, got %T %v (%v)", v, v, err)
	}
	if v, err = beanjson.DecodeString[any](c, `[1,"a"]`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := v.([]any)
	if len(arr) != 2 || arr[0] != int64(1) || arr[1] != "a" {
		t.Fatalf("unexpected dynamic array: %v", arr)
	}
}

func TestUnknownTypeName(t *testing.T) {
	c := beanjson.New()
	_, err := beanjson.DecodeString[any](c, `{"class":"no.Such","a":1}`)
	if !errors.Is(err, beanjson.ErrInstantiation) {
		t.Fatalf("expected ErrInstantiation, got: %v", err)
	}
	if !strings.Contains(err.Error(), "no.Such") {
		t.Fatalf("error must name the unknown type: %v", err)
	}
}

func TestDiscriminatorConsumed(t *testing.T) {
	c := beanjson.New()
	c.RegisterType(reflect.TypeOf(Person{}))
	n, err := beanjson.ParseString(`{"class":"beanjson_test.Person","name":"x"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.DecodeNode(nil, nil, n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Get("class") != nil {
		t.Fatalf("discriminator must be consumed during resolution")
	}
}

func TestWrappedSequenceMissingItems(t *testing.T) {
	c := beanjson.New()
	c.RegisterType(reflect.TypeOf(Scores(nil)))
	_, err := beanjson.DecodeString[any](c, `{"class":"beanjson_test.Scores","values":[1]}`)
	if !errors.Is(err, beanjson.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got: %v", err)
	}
	if !strings.Contains(err.Error(), "items") {
		t.Fatalf("error must mention the items member: %v", err)
	}
}

func TestArrayOverflow(t *testing.T) {
	type Grid struct {
		Coords [2]int `json:"coords"`
	}
	c := beanjson.New()
	_, err := beanjson.DecodeString[Grid](c, `{"coords":[1,2,3]}`)
	if !errors.Is(err, beanjson.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got: %v", err)
	}

	// A shorter input fills the prefix and leaves the rest zero.
	got, err := beanjson.DecodeString[Grid](c, `{"coords":[5]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Coords != [2]int{5, 0} {
		t.Fatalf("want prefix fill, got %v", got.Coords)
	}
}

func TestShapeMismatch(t *testing.T) {
	c := beanjson.New()
	if _, err := beanjson.DecodeString[Person](c, `[1,2]`); !errors.Is(err, beanjson.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch for array into struct, got: %v", err)
	}
	if _, err := beanjson.DecodeString[int](c, `[1]`); !errors.Is(err, beanjson.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch for array into int, got: %v", err)
	}
}

func TestSyntaxError(t *testing.T) {
	c := beanjson.New()
	_, err := beanjson.DecodeString[Person](c, `{"name":`)
	if !errors.Is(err, beanjson.ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got: %v", err)
	}
}

func TestTraceRendering(t *testing.T) {
	c := beanjson.New()
	_, err := beanjson.DecodeString[Team](c, `{"lead":{"name":"x","age":"abc"}}`)
	if !errors.Is(err, beanjson.ErrConversion) {
		t.Fatalf("expected ErrConversion, got: %v", err)
	}
	var be *beanjson.Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *beanjson.Error, got %T", err)
	}
	trace := be.Trace()
	if len(trace) != 2 ||
		!strings.Contains(trace[0], "age (beanjson_test.Person)") ||
		!strings.Contains(trace[1], "lead (beanjson_test.Team)") {
		t.Fatalf("unexpected trace: %v", trace)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Serialization trace:") {
		t.Fatalf("rendered error must carry the trace header: %s", msg)
	}
	if strings.Index(msg, "age (") > strings.Index(msg, "lead (") {
		t.Fatalf("trace must run from the innermost member outward: %s", msg)
	}
}

func TestReadIntoNilPointerTarget(t *testing.T) {
	c := beanjson.New()
	got, err := beanjson.DecodeString[*Person](c, `{"name":"x"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Name != "x" {
		t.Fatalf("want allocated Person, got %v", got)
	}
}
