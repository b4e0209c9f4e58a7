package beanjson_test

import (
	"errors"
	"strings"
	"testing"

	beanjson "github.com/reoring/beanjson"
)

func TestWriterNesting(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.BeginObject(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Name("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.BeginArray(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Value(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.BeginObject(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Set("b", "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.String(); got != `{"a":[1,{"b":"x"}]}` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestWriterRootScalar(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.Value(42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.String(); got != "42" {
		t.Fatalf("want 42, got %s", got)
	}
}

func TestWriterScalarShapes(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.BeginArray(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range []any{nil, true, int8(-3), uint16(9), 2.5, float64(4), "s"} {
		if err := w.Value(v); err != nil {
			t.Fatalf("unexpected error for %v: %v", v, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.String(); got != `[null,true,-3,9,2.5,4,"s"]` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestWriterValueWithoutName(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.BeginObject(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Value(1); !errors.Is(err, beanjson.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got: %v", err)
	}
}

func TestWriterDoubleName(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.BeginObject(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Name("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Name("b"); !errors.Is(err, beanjson.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got: %v", err)
	}
}

func TestWriterNameInArray(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.BeginArray(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Name("a"); !errors.Is(err, beanjson.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got: %v", err)
	}
}

func TestWriterEndWithPendingName(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.BeginObject(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Name("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.End(); !errors.Is(err, beanjson.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got: %v", err)
	}
}

func TestWriterEndWithoutContainer(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	if err := w.End(); !errors.Is(err, beanjson.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got: %v", err)
	}
}

func TestWriterRelaxedSeparator(t *testing.T) {
	var b strings.Builder
	w := beanjson.NewWriter(&b)
	w.SetDialect(beanjson.Minimal)
	if err := w.BeginObject(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Set("a", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Set("b", "two words"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.String(); got != `{a: 1,b: two words}` {
		t.Fatalf("unexpected output: %s", got)
	}
}
