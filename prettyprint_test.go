package beanjson_test

import (
	"testing"

	beanjson "github.com/reoring/beanjson"
)

func TestPrettyPrint(t *testing.T) {
	c := beanjson.New()
	got, err := c.PrettyPrint(Team{
		Lead:    Person{Name: "ana", Age: 41},
		Members: []Person{{Name: "bo", Age: 7}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{\n" +
		"\t\"lead\": {\n" +
		"\t\t\"name\": \"ana\",\n" +
		"\t\t\"age\": 41\n" +
		"\t},\n" +
		"\t\"members\": [\n" +
		"\t\t{\n" +
		"\t\t\t\"name\": \"bo\",\n" +
		"\t\t\t\"age\": 7\n" +
		"\t\t}\n" +
		"\t]\n" +
		"}"
	if got != want {
		t.Fatalf("unexpected layout:\n%s", got)
	}
}

func TestPrettyPrintNodeFlat(t *testing.T) {
	n := beanjson.NewObject()
	n.Set("a", beanjson.NewInt(1))
	n.Set("b", beanjson.NewString("x"))
	got := beanjson.PrettyPrintNode(n, beanjson.PrettyOptions{
		Dialect:       beanjson.Minimal,
		FlatOnOneLine: true,
	})
	if got != "{ a: 1, b: x }" {
		t.Fatalf("unexpected layout: %q", got)
	}
}

func TestPrettyPrintNodeIndentUnit(t *testing.T) {
	arr := beanjson.NewArray()
	inner := beanjson.NewArray()
	inner.Append(beanjson.NewInt(1))
	arr.Append(inner)
	got := beanjson.PrettyPrintNode(arr, beanjson.PrettyOptions{Indent: "  "})
	want := "[\n  [\n    1\n  ]\n]"
	if got != want {
		t.Fatalf("unexpected layout: %q", got)
	}
}

func TestPrettyPrintEmptyContainers(t *testing.T) {
	n := beanjson.NewObject()
	n.Set("a", beanjson.NewArray())
	n.Set("b", beanjson.NewObject())
	got := beanjson.PrettyPrintNode(n, beanjson.PrettyOptions{})
	want := "{\n\t\"a\": [],\n\t\"b\": {}\n}"
	if got != want {
		t.Fatalf("unexpected layout: %q", got)
	}
}
