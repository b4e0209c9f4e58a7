// Package beanjson reads and writes Go object graphs to and from a JSON-like
// dialect, automatically, without requiring the graph's types to implement
// any serialization protocol.
//
// It provides:
//
//   - A type-directed write engine that picks a representation per value
//     (bare scalar, bare array, tagged object, wrapped array) from the static
//     type known at the call site and the value's runtime type
//   - A read engine that reconstructs typed values from a parsed value tree,
//     resolving type discriminators, eliding wrappers and populating members
//   - Default-value elision against per-type prototype snapshots
//   - Three output dialects (strict JSON, relaxed names, minimal quoting)
//   - Pluggable hooks: per-type serializers, member read/write hooks, an
//     unknown-type fallback and an unknown-member policy
//   - A stable error model: every failure is an *Error matching one sentinel
//     kind and carrying a trace of object-graph locations
//
// Design policy:
//   - Keep the engine, value tree, writer and registry in the root package;
//     place parser drivers under source/.
//   - The engine is synchronous and single-goroutine; one Codec's caches are
//     reused across sequential calls but first use of a type must not race.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	c := beanjson.New()
//	text, err := c.EncodeString(person)
//	p, err := beanjson.Decode[Person](c, []byte(text))
package beanjson
