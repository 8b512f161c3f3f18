// Package types contains all the structures used to describe declared type
// constraints. A type expression is pure, immutable data: a class, a
// parameterized container, a union, a literal set, a callable signature, a
// forward reference, or a type variable. Expressions answer structural
// queries only; deciding whether a runtime value conforms to an expression
// is the job of the check package.
// One sidenote is that forward references are a two phase value. They are
// declared against a live namespace and stay unresolved until the first time
// a check actually needs them, at which point the resolution is cached for
// the lifetime of the reference. A name that is still missing at that point
// is an error then, not at declaration time.
package types
