// Package typefence is a runtime type checking engine: given a callable's
// declared parameter and return type expressions, it verifies at call time
// (and at yield/send boundaries for generators) that actual values conform to
// their declarations, raising a structured, path qualified error otherwise.
//
//	`typefence` does not locate or rewrite source modules itself. An
//	instrumentation loader is expected to build prototypes for the callables
//	it wants checked and route invocations through the call protocol here.
//	The engine owns only the question "does this value match this type
//	expression" and the protocol built on top of it.
//
//	The root package is a thin convenience layer; the real API lives in the
//	src packages: types for the expression model, object for runtime values,
//	check for the constraint checker, call for the call-site protocol, and
//	instrument for the scope and tracing config.
package typefence
