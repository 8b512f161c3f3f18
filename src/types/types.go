package types

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tanema/typefence/src/terrors"
)

type (
	// Shape identifies the checking strategy that handles an expression.
	Shape string
	// Expr is a general interface for all type expressions.
	Expr interface {
		fmt.Stringer
		Shape() Shape
	}
	anyType  struct{}
	noneType struct{}
	// Class is a named nominal type with optional base classes. A bare class
	// also serves as the unparameterized form of the container generics, in
	// which case only the container class of a value is asserted and elements
	// are left unconstrained.
	Class struct {
		name    string
		bases   []*Class
		mu      sync.RWMutex
		virtual map[*Class]struct{}
	}
	// Generic describes a parameterized container: an ordered sequence, an
	// unordered set, a mapping, or a fixed-size tuple.
	Generic struct {
		origin   *Class
		params   []Expr
		variadic bool // tuple only: the last param is an open ended tail
	}
	// Union describes a type that can match multiple alternatives. Member
	// order is kept exactly as declared, never sorted or deduplicated, since
	// failure diagnostics report each alternative in declaration order.
	Union struct{ alts []Expr }
	// Literal matches a finite set of concrete values.
	Literal struct{ vals []any }
	// Callable describes an invocable value. A nil parameter list leaves the
	// parameters unconstrained.
	Callable struct {
		params []Expr
		ret    Expr
	}
	// Var is a type variable, optionally bounded or constrained to a finite
	// set of types. It binds to a concrete class the first time it is
	// observed within a call and must stay consistent for that call.
	Var struct {
		name        string
		bound       Expr
		constraints []Expr
	}
)

const (
	// ShapeAny matches anything without inspecting the value.
	ShapeAny Shape = "any"
	// ShapeNone matches only the none value.
	ShapeNone Shape = "none"
	// ShapeClass is an instance-of check including virtual subclasses.
	ShapeClass Shape = "class"
	// ShapeGeneric is a container check that descends into elements.
	ShapeGeneric Shape = "generic"
	// ShapeUnion is an alternation over member expressions.
	ShapeUnion Shape = "union"
	// ShapeLiteral is equality against a set of concrete values.
	ShapeLiteral Shape = "literal"
	// ShapeCallable is a structural signature compatibility check.
	ShapeCallable Shape = "callable"
	// ShapeRef is a lazily resolved forward reference.
	ShapeRef Shape = "reference"
	// ShapeVar is a type variable consistency check.
	ShapeVar Shape = "typevar"
)

var (
	// Any could be anything.
	Any Expr = anyType{}
	// None matches only the none value.
	None Expr = noneType{}
	// Int matches integer numbers.
	Int = NewClass("int")
	// Float matches float numbers. An int is accepted where a float is
	// declared, never the reverse.
	Float = NewClass("float")
	// Str matches any string.
	Str = NewClass("str")
	// Bool matches any boolean value.
	Bool = NewClass("bool")
	// List is the ordered sequence container class.
	List = NewClass("list")
	// TupleClass is the fixed-size sequence container class.
	TupleClass = NewClass("tuple")
	// Dict is the mapping container class.
	Dict = NewClass("dict")
	// Set is the unordered container class.
	Set = NewClass("set")
	// Function matches any callable value.
	Function = NewClass("function")

	// DefaultDefns is a collection of type expressions that exist by default,
	// keyed by source name.
	DefaultDefns = map[string]Expr{
		"any":      Any,
		"none":     None,
		"int":      Int,
		"float":    Float,
		"str":      Str,
		"bool":     Bool,
		"list":     List,
		"tuple":    TupleClass,
		"dict":     Dict,
		"set":      Set,
		"function": Function,
	}
)

func (anyType) Shape() Shape    { return ShapeAny }
func (anyType) String() string  { return "any" }
func (noneType) Shape() Shape   { return ShapeNone }
func (noneType) String() string { return "none" }

// NewClass creates a new named class with the passed base classes.
func NewClass(name string, bases ...*Class) *Class {
	return &Class{name: name, bases: bases, virtual: map[*Class]struct{}{}}
}

// Name returns the declared class name.
func (c *Class) Name() string { return c.name }

// Shape implements Expr so a class can be used directly as a declaration.
func (c *Class) Shape() Shape   { return ShapeClass }
func (c *Class) String() string { return c.name }

// Register records sub as a virtual subclass of c without nominal inheritance.
func (c *Class) Register(sub *Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.virtual[sub] = struct{}{}
}

// IsSubclassOf reports whether c conforms to parent, either through its base
// class chain or through a virtual registration on parent.
func (c *Class) IsSubclassOf(parent *Class) bool {
	if c == parent {
		return true
	}
	parent.mu.RLock()
	_, isVirtual := parent.virtual[c]
	parent.mu.RUnlock()
	if isVirtual {
		return true
	}
	for _, base := range c.bases {
		if base.IsSubclassOf(parent) {
			return true
		}
	}
	return false
}

// ListOf declares an ordered sequence with a single element type.
func ListOf(el Expr) *Generic { return &Generic{origin: List, params: []Expr{el}} }

// SetOf declares an unordered container with a single element type.
func SetOf(el Expr) *Generic { return &Generic{origin: Set, params: []Expr{el}} }

// DictOf declares a mapping with a key type and a value type.
func DictOf(key, val Expr) *Generic { return &Generic{origin: Dict, params: []Expr{key, val}} }

// TupleOf declares a fixed-size sequence with one type per slot.
func TupleOf(els ...Expr) *Generic { return &Generic{origin: TupleClass, params: els} }

// VariadicTuple declares a tuple with a fixed prefix followed by an open ended
// tail. Only the prefix arity is enforced; trailing elements are checked
// against the tail type.
func VariadicTuple(tail Expr, prefix ...Expr) *Generic {
	params := append(append([]Expr{}, prefix...), tail)
	return &Generic{origin: TupleClass, params: params, variadic: true}
}

// Origin returns the container class of the generic.
func (g *Generic) Origin() *Class { return g.origin }

// Params returns the ordered type parameters.
func (g *Generic) Params() []Expr { return g.params }

// IsVariadic reports whether the last parameter is an open ended tuple tail.
func (g *Generic) IsVariadic() bool { return g.variadic }

func (g *Generic) Shape() Shape { return ShapeGeneric }

func (g *Generic) String() string {
	parts := make([]string, len(g.params))
	for i, p := range g.params {
		parts[i] = p.String()
	}
	if g.variadic {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("%s[%s]", g.origin.name, strings.Join(parts, ", "))
}

// UnionOf declares an alternation. Nested unions are flattened but member
// order is preserved.
func UnionOf(alts ...Expr) *Union {
	flat := []Expr{}
	for _, alt := range alts {
		if u, isUnion := alt.(*Union); isUnion {
			flat = append(flat, u.alts...)
		} else {
			flat = append(flat, alt)
		}
	}
	return &Union{alts: flat}
}

// Alternatives returns the members in declaration order.
func (u *Union) Alternatives() []Expr { return u.alts }

func (u *Union) Shape() Shape { return ShapeUnion }

func (u *Union) String() string {
	parts := make([]string, len(u.alts))
	for i, alt := range u.alts {
		parts[i] = alt.String()
	}
	return strings.Join(parts, " | ")
}

// LiteralOf declares a finite set of allowed values, so if the type can be
// "CONNECTED" | "OFF" it matches those strings exactly, not any string.
func LiteralOf(vals ...any) *Literal { return &Literal{vals: vals} }

// Values returns the allowed values in declaration order.
func (l *Literal) Values() []any { return l.vals }

func (l *Literal) Shape() Shape { return ShapeLiteral }

func (l *Literal) String() string {
	parts := make([]string, len(l.vals))
	for i, v := range l.vals {
		parts[i] = litRepr(v)
	}
	return fmt.Sprintf("literal[%s]", strings.Join(parts, ", "))
}

// NewCallable declares an invocable value. Pass nil params to leave the
// parameter list unconstrained.
func NewCallable(params []Expr, ret Expr) *Callable {
	return &Callable{params: params, ret: ret}
}

// ParamTypes returns the declared parameter types or nil when unconstrained.
func (c *Callable) ParamTypes() []Expr { return c.params }

// ReturnType returns the declared return type.
func (c *Callable) ReturnType() Expr { return c.ret }

func (c *Callable) Shape() Shape { return ShapeCallable }

func (c *Callable) String() string {
	if c.params == nil {
		return fmt.Sprintf("(...) -> %s", c.ret)
	}
	parts := make([]string, len(c.params))
	for i, p := range c.params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), c.ret)
}

// NewVar creates an unbounded type variable.
func NewVar(name string) *Var { return &Var{name: name} }

// WithBound returns a copy of the variable with an upper bound.
func (v *Var) WithBound(bound Expr) *Var {
	return &Var{name: v.name, bound: bound, constraints: v.constraints}
}

// WithConstraints returns a copy of the variable limited to a finite set of
// types. A matching value binds the variable to the constraint it satisfied.
func (v *Var) WithConstraints(constraints ...Expr) *Var {
	return &Var{name: v.name, bound: v.bound, constraints: constraints}
}

// Name returns the variable name used for binding consistency.
func (v *Var) Name() string { return v.name }

// Bound returns the upper bound or nil.
func (v *Var) Bound() Expr { return v.bound }

// Constraints returns the allowed types or nil.
func (v *Var) Constraints() []Expr { return v.constraints }

func (v *Var) Shape() Shape   { return ShapeVar }
func (v *Var) String() string { return v.name }

// Children returns the directly nested expressions of t. References are
// opaque until resolved so they report no children.
func Children(t Expr) []Expr {
	switch expr := t.(type) {
	case *Generic:
		return expr.params
	case *Union:
		return expr.alts
	case *Callable:
		children := append([]Expr{}, expr.params...)
		if expr.ret != nil {
			children = append(children, expr.ret)
		}
		return children
	case *Var:
		children := []Expr{}
		if expr.bound != nil {
			children = append(children, expr.bound)
		}
		return append(children, expr.constraints...)
	default:
		return nil
	}
}

// Equal compares two expressions structurally. Classes, references, and
// variables compare by identity; containers compare recursively.
func Equal(a, b Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch ta := a.(type) {
	case *Generic:
		tb, same := b.(*Generic)
		if !same || ta.origin != tb.origin || ta.variadic != tb.variadic {
			return false
		}
		return equalSlices(ta.params, tb.params)
	case *Union:
		tb, same := b.(*Union)
		return same && equalSlices(ta.alts, tb.alts)
	case *Literal:
		tb, same := b.(*Literal)
		if !same || len(ta.vals) != len(tb.vals) {
			return false
		}
		for i := range ta.vals {
			if ta.vals[i] != tb.vals[i] {
				return false
			}
		}
		return true
	case *Callable:
		tb, same := b.(*Callable)
		if !same || (ta.params == nil) != (tb.params == nil) {
			return false
		}
		return equalSlices(ta.params, tb.params) && Equal(ta.ret, tb.ret)
	default:
		return false
	}
}

func equalSlices(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func litRepr(v any) string {
	switch tv := v.(type) {
	case string:
		return strconv.Quote(tv)
	case nil:
		return "none"
	default:
		return fmt.Sprintf("%v", tv)
	}
}

// Namespace is the live set of names a forward reference resolves against.
// Names may be defined after the reference is declared; resolution happens at
// first use.
type Namespace map[string]Expr

// Ref is a forward reference to a name that may not be defined yet.
type Ref struct {
	name     string
	ns       Namespace
	once     sync.Once
	resolved Expr
	err      *terrors.Error
}

// RefTo declares a forward reference resolved against ns at first use.
func RefTo(name string, ns Namespace) *Ref {
	return &Ref{name: name, ns: ns}
}

// Name returns the referenced name.
func (r *Ref) Name() string { return r.name }

func (r *Ref) Shape() Shape   { return ShapeRef }
func (r *Ref) String() string { return r.name }

// Resolve looks the name up in the namespace. The first resolution is cached
// for the lifetime of the reference, including a resolution failure.
func (r *Ref) Resolve() (Expr, *terrors.Error) {
	r.once.Do(func() {
		target, found := r.ns[r.name]
		if !found {
			r.err = &terrors.Error{Kind: terrors.ReferenceErr, Expected: r.name}
			return
		}
		r.resolved = target
	})
	return r.resolved, r.err
}
