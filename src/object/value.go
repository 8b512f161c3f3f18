// Package object contains the runtime values that the checker inspects: the
// scalar kinds, the containers, class instances, and callable values. It also
// provides the class lookup, formatting, and deep equality helpers that
// diagnostics and literal matching are built on.
package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tanema/typefence/src/types"
)

type (
	// Tuple is a fixed-size ordered sequence value.
	Tuple []any
	// Set is an unordered container value. Insertion order is kept so that
	// diagnostics about elements stay deterministic.
	Set struct {
		items []any
		seen  map[any]struct{}
	}
	// Dict is a mapping value. Insertion order is kept so that per entry
	// diagnostics follow iteration order deterministically.
	Dict struct {
		keys []any
		vals map[any]any
	}
	// Object is an instance of a class with named attributes.
	Object struct {
		class *types.Class
		attrs map[string]any
	}
)

// NewSet creates a set from the passed items, dropping duplicates.
func NewSet(items ...any) *Set {
	s := &Set{seen: map[any]struct{}{}}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts an item unless an equal item is already present.
func (s *Set) Add(item any) {
	if _, dup := s.seen[toKey(item)]; dup {
		return
	}
	s.seen[toKey(item)] = struct{}{}
	s.items = append(s.items, item)
}

// Contains reports whether the set holds the item.
func (s *Set) Contains(item any) bool {
	_, found := s.seen[toKey(item)]
	return found
}

// Items returns the elements in insertion order.
func (s *Set) Items() []any { return s.items }

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.items) }

// NewDict creates an empty mapping.
func NewDict() *Dict {
	return &Dict{vals: map[any]any{}}
}

// Put sets key to val, keeping first-insertion order for iteration.
func (d *Dict) Put(key, val any) {
	if _, exists := d.vals[toKey(key)]; !exists {
		d.keys = append(d.keys, key)
	}
	d.vals[toKey(key)] = val
}

// Get returns the value stored under key.
func (d *Dict) Get(key any) (any, bool) {
	val, found := d.vals[toKey(key)]
	return val, found
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any { return d.keys }

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

type noneKey struct{}

// toKey normalizes a value for map storage. The none value maps to a private
// sentinel so all none keys collapse to one entry.
func toKey(in any) any {
	if in == nil {
		return noneKey{}
	}
	return in
}

// NewObject creates an instance of class with the passed attributes.
func NewObject(class *types.Class, attrs map[string]any) *Object {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &Object{class: class, attrs: attrs}
}

// Class returns the instance's class.
func (o *Object) Class() *types.Class { return o.class }

// Attr returns a named attribute value.
func (o *Object) Attr(name string) (any, bool) {
	val, found := o.attrs[name]
	return val, found
}

func (o *Object) String() string { return fmt.Sprintf("<%s instance>", o.class.Name()) }

// ClassOf returns the runtime class of a value, or nil for the none value and
// for values the runtime does not know.
func ClassOf(v any) *types.Class {
	switch tv := v.(type) {
	case bool:
		return types.Bool
	case int64, int:
		return types.Int
	case float64:
		return types.Float
	case string:
		return types.Str
	case []any:
		return types.List
	case Tuple:
		return types.TupleClass
	case *Dict:
		return types.Dict
	case *Set:
		return types.Set
	case *Func:
		return types.Function
	case *Object:
		return tv.class
	default:
		return nil
	}
}

// TypeName returns the printable type name of a value.
func TypeName(v any) string {
	if v == nil {
		return "none"
	}
	if cls := ClassOf(v); cls != nil {
		return cls.Name()
	}
	return fmt.Sprintf("%T", v)
}

// AsInt normalizes a value to int64 when it is integer shaped.
func AsInt(v any) (int64, bool) {
	switch tv := v.(type) {
	case int64:
		return tv, true
	case int:
		return int64(tv), true
	default:
		return 0, false
	}
}

// Repr will format a value to a printable summary for diagnostics. Strings
// are quoted so that "1" and 1 stay distinguishable.
func Repr(v any) string {
	switch tv := v.(type) {
	case nil:
		return "none"
	case string:
		return strconv.Quote(tv)
	case bool:
		return strconv.FormatBool(tv)
	case int64:
		return strconv.FormatInt(tv, 10)
	case int:
		return strconv.Itoa(tv)
	case float64:
		return fmt.Sprintf("%v", tv)
	case []any:
		return fmt.Sprintf("[%s]", reprItems(tv))
	case Tuple:
		return fmt.Sprintf("(%s)", reprItems(tv))
	case *Set:
		return fmt.Sprintf("{%s}", reprItems(tv.items))
	case *Dict:
		parts := make([]string, len(tv.keys))
		for i, key := range tv.keys {
			parts[i] = fmt.Sprintf("%s: %s", Repr(key), Repr(tv.vals[toKey(key)]))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case fmt.Stringer:
		return tv.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func reprItems(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Repr(item)
	}
	return strings.Join(parts, ", ")
}

// Equal reports deep value equality. The none value and booleans only match
// themselves; numbers compare across int and float; containers compare
// element-wise.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ta := a.(type) {
	case bool:
		tb, same := b.(bool)
		return same && ta == tb
	case string:
		tb, same := b.(string)
		return same && ta == tb
	case int64, int, float64:
		if !isNumber(b) {
			return false
		}
		return toFloat(a) == toFloat(b)
	case []any:
		tb, same := b.([]any)
		return same && equalItems(ta, tb)
	case Tuple:
		tb, same := b.(Tuple)
		return same && equalItems(ta, tb)
	case *Set:
		tb, same := b.(*Set)
		if !same || ta.Len() != tb.Len() {
			return false
		}
		for _, item := range ta.items {
			if !tb.Contains(item) {
				return false
			}
		}
		return true
	case *Dict:
		tb, same := b.(*Dict)
		if !same || ta.Len() != tb.Len() {
			return false
		}
		for _, key := range ta.keys {
			bval, found := tb.Get(key)
			if !found || !Equal(ta.vals[toKey(key)], bval) {
				return false
			}
		}
		return true
	case *Object:
		tb, same := b.(*Object)
		if !same || ta.class != tb.class || len(ta.attrs) != len(tb.attrs) {
			return false
		}
		for name, val := range ta.attrs {
			bval, found := tb.Attr(name)
			if !found || !Equal(val, bval) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func equalItems(a, b []any) bool {
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

func isNumber(in any) bool {
	switch in.(type) {
	case int64, int, float64:
		return true
	default:
		return false
	}
}

func toFloat(val any) float64 {
	switch tval := val.(type) {
	case int64:
		return float64(tval)
	case int:
		return float64(tval)
	case float64:
		return tval
	default:
		return 0
	}
}
