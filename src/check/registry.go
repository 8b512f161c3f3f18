package check

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tanema/typefence/src/object"
	"github.com/tanema/typefence/src/terrors"
	"github.com/tanema/typefence/src/types"
)

// Matcher is a checking strategy for one expression shape. It returns nil
// when val conforms to t.
type Matcher func(c *Checker, val any, t types.Expr) *terrors.Error

var (
	registryMu sync.RWMutex
	registry   = map[types.Shape]Matcher{}
)

func init() {
	Register(types.ShapeAny, matchAny)
	Register(types.ShapeNone, matchNone)
	Register(types.ShapeClass, matchClass)
	Register(types.ShapeGeneric, matchGeneric)
	Register(types.ShapeUnion, matchUnion)
	Register(types.ShapeLiteral, matchLiteral)
	Register(types.ShapeCallable, matchCallable)
	Register(types.ShapeRef, matchRef)
	Register(types.ShapeVar, matchVar)
}

// Register adds a matching strategy for a shape. New shapes can be added
// without touching the dispatcher; re-registering a shape replaces its
// strategy.
func Register(shape types.Shape, matcher Matcher) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[shape] = matcher
}

func lookup(shape types.Shape) (Matcher, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	matcher, found := registry[shape]
	return matcher, found
}

// Validate walks a declared expression and fails if any nested shape has no
// registered strategy, so that a doomed check is rejected when the signature
// is built rather than at call time.
func Validate(t types.Expr) error {
	if t == nil {
		return nil
	}
	queue := []types.Expr{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, found := lookup(cur.Shape()); !found {
			return &terrors.Error{Kind: terrors.UnsupportedErr, Expected: cur.String()}
		}
		queue = append(queue, types.Children(cur)...)
	}
	return nil
}

func matchAny(_ *Checker, _ any, _ types.Expr) *terrors.Error { return nil }

func matchNone(c *Checker, val any, t types.Expr) *terrors.Error {
	if val != nil {
		return c.fail(t, val)
	}
	return nil
}

func matchClass(c *Checker, val any, t types.Expr) *terrors.Error {
	target := t.(*types.Class)
	if target == types.Float {
		if _, isInt := object.AsInt(val); isInt {
			return nil // ints widen to float
		}
	}
	cls := object.ClassOf(val)
	if cls == nil || !cls.IsSubclassOf(target) {
		return c.fail(t, val)
	}
	return nil
}

func matchGeneric(c *Checker, val any, t types.Expr) *terrors.Error {
	g := t.(*types.Generic)
	cls := object.ClassOf(val)
	if cls == nil || !cls.IsSubclassOf(g.Origin()) {
		return c.fail(t, val)
	}
	switch g.Origin() {
	case types.List:
		items, inspectable := val.([]any)
		if !inspectable {
			return nil
		}
		return c.checkItems(items, g.Params()[0])
	case types.Set:
		set, inspectable := val.(*object.Set)
		if !inspectable {
			return nil
		}
		return c.checkItems(set.Items(), g.Params()[0])
	case types.TupleClass:
		tup, inspectable := val.(object.Tuple)
		if !inspectable {
			return nil
		}
		return c.checkTuple(tup, g)
	case types.Dict:
		d, inspectable := val.(*object.Dict)
		if !inspectable {
			return nil
		}
		return c.checkEntries(d, g.Params()[0], g.Params()[1])
	default:
		return nil
	}
}

func (c *Checker) checkItems(items []any, el types.Expr) *terrors.Error {
	for i, item := range items {
		c.push(fmt.Sprintf("item %v", i))
		err := c.check(item, el)
		c.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkTuple(tup object.Tuple, g *types.Generic) *terrors.Error {
	params := g.Params()
	if g.IsVariadic() {
		fixed, tail := params[:len(params)-1], params[len(params)-1]
		if len(tup) < len(fixed) {
			return c.failReason(g, tup,
				"has wrong number of elements (expected at least %v, got %v)", len(fixed), len(tup))
		}
		for i, item := range tup {
			el := tail
			if i < len(fixed) {
				el = fixed[i]
			}
			c.push(fmt.Sprintf("item %v", i))
			err := c.check(item, el)
			c.pop()
			if err != nil {
				return err
			}
		}
		return nil
	}
	if len(tup) != len(params) {
		return c.failReason(g, tup,
			"has wrong number of elements (expected %v, got %v)", len(params), len(tup))
	}
	for i, item := range tup {
		c.push(fmt.Sprintf("item %v", i))
		err := c.check(item, params[i])
		c.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkEntries(d *object.Dict, keyType, valType types.Expr) *terrors.Error {
	for _, key := range d.Keys() {
		c.push("key")
		err := c.check(key, keyType)
		c.pop()
		if err != nil {
			return err
		}
		val, _ := d.Get(key)
		c.push("value")
		err = c.check(val, valType)
		c.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func matchUnion(c *Checker, val any, t types.Expr) *terrors.Error {
	u := t.(*types.Union)
	cls := object.ClassOf(val)
	for _, alt := range u.Alternatives() {
		// an exact runtime class match short-circuits as a fast accept only,
		// never as a fast reject
		if altCls, isClass := alt.(*types.Class); isClass && cls != nil && altCls == cls {
			return nil
		}
	}
	subs := []*terrors.Error{}
	for _, alt := range u.Alternatives() {
		err := c.sub().check(val, alt)
		if err == nil {
			return nil
		}
		if err.Kind != terrors.CheckErr {
			return err
		}
		subs = append(subs, unionReason(alt, err))
	}
	failure := c.fail(t, val)
	failure.Subs = subs
	return failure
}

// unionReason flattens an alternative's failure into a single line reported
// under the union header, folding any inner path into the reason text.
func unionReason(alt types.Expr, err *terrors.Error) *terrors.Error {
	reason := err.Reason
	if reason == "" {
		reason = "is not an instance of " + err.Expected
	}
	if len(err.Subs) > 0 {
		reason = "did not match any element in the union"
	}
	if err.Path != "" {
		reason = err.Path + " " + reason
	}
	return &terrors.Error{Kind: terrors.CheckErr, Expected: alt.String(), Reason: reason}
}

func matchLiteral(c *Checker, val any, t types.Expr) *terrors.Error {
	l := t.(*types.Literal)
	for _, allowed := range l.Values() {
		switch allowed.(type) {
		case nil, bool:
			// singleton-like values match by identity
			if val == allowed {
				return nil
			}
		default:
			if object.Equal(val, allowed) {
				return nil
			}
		}
	}
	reprs := make([]string, len(l.Values()))
	for i, allowed := range l.Values() {
		reprs[i] = object.Repr(allowed)
	}
	return c.failReason(t, val, "is not any of (%s)", strings.Join(reprs, ", "))
}

func matchCallable(c *Checker, val any, t types.Expr) *terrors.Error {
	decl := t.(*types.Callable)
	fn, invocable := val.(*object.Func)
	if !invocable {
		return c.failReason(t, val, "is not callable")
	}
	if decl.ParamTypes() == nil {
		return nil
	}
	proto := fn.Proto()
	mandatory, variadic := 0, false
	for _, p := range proto.Params {
		if p.Variadic {
			variadic = true
		} else {
			mandatory++
		}
	}
	declared := decl.ParamTypes()
	if (!variadic && mandatory != len(declared)) || (variadic && mandatory > len(declared)) {
		return c.failReason(t, val, "is not compatible with %s", decl)
	}
	for i, declParam := range declared {
		var fnParam types.Expr
		if i < mandatory {
			fnParam = proto.Params[i].Type
		} else {
			fnParam = proto.Params[len(proto.Params)-1].Type
		}
		// parameters are contravariant: the value's parameter must accept at
		// least what the declaration promises to pass
		if fnParam != nil && !assignable(declParam, fnParam) {
			return c.failReason(t, val, "is not compatible with %s", decl)
		}
	}
	// returns are covariant
	if decl.ReturnType() != nil && proto.Ret != nil && !assignable(proto.Ret, decl.ReturnType()) {
		return c.failReason(t, val, "is not compatible with %s", decl)
	}
	return nil
}

func matchRef(c *Checker, val any, t types.Expr) *terrors.Error {
	resolved, err := t.(*types.Ref).Resolve()
	if err != nil {
		return err
	}
	return c.check(val, resolved)
}

func matchVar(c *Checker, val any, t types.Expr) *terrors.Error {
	v := t.(*types.Var)
	cls := object.ClassOf(val)
	if bound, seen := c.bindings[v.Name()]; seen {
		if cls != bound {
			return &terrors.Error{
				Kind:   terrors.ConsistencyErr,
				Path:   c.pathString(),
				Reason: fmt.Sprintf("type variable %q is already bound to %s", v.Name(), className(bound)),
			}
		}
		return nil
	}
	if v.Bound() != nil {
		if err := c.check(val, v.Bound()); err != nil {
			return err
		}
	}
	if len(v.Constraints()) > 0 {
		satisfied := false
		for _, constraint := range v.Constraints() {
			if err := c.sub().check(val, constraint); err == nil {
				if conCls, isClass := constraint.(*types.Class); isClass {
					cls = conCls
				}
				satisfied = true
				break
			}
		}
		if !satisfied {
			return c.failReason(t, val, "does not satisfy any constraint of %q", v.Name())
		}
	}
	c.bindings[v.Name()] = cls
	return nil
}

func className(cls *types.Class) string {
	if cls == nil {
		return "none"
	}
	return cls.Name()
}

// assignable is a conservative structural compatibility test between two
// declared expressions, used for callable variance. src fits dst when every
// value matching src would also match dst.
func assignable(src, dst types.Expr) bool {
	if dst == nil || dst == types.Any {
		return true
	}
	if src == nil || src == types.Any {
		return false
	}
	if types.Equal(src, dst) {
		return true
	}
	if srcUnion, isUnion := src.(*types.Union); isUnion {
		for _, alt := range srcUnion.Alternatives() {
			if !assignable(alt, dst) {
				return false
			}
		}
		return true
	}
	switch target := dst.(type) {
	case *types.Class:
		srcCls, isClass := src.(*types.Class)
		if !isClass {
			if srcGen, isGen := src.(*types.Generic); isGen {
				return srcGen.Origin().IsSubclassOf(target)
			}
			return false
		}
		return srcCls.IsSubclassOf(target) || (srcCls == types.Int && target == types.Float)
	case *types.Union:
		for _, alt := range target.Alternatives() {
			if assignable(src, alt) {
				return true
			}
		}
		return false
	case *types.Generic:
		srcGen, isGen := src.(*types.Generic)
		if !isGen || srcGen.Origin() != target.Origin() ||
			srcGen.IsVariadic() != target.IsVariadic() ||
			len(srcGen.Params()) != len(target.Params()) {
			return false
		}
		for i, param := range srcGen.Params() {
			if !assignable(param, target.Params()[i]) {
				return false
			}
		}
		return true
	case *types.Callable:
		srcFn, isFn := src.(*types.Callable)
		if !isFn {
			return false
		}
		if target.ParamTypes() != nil {
			if srcFn.ParamTypes() == nil || len(srcFn.ParamTypes()) != len(target.ParamTypes()) {
				return false
			}
			for i, param := range target.ParamTypes() {
				if !assignable(param, srcFn.ParamTypes()[i]) {
					return false
				}
			}
		}
		return assignable(srcFn.ReturnType(), target.ReturnType())
	default:
		return false
	}
}
