package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanema/typefence/src/terrors"
	"github.com/tanema/typefence/src/types"
)

// evenType is a checking strategy added without touching the dispatcher.
type evenType struct{}

func (evenType) Shape() types.Shape { return types.Shape("even") }
func (evenType) String() string     { return "even" }

func TestRegisterCustomShape(t *testing.T) {
	// touches the process-wide registry so it cannot run in parallel
	expr := evenType{}
	err := Check(int64(4), expr)
	require.Error(t, err)
	assert.EqualError(t, err, "unsupported type expression even")

	Register(expr.Shape(), func(c *Checker, val any, t types.Expr) *terrors.Error {
		n, ok := val.(int64)
		if !ok || n%2 != 0 {
			return c.fail(t, val)
		}
		return nil
	})

	assert.NoError(t, Check(int64(4), expr))
	assert.EqualError(t, Check(int64(5), expr), "value is not an instance of even")
	assert.NoError(t, Validate(expr))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		desc    string
		expr    types.Expr
		wantErr string
	}{
		{desc: "nil is unchecked", expr: nil},
		{desc: "builtin class", expr: types.Int},
		{desc: "nested containers", expr: types.DictOf(types.Str, types.ListOf(types.UnionOf(types.Int, types.None)))},
		{desc: "callable", expr: types.NewCallable([]types.Expr{types.Int}, types.Str)},
		{desc: "unknown shape", expr: unknownType{}, wantErr: "unsupported type expression ???"},
		{desc: "unknown shape nested in a union", expr: types.UnionOf(types.Int, unknownType{}),
			wantErr: "unsupported type expression ???"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()
			err := Validate(test.expr)
			if test.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.EqualError(t, err, test.wantErr)
			}
		})
	}
}

type unknownType struct{}

func (unknownType) Shape() types.Shape { return types.Shape("???") }
func (unknownType) String() string     { return "???" }

func TestMaxDepthGuard(t *testing.T) {
	t.Parallel()
	// a self referential expression recurses until the depth guard trips
	ns := types.Namespace{}
	ns["loop"] = types.ListOf(types.RefTo("loop", ns))
	err := Check(deepList(600), ns["loop"])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is nested deeper than")
}

func TestMaxDepthGuardThroughUnions(t *testing.T) {
	t.Parallel()
	// a recursive alias that cycles through a union keeps the diagnostic path
	// empty, so the guard has to trip on nesting depth rather than path length
	ns := types.Namespace{}
	ns["u"] = types.UnionOf(types.Int, types.RefTo("u", ns))
	err := Check(1.5, ns["u"])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not match any element in the union")
}

func deepList(depth int) []any {
	val := []any{}
	for i := 0; i < depth; i++ {
		val = []any{val}
	}
	return val
}
