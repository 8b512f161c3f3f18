package call

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanema/typefence/src/object"
	"github.com/tanema/typefence/src/types"
)

func countGen(yields ...any) *object.Func {
	return object.GenFn(&object.Proto{
		Name:  "counter",
		Kind:  object.FuncGenerator,
		Yield: types.Int,
		Send:  types.None,
		Ret:   types.Str,
	}, func(y object.Yield, args []any) (any, error) {
		for _, val := range yields {
			if _, err := y(val); err != nil {
				return nil, err
			}
		}
		return "foo", nil
	})
}

func TestGenerator(t *testing.T) {
	t.Parallel()
	t.Run("yields then returns", func(t *testing.T) {
		t.Parallel()
		gen, err := NewGenerator(countGen(int64(6)))
		require.NoError(t, err)
		assert.Equal(t, "suspended", gen.Status())

		val, done, err := gen.Resume(nil)
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, int64(6), val)
		assert.Equal(t, "suspended", gen.Status())

		val, done, err = gen.Resume(nil)
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, "foo", val)
		assert.Equal(t, "dead", gen.Status())
	})

	t.Run("bad yield leaves the generator suspended", func(t *testing.T) {
		t.Parallel()
		gen, err := NewGenerator(countGen("not an int"))
		require.NoError(t, err)
		_, done, err := gen.Resume(nil)
		assert.False(t, done)
		assert.EqualError(t, err, "yielded value is not an instance of int")
		assert.Equal(t, "suspended", gen.Status())
		assert.NoError(t, gen.Close())
		assert.Equal(t, "dead", gen.Status())
	})

	t.Run("bad return reported on completion", func(t *testing.T) {
		t.Parallel()
		fn := object.GenFn(&object.Proto{
			Kind:  object.FuncGenerator,
			Yield: types.Int,
			Ret:   types.Str,
		}, func(y object.Yield, args []any) (any, error) {
			return int64(0), nil
		})
		gen, err := NewGenerator(fn)
		require.NoError(t, err)
		_, done, err := gen.Resume(nil)
		assert.True(t, done)
		assert.EqualError(t, err, "the return value is not an instance of str")
	})

	t.Run("sent values are checked before delivery", func(t *testing.T) {
		t.Parallel()
		var received any
		fn := object.GenFn(&object.Proto{
			Kind:  object.FuncGenerator,
			Yield: types.Int,
			Send:  types.Str,
		}, func(y object.Yield, args []any) (any, error) {
			sent, err := y(int64(1))
			if err != nil {
				return nil, err
			}
			received = sent
			return nil, nil
		})
		gen, err := NewGenerator(fn)
		require.NoError(t, err)
		_, _, err = gen.Resume(nil)
		require.NoError(t, err)

		// a non conforming send never reaches the body
		_, done, err := gen.Resume(int64(9))
		assert.False(t, done)
		assert.EqualError(t, err, "sent value is not an instance of str")
		assert.Equal(t, "suspended", gen.Status())
		assert.Nil(t, received)

		_, done, err = gen.Resume("hello")
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, "hello", received)
	})

	t.Run("arguments checked before the body starts", func(t *testing.T) {
		t.Parallel()
		fn := object.GenFn(&object.Proto{
			Kind:   object.FuncGenerator,
			Params: []object.Param{{Name: "limit", Type: types.Int}},
		}, func(y object.Yield, args []any) (any, error) {
			return nil, nil
		})
		_, err := NewGenerator(fn, "nope")
		assert.EqualError(t, err, `argument "limit" is not an instance of int`)
	})

	t.Run("dead generators cannot resume", func(t *testing.T) {
		t.Parallel()
		gen, err := NewGenerator(countGen())
		require.NoError(t, err)
		_, done, err := gen.Resume(nil)
		require.True(t, done)
		require.NoError(t, err)
		_, _, err = gen.Resume(nil)
		assert.Error(t, err)
	})

	t.Run("close unblocks a suspended body", func(t *testing.T) {
		t.Parallel()
		finished := make(chan error, 1)
		fn := object.GenFn(&object.Proto{
			Kind:  object.FuncGenerator,
			Yield: types.Int,
		}, func(y object.Yield, args []any) (any, error) {
			_, err := y(int64(1))
			finished <- err
			return nil, err
		})
		gen, err := NewGenerator(fn)
		require.NoError(t, err)
		_, _, err = gen.Resume(nil)
		require.NoError(t, err)
		require.NoError(t, gen.Close())

		select {
		case err := <-finished:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("the body never observed the close")
		}
	})

	t.Run("plain callables are not generators", func(t *testing.T) {
		t.Parallel()
		_, err := NewGenerator(addFn())
		assert.EqualError(t, err, "cannot create a generator from a plain callable")
	})
}

func TestAsyncGenerator(t *testing.T) {
	t.Parallel()
	newAgen := func(yields ...any) *object.Func {
		return object.GenFn(&object.Proto{
			Kind:  object.FuncAsyncGen,
			Yield: types.Int,
		}, func(y object.Yield, args []any) (any, error) {
			for _, val := range yields {
				if _, err := y(val); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
	}

	t.Run("yields until exhausted", func(t *testing.T) {
		t.Parallel()
		gen, err := NewAsyncGenerator(newAgen(int64(1), int64(2)))
		require.NoError(t, err)
		ctx := context.Background()

		val, done, err := gen.Next(ctx)
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, int64(1), val)

		val, done, err = gen.Next(ctx)
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, int64(2), val)

		_, done, err = gen.Next(ctx)
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("yielded values are checked", func(t *testing.T) {
		t.Parallel()
		gen, err := NewAsyncGenerator(newAgen("nope"))
		require.NoError(t, err)
		_, done, err := gen.Next(context.Background())
		assert.False(t, done)
		assert.EqualError(t, err, "yielded value is not an instance of int")
		assert.NoError(t, gen.Close())
	})

	t.Run("cancellation carries no diagnostics", func(t *testing.T) {
		t.Parallel()
		blocked := object.GenFn(&object.Proto{
			Kind:  object.FuncAsyncGen,
			Yield: types.Int,
		}, func(y object.Yield, args []any) (any, error) {
			time.Sleep(time.Second)
			return nil, nil
		})
		gen, err := NewAsyncGenerator(blocked)
		require.NoError(t, err)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, _, err = gen.Next(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("generator kinds only", func(t *testing.T) {
		t.Parallel()
		_, err := NewAsyncGenerator(countGen())
		assert.Error(t, err)
	})
}
