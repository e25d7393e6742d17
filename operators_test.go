package conscript

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquality(t *testing.T) {
	t.Run("signed zero is distinguished", func(t *testing.T) {
		assert.Equal(t, false, mustExec(t, `0 = -0`, nil, nil))
		assert.Equal(t, false, mustExec(t, `-0 = 0`, nil, nil))
		assert.Equal(t, true, mustExec(t, `0 = 0`, nil, nil))
		assert.Equal(t, false, mustExec(t, `"0" = "-0"`, nil, nil))
	})

	t.Run("deep array equality", func(t *testing.T) {
		assert.Equal(t, true, mustExec(t, `[1,[2,3]] = [1,[2,3]]`, nil, nil))
		assert.Equal(t, false, mustExec(t, `[1,2] = [1,2,3]`, nil, nil))
	})

	t.Run("deep object equality", func(t *testing.T) {
		vars := map[string]interface{}{
			"a": map[string]interface{}{"k": 1, "j": []interface{}{2}},
			"b": map[string]interface{}{"j": []interface{}{2}, "k": 1},
			"c": map[string]interface{}{"k": 2},
		}
		assert.Equal(t, true, mustExec(t, `a = b`, vars, nil))
		assert.Equal(t, false, mustExec(t, `a = c`, vars, nil))
	})

	t.Run("cross-type comparisons are false", func(t *testing.T) {
		assert.Equal(t, false, mustExec(t, `1 = "1"`, nil, nil))
		assert.Equal(t, false, mustExec(t, `null = 0`, nil, nil))
		assert.Equal(t, false, mustExec(t, `true = 1`, nil, nil))
	})

	t.Run("caller integers compare against literals", func(t *testing.T) {
		vars := map[string]interface{}{"n": int64(7)}
		assert.Equal(t, true, mustExec(t, `n = 7`, vars, nil))
	})

	t.Run("identity inequality", func(t *testing.T) {
		assert.Equal(t, false, mustExec(t, `5 <> 5`, nil, nil))
		assert.Equal(t, true, mustExec(t, `5 <> 6`, nil, nil))
		assert.Equal(t, true, mustExec(t, `5 <> "5"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `[1] <> [1]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `5 != 6`, nil, nil))
		assert.Equal(t, false, mustExec(t, `5 != 5`, nil, nil))
	})
}

func TestComparisonOperators(t *testing.T) {
	t.Run("ordering", func(t *testing.T) {
		assert.Equal(t, true, mustExec(t, `1 < 2`, nil, nil))
		assert.Equal(t, true, mustExec(t, `2 <= 2`, nil, nil))
		assert.Equal(t, true, mustExec(t, `3 >= 2`, nil, nil))
		assert.Equal(t, false, mustExec(t, `1 > 2`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"abc" < "abd"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"10" > 9`, nil, nil))
	})

	t.Run("case-insensitive equality", func(t *testing.T) {
		assert.Equal(t, true, mustExec(t, `"ABC" ~= "abc"`, nil, nil))
		assert.Equal(t, false, mustExec(t, `"ABC" ~= "abd"`, nil, nil))
	})

	t.Run("prefix and suffix", func(t *testing.T) {
		assert.Equal(t, true, mustExec(t, `"hello" ^= "he"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"hello" ^~= "HE"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"hello" $= "lo"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"hello" $~= "LO"`, nil, nil))
		assert.Equal(t, false, mustExec(t, `"hello" ^= "lo"`, nil, nil))
	})

	t.Run("containment", func(t *testing.T) {
		assert.Equal(t, true, mustExec(t, `"hello" *= "ell"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"hello" *~= "ELL"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `[1,2,3] *= 2`, nil, nil))
		assert.Equal(t, true, mustExec(t, `[[1],[2]] *= [2]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `["A"] *~= "a"`, nil, nil))
		assert.Equal(t, false, mustExec(t, `[1,2,3] *= 4`, nil, nil))
	})

	t.Run("membership swaps the operands", func(t *testing.T) {
		assert.Equal(t, true, mustExec(t, `2 in [1,2,3]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"ell" in "hello"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"A" ~in ["a"]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `4 not in [1,2,3]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `4 !in [1,2,3]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"Z" not ~in ["a"]`, nil, nil))
	})

	t.Run("negated comparisons", func(t *testing.T) {
		assert.Equal(t, true, mustExec(t, `"b" !^= "a"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `"b" !~= "a"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `5 !is string`, nil, nil))
		assert.Equal(t, true, mustExec(t, `5 is not string`, nil, nil))
	})

	t.Run("matches type discipline", func(t *testing.T) {
		compiled, err := Compile(`"a" matches "b"`, nil)
		require.NoError(t, err)
		_, err = compiled.Exec(nil)
		var typeErr *TypeError
		require.ErrorAs(t, err, &typeErr)

		safe := &Options{SafeOp: true}
		assert.Equal(t, false, mustExec(t, `"a" matches "b"`, nil, safe))
	})

	t.Run("negated matches", func(t *testing.T) {
		opts := &Options{AllowRegexLiterals: true}
		assert.Equal(t, true, mustExec(t, `"abc" !matches @^z@`, nil, opts))
		assert.Equal(t, false, mustExec(t, `"abc" !matches @^a@`, nil, opts))
	})
}

func TestMathOperators(t *testing.T) {
	t.Run("single precedence row folds left to right", func(t *testing.T) {
		assert.Equal(t, float64(9), mustExec(t, `1+2*3`, nil, nil))
		assert.Equal(t, float64(7), mustExec(t, `1+(2*3)`, nil, nil))
	})

	t.Run("addition coercions", func(t *testing.T) {
		assert.Equal(t, float64(10), mustExec(t, `5 + "5"`, nil, nil))
		assert.Equal(t, float64(10), mustExec(t, `"5" + 5`, nil, nil))
		assert.Equal(t, "ab", mustExec(t, `"a" + "b"`, nil, nil))
		assert.Equal(t, "atrue", mustExec(t, `"a" + true`, nil, nil))
		assert.Equal(t, true, mustExec(t, `[1] + 2 = [1,2]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `[1] + [2,3] = [1,2,3]`, nil, nil))
	})

	t.Run("object merge", func(t *testing.T) {
		vars := map[string]interface{}{
			"a": map[string]interface{}{"x": 1},
			"b": map[string]interface{}{"y": 2},
		}
		assert.Equal(t, true, mustExec(t, `(a+b).x = 1`, vars, nil))
		assert.Equal(t, true, mustExec(t, `(a+b).y = 2`, vars, nil))
	})

	t.Run("addition violations", func(t *testing.T) {
		compiled, err := Compile(`5 + true`, nil)
		require.NoError(t, err)
		_, err = compiled.Exec(nil)
		var typeErr *TypeError
		require.ErrorAs(t, err, &typeErr)

		safe := &Options{SafeOp: true}
		assert.Equal(t, float64(5), mustExec(t, `5 + true`, nil, safe))
		assert.Equal(t, float64(0), mustExec(t, `5 + "xyz"`, nil, safe))
	})

	t.Run("subtraction forms", func(t *testing.T) {
		assert.Equal(t, float64(4), mustExec(t, `5 - 1`, nil, nil))
		assert.Equal(t, float64(8), mustExec(t, `"10" - 2`, nil, nil))
		assert.Equal(t, "heo", mustExec(t, `"hello" - "ll"`, nil, nil))
		assert.Equal(t, true, mustExec(t, `[1,2,3] - [2] = [1,3]`, nil, nil))
		assert.Equal(t, true, mustExec(t, `[1,2,3] - 2 = [1,3]`, nil, nil))
	})

	t.Run("object subtraction", func(t *testing.T) {
		vars := map[string]interface{}{
			"o": map[string]interface{}{"a": 1, "b": 2},
			"p": map[string]interface{}{"a": 1},
			"q": map[string]interface{}{"a": 99},
		}
		assert.Nil(t, mustExec(t, `(o - p).a`, vars, nil))
		assert.Equal(t, true, mustExec(t, `(o - p).b = 2`, vars, nil))
		assert.Equal(t, true, mustExec(t, `(o - q).a = 1`, vars, nil))
		assert.Nil(t, mustExec(t, `(o - ["a"]).a`, vars, nil))
		assert.Nil(t, mustExec(t, `(o - "b").b`, vars, nil))
	})

	t.Run("multiplicative operators", func(t *testing.T) {
		assert.Equal(t, float64(6), mustExec(t, `2*3`, nil, nil))
		assert.Equal(t, float64(2), mustExec(t, `10/5`, nil, nil))
		assert.Equal(t, float64(1), mustExec(t, `10%3`, nil, nil))
		assert.Equal(t, float64(8), mustExec(t, `2^3`, nil, nil))
	})

	t.Run("NaN flows through unless safeOp", func(t *testing.T) {
		v := mustExec(t, `"x" * 2`, nil, nil)
		f, ok := v.(float64)
		require.True(t, ok)
		assert.True(t, math.IsNaN(f))

		safe := &Options{SafeOp: true}
		assert.Equal(t, float64(0), mustExec(t, `"x" * 2`, nil, safe))
	})

	t.Run("unary negation spellings", func(t *testing.T) {
		assert.Equal(t, float64(-5), mustExec(t, `0-5`, nil, nil))
		assert.Equal(t, float64(2), mustExec(t, `3+-1`, nil, nil))
		assert.Equal(t, float64(-1), mustExec(t, `-1`, nil, nil))
	})

	t.Run("before and then", func(t *testing.T) {
		assert.Equal(t, "ab", mustExec(t, `"a" before "b"`, nil, nil))
		assert.Equal(t, "", mustExec(t, `"a" before ""`, nil, nil))
		assert.Equal(t, "x", mustExec(t, `true then "x"`, nil, nil))
		assert.Equal(t, false, mustExec(t, `false then "x"`, nil, nil))
		assert.Equal(t, "ab", mustExec(t, `"a" then "b"`, nil, nil))
		assert.Nil(t, mustExec(t, `null then "x"`, nil, nil))
	})

	t.Run("boolean operators keep source values", func(t *testing.T) {
		assert.Equal(t, "b", mustExec(t, `"a" & "b"`, nil, nil))
		assert.Equal(t, "a", mustExec(t, `"a" | "b"`, nil, nil))
		assert.Equal(t, "", mustExec(t, `"" & "b"`, nil, nil))
		assert.Equal(t, "b", mustExec(t, `"" | "b"`, nil, nil))
	})

	t.Run("short-circuit skips the right side", func(t *testing.T) {
		calls := 0
		fn := Func(func(args []interface{}) (interface{}, error) {
			calls++
			return true, nil
		})
		vars := map[string]interface{}{"f": fn}
		assert.Equal(t, float64(0), mustExec(t, `0 & f()`, vars, nil))
		assert.Equal(t, float64(1), mustExec(t, `1 | f()`, vars, nil))
		assert.Zero(t, calls)
	})
}

func TestToStrAndToNumber(t *testing.T) {
	t.Run("string coercion", func(t *testing.T) {
		assert.Equal(t, "", toStr(nil))
		assert.Equal(t, "true", toStr(true))
		assert.Equal(t, "2.5", toStr(2.5))
		assert.Equal(t, "2", toStr(float64(2)))
		assert.Equal(t, "1,2,3", toStr([]interface{}{1, 2, 3}))
		assert.Equal(t, "Infinity", toStr(math.Inf(1)))
	})

	t.Run("numeric coercion", func(t *testing.T) {
		assert.Equal(t, float64(0), toNumber(nil))
		assert.Equal(t, float64(1), toNumber(true))
		assert.Equal(t, float64(3.5), toNumber(" 3.5 "))
		assert.Equal(t, float64(0), toNumber(""))
		assert.True(t, math.IsNaN(toNumber("abc")))
		assert.True(t, math.IsNaN(toNumber([]interface{}{})))
	})
}
