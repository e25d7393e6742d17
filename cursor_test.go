package conscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCursor(src string) *cursor {
	return newCursor(src, 0, &parseContext{opts: DefaultOptions()})
}

func TestCursorBasics(t *testing.T) {
	t.Run("peek does not consume", func(t *testing.T) {
		c := testCursor("abc")
		assert.Equal(t, "ab", c.peek(2))
		assert.Equal(t, "abc", c.peek(10))
		assert.Equal(t, "abc", c.rest())
	})

	t.Run("consume matches the first literal", func(t *testing.T) {
		c := testCursor("<=5")
		assert.Equal(t, "<=", c.consume("<=", "<"))
		assert.Equal(t, "5", c.rest())
	})

	t.Run("consumeFold is case-insensitive", func(t *testing.T) {
		c := testCursor("TRUE or so")
		assert.Equal(t, "true", c.consumeFold("true"))
	})

	t.Run("consumeWhile accumulates a class", func(t *testing.T) {
		c := testCursor("abc123!rest")
		assert.Equal(t, "abc123", c.consumeWhile(isIdentStrict))
		assert.Equal(t, "!rest", c.rest())
	})
}

func TestCursorUntil(t *testing.T) {
	t.Run("stops at a top-level separator", func(t *testing.T) {
		c := testCursor("a & b")
		assert.Equal(t, "a ", c.until("&", "|"))
		assert.Equal(t, "& b", c.rest())
	})

	t.Run("skips quoted spans", func(t *testing.T) {
		c := testCursor(`"a & b" & c`)
		assert.Equal(t, `"a & b" `, c.until("&", "|"))
		assert.Equal(t, "& c", c.rest())
	})

	t.Run("quotes honor escapes", func(t *testing.T) {
		c := testCursor(`"a\" & b" & c`)
		assert.Equal(t, `"a\" & b" `, c.until("&", "|"))
	})

	t.Run("skips bracketed spans", func(t *testing.T) {
		c := testCursor("(a & b) | [c & d] & e")
		assert.Equal(t, "(a & b) | [c & d] ", c.until("&"))
		assert.Equal(t, "& e", c.rest())
	})

	t.Run("nested brackets", func(t *testing.T) {
		c := testCursor("f(g(x), [1,2]) = 3")
		assert.Equal(t, "f(g(x), [1,2]) ", c.until("="))
	})

	t.Run("no separator consumes everything", func(t *testing.T) {
		c := testCursor("plain text")
		assert.Equal(t, "plain text", c.until("&"))
		assert.True(t, c.eof())
	})

	t.Run("word separators", func(t *testing.T) {
		c := testCursor("name is string")
		assert.Equal(t, "name", c.until(" is "))
		assert.Equal(t, " is string", c.rest())
	})

	t.Run("minus before a digit opens a number", func(t *testing.T) {
		c := testCursor("-1")
		assert.Equal(t, "-1", c.until("+", "-"))
	})

	t.Run("minus after an operand is an operator", func(t *testing.T) {
		c := testCursor("x-1")
		assert.Equal(t, "x", c.until("+", "-"))
		assert.Equal(t, "-1", c.rest())
	})

	t.Run("minus followed by a space is always an operator", func(t *testing.T) {
		c := testCursor("- 1")
		assert.Equal(t, "", c.until("+", "-"))
		assert.Equal(t, "- 1", c.rest())
	})
}

func TestCursorThroughEnd(t *testing.T) {
	t.Run("returns the balanced interior", func(t *testing.T) {
		c := testCursor("a(b)c) rest")
		interior, err := c.throughEnd('(', ')')
		require.NoError(t, err)
		assert.Equal(t, "a(b)c", interior)
		assert.Equal(t, " rest", c.rest())
	})

	t.Run("ignores closers inside quotes", func(t *testing.T) {
		c := testCursor(`a")"b) rest`)
		interior, err := c.throughEnd('(', ')')
		require.NoError(t, err)
		assert.Equal(t, `a")"b`, interior)
	})

	t.Run("quote-style pairs honor escapes", func(t *testing.T) {
		c := testCursor(`a\"b" rest`)
		interior, err := c.throughEnd('"', '"')
		require.NoError(t, err)
		assert.Equal(t, `a\"b`, interior)
		assert.Equal(t, " rest", c.rest())
	})

	t.Run("unterminated raises", func(t *testing.T) {
		c := testCursor("never closed")
		_, err := c.throughEnd('(', ')')
		var synErr *SyntaxError
		require.ErrorAs(t, err, &synErr)
	})
}

func TestCursorRegexSpans(t *testing.T) {
	t.Run("at spans are opaque only with regex literals enabled", func(t *testing.T) {
		ctx := &parseContext{opts: &Options{AllowRegexLiterals: true}}
		c := newCursor("@a=b@i = x", 0, ctx)
		assert.Equal(t, "@a=b@i ", c.until("="))

		plain := testCursor("@a=b@i = x")
		assert.Equal(t, "@a", plain.until("="))
	})
}
