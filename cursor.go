package conscript

import (
	"fmt"
	"strings"
)

// bracketPair describes a delimited span that terminator scans skip over.
// Quote pairs (open == close) additionally honor backslash escapes.
type bracketPair struct {
	open  rune
	close rune
	quote bool
}

// exprBrackets is the ignore table for every terminator search: the interiors
// of these pairs are invisible to separator scanning at the enclosing layer.
// The @ pair joins the table only when regex literals are enabled.
var exprBrackets = []bracketPair{
	{'(', ')', false},
	{'[', ']', false},
	{'{', '}', false},
	{'"', '"', true},
	{'\'', '\'', true},
}

var regexBracket = bracketPair{'@', '@', true}

// cursor is a rewindable scanner over a conscription slice. It is the only
// mutable parse state; the escape rule, the bracket table and the nesting
// discipline all live here.
type cursor struct {
	src  []rune
	pos  int
	base int // rune offset of src[0] within the whole conscription
	ctx  *parseContext
}

// parseContext carries compile options and layer flags into sub-parses
type parseContext struct {
	opts *Options

	// inPredicate is set while compiling a ternary predicate, where the
	// default-left projection does not apply
	inPredicate bool
}

func (ctx *parseContext) pairs() []bracketPair {
	if ctx.opts != nil && ctx.opts.AllowRegexLiterals {
		return append(exprBrackets[:len(exprBrackets):len(exprBrackets)], regexBracket)
	}
	return exprBrackets
}

func newCursor(src string, base int, ctx *parseContext) *cursor {
	return &cursor{src: []rune(src), base: base, ctx: ctx}
}

func (c *cursor) eof() bool { return c.pos >= len(c.src) }

// peek returns the next k runes without consuming, or fewer at end
func (c *cursor) peek(k int) string {
	end := c.pos + k
	if end > len(c.src) {
		end = len(c.src)
	}
	return string(c.src[c.pos:end])
}

// rest returns everything from the cursor to the end of the slice
func (c *cursor) rest() string {
	return string(c.src[c.pos:])
}

// skip advances past n runes
func (c *cursor) skip(n int) {
	c.pos += n
	if c.pos > len(c.src) {
		c.pos = len(c.src)
	}
}

// skipSpaces advances past whitespace
func (c *cursor) skipSpaces() {
	for c.pos < len(c.src) && isSpace(c.src[c.pos]) {
		c.pos++
	}
}

// consume matches the first literal equal to the upcoming text, advances past
// it and returns it; it returns "" when nothing matches.
func (c *cursor) consume(lits ...string) string {
	return c.consumeMatch(false, lits)
}

// consumeFold is consume with case-insensitive matching
func (c *cursor) consumeFold(lits ...string) string {
	return c.consumeMatch(true, lits)
}

func (c *cursor) consumeMatch(fold bool, lits []string) string {
	for _, lit := range lits {
		n := len([]rune(lit))
		ahead := c.peek(n)
		if ahead == lit || (fold && strings.EqualFold(ahead, lit)) {
			c.skip(n)
			return lit
		}
	}
	return ""
}

// consumeWhile accumulates runes while the class matches
func (c *cursor) consumeWhile(class func(rune) bool) string {
	start := c.pos
	for c.pos < len(c.src) && class(c.src[c.pos]) {
		c.pos++
	}
	return string(c.src[start:c.pos])
}

// until advances up to but not past the first occurrence of any separator at
// nesting depth zero and returns the text it passed over. Bracket interiors
// are skipped whole; quote interiors honor backslash escapes. A bare "-"
// separator is contextual: it only counts as one when an operand has already
// been scanned or when it is followed by a space, so that "-1" stays a number
// literal while "- 1" is always a subtraction.
func (c *cursor) until(seps ...string) string {
	start := c.pos
	i := c.pos
	sawOperand := false
	var closers []rune

	for i < len(c.src) {
		ch := c.src[i]

		if len(closers) == 0 {
			if sep := c.sepAt(i, sawOperand, seps); sep != "" {
				break
			}
		}

		if ch == '\\' && i+1 < len(c.src) {
			i += 2
			sawOperand = true
			continue
		}

		if len(closers) > 0 && ch == closers[len(closers)-1] {
			closers = closers[:len(closers)-1]
			i++
			continue
		}

		if pair, ok := c.pairFor(ch); ok {
			if pair.quote {
				i = c.skipQuoted(i, pair.close)
			} else {
				closers = append(closers, pair.close)
				i++
			}
			sawOperand = true
			continue
		}

		if !isSpace(ch) {
			sawOperand = true
		}
		i++
	}

	text := string(c.src[start:i])
	c.pos = i
	return text
}

// sepAt reports which separator, if any, begins at rune offset i
func (c *cursor) sepAt(i int, sawOperand bool, seps []string) string {
	for _, sep := range seps {
		r := []rune(sep)
		if i+len(r) > len(c.src) {
			continue
		}
		ahead := string(c.src[i : i+len(r)])
		if sep == "-" {
			if ahead != "-" {
				continue
			}
			nextIsSpace := true
			if i+1 < len(c.src) {
				nextIsSpace = isSpace(c.src[i+1])
			}
			if sawOperand || nextIsSpace {
				return sep
			}
			continue
		}
		if ahead == sep || (hasLetter(sep) && strings.EqualFold(ahead, sep)) {
			return sep
		}
	}
	return ""
}

// pairFor looks up ch in the active bracket table as an opener
func (c *cursor) pairFor(ch rune) (bracketPair, bool) {
	for _, p := range c.ctx.pairs() {
		if p.open == ch {
			return p, true
		}
	}
	return bracketPair{}, false
}

// skipQuoted scans from an opening quote at offset i to just past the
// matching unescaped close, or to the end of input when unterminated
func (c *cursor) skipQuoted(i int, close rune) int {
	i++
	for i < len(c.src) {
		if c.src[i] == '\\' && i+1 < len(c.src) {
			i += 2
			continue
		}
		if c.src[i] == close {
			return i + 1
		}
		i++
	}
	return i
}

// throughEnd assumes the cursor sits immediately after an open bracket,
// returns the interior up to the matching close at depth zero, and consumes
// that close.
func (c *cursor) throughEnd(open, close rune) (string, error) {
	start := c.pos
	i := c.pos
	depth := 1

	for i < len(c.src) {
		ch := c.src[i]

		if ch == '\\' && i+1 < len(c.src) {
			i += 2
			continue
		}

		if open != close {
			if pair, ok := c.pairFor(ch); ok && pair.quote {
				i = c.skipQuoted(i, pair.close)
				continue
			}
			if ch == open {
				depth++
				i++
				continue
			}
		}

		if ch == close {
			depth--
			if depth == 0 {
				text := string(c.src[start:i])
				c.pos = i + 1
				return text, nil
			}
			i++
			continue
		}

		i++
	}

	return "", c.syntaxErrAt(start, "missing closing %c", close)
}

// position reports the cursor's location within the whole conscription
func (c *cursor) position() *SourcePosition {
	return c.positionAt(c.pos)
}

func (c *cursor) positionAt(pos int) *SourcePosition {
	return &SourcePosition{
		Line:   1,
		Column: c.base + pos + 1,
		Length: 1,
	}
}

func (c *cursor) syntaxErr(format string, args ...interface{}) error {
	return c.syntaxErrAt(c.pos, format, args...)
}

func (c *cursor) syntaxErrAt(pos int, format string, args ...interface{}) error {
	return &SyntaxError{
		Message:  fmt.Sprintf(format, args...),
		Position: c.positionAt(pos),
	}
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentRune(ch rune) bool {
	return ch == '_' || ch == ' ' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

func isIdentStrict(ch rune) bool {
	return isIdentRune(ch) && ch != ' '
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func hasLetter(s string) bool {
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			return true
		}
	}
	return false
}
