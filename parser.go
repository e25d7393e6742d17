package conscript

import (
	"strconv"
	"strings"
)

// thunk is a compiled expression node: a function of the runtime environment
// that produces a value
type thunk func(e *env) (interface{}, error)

// parser compiles one conscription into a thunk tree. It holds no mutable
// state of its own; all scanning state lives in cursors.
type parser struct {
	opts   *Options
	logger *Logger
	source string
}

// Comparison-layer separators, longest spelling first so that compound
// operators win over their prefixes.
var comparisonSeps = []string{
	" not ~in ", " matches ", "!matches ",
	" is not ", " not in ",
	" ~in ", "!~in ",
	" is ", " in ", "!is ", "!in ",
	"!^~=", "!$~=", "!*~=",
	"^~=", "$~=", "*~=", "!^=", "!$=", "!*=", "!~=",
	"^=", "$=", "*=", "~=", "<=", ">=", "<>", "!=",
	"<", ">", "=",
}

// Word operators that may open a comparison chunk bare, omitting the left
// operand (a default-left site).
var comparisonWordStarts = []string{
	"is not ", "not ~in ", "not in ", "!matches ", "matches ",
	"!is ", "!in ", "!~in ", "is ", "in ", "~in ",
}

var mathSeps = []string{
	" before ", " then ",
	"+", "-", "*", "/", "%", "^",
}

var mathWordStarts = []string{"before ", "then "}

var booleanSeps = []string{"&", "|"}

func newParser(source string, opts *Options, logger *Logger) *parser {
	return &parser{opts: opts, logger: logger, source: source}
}

// compile turns the whole source into the public test thunk
func (p *parser) compile() (thunk, error) {
	if strings.TrimSpace(p.source) == "" {
		return nil, &SyntaxError{Message: "empty conscription", Source: p.source}
	}
	ctx := &parseContext{opts: p.opts}
	th, err := p.subText(p.start, p.source, 0, ctx)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok && se.Source == "" {
			se.Source = p.source
		}
		return nil, err
	}
	return th, nil
}

// subText parses a slice of source under rule on a fresh cursor, requiring
// the rule to consume the whole slice
func (p *parser) subText(rule func(*cursor) (thunk, error), text string, base int, ctx *parseContext) (thunk, error) {
	trimmed := strings.TrimSpace(text)
	base += len([]rune(text)) - len([]rune(strings.TrimLeft(text, " \t\n\r")))
	c := newCursor(trimmed, base, ctx)
	th, err := rule(c)
	if err != nil {
		return nil, err
	}
	c.skipSpaces()
	if !c.eof() {
		return nil, c.syntaxErr("unexpected %q", c.rest())
	}
	return th, nil
}

// operand parses a layer operand slice, treating an empty slice as a
// default-left site
func (p *parser) operand(rule func(*cursor) (thunk, error), text string, base int, ctx *parseContext) (thunk, error) {
	if strings.TrimSpace(text) == "" {
		return defaultLeftThunk, nil
	}
	return p.subText(rule, text, base, ctx)
}

func defaultLeftThunk(e *env) (interface{}, error) {
	if e.hasDefaultLeft {
		return e.defaultLeft, nil
	}
	return undef, nil
}

func undefThunk(*env) (interface{}, error) { return undef, nil }

func constThunk(v interface{}) thunk {
	return func(*env) (interface{}, error) { return v, nil }
}

// start is the top rule: the ternary layer. The conditional splits at the
// first top-level ? and its first top-level :, making the ternary the only
// right-associative form.
func (p *parser) start(c *cursor) (thunk, error) {
	condStart := c.pos
	condText := c.until("?")
	if c.consume("?") == "" {
		return p.operand(p.boolean, condText, c.base+condStart, c.ctx)
	}

	predCtx := *c.ctx
	predCtx.inPredicate = true
	cond, err := p.operand(p.boolean, condText, c.base+condStart, &predCtx)
	if err != nil {
		return nil, err
	}

	bStart := c.pos
	bText := c.until(":")
	if c.consume(":") == "" {
		return nil, c.syntaxErr("unterminated ternary")
	}
	var whenTrue thunk = undefThunk
	if strings.TrimSpace(bText) != "" {
		whenTrue, err = p.subText(p.start, bText, c.base+bStart, c.ctx)
		if err != nil {
			return nil, err
		}
	}

	cStart := c.pos
	cText := c.rest()
	c.skip(len(c.src) - c.pos)
	var whenFalse thunk = undefThunk
	if strings.TrimSpace(cText) != "" {
		whenFalse, err = p.subText(p.start, cText, c.base+cStart, c.ctx)
		if err != nil {
			return nil, err
		}
	}

	return func(e *env) (interface{}, error) {
		a, err := cond(e)
		if err != nil {
			return nil, err
		}
		if isUndef(a) && e.hasDefaultLeft {
			a = e.defaultLeft
		}
		if truthy(a) {
			b, err := whenTrue(e)
			if err != nil {
				return nil, err
			}
			if isUndef(b) {
				return a, nil
			}
			return b, nil
		}
		return whenFalse(e)
	}, nil
}

// boolean is the & | layer. Operands keep their source values; the operators
// short-circuit on truthiness without coercing the result.
func (p *parser) boolean(c *cursor) (thunk, error) {
	start := c.pos
	text := c.until(booleanSeps...)
	left, err := p.operand(p.comparison, text, c.base+start, c.ctx)
	if err != nil {
		return nil, err
	}

	for {
		op := c.consume(booleanSeps...)
		if op == "" {
			break
		}
		rStart := c.pos
		rText := c.until(booleanSeps...)
		if strings.TrimSpace(rText) == "" {
			return nil, c.syntaxErr("empty right operand for %q", op)
		}
		right, err := p.subText(p.comparison, rText, c.base+rStart, c.ctx)
		if err != nil {
			return nil, err
		}

		l, and := left, op == "&"
		left = func(e *env) (interface{}, error) {
			lv, err := l(e)
			if err != nil {
				return nil, err
			}
			if truthy(lv) != and {
				return lv, nil
			}
			return right(e)
		}
	}
	return left, nil
}

// comparison is the relational layer. All spellings share one precedence row;
// a leading ! negates the absolute operator. When a default-left is in
// effect and the chain folds to a non-boolean outside a ternary predicate,
// the result is projected to equality against the default-left.
func (p *parser) comparison(c *cursor) (thunk, error) {
	var left thunk
	var pendingOp string
	var err error

	if op := c.consumeFold(comparisonWordStarts...); op != "" {
		left = defaultLeftThunk
		pendingOp = op
	} else {
		start := c.pos
		text := c.until(comparisonSeps...)
		left, err = p.operand(p.math, text, c.base+start, c.ctx)
		if err != nil {
			return nil, err
		}
	}

	for {
		op := pendingOp
		pendingOp = ""
		if op == "" {
			op = c.consumeFold(comparisonSeps...)
			if op == "" {
				break
			}
		}
		rStart := c.pos
		rText := c.until(comparisonSeps...)
		if strings.TrimSpace(rText) == "" {
			return nil, c.syntaxErr("empty right operand for %q", strings.TrimSpace(op))
		}
		right, err := p.subText(p.math, rText, c.base+rStart, c.ctx)
		if err != nil {
			return nil, err
		}
		left = compareThunk(op, left, right)
	}

	if c.ctx.inPredicate {
		return left, nil
	}
	inner := left
	return func(e *env) (interface{}, error) {
		v, err := inner(e)
		if err != nil {
			return nil, err
		}
		if e.hasDefaultLeft {
			if _, isBool := v.(bool); !isBool {
				return equals(normalize(v), e.defaultLeft), nil
			}
		}
		return v, nil
	}, nil
}

// compareThunk folds one comparison operator application
func compareThunk(op string, left, right thunk) thunk {
	abs, neg := splitCompareOp(op)
	return func(e *env) (interface{}, error) {
		l, err := left(e)
		if err != nil {
			return nil, err
		}
		r, err := right(e)
		if err != nil {
			return nil, err
		}
		return applyCompare(abs, neg, normalize(l), normalize(r), e)
	}
}

// splitCompareOp reduces an operator spelling to its absolute form plus a
// negation flag. <> and != are their own operators, not negations.
func splitCompareOp(op string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(op))
	switch t {
	case "is not":
		return "is", true
	case "not in":
		return "in", true
	case "not ~in":
		return "~in", true
	case "<>", "!=":
		return t, false
	}
	if strings.HasPrefix(t, "!") {
		return strings.TrimSpace(t[1:]), true
	}
	return t, false
}

func applyCompare(abs string, neg bool, l, r interface{}, e *env) (interface{}, error) {
	if abs == "matches" {
		return opMatches(l, r, !neg, e.opts.SafeOp)
	}

	var res bool
	switch abs {
	case "is":
		res = e.typeCheck(l, toStr(r))
	case "in":
		res = contains(r, l, false)
	case "~in":
		res = contains(r, l, true)
	case "=":
		res = equals(l, r)
	case "~=":
		res = strings.ToLower(toStr(l)) == strings.ToLower(toStr(r))
	case "<>", "!=":
		res = !identical(l, r)
	case "<":
		cmp, ok := compareOrd(l, r)
		res = ok && cmp < 0
	case "<=":
		cmp, ok := compareOrd(l, r)
		res = ok && cmp <= 0
	case ">=":
		cmp, ok := compareOrd(l, r)
		res = ok && cmp >= 0
	case ">":
		cmp, ok := compareOrd(l, r)
		res = ok && cmp > 0
	case "^=":
		res = strings.HasPrefix(toStr(l), toStr(r))
	case "^~=":
		res = strings.HasPrefix(strings.ToLower(toStr(l)), strings.ToLower(toStr(r)))
	case "$=":
		res = strings.HasSuffix(toStr(l), toStr(r))
	case "$~=":
		res = strings.HasSuffix(strings.ToLower(toStr(l)), strings.ToLower(toStr(r)))
	case "*=":
		res = contains(l, r, false)
	case "*~=":
		res = contains(l, r, true)
	default:
		return nil, &TypeError{Message: "unknown comparison operator " + strconv.Quote(abs)}
	}
	if neg {
		res = !res
	}
	return res, nil
}

// math is the arithmetic layer. All operators share one precedence row and
// fold left to right; grouping is the job of parentheses.
func (p *parser) math(c *cursor) (thunk, error) {
	var left thunk
	var pendingOp string
	var err error

	if op := c.consumeFold(mathWordStarts...); op != "" {
		left = defaultLeftThunk
		pendingOp = op
	} else {
		start := c.pos
		text := c.until(mathSeps...)
		left, err = p.operand(p.value, text, c.base+start, c.ctx)
		if err != nil {
			return nil, err
		}
	}

	for {
		op := pendingOp
		pendingOp = ""
		if op == "" {
			op = c.consumeFold(mathSeps...)
			if op == "" {
				break
			}
		}
		rStart := c.pos
		rText := c.until(mathSeps...)
		if strings.TrimSpace(rText) == "" {
			return nil, c.syntaxErr("empty right operand for %q", strings.TrimSpace(op))
		}
		right, err := p.subText(p.value, rText, c.base+rStart, c.ctx)
		if err != nil {
			return nil, err
		}
		left = mathThunk(strings.ToLower(strings.TrimSpace(op)), left, right)
	}
	return left, nil
}

// mathThunk folds one math operator application. The then operator skips its
// right side entirely when the left is falsy.
func mathThunk(op string, left, right thunk) thunk {
	return func(e *env) (interface{}, error) {
		l, err := left(e)
		if err != nil {
			return nil, err
		}
		l = normalize(l)

		if op == "then" && !truthy(l) {
			return l, nil
		}

		r, err := right(e)
		if err != nil {
			return nil, err
		}
		r = normalize(r)

		switch op {
		case "+":
			return opAdd(l, r, e.opts.SafeOp)
		case "-":
			return opSub(l, r, e.opts.SafeOp)
		case "before":
			return opBefore(l, r), nil
		case "then":
			return opThen(l, r, e.opts.SafeOp)
		default:
			return numericOp(op, l, r, e.opts.SafeOp), nil
		}
	}
}

// value recognises literals, groups, prefixes, identifiers and access
// chains: the highest-precedence layer.
func (p *parser) value(c *cursor) (thunk, error) {
	c.skipSpaces()
	if c.eof() {
		return undefThunk, nil
	}

	// parenthesised expression or function literal
	if c.consume("(") != "" {
		inStart := c.pos
		interior, err := c.throughEnd('(', ')')
		if err != nil {
			return nil, err
		}
		c.skipSpaces()
		if c.peek(1) == "{" {
			return p.funcLiteral(c, interior, inStart)
		}
		head, err := p.subText(p.start, interior, c.base+inStart, c.ctx)
		if err != nil {
			return nil, err
		}
		return p.chain(c, head)
	}

	// logical NOT; against a default-left, a non-boolean operand tests
	// inequality with the default instead
	if c.consume("!") != "" {
		inner, err := p.value(c)
		if err != nil {
			return nil, err
		}
		return func(e *env) (interface{}, error) {
			v, err := inner(e)
			if err != nil {
				return nil, err
			}
			v = normalize(v)
			if b, ok := v.(bool); ok {
				return !b, nil
			}
			if e.hasDefaultLeft {
				return !equals(v, e.defaultLeft), nil
			}
			return !truthy(v), nil
		}, nil
	}

	// debug prefix: compile the rest of the chunk, report its value
	if c.consume("debug ") != "" {
		c.skipSpaces()
		srcStart := c.pos
		srcText := strings.TrimSpace(c.rest())
		c.skip(len(c.src) - c.pos)
		inner, err := p.subText(p.value, srcText, c.base+srcStart, c.ctx)
		if err != nil {
			return nil, err
		}
		return func(e *env) (interface{}, error) {
			v, err := inner(e)
			if err != nil {
				return nil, err
			}
			e.debug(srcText, normalize(v))
			return v, nil
		}, nil
	}

	// explicit variable reference
	if c.consume("$") != "" {
		head, err := p.varRef(c)
		if err != nil {
			return nil, err
		}
		return p.chain(c, head)
	}

	// array literal
	if c.consume("[") != "" {
		inStart := c.pos
		interior, err := c.throughEnd('[', ']')
		if err != nil {
			return nil, err
		}
		elems, err := p.parseList(interior, c.base+inStart)
		if err != nil {
			return nil, err
		}
		head := func(e *env) (interface{}, error) {
			out := make([]interface{}, len(elems))
			for i, el := range elems {
				v, err := el(e)
				if err != nil {
					return nil, err
				}
				out[i] = normalize(v)
			}
			return out, nil
		}
		return p.chain(c, head)
	}

	// regex literal
	if p.opts.AllowRegexLiterals && c.consume("@") != "" {
		patStart := c.pos
		pattern, err := c.throughEnd('@', '@')
		if err != nil {
			return nil, err
		}
		flags := c.consumeWhile(func(ch rune) bool {
			return strings.ContainsRune("gimsuy", ch)
		})
		re, reErr := NewRegex(unescape(pattern, '@'), flags)
		if reErr != nil {
			return nil, c.syntaxErrAt(patStart, "invalid regex literal: %v", reErr)
		}
		return p.chain(c, constThunk(re))
	}

	// string literal
	if q := c.consume(`"`, `'`); q != "" {
		quote := rune(q[0])
		raw, err := c.throughEnd(quote, quote)
		if err != nil {
			return nil, err
		}
		return p.chain(c, constThunk(unescapeString(raw)))
	}

	// property chain on the default-left (but .5 is a number literal)
	if c.peek(1) == "." && !startsNumber(c) {
		head := func(e *env) (interface{}, error) {
			if !e.hasDefaultLeft {
				return nil, &TypeError{Message: "property chain on \".\" requires a default-left value"}
			}
			return e.defaultLeft, nil
		}
		return p.chain(c, head)
	}

	// keywords
	if kw, v := p.keyword(c); kw {
		return p.chain(c, constThunk(v))
	}

	// number literal
	if startsNumber(c) {
		head, err := p.number(c)
		if err != nil {
			return nil, err
		}
		return p.chain(c, head)
	}

	// fallback: bare identifier, possibly the head of an access chain
	idStart := c.pos
	name := strings.TrimSpace(c.until("(", "."))
	if name == "" {
		return nil, c.syntaxErrAt(idStart, "expected a value")
	}
	for _, ch := range name {
		if !isIdentRune(ch) {
			return nil, c.syntaxErrAt(idStart, "unexpected character %q in identifier %q", string(ch), name)
		}
	}
	return p.chain(c, identThunk(name))
}

// varRef parses the identifier after $: a bare run, a {…} literal name or a
// (expr) dynamic name
func (p *parser) varRef(c *cursor) (thunk, error) {
	if c.consume("{") != "" {
		raw, err := c.throughEnd('{', '}')
		if err != nil {
			return nil, err
		}
		return identThunk(unescape(raw, '}')), nil
	}
	if c.consume("(") != "" {
		inStart := c.pos
		interior, err := c.throughEnd('(', ')')
		if err != nil {
			return nil, err
		}
		nameThunk, err := p.subText(p.start, interior, c.base+inStart, c.ctx)
		if err != nil {
			return nil, err
		}
		return func(e *env) (interface{}, error) {
			v, err := nameThunk(e)
			if err != nil {
				return nil, err
			}
			return resolveIdent(toStr(normalize(v)), e)
		}, nil
	}
	start := c.pos
	name := strings.TrimSpace(c.consumeWhile(isIdentRune))
	if name == "" {
		return nil, c.syntaxErrAt(start, "expected identifier after $")
	}
	return identThunk(name), nil
}

func identThunk(name string) thunk {
	return func(e *env) (interface{}, error) {
		return resolveIdent(name, e)
	}
}

// keyword recognises the literal keywords, case-insensitively, when followed
// by a non-identifier character
func (p *parser) keyword(c *cursor) (bool, interface{}) {
	type kw struct {
		text  string
		value interface{}
	}
	keywords := []kw{
		{"-infinity", negInf},
		{"infinity", posInf},
		{"false", false},
		{"true", true},
		{"null", nil},
		{"-∞", negInf},
		{"∞", posInf},
	}
	for _, k := range keywords {
		n := len([]rune(k.text))
		if !strings.EqualFold(c.peek(n), k.text) {
			continue
		}
		after := c.peek(n + 1)
		if len([]rune(after)) > n {
			last := []rune(after)[n]
			if isIdentStrict(last) {
				continue
			}
		}
		c.skip(n)
		return true, k.value
	}
	return false, nil
}

// number parses a literal matching -?\.?\d with a single decimal point
func (p *parser) number(c *cursor) (thunk, error) {
	start := c.pos
	c.consume("-")
	text := c.consumeWhile(func(ch rune) bool { return isDigit(ch) || ch == '.' })
	if strings.Count(text, ".") > 1 {
		return nil, c.syntaxErrAt(start, "duplicated decimal point in number")
	}
	full := string(c.src[start:c.pos])
	f, err := strconv.ParseFloat(full, 64)
	if err != nil {
		return nil, c.syntaxErrAt(start, "invalid number %q", full)
	}
	return constThunk(f), nil
}

// startsNumber reports whether the upcoming text begins a number literal
func startsNumber(c *cursor) bool {
	i := c.pos
	if i < len(c.src) && c.src[i] == '-' {
		i++
	}
	if i < len(c.src) && c.src[i] == '.' {
		i++
	}
	return i < len(c.src) && isDigit(c.src[i])
}

// chain parses any sequence of .prop accesses and (args) calls after a head
// value
func (p *parser) chain(c *cursor, head thunk) (thunk, error) {
	for {
		c.skipSpaces()

		if c.consume(".") != "" {
			key, dyn, err := p.chainKey(c)
			if err != nil {
				return nil, err
			}
			recv := head
			head = func(e *env) (interface{}, error) {
				r, err := recv(e)
				if err != nil {
					return nil, err
				}
				k := key
				if dyn != nil {
					kv, err := dyn(e)
					if err != nil {
						return nil, err
					}
					k = toStr(normalize(kv))
				}
				return accessProp(normalize(r), k, e)
			}
			continue
		}

		if c.consume("(") != "" {
			inStart := c.pos
			interior, err := c.throughEnd('(', ')')
			if err != nil {
				return nil, err
			}
			argThunks, err := p.parseList(interior, c.base+inStart)
			if err != nil {
				return nil, err
			}
			recv := head
			head = func(e *env) (interface{}, error) {
				r, err := recv(e)
				if err != nil {
					return nil, err
				}
				args := make([]interface{}, len(argThunks))
				for i, at := range argThunks {
					v, err := at(e)
					if err != nil {
						return nil, err
					}
					args[i] = normalize(v)
				}
				return callValue(normalize(r), args, e)
			}
			continue
		}

		return head, nil
	}
}

// chainKey parses the identifier after a dot: literal, dynamic or bare
func (p *parser) chainKey(c *cursor) (string, thunk, error) {
	if c.consume("{") != "" {
		raw, err := c.throughEnd('{', '}')
		if err != nil {
			return "", nil, err
		}
		return unescape(raw, '}'), nil, nil
	}
	if c.consume("(") != "" {
		inStart := c.pos
		interior, err := c.throughEnd('(', ')')
		if err != nil {
			return "", nil, err
		}
		dyn, err := p.subText(p.start, interior, c.base+inStart, c.ctx)
		if err != nil {
			return "", nil, err
		}
		return "", dyn, nil
	}
	start := c.pos
	key := strings.TrimSpace(c.consumeWhile(isIdentRune))
	if key == "" {
		return "", nil, c.syntaxErrAt(start, "expected property name after \".\"")
	}
	return key, nil, nil
}

// parseList splits an interior on top-level commas and compiles each item
func (p *parser) parseList(interior string, base int) ([]thunk, error) {
	if strings.TrimSpace(interior) == "" {
		return nil, nil
	}
	c := newCursor(interior, base, p.ctxFor())
	var items []thunk
	for {
		start := c.pos
		text := c.until(",")
		if strings.TrimSpace(text) == "" {
			if c.eof() {
				break
			}
			items = append(items, undefThunk)
		} else {
			th, err := p.subText(p.start, text, c.base+start, c.ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, th)
		}
		if c.consume(",") == "" {
			break
		}
	}
	return items, nil
}

func (p *parser) ctxFor() *parseContext {
	return &parseContext{opts: p.opts}
}

// funcLiteral parses (params){body} with the parameter list taken raw and the
// body compiled strictly at compile time. Invocation installs a parameter
// frame over the captured environment.
func (p *parser) funcLiteral(c *cursor, paramText string, paramBase int) (thunk, error) {
	params := parseParams(paramText)

	if c.consume("{") == "" {
		return nil, c.syntaxErr("expected function body")
	}
	bodyStart := c.pos
	body, err := c.throughEnd('{', '}')
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, c.syntaxErrAt(bodyStart, "empty function body")
	}
	bodyThunk, err := p.subText(p.start, body, c.base+bodyStart, p.ctxFor())
	if err != nil {
		return nil, err
	}

	head := func(e *env) (interface{}, error) {
		captured := e
		return Func(func(args []interface{}) (interface{}, error) {
			for i := range args {
				args[i] = normalize(args[i])
			}
			v, err := bodyThunk(captured.withFrame(params, args))
			if err != nil {
				return nil, err
			}
			return normalize(v), nil
		}), nil
	}
	return p.chain(c, head)
}

// parseParams extracts raw parameter names, each stripped of non-identifier
// characters
func parseParams(text string) []string {
	var params []string
	for _, part := range splitTopLevel(text) {
		var b strings.Builder
		for _, ch := range part {
			if isIdentRune(ch) {
				b.WriteRune(ch)
			}
		}
		name := strings.TrimSpace(b.String())
		if name != "" {
			params = append(params, name)
		}
	}
	return params
}

// splitTopLevel splits on top-level commas without compiling the pieces
func splitTopLevel(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	c := newCursor(text, 0, &parseContext{opts: DefaultOptions()})
	var parts []string
	for {
		parts = append(parts, c.until(","))
		if c.consume(",") == "" {
			break
		}
	}
	return parts
}

// unescape removes backslashes that protect the given close character in
// brace-quoted identifier names and regex bodies; all other escapes pass
// through untouched
func unescape(s string, close rune) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == close {
			i++
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// unescapeString resolves backslash escapes inside string literals
func unescapeString(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
			switch runes[i] {
			case 'n':
				b.WriteRune('\n')
			case 'r':
				b.WriteRune('\r')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(runes[i])
			}
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
