package conscript

import (
	"math"
	"strconv"
)

// env is the runtime environment handed to every thunk: the variable
// resolver, the optional default-left value and the resolved options. It is
// immutable; function frames layer new resolvers on top.
type env struct {
	getVar         VarFunc
	defaultLeft    interface{}
	hasDefaultLeft bool
	opts           *Options
	logger         *Logger
}

// withFrame returns a child environment whose resolver checks the parameter
// bindings first and falls back to the outer resolver. Missing arguments
// read as null.
func (e *env) withFrame(params []string, args []interface{}) *env {
	outer := e.getVar
	child := *e
	child.getVar = func(name string) (interface{}, bool) {
		for i, p := range params {
			if p == name {
				if i < len(args) {
					return args[i], true
				}
				return nil, true
			}
		}
		if outer != nil {
			return outer(name)
		}
		return nil, false
	}
	return &child
}

// resolveIdent looks up an identifier and routes misses through the
// unknownsAre policy
func resolveIdent(name string, e *env) (interface{}, error) {
	if e.getVar != nil {
		if v, ok := e.getVar(name); ok {
			return normalize(v), nil
		}
	}
	switch e.opts.UnknownsAre {
	case UnknownsAreNull:
		return nil, nil
	case UnknownsAreErrors:
		return nil, &RefError{Name: name}
	default:
		return name, nil
	}
}

// normalize maps the internal undefined marker to null
func normalize(v interface{}) interface{} {
	if isUndef(v) {
		return nil
	}
	return v
}

// denan maps NaN to null; applied at property-access boundaries
func denan(v interface{}) interface{} {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nil
	}
	return v
}

// accessProp reads a property off a receiver. Arrays and strings share the
// indexed interface; objects are plain key lookups with no derived names;
// anything else raises unless safeNav is on.
func accessProp(recv interface{}, key string, e *env) (interface{}, error) {
	switch r := recv.(type) {
	case []interface{}:
		return seqProp(r, key, e, nil)
	case string:
		chars := make([]interface{}, 0, len(r))
		for _, ch := range r {
			chars = append(chars, string(ch))
		}
		return seqProp(chars, key, e, func(remainder []interface{}) interface{} {
			out := ""
			for _, ch := range remainder {
				out += toStr(ch)
			}
			return out
		})
	}

	if isObject(recv) {
		if v, present := objGet(recv, key); present {
			return denan(normalize(v)), nil
		}
		return nil, nil
	}

	if e.opts.SafeNav {
		return nil, nil
	}
	return nil, &TypeError{Message: "cannot read property " + strconv.Quote(key) + " of " + typeName(recv)}
}

// seqProp implements the shared array/string property interface. rejoin, when
// non-nil, converts a remainder element slice back into the receiver's own
// type (strings stay strings through slice, pop and shift).
func seqProp(seq []interface{}, key string, e *env, rejoin func([]interface{}) interface{}) (interface{}, error) {
	if isIndexKey(key) {
		idx, err := strconv.Atoi(key)
		if err != nil || idx >= len(seq) {
			return nil, nil
		}
		return denan(normalize(seq[idx])), nil
	}

	join := func(remainder []interface{}) interface{} {
		if rejoin != nil {
			return rejoin(remainder)
		}
		return remainder
	}

	switch key {
	case "empty":
		return len(seq) == 0, nil
	case "last":
		if len(seq) == 0 {
			return nil, nil
		}
		return denan(normalize(seq[len(seq)-1])), nil
	case "length", "count":
		return float64(len(seq)), nil
	case "multiple":
		return len(seq) > 1, nil
	case "every":
		return seqTestFunc(seq, e, true), nil
	case "some":
		return seqTestFunc(seq, e, false), nil
	case "map":
		return Func(func(args []interface{}) (interface{}, error) {
			fn, err := argFunc(args, "map")
			if err != nil {
				return nil, err
			}
			out := make([]interface{}, len(seq))
			for i, el := range seq {
				v, err := fn([]interface{}{el, float64(i)})
				if err != nil {
					return nil, err
				}
				out[i] = normalize(v)
			}
			return out, nil
		}), nil
	case "slice":
		return Func(func(args []interface{}) (interface{}, error) {
			start, end := sliceBounds(args, len(seq))
			out := make([]interface{}, end-start)
			copy(out, seq[start:end])
			return join(out), nil
		}), nil
	case "pop":
		return seqRemoveFunc(seq, join, true), nil
	case "shift":
		return seqRemoveFunc(seq, join, false), nil
	}

	if e.opts.SafeNav {
		return nil, nil
	}
	return nil, &TypeError{Message: "unknown array property " + strconv.Quote(key)}
}

// seqTestFunc builds the every/some callables
func seqTestFunc(seq []interface{}, e *env, every bool) Func {
	name := "some"
	if every {
		name = "every"
	}
	return func(args []interface{}) (interface{}, error) {
		fn, err := argFunc(args, name)
		if err != nil {
			return nil, err
		}
		for i, el := range seq {
			v, err := fn([]interface{}{el, float64(i)})
			if err != nil {
				return nil, err
			}
			if truthy(v) != every {
				return !every, nil
			}
		}
		return every, nil
	}
}

// seqRemoveFunc builds pop and shift: remove n elements from one end. With a
// handler, the handler receives the removed elements followed by the
// remainder and its result is returned; without one the remainder is.
func seqRemoveFunc(seq []interface{}, join func([]interface{}) interface{}, fromEnd bool) Func {
	return func(args []interface{}) (interface{}, error) {
		n := 1
		if len(args) > 0 {
			if f, ok := asNumber(args[0]); ok {
				n = int(f)
			}
		}
		if n < 0 {
			n = 0
		}
		if n > len(seq) {
			n = len(seq)
		}

		var removed, remainder []interface{}
		if fromEnd {
			removed = append([]interface{}{}, seq[len(seq)-n:]...)
			remainder = append([]interface{}{}, seq[:len(seq)-n]...)
		} else {
			removed = append([]interface{}{}, seq[:n]...)
			remainder = append([]interface{}{}, seq[n:]...)
		}

		if len(args) > 1 {
			handler, ok := args[1].(Func)
			if !ok {
				return nil, &TypeError{Message: "handler argument is not a function"}
			}
			handlerArgs := append(append([]interface{}{}, removed...), join(remainder))
			v, err := handler(handlerArgs)
			return normalize(v), err
		}
		return join(remainder), nil
	}
}

// sliceBounds resolves slice(start, end) arguments with negative-from-end
// indexing and clamping
func sliceBounds(args []interface{}, length int) (int, int) {
	resolve := func(v interface{}, def int) int {
		f, ok := asNumber(v)
		if !ok {
			return def
		}
		i := int(f)
		if i < 0 {
			i += length
		}
		if i < 0 {
			i = 0
		}
		if i > length {
			i = length
		}
		return i
	}
	start, end := 0, length
	if len(args) > 0 {
		start = resolve(args[0], 0)
	}
	if len(args) > 1 {
		end = resolve(args[1], length)
	}
	if end < start {
		end = start
	}
	return start, end
}

func argFunc(args []interface{}, method string) (Func, error) {
	if len(args) > 0 {
		if fn, ok := args[0].(Func); ok {
			return fn, nil
		}
	}
	return nil, &TypeError{Message: method + " requires a function argument"}
}

// callValue invokes a function value. Calling anything else raises unless
// safeCall is on, in which case the call reads as null.
func callValue(recv interface{}, args []interface{}, e *env) (interface{}, error) {
	fn, ok := recv.(Func)
	if !ok {
		if e.opts.SafeCall {
			return nil, nil
		}
		return nil, &TypeError{Message: "cannot call " + typeName(recv) + " as a function"}
	}
	v, err := fn(args)
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func isIndexKey(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !isDigit(ch) {
			return false
		}
	}
	return true
}
