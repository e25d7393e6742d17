package conscript

import (
	"math"
	"reflect"
	"strings"
	"time"
)

// typeCheck routes an "is" test through the host's predicate service,
// falling back to the built-in one
func (e *env) typeCheck(v interface{}, descriptor string) bool {
	if e.opts.TypeCheck != nil {
		return e.opts.TypeCheck(v, descriptor)
	}
	return DefaultTypeCheck(v, descriptor)
}

// debug forwards a (source, value) pair from the debug operator to the
// configured sink, or to the logger's debug channel when none is set
func (e *env) debug(source string, v interface{}) {
	if e.opts.DebugOutput != nil {
		e.opts.DebugOutput(source, v)
		return
	}
	if e.logger != nil {
		e.logger.Debug("debug %s = %s", source, FormatValue(v))
	}
}

// DefaultTypeCheck is the built-in type-predicate service behind the is
// operator. It recognises the primitive type names, the empty modifier and a
// few named classes; unknown descriptors fall back to a reflected type-name
// comparison.
func DefaultTypeCheck(v interface{}, descriptor string) bool {
	desc := strings.TrimSpace(descriptor)

	if rest, ok := strings.CutPrefix(strings.ToLower(desc), "empty "); ok {
		return DefaultTypeCheck(v, rest) && isEmptyValue(v)
	}

	switch strings.ToLower(desc) {
	case "null", "nil":
		return v == nil || isUndef(v)
	case "boolean", "bool":
		_, ok := v.(bool)
		return ok
	case "number":
		_, ok := asNumber(v)
		return ok
	case "int", "integer":
		n, ok := asNumber(v)
		return ok && !math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n)
	case "float":
		n, ok := asNumber(v)
		return ok && (math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n))
	case "string":
		_, ok := v.(string)
		return ok
	case "array":
		_, ok := v.([]interface{})
		return ok
	case "object":
		return isObject(v)
	case "function":
		_, ok := v.(Func)
		return ok
	case "regex", "regexp":
		_, ok := v.(*Regex)
		return ok
	case "empty":
		return isEmptyValue(v)
	case "date":
		_, ok := v.(time.Time)
		return ok
	}

	// named class fallback
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name() == desc
}

func isEmptyValue(v interface{}) bool {
	switch x := v.(type) {
	case nil, undefined:
		return true
	case string:
		return x == ""
	case []interface{}:
		return len(x) == 0
	case *Object:
		return x.Len() == 0
	case map[string]interface{}:
		return len(x) == 0
	}
	return false
}
