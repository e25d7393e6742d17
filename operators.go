package conscript

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// asNumber extracts a float64 from any Go numeric type a caller may have
// placed in vars. Compiled literals are always float64; caller data often
// arrives as int.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toNumber coerces a value to a number, producing NaN where no numeric
// reading exists
func toNumber(v interface{}) float64 {
	if n, ok := asNumber(v); ok {
		return n
	}
	switch x := v.(type) {
	case nil, undefined:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

// toStr coerces a value to its string form
func toStr(v interface{}) string {
	switch x := v.(type) {
	case nil, undefined:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case []interface{}:
		parts := make([]string, len(x))
		for i, el := range x {
			parts[i] = toStr(el)
		}
		return strings.Join(parts, ",")
	case *Object:
		return "[object]"
	case map[string]interface{}:
		return "[object]"
	case Func:
		return "(function)"
	case *Regex:
		return x.String()
	default:
		if n, ok := asNumber(v); ok {
			return formatNumber(n)
		}
		return ""
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// truthy applies the language's truthiness rule: null, false, zero, NaN and
// the empty string are false; everything else, empty collections included,
// is true.
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return x
	case string:
		return x != ""
	default:
		if n, ok := asNumber(v); ok {
			return n != 0 && !math.IsNaN(n)
		}
		return true
	}
}

// equals is the deep structural equality behind the = operator. Arrays and
// objects compare elementwise; numbers compare strictly with 0 and -0
// distinguished by sign; there is no cross-type coercion.
func equals(a, b interface{}) bool {
	an, aNum := asNumber(a)
	bn, bNum := asNumber(b)
	if aNum || bNum {
		if !aNum || !bNum {
			return false
		}
		if an == 0 && bn == 0 {
			return math.Signbit(an) == math.Signbit(bn)
		}
		return an == bn
	}

	switch av := a.(type) {
	case nil, undefined:
		return b == nil || isUndef(b)
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equals(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Regex:
		bv, ok := b.(*Regex)
		return ok && av.Pattern == bv.Pattern && av.Flags == bv.Flags
	case Func:
		return false
	}

	if aKeys, aIsObj := objKeys(a); aIsObj {
		bKeys, bIsObj := objKeys(b)
		if !bIsObj || len(aKeys) != len(bKeys) {
			return false
		}
		for _, k := range aKeys {
			av, _ := objGet(a, k)
			bv, ok := objGet(b, k)
			if !ok || !equals(av, bv) {
				return false
			}
		}
		return true
	}

	return false
}

// identical is the shallow inequality test behind <> and !=: scalar equality
// without deep descent, reference identity for arrays and objects
func identical(a, b interface{}) bool {
	an, aNum := asNumber(a)
	bn, bNum := asNumber(b)
	if aNum || bNum {
		return aNum && bNum && an == bn
	}
	switch av := a.(type) {
	case nil, undefined:
		return b == nil || isUndef(b)
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() || ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Slice, reflect.Map, reflect.Ptr, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	}
	return false
}

// objGet reads a key from an ordered Object or a plain map
func objGet(v interface{}, key string) (interface{}, bool) {
	switch o := v.(type) {
	case *Object:
		return o.Get(key)
	case map[string]interface{}:
		val, ok := o[key]
		return val, ok
	}
	return nil, false
}

// objKeys lists the keys of an ordered Object or a plain map, reporting
// whether v is an object at all
func objKeys(v interface{}) ([]string, bool) {
	switch o := v.(type) {
	case *Object:
		return o.Keys(), true
	case map[string]interface{}:
		return sortedKeys(o), true
	}
	return nil, false
}

func isObject(v interface{}) bool {
	_, ok := objKeys(v)
	return ok
}

// compareOrd orders two values for < <= >= >: strings lexicographically,
// anything else numerically. The bool result is false when the comparison is
// undefined (a NaN operand).
func compareOrd(a, b interface{}) (int, bool) {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs), true
	}
	an, bn := toNumber(a), toNumber(b)
	if math.IsNaN(an) || math.IsNaN(bn) {
		return 0, false
	}
	switch {
	case an < bn:
		return -1, true
	case an > bn:
		return 1, true
	default:
		return 0, true
	}
}

// includes reports whether arr has an element equal to v, case-insensitively
// when ci is set
func includes(arr []interface{}, v interface{}, ci bool) bool {
	for _, el := range arr {
		if ci {
			if strings.EqualFold(toStr(el), toStr(v)) {
				return true
			}
		} else if equals(el, v) {
			return true
		}
	}
	return false
}

// contains is the *= operator: elementwise membership for arrays, substring
// test after string coercion otherwise
func contains(l, r interface{}, ci bool) bool {
	if arr, ok := l.([]interface{}); ok {
		return includes(arr, r, ci)
	}
	ls, rs := toStr(l), toStr(r)
	if ci {
		ls, rs = strings.ToLower(ls), strings.ToLower(rs)
	}
	return strings.Contains(ls, rs)
}

// opMatches applies R matches S. Exactly one operand must be a regex and the
// other a string; under safeOp a type violation yields false instead of an
// error.
func opMatches(l, r interface{}, shouldMatch bool, safeOp bool) (interface{}, error) {
	var re *Regex
	var s string
	var sOK bool

	if lr, ok := l.(*Regex); ok {
		re = lr
		s, sOK = r.(string)
	} else if rr, ok := r.(*Regex); ok {
		re = rr
		s, sOK = l.(string)
	}

	if re == nil || !sOK {
		if safeOp {
			return false, nil
		}
		return nil, &TypeError{Message: "matches requires one regex and one string operand"}
	}
	return re.Test(s) == shouldMatch, nil
}

// opAdd is the polymorphic + operator
func opAdd(l, r interface{}, safeOp bool) (interface{}, error) {
	if la, ok := l.([]interface{}); ok {
		if ra, ok := r.([]interface{}); ok {
			out := make([]interface{}, 0, len(la)+len(ra))
			out = append(out, la...)
			return append(out, ra...), nil
		}
		out := make([]interface{}, 0, len(la)+1)
		out = append(out, la...)
		return append(out, r), nil
	}
	if ra, ok := r.([]interface{}); ok {
		out := make([]interface{}, 0, len(ra)+1)
		out = append(out, l)
		return append(out, ra...), nil
	}

	if isObject(l) && isObject(r) {
		return mergeObjects(l, r), nil
	}

	if ln, ok := asNumber(l); ok {
		switch rv := r.(type) {
		case string:
			return addNumbers(ln, toNumber(rv), safeOp)
		default:
			if rn, ok := asNumber(r); ok {
				return addNumbers(ln, rn, safeOp)
			}
			if safeOp {
				return addNumbers(ln, 0, true)
			}
			return nil, &TypeError{Message: "cannot add " + typeName(r) + " to a number"}
		}
	}

	if ls, ok := l.(string); ok {
		if rn, ok := asNumber(r); ok {
			return addNumbers(toNumber(ls), rn, safeOp)
		}
		return ls + toStr(r), nil
	}

	if rs, ok := r.(string); ok {
		return toStr(l) + rs, nil
	}
	if rn, ok := asNumber(r); ok {
		if safeOp {
			return addNumbers(0, rn, true)
		}
		return nil, &TypeError{Message: "cannot add a number to " + typeName(l)}
	}

	if safeOp {
		return float64(0), nil
	}
	return nil, &TypeError{Message: "cannot add " + typeName(l) + " and " + typeName(r)}
}

func addNumbers(a, b float64, safeOp bool) (interface{}, error) {
	sum := a + b
	if math.IsNaN(sum) {
		if safeOp {
			return float64(0), nil
		}
		return nil, &TypeError{Message: "addition produced NaN"}
	}
	return sum, nil
}

// opSub is the polymorphic - operator
func opSub(l, r interface{}, safeOp bool) (interface{}, error) {
	if la, ok := l.([]interface{}); ok {
		if ra, ok := r.([]interface{}); ok {
			return arrayDiff(la, ra), nil
		}
		return arrayDiff(la, []interface{}{r}), nil
	}

	if isObject(l) {
		if isObject(r) {
			return objMinusObject(l, r), nil
		}
		if ra, ok := r.([]interface{}); ok {
			keys := make([]string, len(ra))
			for i, k := range ra {
				keys[i] = toStr(k)
			}
			return objMinusKeys(l, keys), nil
		}
		if rs, ok := r.(string); ok {
			return objMinusKeys(l, []string{rs}), nil
		}
		if safeOp {
			return copyObject(l), nil
		}
		return nil, &TypeError{Message: "cannot subtract " + typeName(r) + " from an object"}
	}

	ls, lIsStr := l.(string)
	rs, rIsStr := r.(string)
	if lIsStr && rIsStr {
		return strings.ReplaceAll(ls, rs, ""), nil
	}

	ln, rn := toNumber(l), toNumber(r)
	if math.IsNaN(ln) || math.IsNaN(rn) {
		if safeOp {
			return float64(0), nil
		}
		return nil, &TypeError{Message: "cannot subtract " + typeName(r) + " from " + typeName(l)}
	}
	return ln - rn, nil
}

// arrayDiff returns the elements of l with no deep-equal counterpart in r
func arrayDiff(l, r []interface{}) []interface{} {
	out := make([]interface{}, 0, len(l))
	for _, el := range l {
		if !includes(r, el, false) {
			out = append(out, el)
		}
	}
	return out
}

// mergeObjects merges two objects left-to-right, the right side winning
func mergeObjects(l, r interface{}) *Object {
	out := copyObject(l)
	rKeys, _ := objKeys(r)
	for _, k := range rKeys {
		v, _ := objGet(r, k)
		out.Set(k, v)
	}
	return out
}

func copyObject(v interface{}) *Object {
	out := NewObject()
	keys, _ := objKeys(v)
	for _, k := range keys {
		val, _ := objGet(v, k)
		out.Set(k, val)
	}
	return out
}

// objMinusObject removes the pairs of l that appear in r with an equal value
func objMinusObject(l, r interface{}) *Object {
	out := NewObject()
	keys, _ := objKeys(l)
	for _, k := range keys {
		lv, _ := objGet(l, k)
		if rv, ok := objGet(r, k); ok && equals(lv, rv) {
			continue
		}
		out.Set(k, lv)
	}
	return out
}

// objMinusKeys removes the named keys from l
func objMinusKeys(l interface{}, drop []string) *Object {
	out := NewObject()
	keys, _ := objKeys(l)
	for _, k := range keys {
		dropped := false
		for _, d := range drop {
			if k == d {
				dropped = true
				break
			}
		}
		if !dropped {
			v, _ := objGet(l, k)
			out.Set(k, v)
		}
	}
	return out
}

// numericOp applies *, /, % or ^. These never raise: a non-numeric operand
// flows through as NaN, promoted to 0 under safeOp.
func numericOp(op string, l, r interface{}, safeOp bool) interface{} {
	ln, rn := toNumber(l), toNumber(r)
	var out float64
	switch op {
	case "*":
		out = ln * rn
	case "/":
		out = ln / rn
	case "%":
		out = math.Mod(ln, rn)
	case "^":
		out = math.Pow(ln, rn)
	}
	if math.IsNaN(out) && safeOp {
		return float64(0)
	}
	return out
}

// opBefore prepends the left side when the right side is a non-empty string
func opBefore(l, r interface{}) interface{} {
	rs := toStr(r)
	if rs != "" {
		return toStr(l) + rs
	}
	return r
}

// opThen appends the right side when the left is truthy, with true itself
// coerced to the empty string so "x then y" can start a chain
func opThen(l, r interface{}, safeOp bool) (interface{}, error) {
	if !truthy(l) {
		return l, nil
	}
	if b, ok := l.(bool); ok && b {
		l = ""
	}
	return opAdd(l, r, safeOp)
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil, undefined:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case Func:
		return "function"
	case *Regex:
		return "regex"
	}
	if _, ok := asNumber(v); ok {
		return "number"
	}
	if isObject(v) {
		return "object"
	}
	return reflect.TypeOf(v).String()
}
