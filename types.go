package conscript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SourcePosition tracks the position of a token within a conscription
type SourcePosition struct {
	Line         int
	Column       int
	Length       int
	OriginalText string
}

// Func is a function value: either a function literal compiled from a
// conscription or a native function supplied through vars.
type Func func(args []interface{}) (interface{}, error)

func (Func) String() string { return "(function)" }

// Regex is a compiled regular-expression value produced by an @...@ literal.
// Flags are recorded as written; i, m and s are folded into the compiled
// pattern, the rest have no effect on matching.
type Regex struct {
	Pattern string
	Flags   string
	re      *regexp.Regexp
}

// NewRegex compiles a pattern with JS-style flags
func NewRegex(pattern, flags string) (*Regex, error) {
	prefix := ""
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			prefix += string(f)
		}
	}
	src := pattern
	if prefix != "" {
		src = "(?" + prefix + ")" + pattern
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}
	return &Regex{Pattern: pattern, Flags: flags, re: re}, nil
}

// Test reports whether the pattern matches anywhere in s
func (r *Regex) Test(s string) bool { return r.re.MatchString(s) }

func (r *Regex) String() string { return "@" + r.Pattern + "@" + r.Flags }

// Object is an ordered string-to-value mapping. Callers may also pass plain
// map[string]interface{} values through vars; both are accepted everywhere.
type Object struct {
	keys []string
	m    map[string]interface{}
}

// NewObject creates an empty ordered object
func NewObject() *Object {
	return &Object{m: make(map[string]interface{})}
}

// Set stores a key, preserving first-insertion order
func (o *Object) Set(key string, value interface{}) {
	if _, exists := o.m[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.m[key] = value
}

// Get returns the stored value and whether the key is present
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.m[key]
	return v, ok
}

// Delete removes a key if present
func (o *Object) Delete(key string) {
	if _, exists := o.m[key]; !exists {
		return
	}
	delete(o.m, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys
func (o *Object) Len() int { return len(o.keys) }

// undefined marks the absence of a value during evaluation. It never escapes
// the evaluator: results are normalised to nil before they reach the caller.
type undefined struct{}

var undef = undefined{}

func isUndef(v interface{}) bool {
	_, ok := v.(undefined)
	return ok
}

// UnknownsMode controls what an identifier with no binding evaluates to
type UnknownsMode string

// Unknowns modes. "str" and "err" are accepted aliases.
const (
	UnknownsAreStrings UnknownsMode = "strings"
	UnknownsAreNull    UnknownsMode = "null"
	UnknownsAreErrors  UnknownsMode = "errors"
)

// VarFunc resolves a variable by name on demand. The second return value
// reports whether the name is bound.
type VarFunc func(name string) (interface{}, bool)

// Options configures compilation and evaluation of conscriptions
type Options struct {
	// AllowRegexLiterals enables the @pattern@flags literal form
	AllowRegexLiterals bool

	// Safe switches on SafeCall, SafeNav and SafeOp at once
	Safe     bool
	SafeCall bool
	SafeNav  bool
	SafeOp   bool

	// UnknownsAre routes unresolved identifiers: "strings" (the default)
	// yields the identifier text, "null" yields null, "errors" raises.
	UnknownsAre UnknownsMode

	// DebugOutput receives (source, value) pairs from the debug operator.
	// When nil, output goes to the logger's debug channel.
	DebugOutput func(source string, value interface{})

	// TypeCheck evaluates "x is <descriptor>" tests. When nil, the
	// built-in type-predicate service is used.
	TypeCheck func(value interface{}, descriptor string) bool

	// Debug enables diagnostic logging
	Debug bool
}

// DefaultOptions returns the default options
func DefaultOptions() *Options {
	return &Options{
		UnknownsAre: UnknownsAreStrings,
	}
}

// merge overlays per-call options onto o, returning a new Options
func (o *Options) merge(over *Options) *Options {
	out := *o
	if over == nil {
		return &out
	}
	if over.AllowRegexLiterals {
		out.AllowRegexLiterals = true
	}
	if over.Safe {
		out.Safe = true
	}
	if over.SafeCall {
		out.SafeCall = true
	}
	if over.SafeNav {
		out.SafeNav = true
	}
	if over.SafeOp {
		out.SafeOp = true
	}
	if over.UnknownsAre != "" {
		out.UnknownsAre = over.UnknownsAre
	}
	if over.DebugOutput != nil {
		out.DebugOutput = over.DebugOutput
	}
	if over.TypeCheck != nil {
		out.TypeCheck = over.TypeCheck
	}
	if over.Debug {
		out.Debug = true
	}
	return &out
}

// normalize resolves the Safe shortcut and the UnknownsAre aliases
func (o *Options) normalize() error {
	if o.Safe {
		o.SafeCall = true
		o.SafeNav = true
		o.SafeOp = true
	}
	switch o.UnknownsAre {
	case "", "strings", "str":
		o.UnknownsAre = UnknownsAreStrings
	case "null":
		o.UnknownsAre = UnknownsAreNull
	case "errors", "err":
		o.UnknownsAre = UnknownsAreErrors
	default:
		return fmt.Errorf("unrecognized unknownsAre mode: %q", o.UnknownsAre)
	}
	return nil
}

// ExecOptions carries per-evaluation settings
type ExecOptions struct {
	// DefaultLeft supplies the left operand for chunks that omit one.
	// nil means no default-left is in effect.
	DefaultLeft interface{}
}

// SyntaxError reports a defect in a conscription found at compile time
type SyntaxError struct {
	Message  string
	Position *SourcePosition
	Source   string
}

func (e *SyntaxError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("syntax error: %s at column %d", e.Message, e.Position.Column)
	}
	return "syntax error: " + e.Message
}

// RefError reports an unresolved identifier under unknownsAre:errors
type RefError struct {
	Name string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("reference error: %s is not defined", e.Name)
}

// TypeError reports a runtime type violation not covered by a safe mode
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return "type error: " + e.Message
}

// FormatValue renders a value in its display form: the form used by the CLI
// and the debug sink.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case undefined:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return strconv.Quote(x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, el := range x {
			parts[i] = FormatValue(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Object:
		parts := make([]string, 0, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, FormatValue(val)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case map[string]interface{}:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(x) {
			parts = append(parts, fmt.Sprintf("%s: %s", k, FormatValue(x[k])))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Func:
		return "(function)"
	case *Regex:
		return x.String()
	default:
		if f, ok := asNumber(v); ok {
			return formatNumber(f)
		}
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
