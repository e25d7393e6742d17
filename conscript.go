// Package conscript compiles one-line textual conscriptions into reusable
// test functions over a caller-supplied variable environment — an embeddable
// predicate language in the spirit of a SQL WHERE clause.
//
// Basic usage:
//
//	cs := conscript.New(&conscript.Options{})
//	compiled, err := cs.Compile(`month=10 & day=28`, nil)
//	if err != nil {
//		// syntax error in the conscription
//	}
//	ok, err := compiled.Test(map[string]interface{}{"month": 10, "day": 28})
//
// A compiled conscription is pure and re-entrant: it may be shared across
// goroutines as long as the variable environment itself is safe to share.
package conscript

// Conscript is a compiler instance holding global options
type Conscript struct {
	opts   *Options
	logger *Logger
}

// New creates a new Conscript compiler with the given global options
func New(opts *Options) *Conscript {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Conscript{
		opts:   opts,
		logger: NewLogger(opts.Debug),
	}
}

// Compiled is an executable conscription: an immutable thunk tree plus its
// captured literal data
type Compiled struct {
	source string
	run    thunk
	opts   *Options
	logger *Logger
}

// Compile compiles a conscription. Per-call options merge over the compiler's
// global options. All syntax defects surface here; Exec never parses.
func (cs *Conscript) Compile(source string, opts *Options) (*Compiled, error) {
	merged := cs.opts.merge(opts)
	if err := merged.normalize(); err != nil {
		return nil, err
	}

	logger := cs.logger
	if merged.Debug != cs.opts.Debug {
		logger = NewLogger(merged.Debug)
	}

	p := newParser(source, merged, logger)
	run, err := p.compile()
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			logger.ParseError(se)
		}
		return nil, err
	}
	logger.Debug("compiled conscription: %s", source)

	return &Compiled{
		source: source,
		run:    run,
		opts:   merged,
		logger: logger,
	}, nil
}

// Compile compiles a conscription under the default global options
func Compile(source string, opts *Options) (*Compiled, error) {
	return New(nil).Compile(source, opts)
}

// Source returns the conscription this evaluator was compiled from
func (c *Compiled) Source() string {
	return c.source
}

// Exec evaluates the conscription against a variable environment. vars is a
// map[string]interface{}, a VarFunc, or nil; execOpts may carry a
// DefaultLeft.
func (c *Compiled) Exec(vars interface{}, execOpts ...*ExecOptions) (interface{}, error) {
	e := &env{
		getVar: resolverFor(vars),
		opts:   c.opts,
		logger: c.logger,
	}
	for _, eo := range execOpts {
		if eo != nil && eo.DefaultLeft != nil {
			e.defaultLeft = eo.DefaultLeft
			e.hasDefaultLeft = true
		}
	}

	v, err := c.run(e)
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// Test evaluates the conscription and coerces the result to a boolean by
// truthiness: the predicate-style entry point.
func (c *Compiled) Test(vars interface{}, execOpts ...*ExecOptions) (bool, error) {
	v, err := c.Exec(vars, execOpts...)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// resolverFor adapts the caller's vars to the internal resolver form
func resolverFor(vars interface{}) VarFunc {
	switch v := vars.(type) {
	case nil:
		return nil
	case VarFunc:
		return v
	case func(string) (interface{}, bool):
		return v
	case map[string]interface{}:
		return func(name string) (interface{}, bool) {
			val, ok := v[name]
			return val, ok
		}
	case *Object:
		return func(name string) (interface{}, bool) {
			return v.Get(name)
		}
	default:
		return nil
	}
}
