// Command conscript evaluates conscriptions from the command line.
//
// With an expression argument it compiles, evaluates against the loaded
// variable environment and prints the result, exiting 0 when the result is
// truthy and 1 otherwise. With no argument on a terminal it starts an
// interactive REPL; with piped input it evaluates one conscription per line.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/lamansky/conscript"
)

const (
	historyFile = ".conscript_history"
	promptMain  = ">> "
)

func main() {
	os.Exit(run())
}

func run() int {
	varsPath := flag.String("vars", "", "YAML or JSON file holding the variable environment")
	defaultLeft := flag.String("default-left", "", "default-left value for omitted operands")
	safe := flag.Bool("safe", false, "enable safeCall, safeNav and safeOp")
	regex := flag.Bool("regex", false, "allow @pattern@flags regex literals")
	unknowns := flag.String("unknowns", "strings", "unknown identifier mode: strings, null or errors")
	debug := flag.Bool("debug", false, "enable diagnostic logging")
	flag.Parse()

	opts := &conscript.Options{
		AllowRegexLiterals: *regex,
		Safe:               *safe,
		UnknownsAre:        conscript.UnknownsMode(*unknowns),
		Debug:              *debug,
	}
	if *debug {
		opts.DebugOutput = func(source string, value interface{}) {
			fmt.Fprintf(os.Stderr, "debug %s = %s\n", source, conscript.FormatValue(value))
		}
	}

	vars, err := loadVars(*varsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var execOpts []*conscript.ExecOptions
	if *defaultLeft != "" {
		execOpts = append(execOpts, &conscript.ExecOptions{DefaultLeft: parseScalar(*defaultLeft)})
	}

	cs := conscript.New(opts)

	if flag.NArg() > 0 {
		source := strings.Join(flag.Args(), " ")
		ok, err := evalOne(cs, source, vars, execOpts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if ok {
			return 0
		}
		return 1
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return repl(cs, vars, execOpts)
	}
	return filterLines(cs, vars, execOpts)
}

// evalOne compiles and evaluates a single conscription, printing the result
func evalOne(cs *conscript.Conscript, source string, vars map[string]interface{}, execOpts []*conscript.ExecOptions) (bool, error) {
	compiled, err := cs.Compile(source, nil)
	if err != nil {
		return false, err
	}
	v, err := compiled.Exec(vars, execOpts...)
	if err != nil {
		return false, err
	}
	fmt.Println(conscript.FormatValue(v))
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return x != "", nil
	case float64:
		return x != 0 && !math.IsNaN(x), nil
	}
	return v != nil, nil
}

// repl runs the interactive loop
func repl(cs *conscript.Conscript, vars map[string]interface{}, execOpts []*conscript.ExecOptions) int {
	fmt.Println("Conscript REPL. Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		if strings.HasPrefix(code, ":") {
			if code == ":quit" || code == ":q" {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		if _, err := evalOne(cs, code, vars, execOpts); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		ln.AppendHistory(code)
	}
}

// filterLines evaluates each stdin line as its own conscription
func filterLines(cs *conscript.Conscript, vars map[string]interface{}, execOpts []*conscript.ExecOptions) int {
	scanner := bufio.NewScanner(os.Stdin)
	status := 0
	for scanner.Scan() {
		code := strings.TrimSpace(scanner.Text())
		if code == "" {
			continue
		}
		ok, err := evalOne(cs, code, vars, execOpts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 2
			continue
		}
		if !ok && status == 0 {
			status = 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return status
}

// loadVars reads the variable environment from a YAML (or JSON) file
func loadVars(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read vars file: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cannot parse vars file %s: %w", path, err)
	}
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		out[k] = normalizeYAML(v)
	}
	return out, nil
}

// normalizeYAML converts yaml.v3's map[string]interface{} trees into the
// value shapes conscript evaluates over
func normalizeYAML(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return v
	}
}

// parseScalar reads a flag value as a YAML scalar so numbers and booleans
// come through typed
func parseScalar(s string) interface{} {
	var v interface{}
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return normalizeYAML(v)
}
