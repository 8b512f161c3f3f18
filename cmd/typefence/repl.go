package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tanema/typefence/src/check"
	"github.com/tanema/typefence/src/instrument"
	"github.com/tanema/typefence/src/object"
	"github.com/tanema/typefence/src/types"
)

// runREPL starts an interactive loop reading "value :: type" lines and
// reporting whether the value conforms.
func runREPL(tracer *instrument.Tracer) {
	printVersion()
	fmt.Fprint(os.Stderr, "Enter 'value :: type' to check, ctrl-c to quit.\n")
	rl, err := readline.New("> ")
	checkErr(err)
	for {
		src, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		tracer.Logf("check %q", strings.TrimSpace(src))
		if err := checkLine(src); err != nil {
			fmt.Fprintln(os.Stderr, paint("31", err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, paint("32", "ok"))
		}
	}
}

// checkLine splits a "value :: type" line, decodes the value as json, parses
// the type expression, and checks one against the other.
func checkLine(line string) error {
	parts := strings.SplitN(line, "::", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected 'value :: type' but found %q", strings.TrimSpace(line))
	}
	val, err := decodeValue(strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	t, err := types.Parse(strings.TrimSpace(parts[1]), nil)
	if err != nil {
		return err
	}
	return check.Check(val, t)
}

// decodeValue parses a json value into the checked value model. Integral
// numbers become ints so that int types match the way they would in code.
func decodeValue(src string) (any, error) {
	dec := json.NewDecoder(bytes.NewBufferString(src))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("could not parse value %q: %w", src, err)
	}
	return convertValue(raw), nil
}

func convertValue(raw any) any {
	switch val := raw.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convertValue(item)
		}
		return out
	case map[string]any:
		dict := object.NewDict()
		for _, key := range sortedKeys(val) {
			dict.Put(key, convertValue(val[key]))
		}
		return dict
	default:
		return raw
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
