/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package funcs provides a standard table of transform and condition
// functions.
//
// Unless a call uses the '@' prefix, the first argument a function sees
// is the node's current value.  These builtins mostly follow that
// convention: "add" adds its remaining arguments to its first, "eq"
// compares its first argument to its second, and so on.
package funcs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Comcast/remap/core"
	"github.com/Comcast/remap/keypath"
)

// Standard returns a new table of the builtin functions.
//
// The table is yours: add to it or remove from it freely.
func Standard() core.FuncMap {
	return core.FuncMap{
		"toString":  toString,
		"toUpper":   stringFunc("toUpper", strings.ToUpper),
		"toLower":   stringFunc("toLower", strings.ToLower),
		"trim":      stringFunc("trim", strings.TrimSpace),
		"concat":    concat,
		"join":      join,
		"split":     split,
		"replace":   replace,
		"add":       add,
		"multiply":  multiply,
		"count":     count,
		"first":     first,
		"last":      last,
		"get":       get,
		"coalesce":  coalesce,
		"literal":   literal,
		"eq":        eq,
		"lt":        numCompare("lt", func(a, b float64) bool { return a < b }),
		"gt":        numCompare("gt", func(a, b float64) bool { return a > b }),
		"exists":    exists,
		"nonEmpty":  nonEmpty,
		"isString":  isType("isString", func(x interface{}) bool { _, is := x.(string); return is }),
		"isNumber":  isType("isNumber", func(x interface{}) bool { _, is := number(x); return is }),
		"isBoolean": isType("isBoolean", func(x interface{}) bool { _, is := x.(bool); return is }),
	}
}

// number coerces the numeric types a JSON-ish tree might carry into a
// float64.
func number(x interface{}) (float64, bool) {
	switch vv := x.(type) {
	case float64:
		return vv, true
	case float32:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case int32:
		return float64(vv), true
	case int:
		return float64(vv), true
	default:
		return 0, false
	}
}

func str(x interface{}) (string, bool) {
	s, is := x.(string)
	return s, is
}

func need(args []interface{}, n int, name string) error {
	if len(args) < n {
		return fmt.Errorf("%s: need at least %d args, got %d", name, n, len(args))
	}
	return nil
}

func toString(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "toString"); err != nil {
		return nil, err
	}
	switch vv := args[0].(type) {
	case string:
		return vv, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprintf("%v", vv), nil
	}
}

func stringFunc(name string, f func(string) string) core.Func {
	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		if err := need(args, 1, name); err != nil {
			return nil, err
		}
		s, is := str(args[0])
		if !is {
			return nil, fmt.Errorf("%s: not a string", name)
		}
		return f(s), nil
	}
}

func concat(ctx context.Context, args ...interface{}) (interface{}, error) {
	var b strings.Builder
	for _, a := range args {
		if s, is := str(a); is {
			b.WriteString(s)
			continue
		}
		fmt.Fprintf(&b, "%v", a)
	}
	return b.String(), nil
}

func join(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "join"); err != nil {
		return nil, err
	}
	xs, is := args[0].([]interface{})
	if !is {
		return nil, errors.New("join: not a sequence")
	}
	sep := ","
	if 1 < len(args) {
		if s, is := str(args[1]); is {
			sep = s
		}
	}
	acc := make([]string, len(xs))
	for i, x := range xs {
		if s, is := str(x); is {
			acc[i] = s
		} else {
			acc[i] = fmt.Sprintf("%v", x)
		}
	}
	return strings.Join(acc, sep), nil
}

func split(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 2, "split"); err != nil {
		return nil, err
	}
	s, is := str(args[0])
	if !is {
		return nil, errors.New("split: not a string")
	}
	sep, is := str(args[1])
	if !is {
		return nil, errors.New("split: separator not a string")
	}
	parts := strings.Split(s, sep)
	acc := make([]interface{}, len(parts))
	for i, p := range parts {
		acc[i] = p
	}
	return acc, nil
}

func replace(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 3, "replace"); err != nil {
		return nil, err
	}
	s, sis := str(args[0])
	old, ois := str(args[1])
	novel, nis := str(args[2])
	if !sis || !ois || !nis {
		return nil, errors.New("replace: args must be strings")
	}
	return strings.ReplaceAll(s, old, novel), nil
}

func add(ctx context.Context, args ...interface{}) (interface{}, error) {
	acc := 0.0
	for _, a := range args {
		n, is := number(a)
		if !is {
			return nil, fmt.Errorf("add: %v is not a number", a)
		}
		acc += n
	}
	return acc, nil
}

func multiply(ctx context.Context, args ...interface{}) (interface{}, error) {
	acc := 1.0
	for _, a := range args {
		n, is := number(a)
		if !is {
			return nil, fmt.Errorf("multiply: %v is not a number", a)
		}
		acc *= n
	}
	return acc, nil
}

func count(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "count"); err != nil {
		return nil, err
	}
	switch vv := args[0].(type) {
	case []interface{}:
		return float64(len(vv)), nil
	case map[string]interface{}:
		return float64(len(vv)), nil
	case string:
		return float64(len(vv)), nil
	default:
		return nil, fmt.Errorf("count: can't count a %T", vv)
	}
}

func first(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "first"); err != nil {
		return nil, err
	}
	xs, is := args[0].([]interface{})
	if !is || len(xs) == 0 {
		return nil, errors.New("first: not a non-empty sequence")
	}
	return xs[0], nil
}

func last(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "last"); err != nil {
		return nil, err
	}
	xs, is := args[0].([]interface{})
	if !is || len(xs) == 0 {
		return nil, errors.New("last: not a non-empty sequence")
	}
	return xs[len(xs)-1], nil
}

// get resolves a key path within the current value, which is handy for
// digging into a value that an earlier transform produced.
func get(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 2, "get"); err != nil {
		return nil, err
	}
	path, is := str(args[1])
	if !is {
		return nil, errors.New("get: path not a string")
	}
	v, found := keypath.Resolve(args[0], path)
	if !found {
		return nil, fmt.Errorf(`get: nothing at "%s"`, path)
	}
	return v, nil
}

// coalesce returns its first argument that is neither absent nor nil.
func coalesce(ctx context.Context, args ...interface{}) (interface{}, error) {
	for _, a := range args {
		if core.IsAbsent(a) || a == nil {
			continue
		}
		return a, nil
	}
	return nil, errors.New("coalesce: nothing usable")
}

// literal just returns its first argument.  Mostly useful with '@' to
// replace the current value outright.
func literal(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "literal"); err != nil {
		return nil, err
	}
	return args[0], nil
}

func eq(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 2, "eq"); err != nil {
		return nil, err
	}
	a, b := args[0], args[1]
	if an, is := number(a); is {
		if bn, is := number(b); is {
			return an == bn, nil
		}
		return false, nil
	}
	return reflect.DeepEqual(a, b), nil
}

func numCompare(name string, f func(a, b float64) bool) core.Func {
	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		if err := need(args, 2, name); err != nil {
			return nil, err
		}
		a, ais := number(args[0])
		b, bis := number(args[1])
		if !ais || !bis {
			return nil, fmt.Errorf("%s: not numbers", name)
		}
		return f(a, b), nil
	}
}

// exists is true when the current value actually resolved: not Absent
// and not nil.
func exists(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "exists"); err != nil {
		return nil, err
	}
	return !core.IsAbsent(args[0]) && args[0] != nil, nil
}

func nonEmpty(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := need(args, 1, "nonEmpty"); err != nil {
		return nil, err
	}
	switch vv := args[0].(type) {
	case string:
		return vv != "", nil
	case []interface{}:
		return 0 < len(vv), nil
	case map[string]interface{}:
		return 0 < len(vv), nil
	default:
		return false, nil
	}
}

func isType(name string, f func(interface{}) bool) core.Func {
	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		if err := need(args, 1, name); err != nil {
			return nil, err
		}
		return f(args[0]), nil
	}
}
