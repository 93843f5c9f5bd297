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

// Package ecmascript compiles ECMAScript sources into transform and
// condition functions.
package ecmascript

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/Comcast/remap/core"
	"github.com/Comcast/remap/keypath"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by a compiled function if its execution
	// is interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// Interpreter compiles ECMAScript 5.1+ function bodies via Goja.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Testing is used to expose or hide some runtime capabilities.
	Testing bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// CompileFunc compiles the source into a function suitable for a
// core.FuncMap.
//
// The code runs with its environment at _ and should return the call's
// result.  A thrown exception is the call's error, which the evaluator
// absorbs at the condition/transform boundary as usual.
//
// The following properties are available from the runtime at _.
//
// This one is the most important:
//
//	args: the call's arguments (current value first unless '@').
//	  Absent arguments appear as null.
//
// Some useful utilities:
//
//	randstr(): generate a random string.
//	esc(s): URL query-escape the given string.
//	cronNext(s): a string (RFC3339Nano) for the next time matching
//	  the given crontab expression.
//	resolve(tree, path): run the key-path resolver; null when
//	  nothing's found.
//	log(x): log the given value as JSON.
//
// For testing only (requires the Testing flag):
//
//	sleep(ms): sleep for the given number of milliseconds.
func (i *Interpreter) CompileFunc(name, src string) (core.Func, error) {
	p, err := goja.Compile(name, wrapSrc(src), true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + src)
	}

	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return i.run(ctx, p, args)
	}, nil
}

// CompileFuncs compiles a map from function name to source into a
// function table.
func (i *Interpreter) CompileFuncs(srcs map[string]string) (core.FuncMap, error) {
	acc := make(core.FuncMap, len(srcs))
	for name, src := range srcs {
		f, err := i.CompileFunc(name, src)
		if err != nil {
			return nil, fmt.Errorf(`function "%s": %w`, name, err)
		}
		acc[name] = f
	}
	return acc, nil
}

func (i *Interpreter) run(ctx context.Context, p *goja.Program, args []interface{}) (interface{}, error) {
	// Scrub the args so that Absent crosses into the runtime as null
	// rather than as an opaque struct.
	scrubbed := make([]interface{}, len(args))
	for j, a := range args {
		scrubbed[j] = core.Scrub(a)
	}

	env := map[string]interface{}{
		"args": scrubbed,
	}

	o := goja.New()
	o.Set("_", env)

	env["randstr"] = func() interface{} {
		return core.Gensym(32)
	}

	env["esc"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		s, is := x.(string)
		if !is {
			protest(o, "not a string")
		}
		return url.QueryEscape(s)
	}

	env["cronNext"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["resolve"] = func(tree, path goja.Value) interface{} {
		p, is := path.Export().(string)
		if !is {
			protest(o, "path not a string")
		}
		x, err := core.Canonicalize(tree.Export())
		if err != nil {
			protest(o, err.Error())
		}
		v, found := keypath.Resolve(x, p)
		if !found {
			return nil
		}
		return v
	}

	env["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		log.Printf("ecmascript.log %v", x)
		return x
	}

	if i.Testing {
		env["sleep"] = func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If run calls cancel() after RunProgram returns, then
		// we'll never see this InterruptedMessage, which is
		// actually the behavior we want.  In that case, we weren't
		// actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	return core.Canonicalize(v.Export())
}
