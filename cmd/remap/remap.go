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

// Package main is a little command-line utility to run a mapping
// template against a source document.
//
//	remap -s '{"user":{"name":"homer"}}' -t '{"name":{"source":"user.name","transform":{"toUpper":[]}}}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/Comcast/remap/core"
	"github.com/Comcast/remap/funcs"
	"github.com/Comcast/remap/funcs/ecmascript"
	"github.com/Comcast/remap/tools"
	"github.com/Comcast/remap/util"
)

func main() {
	var (
		sourceJS     = flag.String("s", "", "source document in JSON")
		sourceFile   = flag.String("sf", "", "filename for source document (JSON or YAML)")
		templateJS   = flag.String("t", "", "template in JSON")
		templateFile = flag.String("tf", "", "filename for template (JSON or YAML)")
		libsFile     = flag.String("libs", "", "filename for ECMAScript function sources (JSON or YAML)")

		analyze = flag.Bool("analyze", false, "analyze the template instead of evaluating it")
		html    = flag.Bool("html", false, "render the template as an HTML page instead of evaluating it")
		pretty  = flag.Bool("pretty", false, "indent the output")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")

		verbose = flag.Bool("v", false, "verbosity")

		source   interface{}
		template interface{}
	)

	flag.Parse()

	util.Logging = *verbose

	if *templateJS != "" {
		if err := json.Unmarshal([]byte(*templateJS), &template); err != nil {
			panic(err)
		}
	}
	if *templateFile != "" {
		var err error
		if template, err = tools.LoadTemplate(*templateFile); err != nil {
			panic(err)
		}
	}
	if template == nil {
		fmt.Fprintf(os.Stderr, "need a template (-t or -tf)\n")
		os.Exit(1)
	}

	fs := funcs.Standard()
	if *libsFile != "" {
		srcs, err := tools.LoadLibs(*libsFile)
		if err != nil {
			panic(err)
		}
		compiled, err := ecmascript.NewInterpreter().CompileFuncs(srcs)
		if err != nil {
			panic(err)
		}
		for name, f := range compiled {
			fs[name] = f
		}
	}

	if *analyze {
		s, err := tools.Analyze(template, fs).YAML()
		if err != nil {
			panic(err)
		}
		fmt.Print(s)
		return
	}

	if *html {
		name := *templateFile
		if name == "" {
			name = "template"
		}
		if err := tools.RenderTemplatePage(name, template, os.Stdout, nil); err != nil {
			panic(err)
		}
		return
	}

	if *sourceJS != "" {
		if err := json.Unmarshal([]byte(*sourceJS), &source); err != nil {
			panic(err)
		}
	}
	if *sourceFile != "" {
		var err error
		if source, err = tools.LoadTemplate(*sourceFile); err != nil {
			panic(err)
		}
	}
	if source == nil {
		fmt.Fprintf(os.Stderr, "need a source document (-s or -sf)\n")
		os.Exit(1)
	}

	ctx := context.Background()

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, err := core.Map(ctx, source, template, fs, nil); err != nil {
				panic(err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Map, %d mean bytes allocated per Map", *bench, meanNanos, allocated)
	}

	out, err := core.Map(ctx, source, template, fs, nil)
	if err != nil {
		panic(err)
	}

	var js []byte
	if *pretty {
		js, err = json.MarshalIndent(core.Scrub(out), "", "  ")
	} else {
		js, err = json.Marshal(core.Scrub(out))
	}
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s\n", js)
}
