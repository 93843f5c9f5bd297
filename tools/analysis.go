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

package tools

import (
	"fmt"
	"sort"

	"github.com/Comcast/remap/core"

	"gopkg.in/yaml.v2"
)

// TemplateAnalysis is a static summary of a mapping template.
type TemplateAnalysis struct {
	// NodeCount is the number of mapping nodes in the template.
	NodeCount int `yaml:"nodeCount"`

	// Paths are the source paths the template references.
	Paths []string `yaml:"paths,omitempty"`

	// Functions are the function names the template calls.
	Functions []string `yaml:"functions,omitempty"`

	// UnknownFunctions are called functions missing from the
	// function table given to Analyze (when one was given).
	UnknownFunctions []string `yaml:"unknownFunctions,omitempty"`

	// Defaults counts the mapping nodes that carry a default.
	Defaults int `yaml:"defaults"`

	// Conditions counts the condition calls.
	Conditions int `yaml:"conditions"`

	// Transforms counts the transform calls (transformEach
	// included).
	Transforms int `yaml:"transforms"`

	// Errors are problems that would surface at evaluation time:
	// malformed calls, mixed transform groups.
	Errors []string `yaml:"errors,omitempty"`
}

// Analyze walks the template and summarizes what it would do.
//
// funcs is optional.  When given, called functions that aren't in the
// table are reported in UnknownFunctions.
func Analyze(template interface{}, funcs core.FuncMap) *TemplateAnalysis {
	a := &TemplateAnalysis{}
	paths, functions, unknown := map[string]bool{}, map[string]bool{}, map[string]bool{}

	var calls func(spec interface{}, counter *int)
	calls = func(spec interface{}, counter *int) {
		xs, is := spec.([]interface{})
		if !is {
			xs = []interface{}{spec}
		}
		for _, x := range xs {
			c, err := core.ParseCall(x)
			if err != nil {
				a.Errors = append(a.Errors, err.Error())
				continue
			}
			*counter++
			functions[c.Name] = true
			if funcs != nil {
				if _, have := funcs[c.Name]; !have {
					unknown[c.Name] = true
				}
			}
		}
	}

	var walk func(x interface{})

	node := func(m map[string]interface{}) {
		a.NodeCount++

		if p, have := m["source"]; have {
			if s, is := p.(string); is {
				paths[s] = true
			} else {
				a.Errors = append(a.Errors, fmt.Sprintf("source %v is not a string", p))
			}
		}
		if ps, have := m["sources"]; have {
			ss, is := ps.([]interface{})
			if !is {
				a.Errors = append(a.Errors, fmt.Sprintf("sources %v is not a sequence", ps))
			}
			for _, p := range ss {
				if s, is := p.(string); is {
					paths[s] = true
				} else {
					a.Errors = append(a.Errors, fmt.Sprintf("source %v is not a string", p))
				}
			}
		}

		for _, key := range []string{"condition", "conditions"} {
			if spec, have := m[key]; have {
				calls(spec, &a.Conditions)
			}
		}

		for _, key := range []string{"transform", "transforms"} {
			spec, have := m[key]
			if !have {
				continue
			}
			if xs, is := spec.([]interface{}); is {
				conditional := groupShape(xs)
				if conditional == shapeMixed {
					a.Errors = append(a.Errors,
						(&core.MixedTransformSpec{Spec: xs}).Error())
					continue
				}
				if conditional == shapeConditional {
					for _, x := range xs {
						g, _ := x.(map[string]interface{})
						calls(g["condition"], &a.Conditions)
						calls(g["transform"], &a.Transforms)
					}
					continue
				}
			}
			calls(spec, &a.Transforms)
		}

		if spec, have := m["transformEach"]; have {
			calls(spec, &a.Transforms)
		}

		if d, have := m["default"]; have {
			a.Defaults++
			walk(d)
		}

		// Arguments can themselves be mapping nodes.
		for _, key := range []string{"condition", "conditions", "transform", "transforms", "transformEach"} {
			if spec, have := m[key]; have {
				walkArgs(spec, walk)
			}
		}
	}

	walk = func(x interface{}) {
		switch vv := x.(type) {
		case map[string]interface{}:
			if isNode(vv) {
				node(vv)
				return
			}
			for _, v := range vv {
				walk(v)
			}
		case []interface{}:
			for _, v := range vv {
				walk(v)
			}
		}
	}

	walk(template)

	a.Paths = sorted(paths)
	a.Functions = sorted(functions)
	a.UnknownFunctions = sorted(unknown)

	return a
}

// YAML renders the analysis as YAML.
func (a *TemplateAnalysis) YAML() (string, error) {
	bs, err := yaml.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func isNode(m map[string]interface{}) bool {
	_, have := m["source"]
	if !have {
		_, have = m["sources"]
	}
	return have
}

const (
	shapePlain = iota
	shapeConditional
	shapeMixed
)

func groupShape(xs []interface{}) int {
	conditional, plain := 0, 0
	for _, x := range xs {
		if m, is := x.(map[string]interface{}); is {
			if _, have := m["condition"]; have {
				if _, have = m["transform"]; have {
					conditional++
					continue
				}
			}
		}
		plain++
	}
	switch {
	case conditional == 0:
		return shapePlain
	case plain == 0:
		return shapeConditional
	default:
		return shapeMixed
	}
}

// walkArgs descends into call arguments looking for nested mapping
// nodes.
func walkArgs(spec interface{}, walk func(interface{})) {
	xs, is := spec.([]interface{})
	if !is {
		xs = []interface{}{spec}
	}
	for _, x := range xs {
		m, is := x.(map[string]interface{})
		if !is {
			continue
		}
		for _, args := range m {
			walk(args)
		}
	}
}

func sorted(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	acc := make([]string, 0, len(m))
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}
