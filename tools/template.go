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

// Package tools provides utilities for working with mapping templates:
// parsing, static analysis, and documentation rendering.
package tools

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/Comcast/remap/core"

	"github.com/jsccast/yaml"
)

// ParseTemplate parses a template given as JSON or YAML.
//
// We use https://github.com/jsccast/yaml because it returns
// map[string]interface{} (and not map[interface{}]interface{}), which
// is what the evaluator wants.
func ParseTemplate(src []byte) (interface{}, error) {
	var x interface{}
	trimmed := strings.TrimSpace(string(src))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(src, &x); err != nil {
			return nil, err
		}
		return x, nil
	}
	if err := yaml.Unmarshal(src, &x); err != nil {
		return nil, err
	}
	return core.Canonicalize(x)
}

// LoadTemplate reads and parses the template in the given file.
func LoadTemplate(filename string) (interface{}, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(src)
}

// ParseLibs parses a map from function name to ECMAScript source,
// given as JSON or YAML.
func ParseLibs(src []byte) (map[string]string, error) {
	var raw map[string]interface{}
	trimmed := strings.TrimSpace(string(src))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(src, &raw); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, err
	}
	acc := make(map[string]string, len(raw))
	for name, x := range raw {
		s, is := x.(string)
		if !is {
			return nil, &BadLib{Name: name}
		}
		acc[name] = s
	}
	return acc, nil
}

// LoadLibs reads and parses the function sources in the given file.
func LoadLibs(filename string) (map[string]string, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseLibs(src)
}

type BadLib struct {
	Name string
}

func (e *BadLib) Error() string {
	return `source for "` + e.Name + `" is not a string`
}
