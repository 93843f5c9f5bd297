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

package core

import (
	"context"

	"github.com/Comcast/remap/keypath"
)

// Absent marks a resolution that found nothing.
//
// Absent is not nil: a source key that exists with a null value
// resolves to nil, and a source key that doesn't exist resolves to
// Absent.  All fallback logic here is defined in terms of Absent, never
// in terms of nil.
var Absent = absent{}

type absent struct{}

func (absent) String() string {
	return "absent"
}

// IsAbsent reports whether x is the Absent marker.
func IsAbsent(x interface{}) bool {
	_, is := x.(absent)
	return is
}

// PreProcessor rewrites a resolved source value before transforms run.
type PreProcessor func(x interface{}) interface{}

// Mapper evaluates mapping templates.
//
// The zero value is usable: an empty function table, no preprocessor,
// and the default key-path resolver.  A Mapper holds no state across
// Map calls and never mutates its inputs.
type Mapper struct {
	// Funcs is the function table for condition and transform calls.
	Funcs FuncMap

	// PreProcess, if given, is applied to resolved source values per
	// the rules in preprocess.
	PreProcess PreProcessor

	// Resolver resolves key paths.  Defaults to
	// keypath.DefaultResolver.
	Resolver *keypath.Resolver
}

// Map produces a new document from the source document as directed by
// the template.
//
// Both arguments must be structured values (objects or sequences).  The
// output can contain Absent where a mapping node resolved to nothing
// and had no default; see Scrub.
//
// Map returns an error only for caller misuse.  Failing user functions
// never make Map fail.
func (m *Mapper) Map(ctx context.Context, source, template interface{}) (interface{}, error) {
	if !structured(source) {
		return nil, NoSourceObject
	}
	if !structured(template) {
		return nil, NoMapping
	}
	return m.expand(ctx, source, template)
}

// Map evaluates the template with a throwaway Mapper.  A nil funcs is
// an empty table.
func Map(ctx context.Context, source, template interface{}, funcs FuncMap, pre PreProcessor) (interface{}, error) {
	m := &Mapper{
		Funcs:      funcs,
		PreProcess: pre,
	}
	return m.Map(ctx, source, template)
}

func structured(x interface{}) bool {
	switch x.(type) {
	case map[string]interface{}, []interface{}:
		return true
	}
	return false
}

// directiveKeys lists the properties that make a template object a
// mapping node.
var directiveKeys = []string{"source", "sources"}

// isNode reports whether the template object carries a source-path
// directive.
func isNode(m map[string]interface{}) bool {
	_, have := directive(m, directiveKeys...)
	return have
}

// directive finds the first of the given (synonymous) properties.
func directive(node map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, have := node[k]; have {
			return v, true
		}
	}
	return nil, false
}

// expand rewrites the template bottom-up.
//
// Children are expanded before their parents, so any mapping node
// nested inside another node's condition, transform, or default clause
// is already a concrete value when the outer node's calls consume it.
// The reference for this engine got the same net order with two rewrite
// passes; a single post-order recursion needs no second pass.
func (m *Mapper) expand(ctx context.Context, source, t interface{}) (interface{}, error) {
	switch vv := t.(type) {
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			x, err := m.expand(ctx, source, v)
			if err != nil {
				return nil, err
			}
			acc[k] = x
		}
		if isNode(acc) {
			return m.resolveNode(ctx, source, acc)
		}
		return acc, nil
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, v := range vv {
			x, err := m.expand(ctx, source, v)
			if err != nil {
				return nil, err
			}
			acc[i] = x
		}
		return acc, nil
	default:
		return t, nil
	}
}

// resolveNode turns one mapping node into its value.
//
// The order is fixed: resolve sources, check conditions (false means
// default, with nothing else run), preprocess, transform, transformEach,
// and finally default if the value ended up Absent.
func (m *Mapper) resolveNode(ctx context.Context, source interface{}, node map[string]interface{}) (interface{}, error) {
	sources, multi := m.resolveSources(source, node)

	if cond, have := directive(node, "condition", "conditions"); have {
		if !m.CheckCondition(ctx, sources, cond) {
			return m.nodeDefault(node), nil
		}
	}

	current := m.preprocess(sources, multi)

	if spec, have := directive(node, "transform", "transforms"); have && !IsAbsent(current) {
		chain, err := m.pickTransform(ctx, sources, spec)
		if err != nil {
			return nil, err
		}
		if chain != nil {
			current = m.TransformValue(ctx, current, chain)
		}
	}

	if spec, have := node["transformEach"]; have {
		if xs, is := current.([]interface{}); is {
			chain, err := m.pickTransform(ctx, sources, spec)
			if err != nil {
				return nil, err
			}
			if chain != nil {
				acc := make([]interface{}, len(xs))
				for i, x := range xs {
					acc[i] = m.TransformValue(ctx, x, chain)
				}
				current = acc
			}
		}
	}

	if IsAbsent(current) {
		return m.nodeDefault(node), nil
	}
	return current, nil
}

// nodeDefault gives the node's default, which expand has already
// resolved if it was itself a mapping node.
func (m *Mapper) nodeDefault(node map[string]interface{}) interface{} {
	if d, have := node["default"]; have {
		return d
	}
	return Absent
}

// resolveSources resolves the node's path spec.  The second return
// value reports the multi-source case: a sequence of paths resolved
// independently.
//
// Multi-source results keep index parity with the path list, with
// Absent in the slots that found nothing.  Only when every slot is
// Absent does the whole resolution collapse to Absent.
func (m *Mapper) resolveSources(source interface{}, node map[string]interface{}) (interface{}, bool) {
	spec, _ := directive(node, directiveKeys...)

	switch vv := spec.(type) {
	case string:
		return m.resolvePath(source, vv), false
	case []interface{}:
		acc := make([]interface{}, len(vv))
		allAbsent := true
		for i, x := range vv {
			p, is := x.(string)
			if !is {
				acc[i] = Absent
				continue
			}
			acc[i] = m.resolvePath(source, p)
			if !IsAbsent(acc[i]) {
				allAbsent = false
			}
		}
		if allAbsent {
			return Absent, true
		}
		return acc, true
	default:
		return Absent, false
	}
}

func (m *Mapper) resolvePath(source interface{}, path string) interface{} {
	r := m.Resolver
	if r == nil {
		r = keypath.DefaultResolver
	}
	v, found := r.Resolve(source, path)
	if !found {
		return Absent
	}
	return v
}

// preprocess applies PreProcess.
//
// Across a multi-source list each slot is preprocessed independently,
// with Absent slots passed through untouched.  Any other value --
// including a sequence produced by a single wildcard path -- goes to
// PreProcess whole.  Only the outer multi-source list is iterated
// element-wise.
func (m *Mapper) preprocess(x interface{}, multi bool) interface{} {
	if m.PreProcess == nil || IsAbsent(x) {
		return x
	}
	if multi {
		xs := x.([]interface{})
		acc := make([]interface{}, len(xs))
		for i, v := range xs {
			if IsAbsent(v) {
				acc[i] = v
				continue
			}
			acc[i] = m.PreProcess(v)
		}
		return acc
	}
	return m.PreProcess(x)
}

// Scrub returns a copy of x with Absent removed: object properties
// whose value is Absent are dropped, and Absent sequence elements
// become nil.  What surviving absence should mean is the caller's
// business; this is one common answer, and the commands here use it
// before marshaling output.
func Scrub(x interface{}) interface{} {
	switch vv := x.(type) {
	case absent:
		return nil
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			if IsAbsent(v) {
				continue
			}
			acc[k] = Scrub(v)
		}
		return acc
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, v := range vv {
			acc[i] = Scrub(v)
		}
		return acc
	default:
		return x
	}
}
