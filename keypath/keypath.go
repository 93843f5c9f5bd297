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

// Package keypath implements the core key-path resolver.
package keypath

import (
	"sort"
	"strconv"
	"strings"
)

// Wildcard is the path segment that expands over every key or index at
// its level.
const Wildcard = "*"

type Resolver struct {
	// IndexSequences enables numeric path segments as indexes into
	// sequences.  The segment "2" resolves to the third element of a
	// sequence at that level.
	IndexSequences bool

	// SortKeys makes wildcard expansion walk object keys in sorted
	// order.
	//
	// Without this switch, a wildcard over an object would enumerate
	// children in Go's map iteration order, which is deliberately
	// randomized.  The resolver promises a stable, deterministic
	// order for multi-match results, so you almost certainly want
	// this switch on.
	SortKeys bool
}

var DefaultResolver = &Resolver{
	IndexSequences: true,
	SortKeys:       true,
}

// Resolve finds the value addressed by a dot-separated path in a
// JSON-like tree.
//
// The second return value reports whether anything was found.  A path
// that runs off the tree (a missing key, an out-of-range index, a
// scalar where a container was needed) finds nothing.
//
// A Wildcard segment expands over every child at its level.  Branches
// that find nothing are discarded.  Exactly one surviving match behaves
// like a direct lookup: the bare value is returned, not a one-element
// sequence.  Two or more matches are returned as a sequence in walk
// order.
//
// There is no escaping mechanism: a key containing a literal dot or
// asterisk cannot be addressed.
func (r *Resolver) Resolve(tree interface{}, path string) (interface{}, bool) {
	return r.resolve(tree, strings.Split(path, "."))
}

func (r *Resolver) resolve(at interface{}, segs []string) (interface{}, bool) {
	if len(segs) == 0 {
		return at, true
	}

	seg, rest := segs[0], segs[1:]

	if seg == Wildcard {
		acc := make([]interface{}, 0, 8)
		for _, kid := range r.children(at) {
			if v, found := r.resolve(kid, rest); found {
				acc = append(acc, v)
			}
		}
		switch len(acc) {
		case 0:
			return nil, false
		case 1:
			// A single survivor is unwrapped so that a wildcard
			// over a one-child container reads like a direct
			// lookup.
			return acc[0], true
		default:
			return acc, true
		}
	}

	switch vv := at.(type) {
	case map[string]interface{}:
		v, have := vv[seg]
		if !have {
			return nil, false
		}
		return r.resolve(v, rest)
	case []interface{}:
		if !r.IndexSequences {
			return nil, false
		}
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || len(vv) <= i {
			return nil, false
		}
		return r.resolve(vv[i], rest)
	default:
		return nil, false
	}
}

// children gives the values one level down, in walk order.
func (r *Resolver) children(at interface{}) []interface{} {
	switch vv := at.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		if r.SortKeys {
			sort.Strings(keys)
		}
		acc := make([]interface{}, len(keys))
		for i, k := range keys {
			acc[i] = vv[k]
		}
		return acc
	case []interface{}:
		return vv
	default:
		return nil
	}
}

func Resolve(tree interface{}, path string) (interface{}, bool) {
	return DefaultResolver.Resolve(tree, path)
}
