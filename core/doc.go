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

// Package core evaluates mapping templates.
//
// A mapping template is a JSON-like tree.  Any object in it that
// carries a "source" (or "sources") property is a mapping node, and the
// evaluator replaces that node with a value pulled from the source
// document via package keypath.  Everything else in the template is
// copied structurally into the output.
//
// A mapping node can gate its resolution on conditions, rewrite the
// resolved value through transform chains, and fall back to a default
// when nothing resolves.  Conditions and transforms are function calls
// into a caller-supplied FuncMap; a call is an object with exactly one
// property, the function name, mapped to the argument list.  The name
// can be prefixed with '!' (negate a boolean result) and/or '@' (don't
// prepend the current value to the arguments).
//
// The evaluator walks the template in post order, so a mapping node
// nested inside another node's condition, transform, or default clause
// is a concrete value before the outer node's calls run.
//
// Failed resolution is not an error.  It is the value Absent, which is
// distinct from nil and triggers the node's default.  Failing user
// functions are likewise not errors at this boundary: a failing
// condition call makes its conjunction false, and a failing transform
// call makes the whole chain's result Absent.  Only caller misuse (bad
// top-level arguments, a transform sequence that mixes conditional and
// unconditional entries) makes Map return an error.
package core
