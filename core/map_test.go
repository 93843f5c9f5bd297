package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	. "github.com/Comcast/remap/util/testutil"
)

func testFuncs() FuncMap {
	return FuncMap{
		"add": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			acc := 0.0
			for _, a := range args {
				n, is := a.(float64)
				if !is {
					return nil, errors.New("add: not a number")
				}
				acc += n
			}
			return acc, nil
		},
		"fail": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return nil, errors.New("fail: on purpose")
		},
		"explode": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			panic("explode: on purpose")
		},
		"returnTrue": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return true, nil
		},
		"returnFalse": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return false, nil
		},
		"isNumber": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			_, is := args[0].(float64)
			return is, nil
		},
		"argCount": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return float64(len(args)), nil
		},
		"wrap": func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return map[string]interface{}{"v": args[0]}, nil
		},
	}
}

func testMap(t *testing.T, source, template string) interface{} {
	t.Helper()
	out, err := Map(context.Background(), Dwimjs(source), Dwimjs(template), testFuncs(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func wants(t *testing.T, got interface{}, want string) {
	t.Helper()
	if !reflect.DeepEqual(got, Dwimjs(want)) {
		t.Fatalf("got %s wanted %s", JS(got), want)
	}
}

func TestMapDirect(t *testing.T) {
	got := testMap(t, `{"a":{"b":2}}`, `{"x":{"source":"a.b"}}`)
	wants(t, got, `{"x":2}`)
}

func TestMapWildcard(t *testing.T) {
	got := testMap(t, `{"list":[{"n":1},{"n":2},{"n":3}]}`, `{"x":{"source":"list.*.n"}}`)
	wants(t, got, `{"x":[1,2,3]}`)
}

func TestMapDefault(t *testing.T) {
	got := testMap(t, `{"a":1}`, `{"x":{"source":"missing","default":"d"}}`)
	wants(t, got, `{"x":"d"}`)
}

func TestMapDefaultIsNode(t *testing.T) {
	got := testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"missing","default":{"source":"a.b"}}}`)
	wants(t, got, `{"x":2}`)
}

func TestMapNoDefault(t *testing.T) {
	out := testMap(t, `{"a":1}`, `{"x":{"source":"missing"}}`)
	m := out.(map[string]interface{})
	if !IsAbsent(m["x"]) {
		t.Fatalf("wanted Absent, got %s", JS(m["x"]))
	}
}

func TestMapStructural(t *testing.T) {
	got := testMap(t, `{"a":{"b":2}}`,
		`{"keep":"me","n":7,"deep":{"x":{"source":"a.b"},"y":[1,{"source":"a.b"}]}}`)
	wants(t, got, `{"keep":"me","n":7,"deep":{"x":2,"y":[1,2]}}`)
}

func TestMapNullIsNotAbsent(t *testing.T) {
	got := testMap(t, `{"a":{"b":null}}`, `{"x":{"source":"a.b","default":"d"}}`)
	wants(t, got, `{"x":null}`)
}

func TestMapPluralSynonyms(t *testing.T) {
	got := testMap(t, `{"a":{"b":2}}`,
		`{"x":{"sources":"a.b","conditions":{"isNumber":[]},"transforms":{"add":[1]}}}`)
	wants(t, got, `{"x":3}`)
}

func TestConditionFalse(t *testing.T) {
	// A false condition returns the default immediately; the
	// transform never runs, so its failure can't matter.
	got := testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","condition":{"returnFalse":[]},"transform":{"fail":[]},"default":"d"}}`)
	wants(t, got, `{"x":"d"}`)
}

func TestConditionConjunction(t *testing.T) {
	got := testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","condition":[{"returnTrue":[]},{"!returnFalse":[]},{"isNumber":[]}]}}`)
	wants(t, got, `{"x":2}`)

	got = testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","condition":[{"returnTrue":[]},{"returnFalse":[]}],"default":"d"}}`)
	wants(t, got, `{"x":"d"}`)
}

func TestConditionThrowIsFalse(t *testing.T) {
	for _, bad := range []string{"fail", "explode", "nosuchfunction"} {
		got := testMap(t, `{"a":{"b":2}}`,
			`{"x":{"source":"a.b","condition":{"`+bad+`":[]},"default":"d"}}`)
		wants(t, got, `{"x":"d"}`)
	}
}

func TestInvertNonBoolIsNoop(t *testing.T) {
	got := testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","transform":{"!add":[1]}}}`)
	wants(t, got, `{"x":3}`)
}

func TestBarePrefix(t *testing.T) {
	// Without '@' the current value is prepended: 1 + 3 args = 4.
	got := testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","transform":{"argCount":[1,2,3]}}}`)
	wants(t, got, `{"x":4}`)

	got = testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","transform":{"@argCount":[1,2,3]}}}`)
	wants(t, got, `{"x":3}`)
}

func TestPrefixOrderInsensitive(t *testing.T) {
	for _, name := range []string{"@!returnFalse", "!@returnFalse"} {
		got := testMap(t, `{"a":{"b":2}}`,
			`{"x":{"source":"a.b","condition":{"`+name+`":[]}}}`)
		wants(t, got, `{"x":2}`)
	}
}

func TestTransformChain(t *testing.T) {
	got := testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","transform":[{"add":[1]},{"add":[3]}]}}`)
	wants(t, got, `{"x":6}`)
}

func TestTransformChainFailure(t *testing.T) {
	// An internal failure makes the whole chain absent, not a
	// partial result.
	got := testMap(t, `{"a":{"b":1}}`,
		`{"x":{"source":"a.b","transform":[{"add":[1]},{"fail":[]},{"add":[3]}],"default":"d"}}`)
	wants(t, got, `{"x":"d"}`)

	out := testMap(t, `{"a":{"b":1}}`,
		`{"x":{"source":"a.b","transform":[{"add":[1]},{"explode":[]},{"add":[3]}]}}`)
	m := out.(map[string]interface{})
	if !IsAbsent(m["x"]) {
		t.Fatalf("wanted Absent, got %s", JS(m["x"]))
	}
}

func TestMultiSource(t *testing.T) {
	out := testMap(t, `{"a":1,"b":2}`,
		`{"x":{"source":["a","missing","b"]}}`)
	xs := out.(map[string]interface{})["x"].([]interface{})
	if len(xs) != 3 {
		t.Fatal(JS(out))
	}
	if xs[0] != 1.0 || !IsAbsent(xs[1]) || xs[2] != 2.0 {
		t.Fatalf("index parity lost: %s", JS(out))
	}
}

func TestMultiSourceAllAbsent(t *testing.T) {
	got := testMap(t, `{"a":1}`,
		`{"x":{"source":["nope","missing"],"default":"d"}}`)
	wants(t, got, `{"x":"d"}`)
}

func TestNestedParameterNodes(t *testing.T) {
	// Mapping nodes inside transform arguments are concrete values
	// before the outer node's calls run.
	got := testMap(t, `{"a":{"b":2},"inc":5}`,
		`{"x":{"source":"a.b","transform":{"add":[{"source":"inc"}]}}}`)
	wants(t, got, `{"x":7}`)

	got = testMap(t, `{"a":{"b":2},"flag":7}`,
		`{"x":{"source":"a.b","condition":{"@isNumber":[{"source":"flag"}]}}}`)
	wants(t, got, `{"x":2}`)
}

func TestConditionalTransformGroups(t *testing.T) {
	template := `{"x":{"source":"n","transform":[
		{"condition":{"@isNumber":["nope"]},"transform":{"add":[10]}},
		{"condition":{"isNumber":[]},"transform":{"add":[100]}},
		{"condition":{"returnTrue":[]},"transform":{"add":[1000]}}]}}`
	got := testMap(t, `{"n":1}`, template)
	wants(t, got, `{"x":101}`)
}

func TestConditionalTransformNoWinner(t *testing.T) {
	// No satisfied group means no transform at all.
	got := testMap(t, `{"n":1}`,
		`{"x":{"source":"n","transform":[
			{"condition":{"returnFalse":[]},"transform":{"add":[10]}}]}}`)
	wants(t, got, `{"x":1}`)
}

func TestMixedTransformSpec(t *testing.T) {
	_, err := Map(context.Background(), Dwimjs(`{"n":1}`),
		Dwimjs(`{"x":{"source":"n","transform":[
			{"add":[1]},
			{"condition":{"returnTrue":[]},"transform":{"add":[10]}}]}}`),
		testFuncs(), nil)
	if err == nil {
		t.Fatal("expected a configuration error")
	}
	var mixed *MixedTransformSpec
	if !errors.As(err, &mixed) {
		t.Fatalf("wanted MixedTransformSpec, got %v", err)
	}
}

func TestTransformEach(t *testing.T) {
	got := testMap(t, `{"list":[{"n":1},{"n":2},{"n":3}]}`,
		`{"x":{"source":"list.*.n","transformEach":{"add":[1]}}}`)
	wants(t, got, `{"x":[2,3,4]}`)

	// transformEach only applies to sequences.
	got = testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","transformEach":{"add":[1]}}}`)
	wants(t, got, `{"x":2}`)
}

func TestTransformThenTransformEach(t *testing.T) {
	got := testMap(t, `{"list":[{"n":1},{"n":2}]}`,
		`{"x":{"source":"list.*.n","transform":{"add":[1,1]},"transformEach":{"wrap":[]}}}`)
	// transform sees the whole sequence and fails (not numbers), so
	// the chain is absent and transformEach has nothing to do.
	m := got.(map[string]interface{})
	if !IsAbsent(m["x"]) {
		t.Fatalf("wanted Absent, got %s", JS(m["x"]))
	}

	got = testMap(t, `{"a":{"b":2}}`,
		`{"x":{"source":"a.b","transform":{"add":[1]},"transformEach":{"add":[1]}}}`)
	wants(t, got, `{"x":3}`)
}

func TestPreProcessSingle(t *testing.T) {
	var saw []interface{}
	pre := func(x interface{}) interface{} {
		saw = append(saw, x)
		return x
	}
	// A single wildcard path that resolves to a sequence goes to the
	// preprocessor whole.
	out, err := Map(context.Background(),
		Dwimjs(`{"list":[{"n":1},{"n":2}]}`),
		Dwimjs(`{"x":{"source":"list.*.n"}}`),
		nil, pre)
	if err != nil {
		t.Fatal(err)
	}
	wants(t, out, `{"x":[1,2]}`)
	if len(saw) != 1 {
		t.Fatalf("preprocessor ran %d times", len(saw))
	}
	if _, is := saw[0].([]interface{}); !is {
		t.Fatalf("preprocessor got %s, not the whole sequence", JS(saw[0]))
	}
}

func TestPreProcessMultiSource(t *testing.T) {
	pre := func(x interface{}) interface{} {
		if n, is := x.(float64); is {
			return n * 10
		}
		return x
	}
	out, err := Map(context.Background(),
		Dwimjs(`{"a":1,"b":2}`),
		Dwimjs(`{"x":{"source":["a","missing","b"]}}`),
		nil, pre)
	if err != nil {
		t.Fatal(err)
	}
	xs := out.(map[string]interface{})["x"].([]interface{})
	if xs[0] != 10.0 || !IsAbsent(xs[1]) || xs[2] != 20.0 {
		t.Fatalf("got %s", JS(out))
	}
}

func TestMapConfigurationErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Map(ctx, nil, Dwimjs(`{}`), nil, nil); err != NoSourceObject {
		t.Fatalf("got %v", err)
	}
	if _, err := Map(ctx, "scalar", Dwimjs(`{}`), nil, nil); err != NoSourceObject {
		t.Fatalf("got %v", err)
	}
	if _, err := Map(ctx, Dwimjs(`{}`), nil, nil, nil); err != NoMapping {
		t.Fatalf("got %v", err)
	}
	if _, err := Map(ctx, Dwimjs(`{}`), 42, nil, nil); err != NoMapping {
		t.Fatalf("got %v", err)
	}
}

func TestMapDoesNotMutateInputs(t *testing.T) {
	source := Dwimjs(`{"a":{"b":2}}`)
	template := Dwimjs(`{"x":{"source":"a.b","transform":{"add":[1]}}}`)
	wantSource := Dwimjs(`{"a":{"b":2}}`)
	wantTemplate := Dwimjs(`{"x":{"source":"a.b","transform":{"add":[1]}}}`)

	if _, err := Map(context.Background(), source, template, testFuncs(), nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(source, wantSource) {
		t.Fatal("source mutated")
	}
	if !reflect.DeepEqual(template, wantTemplate) {
		t.Fatal("template mutated")
	}
}

func TestScrub(t *testing.T) {
	x := map[string]interface{}{
		"gone": Absent,
		"kept": "v",
		"seq":  []interface{}{Absent, 1.0},
	}
	got := Scrub(x)
	want := Dwimjs(`{"kept":"v","seq":[null,1]}`)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %s", JS(got))
	}
	if Scrub(Absent) != nil {
		t.Fatal("top-level Absent should scrub to nil")
	}
}
