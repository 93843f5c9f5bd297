package keypath

import (
	"fmt"
	"reflect"
	"testing"

	. "github.com/Comcast/remap/util/testutil"
)

type ResolveTest struct {
	Tree     interface{}
	Path     string
	Expected interface{}
	Missing  bool
	Title    string
}

func (rt ResolveTest) Name(i int) string {
	if rt.Title == "" {
		return fmt.Sprintf("%03d %s", i, rt.Path)
	}
	return fmt.Sprintf("%03d %s", i, rt.Title)
}

var resolveTests = []ResolveTest{
	{
		Tree:     Dwimjs(`{"a":{"b":2}}`),
		Path:     "a.b",
		Expected: Dwimjs(`2`),
	},
	{
		Tree:     Dwimjs(`{"a":{"b":null}}`),
		Path:     "a.b",
		Expected: nil,
		Title:    "null value is found, not missing",
	},
	{
		Tree:    Dwimjs(`{"a":{"b":2}}`),
		Path:    "a.c",
		Missing: true,
	},
	{
		Tree:    Dwimjs(`{"a":{"b":2}}`),
		Path:    "a.b.c",
		Missing: true,
		Title:   "scalar is not indexable",
	},
	{
		Tree:    Dwimjs(`{"a":{"b":2}}`),
		Path:    "x.y.z",
		Missing: true,
	},
	{
		Tree:     Dwimjs(`{"a":[10,20,30]}`),
		Path:     "a.1",
		Expected: Dwimjs(`20`),
		Title:    "numeric index",
	},
	{
		Tree:    Dwimjs(`{"a":[10,20,30]}`),
		Path:    "a.3",
		Missing: true,
		Title:   "index out of range",
	},
	{
		Tree:    Dwimjs(`{"a":[10,20,30]}`),
		Path:    "a.b",
		Missing: true,
		Title:   "non-numeric segment against a sequence",
	},
	{
		Tree:     Dwimjs(`{"list":[{"n":1},{"n":2},{"n":3}]}`),
		Path:     "list.*.n",
		Expected: Dwimjs(`[1,2,3]`),
	},
	{
		Tree:     Dwimjs(`{"list":[{"n":1},{"m":2},{"n":3}]}`),
		Path:     "list.*.n",
		Expected: Dwimjs(`[1,3]`),
		Title:    "absent branches discarded",
	},
	{
		Tree:     Dwimjs(`{"list":[{"m":1},{"n":2},{"m":3}]}`),
		Path:     "list.*.n",
		Expected: Dwimjs(`2`),
		Title:    "single survivor is unwrapped",
	},
	{
		Tree:    Dwimjs(`{"list":[{"m":1},{"m":3}]}`),
		Path:    "list.*.n",
		Missing: true,
		Title:   "no survivors",
	},
	{
		Tree:     Dwimjs(`{"a":{"x":{"n":1},"y":{"n":2}}}`),
		Path:     "a.*.n",
		Expected: Dwimjs(`[1,2]`),
		Title:    "wildcard over object keys in sorted order",
	},
	{
		Tree:     Dwimjs(`{"a":{"x":[{"n":1},{"n":2}],"y":[{"n":3}]}}`),
		Path:     "a.*.*.n",
		Expected: Dwimjs(`[1,2,3]`),
		Title:    "nested wildcards",
	},
	{
		Tree:     Dwimjs(`{"a":{"b":[1,2]}}`),
		Path:     "a.*",
		Expected: Dwimjs(`[1,2]`),
		Title:    "single wildcard survivor that is itself a sequence",
	},
	{
		Tree:    Dwimjs(`42`),
		Path:    "a",
		Missing: true,
		Title:   "scalar tree",
	},
}

func TestResolve(t *testing.T) {
	for i, rt := range resolveTests {
		t.Run(rt.Name(i), func(t *testing.T) {
			got, found := Resolve(rt.Tree, rt.Path)
			if rt.Missing {
				if found {
					t.Fatalf("found %s", JS(got))
				}
				return
			}
			if !found {
				t.Fatal("found nothing")
			}
			if !reflect.DeepEqual(got, rt.Expected) {
				t.Fatalf("got %s wanted %s", JS(got), JS(rt.Expected))
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	tree := Dwimjs(`{"a":{"q":1,"b":2,"z":3,"m":4,"c":5}}`)
	// Keys walk in sorted order: b, c, m, q, z.
	want := Dwimjs(`[2,5,4,1,3]`)
	for i := 0; i < 100; i++ {
		got, found := Resolve(tree, "a.*")
		if !found {
			t.Fatal("found nothing")
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("iteration %d: got %s", i, JS(got))
		}
	}
}

func TestResolveNoIndexing(t *testing.T) {
	r := &Resolver{SortKeys: true}
	if _, found := r.Resolve(Dwimjs(`{"a":[10]}`), "a.0"); found {
		t.Fatal("indexed a sequence with IndexSequences off")
	}
}
