package tools

import (
	"strings"
	"testing"

	"github.com/Comcast/remap/funcs"
	. "github.com/Comcast/remap/util/testutil"
)

func TestAnalyze(t *testing.T) {
	template := Dwimjs(`{
	  "name": {"source":"user.name","transform":{"toUpper":[]}},
	  "visits": {"source":"user.visits","condition":{"exists":[]},"transform":{"count":[]},"default":0},
	  "id": {"sources":["user.id","user.uuid"],"transform":{"mint":[]}}
	}`)

	a := Analyze(template, funcs.Standard())

	if a.NodeCount != 3 {
		t.Fatalf("NodeCount %d", a.NodeCount)
	}
	if len(a.Paths) != 4 {
		t.Fatalf("Paths %v", a.Paths)
	}
	if a.Defaults != 1 {
		t.Fatalf("Defaults %d", a.Defaults)
	}
	if a.Conditions != 1 || a.Transforms != 3 {
		t.Fatalf("Conditions %d Transforms %d", a.Conditions, a.Transforms)
	}
	if len(a.UnknownFunctions) != 1 || a.UnknownFunctions[0] != "mint" {
		t.Fatalf("UnknownFunctions %v", a.UnknownFunctions)
	}
	if 0 < len(a.Errors) {
		t.Fatalf("Errors %v", a.Errors)
	}
}

func TestAnalyzeNested(t *testing.T) {
	template := Dwimjs(`{
	  "greeting": {"source":"name",
	    "transform":{"concat":[{"source":"suffix","default":"!"}]}}
	}`)

	a := Analyze(template, nil)
	if a.NodeCount != 2 {
		t.Fatalf("NodeCount %d", a.NodeCount)
	}
	if len(a.Paths) != 2 {
		t.Fatalf("Paths %v", a.Paths)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	template := Dwimjs(`{
	  "bad": {"source":"x","transform":{"f":[],"g":[]}},
	  "mixed": {"source":"y","transform":[{"f":[]},{"condition":{"g":[]},"transform":{"h":[]}}]}
	}`)

	a := Analyze(template, nil)
	if len(a.Errors) != 2 {
		t.Fatalf("Errors %v", a.Errors)
	}
}

func TestAnalysisYAML(t *testing.T) {
	a := Analyze(Dwimjs(`{"x":{"source":"a.b"}}`), nil)
	s, err := a.YAML()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, "a.b") {
		t.Fatalf("got %s", s)
	}
}
