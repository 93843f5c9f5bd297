package tools

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/Comcast/remap/util/testutil"
)

func TestRenderTemplateHTML(t *testing.T) {
	template := Dwimjs(`{
	  "name": {"source":"user.name","doc":"The user's *display* name.","transform":{"toUpper":[]}},
	  "out": {"deep": {"source":"user.id"}}
	}`)

	var buf bytes.Buffer
	if err := RenderTemplateHTML(template, &buf); err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	for _, want := range []string{"user.name", "out.deep", "<em>display</em>", "toUpper"} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %s in %s", want, html)
		}
	}
}

func TestRenderTemplatePage(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTemplatePage("test", Dwimjs(`{"x":{"source":"y"}}`), &buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<title>test</title>") {
		t.Fatal(buf.String())
	}
}
