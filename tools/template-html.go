package tools

import (
	"fmt"
	"io"
	"sort"

	. "github.com/Comcast/remap/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderTemplateHTML writes an HTML rendering of the template's
// mapping nodes.
//
// A node's "doc" string, which the evaluator ignores, is rendered as
// Markdown.
func RenderTemplateHTML(template interface{}, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="nodes"><table>`)

	var render func(path string, x interface{})

	renderNode := func(path string, m map[string]interface{}) {
		f(`<tr class="node"><td><span id="%s" class="nodePath">%s</span></td><td>`, path, path)

		if doc, have := m["doc"]; have {
			if s, is := doc.(string); is {
				f(`<div class="nodeDoc doc">%s</div>`, md.Run([]byte(s)))
			}
		}

		f(`<table>`)
		for _, key := range []string{"source", "sources", "condition", "conditions", "transform", "transforms", "transformEach", "default"} {
			v, have := m[key]
			if !have {
				continue
			}
			f(`<tr><td></td><td>%s</td>`, key)
			f(`<td><code>%s</code></td></tr>`, JS(v))
		}
		f(`</table>`)

		f(`</td></tr>`)
	}

	render = func(path string, x interface{}) {
		switch vv := x.(type) {
		case map[string]interface{}:
			if isNode(vv) {
				renderNode(path, vv)
				return
			}
			keys := make([]string, 0, len(vv))
			for k := range vv {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				at := k
				if path != "" {
					at = path + "." + k
				}
				render(at, vv[k])
			}
		case []interface{}:
			for i, v := range vv {
				render(fmt.Sprintf("%s.%d", path, i), v)
			}
		}
	}

	render("", template)

	f(`</table></div>`)

	return nil
}

// RenderTemplatePage writes a complete HTML page for the template.
func RenderTemplatePage(name string, template interface{}, out io.Writer, cssFiles []string) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/template-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, name)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, name)

	if err := RenderTemplateHTML(template, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderTemplatePage reads a template file (JSON or YAML) and
// writes a complete HTML page for it.
func ReadAndRenderTemplatePage(filename string, out io.Writer, cssFiles []string) error {
	template, err := LoadTemplate(filename)
	if err != nil {
		return err
	}
	return RenderTemplatePage(filename, template, out, cssFiles)
}
