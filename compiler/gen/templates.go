package gen

import (
	"bytes"
	"fmt"
	"text/template"

	"golang.org/x/tools/imports"
)

// Template is a custom artifact template. It is executed once per
// artifact set with the set as its data, and the output lands next to
// the built-in files as <entity>_<name>.go.
type Template struct {
	// Name is the base name of the template. It becomes part of the
	// output filename and must be unique within a run.
	Name string
	// Text is the template body, parsed with text/template.
	Text string
}

// NewTemplate creates a named template from its body.
func NewTemplate(name, text string) *Template {
	return &Template{Name: name, Text: text}
}

// Funcs are the helpers available to custom templates.
var Funcs = template.FuncMap{
	"snake":     snake,
	"pascal":    pascal,
	"camel":     camel,
	"plural":    plural,
	"singular":  singular,
	"receiver":  receiver,
	"quote":     quote,
	"xrange":    xrange,
	"add":       add,
	"indexOf":   indexOf,
	"joinWords": joinWords,
}

// execute renders the template for one artifact set and formats the
// result. The package clause and header comment are prepended, so a
// template body starts straight with declarations.
func (t *Template) execute(pkg, header string, set *ArtifactSet) ([]byte, error) {
	tmpl, err := template.New(t.Name).Funcs(Funcs).Parse(t.Text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", t.Name, err)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "// %s\n\npackage %s\n\n", header, pkg)
	if err := tmpl.Execute(&b, set); err != nil {
		return nil, fmt.Errorf("executing template %q: %w", t.Name, err)
	}
	// imports.Process formats the output and fixes the import block for
	// any packages the template body referenced.
	src, err := imports.Process(t.Name+".go", b.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting template %q output: %w", t.Name, err)
	}
	return src, nil
}
