package gen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// Emitter renders the artifact set of one table into source files.
// Emitters live in their own packages, keyed by output language or
// flavor; see compiler/gen/golang for the canonical one. A method may
// return nil when the set contains nothing for it.
type Emitter interface {
	// GenConstants renders the table and column name constants.
	GenConstants(*ArtifactSet) *jen.File
	// GenDtos renders the transfer structs and their interfaces.
	GenDtos(*ArtifactSet) *jen.File
	// GenMappings renders the converters between transfer shapes.
	GenMappings(*ArtifactSet) *jen.File
	// GenProjections renders projection structs, mappers and update writers.
	GenProjections(*ArtifactSet) *jen.File
	// GenRepository renders the repository type.
	GenRepository(*ArtifactSet) *jen.File
	// GenDao renders the live entity type.
	GenDao(*ArtifactSet) *jen.File
}

// Generator writes the rendered artifacts of a compiler run to disk.
// Files are generated in parallel and streamed straight to the target
// directory; jennifer tracks imports while rendering, so no separate
// formatting pass runs on the output.
type Generator struct {
	sets      []*ArtifactSet
	emitter   Emitter
	templates []*Template
	workers   int
	outDir    string
	pkg       string
	header    string
}

// NewGenerator creates a generator for the given artifact sets.
// An emitter must be set with WithEmitter before calling Generate.
//
// Example:
//
//	import "github.com/syssam/tablegen/compiler/gen/golang"
//
//	g := gen.NewGenerator(sets, outDir)
//	g.WithEmitter(golang.NewEmitter(g))
//	g.Generate(ctx)
func NewGenerator(sets []*ArtifactSet, outDir string) *Generator {
	return &Generator{
		sets:    sets,
		workers: runtime.GOMAXPROCS(0),
		outDir:  outDir,
		pkg:     filepath.Base(outDir),
	}
}

// WithWorkers sets the number of parallel workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithPackage sets the output package name.
func (g *Generator) WithPackage(pkg string) *Generator {
	if pkg != "" {
		g.pkg = pkg
	}
	return g
}

// WithHeader overrides the header comment of generated files.
func (g *Generator) WithHeader(header string) *Generator {
	g.header = header
	return g
}

// WithEmitter sets the emitter that renders artifact sets.
func (g *Generator) WithEmitter(e Emitter) *Generator {
	if e != nil {
		g.emitter = e
	}
	return g
}

// WithTemplates adds custom templates, rendered once per artifact set.
func (g *Generator) WithTemplates(templates ...*Template) *Generator {
	g.templates = append(g.templates, templates...)
	return g
}

// Generate renders and writes every artifact file.
// Returns an error if no emitter has been set via WithEmitter().
func (g *Generator) Generate(ctx context.Context) error {
	if g.emitter == nil {
		return NewConfigError("Emitter", nil, "no emitter set: call WithEmitter() before Generate()")
	}
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return err
	}

	errg, _ := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)

	for _, set := range g.sets {
		set := set
		base := strings.ToLower(snake(set.Entity))

		errg.Go(func() error {
			return g.writeFile(g.emitter.GenConstants(set), base+"_columns.go")
		})
		errg.Go(func() error {
			return g.writeFile(g.emitter.GenDtos(set), base+"_dto.go")
		})
		errg.Go(func() error {
			return g.writeFile(g.emitter.GenMappings(set), base+"_mapping.go")
		})
		if len(set.Projections) > 0 {
			errg.Go(func() error {
				return g.writeFile(g.emitter.GenProjections(set), base+"_projection.go")
			})
		}
		if set.Repository != nil {
			errg.Go(func() error {
				return g.writeFile(g.emitter.GenRepository(set), base+"_repository.go")
			})
		}
		if set.Dao != nil {
			errg.Go(func() error {
				return g.writeFile(g.emitter.GenDao(set), base+"_entity.go")
			})
		}
		for _, tmpl := range g.templates {
			tmpl := tmpl
			errg.Go(func() error {
				return g.writeTemplate(tmpl, set, base)
			})
		}
	}

	return errg.Wait()
}

// NewFile creates a jennifer file for the output package with the
// header comment. Emitters call this for every file they render.
func (g *Generator) NewFile() *jen.File {
	f := jen.NewFile(g.pkg)
	if g.header != "" {
		f.HeaderComment(g.header)
	} else {
		f.HeaderComment("Code generated by tablegen. DO NOT EDIT.")
	}
	return f
}

// Pkg returns the output package name.
func (g *Generator) Pkg() string {
	return g.pkg
}

// writeFile streams a jennifer file to disk. A nil file is skipped, so
// emitters can decline artifacts they have nothing to say about.
func (g *Generator) writeFile(f *jen.File, filename string) error {
	if f == nil {
		return nil
	}
	path := filepath.Join(g.outDir, filename)
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := f.Render(out); err != nil {
		return NewGenerationError("", filename, "rendering file", err)
	}
	return nil
}

// writeTemplate renders a custom template for one artifact set.
func (g *Generator) writeTemplate(t *Template, set *ArtifactSet, base string) error {
	filename := base + "_" + t.Name + ".go"
	buf, err := t.execute(g.pkg, g.headerComment(), set)
	if err != nil {
		return NewGenerationError(set.Table.Name, filename, "executing template", err)
	}
	return os.WriteFile(filepath.Join(g.outDir, filename), buf, 0o644)
}

func (g *Generator) headerComment() string {
	if g.header != "" {
		return g.header
	}
	return "Code generated by tablegen. DO NOT EDIT."
}
