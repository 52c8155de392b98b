package golang

import (
	"context"
	"path"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/load"
)

// Generate compiles loaded declarations end to end: extraction into the
// registry, artifact derivation, and emission with the Go emitter.
// The returned diagnostics carry every error and warning of the run;
// tables with errors produce no files while the rest generate fully.
// The error return reports configuration and I/O failures only.
func Generate(ctx context.Context, decls []*load.Table, cfg *gen.Config) (*gen.Diagnostics, error) {
	if cfg.Target == "" {
		return nil, gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	diag := gen.NewDiagnostics()
	reg := gen.NewRegistry(decls, diag)
	sets := gen.Derive(reg, cfg, diag)

	g := gen.NewGenerator(sets, cfg.Target)
	if cfg.Package != "" {
		g.WithPackage(path.Base(cfg.Package))
	}
	if cfg.Header != "" {
		g.WithHeader(cfg.Header)
	}
	if cfg.Workers > 0 {
		g.WithWorkers(cfg.Workers)
	}
	g.WithTemplates(cfg.Templates...)
	g.WithEmitter(NewEmitter(g))
	if err := g.Generate(ctx); err != nil {
		return diag, err
	}
	return diag, nil
}
