package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// GenConstants renders the table name, one constant per column, and the
// column lists used by repositories and entities.
func (e *Emitter) GenConstants(set *gen.ArtifactSet) *jen.File {
	f := e.h.NewFile()
	entity := set.Entity

	f.Const().DefsFunc(func(g *jen.Group) {
		g.Commentf("%sTable is the table name of %s.", entity, entity)
		g.Id(entity + "Table").Op("=").Lit(set.Table.Name)
		for _, fs := range set.FullDto.Fields {
			g.Id(constName(entity, fs)).Op("=").Lit(fs.Column.Name)
		}
	})

	f.Commentf("%sColumns holds all columns of %s in declaration order.", entity, set.Table.Name)
	f.Var().Id(entity + "Columns").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, fs := range set.FullDto.Fields {
			g.Id(constName(entity, fs))
		}
	})

	f.Commentf("%sWritableColumns holds the caller-writable columns of %s.", entity, set.Table.Name)
	f.Var().Id(entity + "WritableColumns").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, fs := range set.CreateDto.Fields {
			g.Id(constName(entity, fs))
		}
	})

	var defaulted []*gen.FieldSpec
	for _, fs := range set.FullDto.Fields {
		if fs.Column.Default != "" {
			defaulted = append(defaulted, fs)
		}
	}
	if len(defaulted) > 0 {
		f.Commentf("%sColumnDefaults holds the declared default expression of each", entity)
		f.Comment("column, verbatim. The expressions are never evaluated here.")
		f.Var().Id(entity + "ColumnDefaults").Op("=").Map(jen.String()).String().ValuesFunc(func(g *jen.Group) {
			for _, fs := range defaulted {
				g.Line().Id(constName(entity, fs)).Op(":").Lit(fs.Column.Default)
			}
			g.Line()
		})
	}

	return f
}
