package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// GenMappings renders the converters of a table: value constructors,
// interface-to-struct narrowing, the store row builder, the insert and
// update wrappers, and the row scanners. Repositories and entities are
// built from these.
func (e *Emitter) GenMappings(set *gen.ArtifactSet) *jen.File {
	f := e.h.NewFile()
	entity := set.Entity

	f.Commentf("New%s builds the create shape from its values in column order.", set.CreateDto.Name)
	f.Func().Id("New"+set.CreateDto.Name).Params(ctorParams(set.CreateDto.Fields)...).Op("*").Id(set.CreateDto.Name).Block(
		jen.Return(jen.Op("&").Id(set.CreateDto.Name).ValuesFunc(func(g *jen.Group) {
			for _, fs := range set.CreateDto.Fields {
				g.Line().Id(fs.Name).Op(":").Id(paramName(fs))
			}
			g.Line()
		})),
	)

	f.Commentf("As%s narrows any writable shape to its struct form.", set.CreateDto.Name)
	f.Func().Id("As"+set.CreateDto.Name).Params(jen.Id("src").Id(set.CreateDto.Iface)).Op("*").Id(set.CreateDto.Name).Block(
		jen.Return(jen.Op("&").Id(set.CreateDto.Name).ValuesFunc(func(g *jen.Group) {
			for _, fs := range set.CreateDto.Fields {
				g.Line().Id(fs.Name).Op(":").Id("src").Dot(fs.Getter).Call()
			}
			g.Line()
		})),
	)

	f.Commentf("As%s copies any full shape to its struct form.", set.FullDto.Name)
	f.Func().Id("As"+set.FullDto.Name).Params(jen.Id("src").Id(set.FullDto.Iface)).Op("*").Id(set.FullDto.Name).Block(
		jen.Return(jen.Op("&").Id(set.FullDto.Name).ValuesFunc(func(g *jen.Group) {
			for _, fs := range set.FullDto.Fields {
				g.Line().Id(fs.Name).Op(":").Id("src").Dot(fs.Getter).Call()
			}
			g.Line()
		})),
	)

	f.Commentf("%sCreateRow converts a writable shape to a store row.", entity)
	f.Func().Id(entity+"CreateRow").Params(jen.Id("src").Id(set.CreateDto.Iface)).Op("*").Qual(runtimePkg, "RowBuilder").BlockFunc(func(g *jen.Group) {
		g.Id("b").Op(":=").Qual(runtimePkg, "NewRow").Call()
		for _, fs := range set.CreateDto.Fields {
			g.Id("b").Dot("Set").Call(jen.Id(constName(entity, fs)), jen.Id("src").Dot(fs.Getter).Call())
		}
		g.Return(jen.Id("b"))
	})

	f.Commentf("Insert%s writes the writable shape and returns the stored row,", entity)
	f.Comment("including store-produced columns.")
	f.Func().Id("Insert"+entity).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("store").Qual(runtimePkg, "Store"),
		jen.Id("src").Id(set.CreateDto.Iface),
	).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.List(jen.Id("row"), jen.Err()).Op(":=").Id("store").Dot("InsertRow").Call(
			jen.Id("ctx"), jen.Id(entity+"Table"), jen.Id(entity+"CreateRow").Call(jen.Id("src")), returningCols(set),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id(entity+"FromRow").Call(jen.Id("row"))),
	)

	f.Commentf("Update%s writes the writable shape to every row matching the", entity)
	f.Comment("predicate and reports the affected count.")
	f.Func().Id("Update"+entity).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("store").Qual(runtimePkg, "Store"),
		jen.Id("p").Qual(runtimePkg, "Predicate"),
		jen.Id("src").Id(set.CreateDto.Iface),
	).Params(jen.Int64(), jen.Error()).Block(
		jen.Return(jen.Id("store").Dot("UpdateRows").Call(
			jen.Id("ctx"), jen.Id(entity+"Table"), jen.Id(entity+"CreateRow").Call(jen.Id("src")), jen.Id("p"),
		)),
	)

	f.Commentf("%sFromAliasedRow scans a store row whose columns carry an alias", entity)
	f.Comment("prefix, as produced by self-joins.")
	f.Func().Id(entity+"FromAliasedRow").Params(
		jen.Id("row").Qual(runtimePkg, "Row"),
		jen.Id("alias").String(),
	).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.If(jen.Id("alias").Op("==").Lit("")).Block(
			jen.Return(jen.Id(entity+"FromRow").Call(jen.Id("row"))),
		),
		jen.Id("scoped").Op(":=").Make(jen.Qual(runtimePkg, "Row"), jen.Len(jen.Id(entity+"Columns"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("col")).Op(":=").Range().Id(entity+"Columns")).Block(
			jen.Id("scoped").Index(jen.Id("col")).Op("=").Id("row").Index(jen.Id("alias").Op("+").Lit(".").Op("+").Id("col")),
		),
		jen.Return(jen.Id(entity+"FromRow").Call(jen.Id("scoped"))),
	)

	f.Commentf("%sFromRow scans a store row into the full shape.", entity)
	f.Func().Id(entity+"FromRow").Params(jen.Id("row").Qual(runtimePkg, "Row")).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).BlockFunc(rowScanBody(set, set.FullDto))

	return f
}

// rowScanBody renders the body of a row scanner: one converted lookup
// per field of dto, in declaration order.
func rowScanBody(set *gen.ArtifactSet, dto *gen.DtoSpec) func(*jen.Group) {
	return func(g *jen.Group) {
		g.Id("d").Op(":=").Op("&").Id(dto.Name).Values()
		for _, fs := range dto.Fields {
			v := "v" + fs.Name
			g.List(jen.Id(v), jen.Err()).Op(":=").Add(scanValue(fs.Column, jen.Id("row").Index(jen.Id(constName(set.Entity, fs)))))
			g.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(
					jen.Lit("scanning "+set.Table.Name+"."+fs.Column.Name+": %w"), jen.Err(),
				)),
			)
			g.Id("d").Dot(fs.Name).Op("=").Id(v)
		}
		g.Return(jen.Id("d"), jen.Nil())
	}
}

// returningCols renders the list of store-produced columns an insert
// asks the store to report back, or nil when there are none.
func returningCols(set *gen.ArtifactSet) jen.Code {
	var produced []*gen.FieldSpec
	for _, fs := range set.FullDto.Fields {
		if !fs.Column.Writable() {
			produced = append(produced, fs)
		}
	}
	if len(produced) == 0 {
		return jen.Nil()
	}
	return jen.Index().String().ValuesFunc(func(g *jen.Group) {
		for _, fs := range produced {
			g.Id(constName(set.Entity, fs))
		}
	})
}
