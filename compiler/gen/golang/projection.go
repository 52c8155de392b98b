package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// GenProjections renders the declared projections of a table: a
// transfer shape per projection, its column list, a row scanner over
// that list, a mapper from the full shape, and the update writer for
// projections that requested one.
func (e *Emitter) GenProjections(set *gen.ArtifactSet) *jen.File {
	if len(set.Projections) == 0 {
		return nil
	}
	f := e.h.NewFile()
	entity := set.Entity

	for _, p := range set.Projections {
		f.Commentf("%s is the %s projection of %s.", p.Dto.Iface, p.Projection.Name, set.Table.Name)
		f.Type().Id(p.Dto.Iface).InterfaceFunc(func(g *jen.Group) {
			for _, fs := range p.Dto.Fields {
				g.Id(fs.Getter).Params().Add(goType(fs.Column))
			}
		})
		e.dtoStruct(f, set, p.Dto)

		f.Commentf("%sColumns holds the columns the %s projection fetches,", p.Dto.Iface, p.Projection.Name)
		f.Comment("in declaration order.")
		f.Var().Id(p.Dto.Iface + "Columns").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
			for _, fs := range p.Dto.Fields {
				g.Id(constName(entity, fs))
			}
		})

		f.Commentf("%sFromRow scans a store row into the %s projection.", p.Dto.Iface, p.Projection.Name)
		f.Func().Id(p.Dto.Iface+"FromRow").Params(jen.Id("row").Qual(runtimePkg, "Row")).Params(jen.Op("*").Id(p.Dto.Name), jen.Error()).BlockFunc(rowScanBody(set, p.Dto))

		f.Commentf("New%s projects the full shape of %s.", p.Dto.Name, set.Table.Name)
		f.Func().Id("New"+p.Dto.Name).Params(jen.Id("src").Id(set.FullDto.Iface)).Op("*").Id(p.Dto.Name).Block(
			jen.Return(jen.Op("&").Id(p.Dto.Name).ValuesFunc(func(g *jen.Group) {
				for _, fs := range p.Dto.Fields {
					g.Line().Id(fs.Name).Op(":").Id("src").Dot(fs.Getter).Call()
				}
				g.Line()
			})),
		)

		if p.Update == nil {
			continue
		}

		f.Commentf("%s carries the writable fields of the %s projection.", p.Update.Iface, p.Projection.Name)
		f.Type().Id(p.Update.Iface).InterfaceFunc(func(g *jen.Group) {
			for _, fs := range p.Update.Fields {
				g.Id(fs.Getter).Params().Add(goType(fs.Column))
			}
		})
		e.dtoStruct(f, set, p.Update)

		f.Commentf("%sRow converts the update shape to a store row.", p.Update.Iface)
		f.Func().Id(p.Update.Iface+"Row").Params(jen.Id("src").Id(p.Update.Iface)).Op("*").Qual(runtimePkg, "RowBuilder").BlockFunc(func(g *jen.Group) {
			g.Id("b").Op(":=").Qual(runtimePkg, "NewRow").Call()
			for _, fs := range p.Update.Fields {
				g.Id("b").Dot("Set").Call(jen.Id(constName(entity, fs)), jen.Id("src").Dot(fs.Getter).Call())
			}
			g.Return(jen.Id("b"))
		})

		if set.Table.ID != nil {
			idField := set.FullDto.Field(set.Table.ID.StructField())
			f.Commentf("Apply%s writes the update shape to the row keyed by id.", p.Update.Iface)
			f.Func().Id("Apply"+p.Update.Iface).Params(
				jen.Id("ctx").Qual("context", "Context"),
				jen.Id("store").Qual(runtimePkg, "Store"),
				jen.Id("id").Add(baseType(set.Table.ID.Type)),
				jen.Id("src").Id(p.Update.Iface),
			).Error().Block(
				jen.Id("n").Op(",").Err().Op(":=").Id("store").Dot("UpdateRows").Call(
					jen.Id("ctx"),
					jen.Id(entity+"Table"),
					jen.Id(p.Update.Iface+"Row").Call(jen.Id("src")),
					jen.Qual(runtimePkg, "Eq").Call(jen.Id(constName(entity, idField)), jen.Id("id")),
				),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
				jen.If(jen.Id("n").Op("==").Lit(0)).Block(
					jen.Return(jen.Qual(runtimePkg, "NewNotFoundErrorWithID").Call(jen.Id(entity+"Table"), jen.Id("id"))),
				),
				jen.Return(jen.Nil()),
			)
		}
	}

	return f
}
