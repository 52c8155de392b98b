package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// GenDao renders the live entity of a table: a keyed handle whose
// getters read through the record cache, whose setters buffer writes
// until Flush, plus relationship accessors and DTO bridges. Tables
// without an identity column get no live entity.
func (e *Emitter) GenDao(set *gen.ArtifactSet) *jen.File {
	if set.Dao == nil || set.Table.ID == nil {
		return nil
	}
	f := e.h.NewFile()
	entity := set.Entity
	dao := set.Dao.Name
	idField := set.FullDto.Field(set.Table.ID.StructField())
	idType := baseType(set.Table.ID.Type)
	recv := set.Table.Receiver()

	f.Commentf("%s is a live handle on one %s row. Reads load lazily and", dao, set.Table.Name)
	f.Commentf("cache, writes buffer in the handle until Flush.")
	f.Type().Id(dao).Struct(
		jen.Id("id").Add(idType),
		jen.Id("rec").Op("*").Qual(runtimePkg, "Record"),
	)

	f.Commentf("New%s creates a handle on the %s row keyed by id.", dao, set.Table.Name)
	f.Func().Id("New"+dao).Params(
		jen.Id("store").Qual(runtimePkg, "Store"),
		jen.Id("id").Add(idType),
	).Op("*").Id(dao).Block(
		jen.Return(jen.Op("&").Id(dao).Values(
			jen.Id("id").Op(":").Id("id"),
			jen.Id("rec").Op(":").Qual(runtimePkg, "NewRecord").Call(
				jen.Id("store"), jen.Id(entity+"Table"), jen.Id(constName(entity, idField)),
				jen.Id("id"), jen.Id(entity+"Columns"),
			),
		)),
	)

	f.Commentf("%s returns the key of the handle.", idField.Name)
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id(idField.Name).Params().Add(idType).Block(
		jen.Return(jen.Id(recv).Dot("id")),
	)

	f.Comment("Record returns the underlying row handle.")
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id("Record").Params().Op("*").Qual(runtimePkg, "Record").Block(
		jen.Return(jen.Id(recv).Dot("rec")),
	)

	for _, fs := range set.FullDto.Fields {
		if fs.Column.Identity {
			continue
		}
		e.daoGetter(f, set, dao, recv, fs)
		if fs.Column.Writable() {
			f.Commentf("Set%s buffers a %s write until Flush.", fs.Name, fs.Column.Name)
			f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id("Set"+fs.Name).Params(jen.Id("v").Add(goType(fs.Column))).Op("*").Id(dao).Block(
				jen.Id(recv).Dot("rec").Dot("Set").Call(jen.Id(constName(entity, fs)), jen.Id("v")),
				jen.Return(jen.Id(recv)),
			)
		}
	}

	f.Comment("Dirty reports whether unflushed writes are buffered.")
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id("Dirty").Params().Bool().Block(
		jen.Return(jen.Id(recv).Dot("rec").Dot("Dirty").Call()),
	)

	f.Comment("Flush applies the buffered writes in one update.")
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id("Flush").Params(jen.Id("ctx").Qual("context", "Context")).Error().Block(
		jen.Return(jen.Id(recv).Dot("rec").Dot("Flush").Call(jen.Id("ctx"))),
	)

	f.Comment("Reload drops the cache and buffered writes and fetches the row again.")
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id("Reload").Params(jen.Id("ctx").Qual("context", "Context")).Error().Block(
		jen.Return(jen.Id(recv).Dot("rec").Dot("Reload").Call(jen.Id("ctx"))),
	)

	for _, rel := range set.Dao.Relations {
		e.daoRelation(f, set, dao, recv, rel)
	}

	f.Commentf("ToFullDto reads the whole row into its full shape.")
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id("ToFullDto").Params(jen.Id("ctx").Qual("context", "Context")).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.Id("row").Op(":=").Qual(runtimePkg, "Row").Values(),
		jen.For(jen.List(jen.Id("_"), jen.Id("col")).Op(":=").Range().Id(entity+"Columns")).Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Id(recv).Dot("rec").Dot("Get").Call(jen.Id("ctx"), jen.Id("col")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("row").Index(jen.Id("col")).Op("=").Id("v"),
		),
		jen.Return(jen.Id(entity+"FromRow").Call(jen.Id("row"))),
	)

	f.Commentf("ApplyCreateDto buffers every writable column of the shape.")
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id("ApplyCreateDto").Params(jen.Id("src").Id(set.CreateDto.Iface)).Op("*").Id(dao).BlockFunc(func(g *jen.Group) {
		for _, fs := range set.CreateDto.Fields {
			g.Id(recv).Dot("rec").Dot("Set").Call(jen.Id(constName(entity, fs)), jen.Id("src").Dot(fs.Getter).Call())
		}
		g.Return(jen.Id(recv))
	})

	return f
}

// daoGetter renders the context-taking typed getter of one column.
func (e *Emitter) daoGetter(f *jen.File, set *gen.ArtifactSet, dao, recv string, fs *gen.FieldSpec) {
	entity := set.Entity
	f.Commentf("%s returns the current %s value.", fs.Name, fs.Column.Name)
	decl := f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id(fs.Name).Params(jen.Id("ctx").Qual("context", "Context")).Params(goType(fs.Column), jen.Error())
	if fs.Column.Nullable {
		decl.Block(
			jen.Return(jen.Qual(runtimePkg, "Field").Call(
				jen.Id("ctx"), jen.Id(recv).Dot("rec"), jen.Id(constName(entity, fs)),
				jen.Func().Params(jen.Id("v").Any()).Params(jen.Op("*").Add(baseType(fs.Column.Type)), jen.Error()).Block(
					jen.Return(jen.Qual(runtimePkg, "Nullable").Call(jen.Id("v"), jen.Qual(runtimePkg, convName(fs.Column.Type)))),
				),
			)),
		)
		return
	}
	decl.Block(
		jen.Return(jen.Qual(runtimePkg, "Field").Call(
			jen.Id("ctx"), jen.Id(recv).Dot("rec"), jen.Id(constName(entity, fs)),
			jen.Qual(runtimePkg, convName(fs.Column.Type)),
		)),
	)
}

// daoRelation renders the accessor that follows a reference column to
// the handle of its target row.
func (e *Emitter) daoRelation(f *jen.File, set *gen.ArtifactSet, dao, recv string, rel *gen.RelationSpec) {
	target := rel.Target
	if target.ID == nil || !target.Dao {
		return
	}
	entity := set.Entity
	field := set.FullDto.Field(rel.Field.StructField())
	targetDao := target.EntityName() + "Entity"

	f.Commentf("%s follows %s to the referenced %s row.", rel.Name, rel.Field.Name, target.Name)
	f.Func().Params(jen.Id(recv).Op("*").Id(dao)).Id(rel.Name).Params(jen.Id("ctx").Qual("context", "Context")).Params(jen.Op("*").Id(targetDao), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.List(jen.Id("v"), jen.Err()).Op(":=").Id(recv).Dot("rec").Dot("Get").Call(jen.Id("ctx"), jen.Id(constName(entity, field)))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		if rel.Field.Nullable {
			g.If(jen.Id("v").Op("==").Nil()).Block(jen.Return(jen.Nil(), jen.Nil()))
		}
		g.List(jen.Id("id"), jen.Err()).Op(":=").Qual(runtimePkg, convName(target.KeyType())).Call(jen.Id("v"))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		g.Return(jen.Id("New"+targetDao).Call(jen.Id(recv).Dot("rec").Dot("Store").Call(), jen.Id("id")), jen.Nil())
	})
}
