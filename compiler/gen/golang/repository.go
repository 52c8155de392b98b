package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// GenRepository renders the repository of a table: finders over
// predicates, narrowed finders per projection, creation from the
// writable shape, update keyed by identity, and deletion.
// Key-addressed methods are only rendered for tables with an identity
// column.
func (e *Emitter) GenRepository(set *gen.ArtifactSet) *jen.File {
	if set.Repository == nil {
		return nil
	}
	f := e.h.NewFile()
	entity := set.Entity
	repo := set.Repository.Name
	recv := jen.Id("r").Op("*").Id(repo)

	f.Commentf("%s persists %s rows.", repo, set.Table.Name)
	f.Type().Id(repo).Struct(
		jen.Id("store").Qual(runtimePkg, "Store"),
	)

	f.Commentf("New%s creates a repository over the given store.", repo)
	f.Func().Id("New"+repo).Params(jen.Id("store").Qual(runtimePkg, "Store")).Op("*").Id(repo).Block(
		jen.Return(jen.Op("&").Id(repo).Values(jen.Id("store").Op(":").Id("store"))),
	)

	f.Comment("Store returns the store the repository operates against.")
	f.Func().Params(recv).Id("Store").Params().Qual(runtimePkg, "Store").Block(
		jen.Return(jen.Id("r").Dot("store")),
	)

	f.Comment("Find returns every row matching the predicate.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Find").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("p").Qual(runtimePkg, "Predicate"),
		jen.Id("opts").Op("...").Qual(runtimePkg, "QueryOption"),
	).Params(jen.Index().Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("r").Dot("store").Dot("SelectRows").Call(
			jen.Id("ctx"), jen.Id(entity+"Table"), jen.Id(entity+"Columns"), jen.Id("p"), jen.Id("opts").Op("..."),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Id("out").Op(":=").Make(jen.Index().Op("*").Id(set.FullDto.Name), jen.Lit(0), jen.Len(jen.Id("rows"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("row")).Op(":=").Range().Id("rows")).Block(
			jen.List(jen.Id("d"), jen.Err()).Op(":=").Id(entity+"FromRow").Call(jen.Id("row")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("d")),
		),
		jen.Return(jen.Id("out"), jen.Nil()),
	)

	f.Comment("FindOne returns the single row matching the predicate.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("FindOne").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("p").Qual(runtimePkg, "Predicate"),
	).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("r").Dot("store").Dot("SelectRows").Call(
			jen.Id("ctx"), jen.Id(entity+"Table"), jen.Id(entity+"Columns"), jen.Id("p"), jen.Qual(runtimePkg, "Limit").Call(jen.Lit(2)),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Switch(jen.Len(jen.Id("rows"))).Block(
			jen.Case(jen.Lit(0)).Block(
				jen.Return(jen.Nil(), jen.Qual(runtimePkg, "NewNotFoundError").Call(jen.Id(entity+"Table"))),
			),
			jen.Case(jen.Lit(1)).Block(
				jen.Return(jen.Id(entity+"FromRow").Call(jen.Id("rows").Index(jen.Lit(0)))),
			),
			jen.Default().Block(
				jen.Return(jen.Nil(), jen.Qual(runtimePkg, "NewNotSingularErrorWithCount").Call(jen.Id(entity+"Table"), jen.Len(jen.Id("rows")))),
			),
		),
	)

	f.Comment("Create inserts the writable shape and returns the stored row.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Create").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("src").Id(set.CreateDto.Iface),
	).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.Return(jen.Id("Insert"+entity).Call(jen.Id("ctx"), jen.Id("r").Dot("store"), jen.Id("src"))),
	)

	f.Comment("Delete removes every row matching the predicate.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Delete").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("p").Qual(runtimePkg, "Predicate"),
	).Params(jen.Int64(), jen.Error()).Block(
		jen.Return(jen.Id("r").Dot("store").Dot("DeleteRows").Call(jen.Id("ctx"), jen.Id(entity+"Table"), jen.Id("p"))),
	)

	// Projection finders fetch the narrowed column list, never the full
	// row.
	for _, proj := range set.Projections {
		iface := proj.Dto.Iface
		f.Commentf("Find%s returns the %s projection of every row matching the predicate.", iface, proj.Projection.Name)
		f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Find"+iface).Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("p").Qual(runtimePkg, "Predicate"),
			jen.Id("opts").Op("...").Qual(runtimePkg, "QueryOption"),
		).Params(jen.Index().Op("*").Id(proj.Dto.Name), jen.Error()).Block(
			jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("r").Dot("store").Dot("SelectRows").Call(
				jen.Id("ctx"), jen.Id(entity+"Table"), jen.Id(iface+"Columns"), jen.Id("p"), jen.Id("opts").Op("..."),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("out").Op(":=").Make(jen.Index().Op("*").Id(proj.Dto.Name), jen.Lit(0), jen.Len(jen.Id("rows"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("row")).Op(":=").Range().Id("rows")).Block(
				jen.List(jen.Id("d"), jen.Err()).Op(":=").Id(iface+"FromRow").Call(jen.Id("row")),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
				jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("d")),
			),
			jen.Return(jen.Id("out"), jen.Nil()),
		)
	}

	if set.Table.ID == nil {
		return f
	}
	idField := set.FullDto.Field(set.Table.ID.StructField())
	idConst := constName(entity, idField)
	idType := baseType(set.Table.ID.Type)

	f.Comment("FindByID returns the row keyed by id.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("FindByID").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Add(idType),
	).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.Return(jen.Id("r").Dot("FindOne").Call(jen.Id("ctx"), jen.Qual(runtimePkg, "Eq").Call(jen.Id(idConst), jen.Id("id")))),
	)

	f.Comment("Update writes the writable columns of the full shape, keyed by its identity.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Update").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("src").Id(set.FullDto.Iface),
	).Params(jen.Op("*").Id(set.FullDto.Name), jen.Error()).Block(
		jen.List(jen.Id("n"), jen.Err()).Op(":=").Id("Update"+entity).Call(
			jen.Id("ctx"), jen.Id("r").Dot("store"),
			jen.Qual(runtimePkg, "Eq").Call(jen.Id(idConst), jen.Id("src").Dot(idField.Getter).Call()),
			jen.Id("src"),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.If(jen.Id("n").Op("==").Lit(0)).Block(
			jen.Return(jen.Nil(), jen.Qual(runtimePkg, "NewNotFoundErrorWithID").Call(jen.Id(entity+"Table"), jen.Id("src").Dot(idField.Getter).Call())),
		),
		jen.Return(jen.Id("r").Dot("FindByID").Call(jen.Id("ctx"), jen.Id("src").Dot(idField.Getter).Call())),
	)

	f.Comment("DeleteByID removes the row keyed by id.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("DeleteByID").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Add(idType),
	).Error().Block(
		jen.List(jen.Id("n"), jen.Err()).Op(":=").Id("r").Dot("store").Dot("DeleteRows").Call(
			jen.Id("ctx"), jen.Id(entity+"Table"), jen.Qual(runtimePkg, "Eq").Call(jen.Id(idConst), jen.Id("id")),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.If(jen.Id("n").Op("==").Lit(0)).Block(
			jen.Return(jen.Qual(runtimePkg, "NewNotFoundErrorWithID").Call(jen.Id(entity+"Table"), jen.Id("id"))),
		),
		jen.Return(jen.Nil()),
	)

	return f
}
