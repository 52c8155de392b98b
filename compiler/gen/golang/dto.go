package golang

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// GenDtos renders the transfer shapes of a table: the create and full
// interfaces, their struct implementations, and serialization methods
// when enabled. The create shape carries the caller-writable columns,
// the full shape embeds it and adds the store-produced ones.
func (e *Emitter) GenDtos(set *gen.ArtifactSet) *jen.File {
	f := e.h.NewFile()
	// The package is named msgpack; without this jennifer derives the
	// identifier "v5" from the import path's version suffix.
	f.ImportName(msgpackPkg, "msgpack")

	f.Commentf("%s is the caller-writable shape of %s.", set.CreateDto.Iface, set.Table.Name)
	f.Type().Id(set.CreateDto.Iface).InterfaceFunc(func(g *jen.Group) {
		for _, fs := range set.CreateDto.Fields {
			g.Id(fs.Getter).Params().Add(goType(fs.Column))
		}
	})

	f.Commentf("%s is the complete shape of %s.", set.FullDto.Iface, set.Table.Name)
	f.Type().Id(set.FullDto.Iface).InterfaceFunc(func(g *jen.Group) {
		g.Id(set.CreateDto.Iface)
		for _, fs := range set.FullDto.Fields {
			if fs.Column.Writable() {
				continue
			}
			g.Id(fs.Getter).Params().Add(goType(fs.Column))
		}
	})

	e.dtoStruct(f, set, set.CreateDto)
	e.dtoStruct(f, set, set.FullDto)

	return f
}

// dtoStruct renders one transfer struct with its getters and interface
// assertion.
func (e *Emitter) dtoStruct(f *jen.File, set *gen.ArtifactSet, dto *gen.DtoSpec) {
	f.Commentf("%s implements %s.", dto.Name, dto.Iface)
	f.Type().Id(dto.Name).StructFunc(func(g *jen.Group) {
		for _, fs := range dto.Fields {
			if fs.Column.Comment != "" {
				g.Comment(fs.Column.Comment)
			}
			if fs.Column.Default != "" {
				g.Commentf("Default: %s", fs.Column.Default)
			}
			field := g.Id(fs.Name).Add(goType(fs.Column))
			if set.Serialization {
				field.Tag(tags(fs.Column))
			}
		}
	})

	recv := "d"
	for _, fs := range dto.Fields {
		if fs.Column.Comment != "" {
			f.Commentf("%s returns the %s column value. %s", fs.Getter, fs.Column.Name, fs.Column.Comment)
		} else {
			f.Commentf("%s returns the %s column value.", fs.Getter, fs.Column.Name)
		}
		f.Func().Params(jen.Id(recv).Op("*").Id(dto.Name)).Id(fs.Getter).Params().Add(goType(fs.Column)).Block(
			jen.Return(jen.Id(recv).Dot(fs.Name)),
		)
	}

	if set.Serialization {
		f.Commentf("MarshalBinary encodes %s to its wire form.", dto.Name)
		f.Func().Params(jen.Id(recv).Op("*").Id(dto.Name)).Id("MarshalBinary").Params().Params(jen.Index().Byte(), jen.Error()).Block(
			jen.Return(jen.Qual(msgpackPkg, "Marshal").Call(jen.Id(recv))),
		)
		f.Commentf("UnmarshalBinary decodes %s from its wire form.", dto.Name)
		f.Func().Params(jen.Id(recv).Op("*").Id(dto.Name)).Id("UnmarshalBinary").Params(jen.Id("data").Index().Byte()).Error().Block(
			jen.Return(jen.Qual(msgpackPkg, "Unmarshal").Call(jen.Id("data"), jen.Id(recv))),
		)
	}

	f.Var().Op("_").Id(dto.Iface).Op("=").Parens(jen.Op("*").Id(dto.Name)).Call(jen.Nil())
}

// ctorParams renders constructor parameters for the fields, in order.
func ctorParams(fields []*gen.FieldSpec) []jen.Code {
	params := make([]jen.Code, len(fields))
	for i, fs := range fields {
		params[i] = jen.Id(paramName(fs)).Add(goType(fs.Column))
	}
	return params
}

// paramName returns the parameter name of a field, avoiding predeclared
// identifiers.
func paramName(fs *gen.FieldSpec) string {
	name := lowerFirst(fs.Name)
	switch name {
	case "error", "string", "int", "bool", "type", "range", "func", "map", "len":
		name = name + "Value"
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	// Lower the leading acronym run as a whole: "ID" to "id",
	// "URLPath" to "urlPath".
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return s
	}
	if i > 1 && i < len(s) {
		i--
	}
	return fmt.Sprintf("%s%s", lowerASCII(s[:i]), s[i:])
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
