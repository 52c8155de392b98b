// Package golang renders artifact sets into Go source files with
// jennifer. The generated code depends only on the runtime package and
// the standard library, plus the msgpack codec when serialization
// support is requested.
package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/schema"
)

// Import paths referenced by generated code.
const (
	runtimePkg = "github.com/syssam/tablegen/runtime"
	uuidPkg    = "github.com/google/uuid"
	msgpackPkg = "github.com/vmihailenco/msgpack/v5"
)

// Helper is the surface the emitter needs from its generator.
type Helper interface {
	// NewFile creates an output file with the configured header.
	NewFile() *jen.File
	// Pkg returns the output package name.
	Pkg() string
}

// Emitter renders artifact sets as Go source.
type Emitter struct {
	h Helper
}

// NewEmitter creates an emitter bound to the given generator.
//
// Example:
//
//	g := gen.NewGenerator(sets, outDir)
//	g.WithEmitter(golang.NewEmitter(g))
func NewEmitter(h Helper) *Emitter {
	return &Emitter{h: h}
}

// Verify Emitter implements gen.Emitter at compile time.
var _ gen.Emitter = (*Emitter)(nil)

// baseType returns the Go type of a field type.
func baseType(t schema.Type) jen.Code {
	switch t {
	case schema.TypeBool:
		return jen.Bool()
	case schema.TypeInt:
		return jen.Int()
	case schema.TypeInt64:
		return jen.Int64()
	case schema.TypeFloat64:
		return jen.Float64()
	case schema.TypeString, schema.TypeText:
		return jen.String()
	case schema.TypeDate, schema.TypeTimestamp:
		return jen.Qual("time", "Time")
	case schema.TypeUUID:
		return jen.Qual(uuidPkg, "UUID")
	case schema.TypeBytes:
		return jen.Index().Byte()
	default:
		return jen.Any()
	}
}

// goType returns the Go type of a column: the base type, behind a
// pointer when the column is nullable.
func goType(c *gen.Column) jen.Code {
	if c.Nullable {
		return jen.Op("*").Add(baseType(c.Type))
	}
	return baseType(c.Type)
}

// convName returns the runtime conversion helper matching a field type.
func convName(t schema.Type) string {
	switch t {
	case schema.TypeBool:
		return "Bool"
	case schema.TypeInt:
		return "Int"
	case schema.TypeInt64:
		return "Int64"
	case schema.TypeFloat64:
		return "Float64"
	case schema.TypeString, schema.TypeText:
		return "String"
	case schema.TypeDate, schema.TypeTimestamp:
		return "Time"
	case schema.TypeUUID:
		return "UUID"
	case schema.TypeBytes:
		return "Bytes"
	default:
		return "String"
	}
}

// scanValue renders the conversion of a raw row value for a column:
// runtime.Int64(v) for plain columns, runtime.Nullable(v, runtime.Int64)
// for nullable ones.
func scanValue(c *gen.Column, v jen.Code) jen.Code {
	conv := convName(c.Type)
	if c.Nullable {
		return jen.Qual(runtimePkg, "Nullable").Call(v, jen.Qual(runtimePkg, conv))
	}
	return jen.Qual(runtimePkg, conv).Call(v)
}

// constName returns the column constant for an entity column,
// e.g. "UserColumnID".
func constName(entity string, f *gen.FieldSpec) string {
	return entity + "Column" + f.Name
}

// tags returns the struct tags for a field of a serializable DTO.
func tags(c *gen.Column) map[string]string {
	name := c.Name
	if c.Nullable {
		name += ",omitempty"
	}
	return map[string]string{"json": name, "msgpack": name}
}
