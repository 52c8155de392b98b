package schema

import "fmt"

// Type is the declared data type of a column.
type Type uint8

// Column types supported by the compiler.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt
	TypeInt64
	TypeFloat64
	TypeString
	TypeText
	TypeDate
	TypeTimestamp
	TypeUUID
	TypeBytes
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:   "invalid",
	TypeBool:      "bool",
	TypeInt:       "int",
	TypeInt64:     "int64",
	TypeFloat64:   "float64",
	TypeString:    "string",
	TypeText:      "text",
	TypeDate:      "date",
	TypeTimestamp: "timestamp",
	TypeUUID:      "uuid",
	TypeBytes:     "bytes",
}

// String returns the declaration name of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a declarable column type.
func (t Type) Valid() bool { return t > TypeInvalid && t < endTypes }

// Numeric reports if the type is a numeric type.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeInt64 || t == TypeFloat64
}

// Integer reports if the type is an integer type. Integer types are the
// only valid identity column types besides uuid.
func (t Type) Integer() bool { return t == TypeInt || t == TypeInt64 }

// TypeByName returns the type declared under the given name.
func TypeByName(name string) (Type, bool) {
	for t := TypeInvalid + 1; t < endTypes; t++ {
		if typeNames[t] == name {
			return t, true
		}
	}
	return TypeInvalid, false
}

// ColumnDescriptor describes a single column of a table declaration.
// Descriptors are immutable once handed to the compiler.
type ColumnDescriptor struct {
	Name      string // column name in the store.
	Type      Type   // declared type. May be zero for foreign keys.
	Nullable  bool   // value may be absent.
	Identity  bool   // primary-key column.
	Generated bool   // value produced by the store, never by the caller.
	Default   string // opaque default-value expression, copied verbatim.
	Comment   string // documentation text.
	Ref       string // referenced table name for foreign-key columns.
	Err       error  // builder error, checked by the extractor.
}

// ColumnBuilder builds a ColumnDescriptor through a fluent API.
type ColumnBuilder struct {
	desc *ColumnDescriptor
}

// Column returns a new column builder with an explicit type.
func Column(name string, t Type) *ColumnBuilder {
	b := &ColumnBuilder{desc: &ColumnDescriptor{Name: name, Type: t}}
	if name == "" {
		b.desc.Err = fmt.Errorf("schema: column with empty name")
	}
	return b
}

// Bool returns a new bool column.
func Bool(name string) *ColumnBuilder { return Column(name, TypeBool) }

// Int returns a new int column.
func Int(name string) *ColumnBuilder { return Column(name, TypeInt) }

// Int64 returns a new int64 column.
func Int64(name string) *ColumnBuilder { return Column(name, TypeInt64) }

// Float64 returns a new float64 column.
func Float64(name string) *ColumnBuilder { return Column(name, TypeFloat64) }

// String returns a new string column.
func String(name string) *ColumnBuilder { return Column(name, TypeString) }

// Text returns a new text column. It maps to the same field type as String
// and exists to keep declared storage intent visible in the declaration.
func Text(name string) *ColumnBuilder { return Column(name, TypeText) }

// Date returns a new date column.
func Date(name string) *ColumnBuilder { return Column(name, TypeDate) }

// Timestamp returns a new timestamp column.
func Timestamp(name string) *ColumnBuilder { return Column(name, TypeTimestamp) }

// UUID returns a new uuid column.
func UUID(name string) *ColumnBuilder { return Column(name, TypeUUID) }

// Bytes returns a new bytes column.
func Bytes(name string) *ColumnBuilder { return Column(name, TypeBytes) }

// Ref returns a new foreign-key column referencing the identity column of
// the given table. Its field type is resolved from the target table, so no
// type is declared here.
func Ref(name, table string) *ColumnBuilder {
	b := &ColumnBuilder{desc: &ColumnDescriptor{Name: name}}
	switch {
	case name == "":
		b.desc.Err = fmt.Errorf("schema: column with empty name")
	case table == "":
		b.desc.Err = fmt.Errorf("schema: column %q references an empty table name", name)
	default:
		b.desc.Ref = table
	}
	return b
}

// Nullable marks the column as nullable. The generated field becomes an
// optional of the underlying type defaulting to absent.
func (b *ColumnBuilder) Nullable() *ColumnBuilder {
	b.desc.Nullable = true
	return b
}

// Identity marks the column as the table's primary key.
func (b *ColumnBuilder) Identity() *ColumnBuilder {
	b.desc.Identity = true
	return b
}

// Generated marks the column value as produced by the store. Generated
// columns are excluded from the create shape.
func (b *ColumnBuilder) Generated() *ColumnBuilder {
	b.desc.Generated = true
	return b
}

// Default sets the default-value expression. The expression is an opaque
// token positioned verbatim in generated output, never evaluated.
func (b *ColumnBuilder) Default(expr string) *ColumnBuilder {
	b.desc.Default = expr
	return b
}

// Comment sets the documentation text of the column.
func (b *ColumnBuilder) Comment(c string) *ColumnBuilder {
	b.desc.Comment = c
	return b
}

// References marks the column as a foreign key to the given table.
func (b *ColumnBuilder) References(table string) *ColumnBuilder {
	if table == "" {
		b.desc.Err = fmt.Errorf("schema: column %q references an empty table name", b.desc.Name)
		return b
	}
	b.desc.Ref = table
	return b
}

// Descriptor returns the built descriptor after validating it.
func (b *ColumnBuilder) Descriptor() *ColumnDescriptor {
	d := b.desc
	if d.Err == nil {
		switch {
		case d.Ref == "" && !d.Type.Valid():
			d.Err = fmt.Errorf("schema: column %q has no valid type", d.Name)
		case d.Identity && d.Nullable:
			d.Err = fmt.Errorf("schema: identity column %q cannot be nullable", d.Name)
		case d.Identity && d.Ref != "":
			d.Err = fmt.Errorf("schema: identity column %q cannot be a foreign key", d.Name)
		case d.Identity && !d.Type.Integer() && d.Type != TypeUUID:
			d.Err = fmt.Errorf("schema: identity column %q must be an integer or uuid type", d.Name)
		}
	}
	return d
}
