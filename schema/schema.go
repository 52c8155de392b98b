package schema

import "fmt"

// Kind is the kind of an annotated declaration. Only singleton table
// definitions are valid generation targets; the extractor rejects
// everything else.
type Kind uint8

// Declaration kinds.
const (
	KindInvalid Kind = iota
	KindTable
	KindView
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindTable:   "table",
	KindView:    "view",
}

// String returns the declaration name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInvalid]
}

// KindByName returns the kind declared under the given name.
func KindByName(name string) (Kind, bool) {
	for k := KindInvalid + 1; k < Kind(len(kindNames)); k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// ProjectionDescriptor declares an external reduced shape of a table:
// a named field subset used to avoid over-fetching.
type ProjectionDescriptor struct {
	Name           string   // external DTO shape name.
	Fields         []string // declared field names. Must match derived field names.
	UpdateFunction bool     // also generate a builder mapping for the writable subset.
}

// ProjectionBuilder builds a ProjectionDescriptor.
type ProjectionBuilder struct {
	desc *ProjectionDescriptor
}

// Projection returns a new projection builder for the given external shape
// name and its field list.
func Projection(name string, fields ...string) *ProjectionBuilder {
	return &ProjectionBuilder{desc: &ProjectionDescriptor{Name: name, Fields: fields}}
}

// WithUpdate requests a builder mapping restricted to the writable subset
// of the projection.
func (b *ProjectionBuilder) WithUpdate() *ProjectionBuilder {
	b.desc.UpdateFunction = true
	return b
}

// Descriptor returns the built descriptor.
func (b *ProjectionBuilder) Descriptor() *ProjectionDescriptor { return b.desc }

// TableDescriptor is a complete table declaration: the input of the
// schema model extractor.
type TableDescriptor struct {
	Name        string
	Kind        Kind
	Comment     string
	Columns     []*ColumnDescriptor
	Repository  bool
	Dao         bool
	Projections []*ProjectionDescriptor
	Err         error
}

// TableBuilder builds a TableDescriptor through a fluent API.
type TableBuilder struct {
	desc *TableDescriptor
}

// Table returns a new table builder with the given columns, in declaration
// order. Column order is preserved in every generated artifact.
func Table(name string, columns ...*ColumnBuilder) *TableBuilder {
	b := &TableBuilder{desc: &TableDescriptor{Name: name, Kind: KindTable}}
	if name == "" {
		b.desc.Err = fmt.Errorf("schema: table with empty name")
	}
	for _, c := range columns {
		b.desc.Columns = append(b.desc.Columns, c.Descriptor())
	}
	return b
}

// View returns a table builder declared as a view. Views produce no
// artifacts, and referencing one from a column surfaces an
// invalid-target diagnostic.
func View(name string, columns ...*ColumnBuilder) *TableBuilder {
	b := Table(name, columns...)
	b.desc.Kind = KindView
	return b
}

// Comment sets the documentation text of the table.
func (b *TableBuilder) Comment(c string) *TableBuilder {
	b.desc.Comment = c
	return b
}

// WithRepository requests generation of the CRUD repository type.
func (b *TableBuilder) WithRepository() *TableBuilder {
	b.desc.Repository = true
	return b
}

// WithDao requests generation of the active-record entity wrapper.
func (b *TableBuilder) WithDao() *TableBuilder {
	b.desc.Dao = true
	return b
}

// Projection adds a projection declaration to the table.
func (b *TableBuilder) Projection(p *ProjectionBuilder) *TableBuilder {
	b.desc.Projections = append(b.desc.Projections, p.Descriptor())
	return b
}

// Descriptor returns the built descriptor after validating it.
func (b *TableBuilder) Descriptor() *TableDescriptor {
	d := b.desc
	if d.Err == nil {
		for _, c := range d.Columns {
			if c.Err != nil {
				d.Err = c.Err
				break
			}
		}
	}
	return d
}
