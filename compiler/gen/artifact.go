package gen

// ArtifactSet is the complete, deterministic set of artifact
// specifications derived for one table. Two derivations of the same
// declarations with the same configuration produce identical sets.
type ArtifactSet struct {
	Table  *Table
	Entity string // base Go type name, e.g. "User"

	// CreateDto carries the caller-writable columns; identity and
	// store-generated columns are excluded. FullDto carries every
	// column. Both keep declaration order.
	CreateDto *DtoSpec
	FullDto   *DtoSpec

	Projections []*ProjectionArtifact

	// Repository and Dao are nil unless the declaration requested them.
	Repository *RepositorySpec
	Dao        *DaoSpec

	// Serialization mirrors the run configuration: generated DTO
	// structs carry codec tags and binary marshal methods.
	Serialization bool
}

// DtoSpec describes one generated transfer struct and its interface.
type DtoSpec struct {
	Name   string // struct name, e.g. "UserCreateData"
	Iface  string // interface name, e.g. "UserCreate"
	Fields []*FieldSpec
}

// FieldSpec describes one field of a transfer struct.
type FieldSpec struct {
	Name   string // Go field name
	Getter string // interface getter name
	Column *Column
}

// ProjectionArtifact describes the artifacts of one declared projection:
// its transfer struct, mappers from the full shape, and optionally an
// update writer for the writable subset of its fields.
type ProjectionArtifact struct {
	Projection *Projection
	Dto        *DtoSpec
	Update     *DtoSpec // nil unless the projection requested an update function
}

// RepositorySpec describes a generated repository type.
type RepositorySpec struct {
	Name string // e.g. "UserRepository"
}

// DaoSpec describes a generated live entity type.
type DaoSpec struct {
	Name      string // e.g. "UserEntity"
	Relations []*RelationSpec
}

// RelationSpec describes a relationship accessor on a live entity,
// derived from a resolved reference column.
type RelationSpec struct {
	Name   string  // accessor name, e.g. "LoadAuthor"
	Field  *Column // referencing column
	Target *Table  // referenced table
}

// Field returns the field spec with the given Go name, or nil.
func (d *DtoSpec) Field(name string) *FieldSpec {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldNames returns the Go field names in order.
func (d *DtoSpec) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}
