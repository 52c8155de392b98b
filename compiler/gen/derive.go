package gen

import "github.com/syssam/tablegen/schema"

// Derive turns the registered tables into artifact sets. The result is
// a pure function of the registry contents and the configuration:
// deriving twice yields identical sets in identical order.
//
// Derivation never stops at the first fault. Every diagnostic of the
// pass lands in diag, a table with an error produces no artifact set,
// and every healthy table still produces its full set.
func Derive(r *Registry, cfg *Config, diag *Diagnostics) []*ArtifactSet {
	tables := r.Tables()
	detectCollisions(tables, diag)

	sets := make([]*ArtifactSet, 0, len(tables))
	for _, t := range tables {
		if t.Kind != schema.KindTable {
			diag.Error(t.Name, &InvalidTargetKindError{
				Table:  t.Name,
				Target: t.Name,
				Kind:   t.Kind.String(),
			})
			continue
		}
		validateRefs(t, diag)
		if len(t.Columns) == 0 {
			diag.Warn(&EmptyColumnSetWarning{Table: t.Name})
		}
		set := deriveTable(t, cfg, diag)
		if diag.Failed(t.Name) {
			continue
		}
		sets = append(sets, set)
	}
	return sets
}

// validateRefs re-checks every reference column against the registry
// state at derivation time. A reference that extraction left unbound,
// or whose target has since been removed, is a hard fault.
func validateRefs(t *Table, diag *Diagnostics) {
	for _, c := range t.Columns {
		if c.Ref != nil && c.Ref.Table == nil {
			diag.Error(t.Name, &UnresolvedTargetError{
				Table:  t.Name,
				Column: c.Name,
				Target: c.Ref.Target,
			})
		}
	}
}

// deriveTable builds the artifact set of a single table.
func deriveTable(t *Table, cfg *Config, diag *Diagnostics) *ArtifactSet {
	entity := t.EntityName()
	set := &ArtifactSet{
		Table:         t,
		Entity:        entity,
		Serialization: cfg.Serialization,
	}

	// The create shape carries the caller-writable columns, the full
	// shape carries them all. Both keep declaration order, so the
	// create shape is an ordered subset of the full one.
	set.CreateDto = &DtoSpec{
		Name:  entity + "CreateData",
		Iface: entity + "Create",
	}
	set.FullDto = &DtoSpec{
		Name:  entity + "FullData",
		Iface: entity + "Full",
	}
	for _, c := range t.Columns {
		f := &FieldSpec{
			Name:   c.StructField(),
			Getter: "Get" + c.StructField(),
			Column: c,
		}
		set.FullDto.Fields = append(set.FullDto.Fields, f)
		if c.Writable() {
			set.CreateDto.Fields = append(set.CreateDto.Fields, f)
		}
	}

	set.Projections = resolveProjections(t, set.FullDto, diag)

	if t.Repository {
		set.Repository = &RepositorySpec{Name: entity + "Repository"}
	}
	if t.Dao {
		dao := &DaoSpec{Name: entity + "Entity"}
		for _, c := range t.ForeignKeys() {
			if c.Ref.Table == nil {
				continue
			}
			dao.Relations = append(dao.Relations, &RelationSpec{
				Name:   "Load" + c.Ref.Table.EntityName(),
				Field:  c,
				Target: c.Ref.Table,
			})
		}
		set.Dao = dao
	}
	return set
}
