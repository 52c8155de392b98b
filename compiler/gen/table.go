// Package gen implements the schema compiler: it extracts a table model
// from loaded declarations, resolves references and projections, derives
// artifact specifications and drives code emission.
package gen

import (
	"sort"
	"strings"

	"github.com/syssam/tablegen/compiler/load"
	"github.com/syssam/tablegen/schema"
)

// Table is the compiler model of a table declaration.
type Table struct {
	Name        string
	Kind        schema.Kind
	Comment     string
	Columns     []*Column
	ID          *Column // identity column, nil when the table has none
	Repository  bool
	Dao         bool
	Projections []*Projection
}

// Column is the compiler model of a column declaration.
type Column struct {
	Name      string
	Type      schema.Type
	Nullable  bool
	Identity  bool
	Generated bool
	Default   string // opaque expression, carried verbatim
	Comment   string
	Ref       *ForeignKey // nil unless the column references another table
}

// ForeignKey is a column reference to another table. Table stays nil
// until the reference is resolved against the registry.
type ForeignKey struct {
	Target string
	Table  *Table
}

// Projection is the compiler model of a projection declaration.
type Projection struct {
	Name           string
	Fields         []string
	UpdateFunction bool
}

// StructField returns the Go field name derived from the column name.
func (c *Column) StructField() string {
	return pascal(c.Name)
}

// Writable reports whether callers may supply a value for the column.
// Identity and store-generated columns are excluded.
func (c *Column) Writable() bool {
	return !c.Identity && !c.Generated
}

// EntityName returns the Go type name derived from the table name.
func (t *Table) EntityName() string {
	return pascal(singular(t.Name))
}

// PackageDir returns the subdirectory name for per-table constants.
func (t *Table) PackageDir() string {
	return strings.ToLower(strings.ReplaceAll(snake(singular(t.Name)), "_", ""))
}

// Receiver returns the method receiver name for the entity type.
func (t *Table) Receiver() string {
	return receiver(t.EntityName())
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ForeignKeys returns the reference columns in declaration order.
func (t *Table) ForeignKeys() []*Column {
	var fks []*Column
	for _, c := range t.Columns {
		if c.Ref != nil {
			fks = append(fks, c)
		}
	}
	return fks
}

// normalize maps a declared name to its matching form. References are
// matched case- and separator-insensitively, so "UserAccount" and
// "user_accounts" both hit the "user_accounts" table.
func normalize(name string) string {
	return singular(strings.ReplaceAll(snake(name), "_", ""))
}

// Registry holds the extracted tables of one compiler run and resolves
// references between them.
type Registry struct {
	tables []*Table // declaration order
	byNorm map[string][]*Table
}

// NewRegistry extracts the compiler model from loaded declarations and
// resolves every column reference it can. Extraction reports ambiguous
// and wrong-kind references; references with no matching table are left
// unresolved and re-checked at derivation, since the missing table may
// still be registered by a later adapter pass.
func NewRegistry(decls []*load.Table, diag *Diagnostics) *Registry {
	r := &Registry{byNorm: make(map[string][]*Table)}
	for _, d := range decls {
		r.add(newTable(d))
	}
	r.resolve(diag)
	return r
}

func newTable(d *load.Table) *Table {
	kind, ok := schema.KindByName(d.Kind)
	if !ok {
		kind = schema.KindTable
	}
	t := &Table{
		Name:       d.Name,
		Kind:       kind,
		Comment:    d.Comment,
		Repository: d.Repository,
		Dao:        d.Dao,
	}
	for _, dc := range d.Columns {
		c := &Column{
			Name:      dc.Name,
			Type:      dc.Type,
			Nullable:  dc.Nullable,
			Identity:  dc.Identity,
			Generated: dc.Generated,
			Default:   dc.Default,
			Comment:   dc.Comment,
		}
		if dc.Ref != "" {
			c.Ref = &ForeignKey{Target: dc.Ref}
		}
		t.Columns = append(t.Columns, c)
		if c.Identity && t.ID == nil {
			t.ID = c
		}
	}
	for _, dp := range d.Projections {
		t.Projections = append(t.Projections, &Projection{
			Name:           dp.Name,
			Fields:         append([]string(nil), dp.Fields...),
			UpdateFunction: dp.UpdateFunction,
		})
	}
	return t
}

func (r *Registry) add(t *Table) {
	r.tables = append(r.tables, t)
	key := normalize(t.Name)
	r.byNorm[key] = append(r.byNorm[key], t)
}

// resolve binds every reference column to its target table.
func (r *Registry) resolve(diag *Diagnostics) {
	for _, t := range r.tables {
		for _, c := range t.Columns {
			if c.Ref == nil || c.Ref.Table != nil {
				continue
			}
			matches := r.byNorm[normalize(c.Ref.Target)]
			switch {
			case len(matches) > 1:
				names := make([]string, len(matches))
				for i, m := range matches {
					names[i] = m.Name
				}
				sort.Strings(names)
				diag.Error(t.Name, &AmbiguousTargetError{
					Table:   t.Name,
					Column:  c.Name,
					Target:  c.Ref.Target,
					Matches: names,
				})
			case len(matches) == 1:
				target := matches[0]
				if target.Kind != schema.KindTable {
					diag.Error(t.Name, &InvalidTargetKindError{
						Table:  t.Name,
						Column: c.Name,
						Target: target.Name,
						Kind:   target.Kind.String(),
					})
					continue
				}
				c.Ref.Table = target
				// A reference column inherits the key type of its target.
				if !c.Type.Valid() {
					c.Type = target.KeyType()
				}
			}
		}
	}
}

// KeyType returns the type of the identity column, defaulting to int64
// for tables without one.
func (t *Table) KeyType() schema.Type {
	if t.ID != nil {
		return t.ID.Type
	}
	return schema.TypeInt64
}

// Tables returns the registered tables in declaration order.
func (r *Registry) Tables() []*Table {
	return r.tables
}

// Lookup returns the registered table with the given declared name.
func (r *Registry) Lookup(name string) (*Table, bool) {
	for _, t := range r.tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Remove unregisters the table with the given declared name and unbinds
// every reference that pointed at it. A later derivation pass then
// reports those references as unresolved.
func (r *Registry) Remove(name string) bool {
	removed, ok := r.Lookup(name)
	if !ok {
		return false
	}
	tables := r.tables[:0]
	for _, t := range r.tables {
		if t != removed {
			tables = append(tables, t)
		}
	}
	r.tables = tables
	key := normalize(name)
	group := r.byNorm[key][:0]
	for _, t := range r.byNorm[key] {
		if t != removed {
			group = append(group, t)
		}
	}
	if len(group) == 0 {
		delete(r.byNorm, key)
	} else {
		r.byNorm[key] = group
	}
	for _, t := range r.tables {
		for _, c := range t.Columns {
			if c.Ref != nil && c.Ref.Table == removed {
				c.Ref.Table = nil
			}
		}
	}
	return true
}
