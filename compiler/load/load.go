// Package load carries table declarations across the discovery boundary.
//
// A load.Table is the serializable form of a schema.TableDescriptor: the
// discovery adapter builds descriptors (from the DSL, a YAML file, or any
// host mechanism), converts them here, and hands the result to the
// compiler. The msgpack codec is the wire format for hosts that extract
// declarations in a separate process.
package load

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/tablegen/schema"
)

// Table represents a table declaration that was loaded from a discovery
// adapter.
type Table struct {
	Name        string        `msgpack:"name"`
	Kind        string        `msgpack:"kind"`
	Comment     string        `msgpack:"comment,omitempty"`
	Columns     []*Column     `msgpack:"columns"`
	Repository  bool          `msgpack:"repository,omitempty"`
	Dao         bool          `msgpack:"dao,omitempty"`
	Projections []*Projection `msgpack:"projections,omitempty"`
}

// Column represents a column declaration that was loaded from a discovery
// adapter.
type Column struct {
	Name      string      `msgpack:"name"`
	Type      schema.Type `msgpack:"type,omitempty"`
	Nullable  bool        `msgpack:"nullable,omitempty"`
	Identity  bool        `msgpack:"identity,omitempty"`
	Generated bool        `msgpack:"generated,omitempty"`
	Default   string      `msgpack:"default,omitempty"`
	Comment   string      `msgpack:"comment,omitempty"`
	Ref       string      `msgpack:"ref,omitempty"`
}

// Projection represents a projection declaration of a table.
type Projection struct {
	Name           string   `msgpack:"name"`
	Fields         []string `msgpack:"fields"`
	UpdateFunction bool     `msgpack:"update_function,omitempty"`
}

// NewTable creates a loaded table from a table descriptor.
// It returns an error if the descriptor contains a builder error.
func NewTable(td *schema.TableDescriptor) (*Table, error) {
	if td.Err != nil {
		return nil, fmt.Errorf("table %q: %w", td.Name, td.Err)
	}
	t := &Table{
		Name:       td.Name,
		Kind:       td.Kind.String(),
		Comment:    td.Comment,
		Repository: td.Repository,
		Dao:        td.Dao,
	}
	for _, cd := range td.Columns {
		c, err := NewColumn(cd)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", td.Name, err)
		}
		t.Columns = append(t.Columns, c)
	}
	for _, pd := range td.Projections {
		t.Projections = append(t.Projections, &Projection{
			Name:           pd.Name,
			Fields:         append([]string(nil), pd.Fields...),
			UpdateFunction: pd.UpdateFunction,
		})
	}
	return t, nil
}

// NewColumn creates a loaded column from a column descriptor.
func NewColumn(cd *schema.ColumnDescriptor) (*Column, error) {
	if cd.Err != nil {
		return nil, cd.Err
	}
	return &Column{
		Name:      cd.Name,
		Type:      cd.Type,
		Nullable:  cd.Nullable,
		Identity:  cd.Identity,
		Generated: cd.Generated,
		Default:   cd.Default,
		Comment:   cd.Comment,
		Ref:       cd.Ref,
	}, nil
}

// Tables converts a set of descriptors in declaration order. It fails on
// the first descriptor that carries a builder error, since a broken
// declaration is a programming error in the host, not a schema diagnostic.
func Tables(tds ...*schema.TableDescriptor) ([]*Table, error) {
	out := make([]*Table, 0, len(tds))
	for _, td := range tds {
		t, err := NewTable(td)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// MarshalTables encodes loaded tables to the msgpack wire format.
func MarshalTables(tables []*Table) ([]byte, error) {
	return msgpack.Marshal(tables)
}

// UnmarshalTables decodes the given buffer to loaded tables.
func UnmarshalTables(buf []byte) ([]*Table, error) {
	var tables []*Table
	if err := msgpack.Unmarshal(buf, &tables); err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.Name == "" {
			return nil, fmt.Errorf("load: table with empty name in snapshot")
		}
	}
	return tables, nil
}
