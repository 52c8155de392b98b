package load

import (
	"fmt"
	"os"

	"ariga.io/atlas/sql/postgres"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tablegen/schema"
)

// File is the YAML schema-file layout understood by the CLI discovery
// adapter.
type File struct {
	Tables []*yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name        string            `yaml:"name"`
	Kind        string            `yaml:"kind"`
	Comment     string            `yaml:"comment"`
	Columns     []*yamlColumn     `yaml:"columns"`
	Repository  bool              `yaml:"repository"`
	Dao         bool              `yaml:"dao"`
	Projections []*yamlProjection `yaml:"projections"`
}

type yamlColumn struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Nullable   bool   `yaml:"nullable"`
	Identity   bool   `yaml:"identity"`
	Generated  bool   `yaml:"generated"`
	Default    string `yaml:"default"`
	Comment    string `yaml:"comment"`
	References string `yaml:"references"`
}

type yamlProjection struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
	Update bool     `yaml:"update"`
}

// sqlType maps a SQL column type name to a field type. Serial types are
// store-generated by definition. Native field-type names ("int64",
// "timestamp", ...) are accepted as well, see columnType.
var sqlTypes = map[string]struct {
	typ       schema.Type
	generated bool
}{
	postgres.TypeSmallSerial: {schema.TypeInt, true},
	postgres.TypeSerial:      {schema.TypeInt, true},
	postgres.TypeBigSerial:   {schema.TypeInt64, true},
	postgres.TypeSmallInt:    {schema.TypeInt, false},
	postgres.TypeInteger:     {schema.TypeInt, false},
	postgres.TypeInt:         {schema.TypeInt, false},
	postgres.TypeBigInt:      {schema.TypeInt64, false},
	postgres.TypeReal:        {schema.TypeFloat64, false},
	postgres.TypeDouble:      {schema.TypeFloat64, false},
	postgres.TypeBoolean:     {schema.TypeBool, false},
	postgres.TypeVarChar:     {schema.TypeString, false},
	postgres.TypeCharVar:     {schema.TypeString, false},
	postgres.TypeText:        {schema.TypeText, false},
	postgres.TypeDate:        {schema.TypeDate, false},
	postgres.TypeTimestamp:   {schema.TypeTimestamp, false},
	postgres.TypeTimestampTZ: {schema.TypeTimestamp, false},
	postgres.TypeUUID:        {schema.TypeUUID, false},
	postgres.TypeBytea:       {schema.TypeBytes, false},
}

// columnType resolves a declared type name to a field type. It accepts
// both SQL type names (including the serial family, which implies a
// store-generated value) and native field-type names.
func columnType(name string) (typ schema.Type, generated bool, err error) {
	if st, ok := sqlTypes[name]; ok {
		return st.typ, st.generated, nil
	}
	if t, ok := schema.TypeByName(name); ok {
		return t, false, nil
	}
	return schema.TypeInvalid, false, fmt.Errorf("load: unknown column type %q", name)
}

// Parse decodes a YAML schema file into loaded tables, in declaration
// order.
func Parse(buf []byte) ([]*Table, error) {
	var f File
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, fmt.Errorf("load: parsing schema file: %w", err)
	}
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("load: schema file declares no tables")
	}
	tables := make([]*Table, 0, len(f.Tables))
	for _, yt := range f.Tables {
		t, err := yt.table()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ParseFile reads and decodes the YAML schema file at the given path.
func ParseFile(path string) ([]*Table, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: reading schema file: %w", err)
	}
	return Parse(buf)
}

func (yt *yamlTable) table() (*Table, error) {
	kind := yt.Kind
	if kind == "" {
		kind = schema.KindTable.String()
	}
	t := &Table{
		Name:       yt.Name,
		Kind:       kind,
		Comment:    yt.Comment,
		Repository: yt.Repository,
		Dao:        yt.Dao,
	}
	for _, yc := range yt.Columns {
		c, err := yc.column()
		if err != nil {
			return nil, fmt.Errorf("load: table %q: %w", yt.Name, err)
		}
		t.Columns = append(t.Columns, c)
	}
	for _, yp := range yt.Projections {
		t.Projections = append(t.Projections, &Projection{
			Name:           yp.Name,
			Fields:         append([]string(nil), yp.Fields...),
			UpdateFunction: yp.Update,
		})
	}
	return t, nil
}

func (yc *yamlColumn) column() (*Column, error) {
	c := &Column{
		Name:      yc.Name,
		Nullable:  yc.Nullable,
		Identity:  yc.Identity,
		Generated: yc.Generated,
		Default:   yc.Default,
		Comment:   yc.Comment,
		Ref:       yc.References,
	}
	switch {
	case yc.Type != "":
		typ, generated, err := columnType(yc.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", yc.Name, err)
		}
		c.Type = typ
		// Serial types are produced by the store. An identity serial is
		// still the primary key rather than a generated payload column.
		if generated && !c.Identity {
			c.Generated = true
		}
	case yc.References == "":
		return nil, fmt.Errorf("column %q: missing type", yc.Name)
	}
	return c, nil
}
