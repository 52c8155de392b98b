package gen

import (
	"sort"

	"github.com/syssam/tablegen/schema"
)

// detectCollisions reports every pair of tables whose declarations
// derive the same entity name. All colliding declarations are rejected;
// a collision is a fault of every declaration that participates in it.
func detectCollisions(tables []*Table, diag *Diagnostics) {
	byEntity := make(map[string][]*Table)
	order := make([]string, 0, len(tables))
	for _, t := range tables {
		if t.Kind != schema.KindTable {
			continue
		}
		name := t.EntityName()
		if _, seen := byEntity[name]; !seen {
			order = append(order, name)
		}
		byEntity[name] = append(byEntity[name], t)
	}
	for _, name := range order {
		group := byEntity[name]
		if len(group) < 2 {
			continue
		}
		declared := make([]string, len(group))
		for i, t := range group {
			declared[i] = t.Name
		}
		sort.Strings(declared)
		// One error names every colliding declaration; each of them fails.
		diag.Error(group[0].Name, &NameCollisionError{Name: name, Tables: declared})
		for _, t := range group[1:] {
			diag.Fail(t.Name)
		}
	}
}
