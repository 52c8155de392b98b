package gen

// resolveProjections binds the declared projections of a table against
// its derived full shape. A declared field matches either the derived
// Go field name or the raw column name. All mismatches of one
// projection are reported together in a single diagnostic, so the
// author fixes the whole declaration in one round.
func resolveProjections(t *Table, full *DtoSpec, diag *Diagnostics) []*ProjectionArtifact {
	var arts []*ProjectionArtifact
	for _, p := range t.Projections {
		var (
			fields  []*FieldSpec
			missing []string
		)
		for _, name := range p.Fields {
			f := full.Field(name)
			if f == nil {
				if c := t.Column(name); c != nil {
					f = full.Field(c.StructField())
				}
			}
			if f == nil {
				missing = append(missing, name)
				continue
			}
			fields = append(fields, f)
		}
		if len(missing) > 0 {
			diag.Error(t.Name, &ProjectionFieldError{
				Table:      t.Name,
				Projection: p.Name,
				Missing:    missing,
				Available:  full.FieldNames(),
			})
			continue
		}
		art := &ProjectionArtifact{
			Projection: p,
			Dto: &DtoSpec{
				Name:   pascal(p.Name) + "Data",
				Iface:  pascal(p.Name),
				Fields: fields,
			},
		}
		if p.UpdateFunction {
			update := &DtoSpec{
				Name:  pascal(p.Name) + "UpdateData",
				Iface: pascal(p.Name) + "Update",
			}
			for _, f := range fields {
				if f.Column.Writable() {
					update.Fields = append(update.Fields, f)
				}
			}
			art.Update = update
		}
		arts = append(arts, art)
	}
	return arts
}
