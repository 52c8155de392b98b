// Package schema provides the declaration surface for tablegen.
//
// A table declaration is a named, ordered set of column descriptors plus
// generation options. Declarations are plain values: the discovery adapter
// (DSL, YAML file, or any host mechanism) constructs them and hands them to
// the compiler, which never inspects source code or reflection metadata.
//
// Example:
//
//	users := schema.Table("users",
//		schema.Int64("id").Identity(),
//		schema.String("username").Comment("Login name."),
//		schema.String("password"),
//		schema.Date("birth_date").Nullable(),
//		schema.Timestamp("created_at").Generated().Default("now()"),
//	).
//		WithRepository().
//		WithDao().
//		Projection(schema.Projection("UserSummary", "id", "username"))
package schema
