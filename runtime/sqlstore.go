package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect names supported by SQLStore.
const (
	SQLite   = "sqlite3"
	MySQL    = "mysql"
	Postgres = "postgres"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// SQLStore is a Store implementation over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// Open wraps database/sql.Open and returns a store for the connection.
func Open(dialect, source string) (*SQLStore, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(dialect, db), nil
}

// OpenDB wraps an existing database handle with a store.
func OpenDB(dialect string, db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// DB returns the underlying *sql.DB instance.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect name of the store.
func (s *SQLStore) Dialect() string {
	for _, name := range []string{MySQL, SQLite, Postgres} {
		if strings.HasPrefix(s.dialect, name) {
			return name
		}
	}
	return s.dialect
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error { return s.db.Close() }

// placeholder returns the bind placeholder for the i-th argument (1-based).
func (s *SQLStore) placeholder(i int) string {
	if s.Dialect() == Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

func checkIdents(table string, cols []string) error {
	if !isValidIdentifier(table) {
		return fmt.Errorf("runtime: invalid table name %q", table)
	}
	for _, c := range cols {
		if !isValidIdentifier(c) {
			return fmt.Errorf("runtime: invalid column name %q", c)
		}
	}
	return nil
}

// InsertRow implements Store.
func (s *SQLStore) InsertRow(ctx context.Context, table string, b *RowBuilder, returning []string) (Row, error) {
	cols, vals := b.Columns(), b.Values()
	if err := checkIdents(table, cols); err != nil {
		return nil, err
	}
	if err := checkIdents(table, returning); err != nil {
		return nil, err
	}
	var q strings.Builder
	fmt.Fprintf(&q, "INSERT INTO %s (%s) VALUES (", table, strings.Join(cols, ", "))
	for i := range vals {
		if i > 0 {
			q.WriteString(", ")
		}
		q.WriteString(s.placeholder(i + 1))
	}
	q.WriteString(")")

	row := Row{}
	for i, c := range cols {
		row[c] = vals[i]
	}
	switch {
	case len(returning) > 0 && s.Dialect() != MySQL:
		fmt.Fprintf(&q, " RETURNING %s", strings.Join(returning, ", "))
		out, err := s.queryRows(ctx, q.String(), vals, returning)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, NewNotSingularErrorWithCount(table, len(out))
		}
		for _, c := range returning {
			row[c] = out[0][c]
		}
	case len(returning) > 0:
		res, err := s.db.ExecContext(ctx, q.String(), vals...)
		if err != nil {
			return nil, err
		}
		// MySQL reports a single auto-increment key through LastInsertId.
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		row[returning[0]] = id
	default:
		if _, err := s.db.ExecContext(ctx, q.String(), vals...); err != nil {
			return nil, err
		}
	}
	return row, nil
}

// SelectRows implements Store.
func (s *SQLStore) SelectRows(ctx context.Context, table string, cols []string, p Predicate, opts ...QueryOption) ([]Row, error) {
	if err := checkIdents(table, cols); err != nil {
		return nil, err
	}
	var q strings.Builder
	fmt.Fprintf(&q, "SELECT %s FROM %s", strings.Join(cols, ", "), table)
	args, err := s.appendWhere(&q, p, nil)
	if err != nil {
		return nil, err
	}
	spec := BuildQuerySpec(opts)
	for i, term := range spec.Ordering {
		if !isValidIdentifier(term.Column) {
			return nil, fmt.Errorf("runtime: invalid column name %q", term.Column)
		}
		if i == 0 {
			q.WriteString(" ORDER BY ")
		} else {
			q.WriteString(", ")
		}
		q.WriteString(term.Column)
		if term.Desc {
			q.WriteString(" DESC")
		}
	}
	if spec.LimitCount > 0 {
		fmt.Fprintf(&q, " LIMIT %d", spec.LimitCount)
	}
	if spec.OffsetCount > 0 {
		fmt.Fprintf(&q, " OFFSET %d", spec.OffsetCount)
	}
	return s.queryRows(ctx, q.String(), args, cols)
}

// UpdateRows implements Store.
func (s *SQLStore) UpdateRows(ctx context.Context, table string, b *RowBuilder, p Predicate) (int64, error) {
	cols, vals := b.Columns(), b.Values()
	if len(cols) == 0 {
		return 0, nil
	}
	if err := checkIdents(table, cols); err != nil {
		return 0, err
	}
	var q strings.Builder
	fmt.Fprintf(&q, "UPDATE %s SET ", table)
	for i, c := range cols {
		if i > 0 {
			q.WriteString(", ")
		}
		fmt.Fprintf(&q, "%s = %s", c, s.placeholder(i+1))
	}
	args, err := s.appendWhere(&q, p, vals)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, q.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteRows implements Store.
func (s *SQLStore) DeleteRows(ctx context.Context, table string, p Predicate) (int64, error) {
	if err := checkIdents(table, nil); err != nil {
		return 0, err
	}
	var q strings.Builder
	fmt.Fprintf(&q, "DELETE FROM %s", table)
	args, err := s.appendWhere(&q, p, nil)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, q.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// appendWhere compiles the predicate into a WHERE clause, appending its
// bind arguments to args.
func (s *SQLStore) appendWhere(q *strings.Builder, p Predicate, args []any) ([]any, error) {
	if p.Zero() {
		return args, nil
	}
	q.WriteString(" WHERE ")
	return s.compile(q, p, args)
}

func (s *SQLStore) compile(q *strings.Builder, p Predicate, args []any) ([]any, error) {
	switch p.op {
	case opAll:
		q.WriteString("1 = 1")
		return args, nil
	case opEq, opNeq:
		if !isValidIdentifier(p.col) {
			return nil, fmt.Errorf("runtime: invalid column name %q", p.col)
		}
		op := "="
		if p.op == opNeq {
			op = "<>"
		}
		args = append(args, p.val)
		fmt.Fprintf(q, "%s %s %s", p.col, op, s.placeholder(len(args)))
		return args, nil
	case opIn:
		if !isValidIdentifier(p.col) {
			return nil, fmt.Errorf("runtime: invalid column name %q", p.col)
		}
		if len(p.vals) == 0 {
			q.WriteString("1 = 0")
			return args, nil
		}
		fmt.Fprintf(q, "%s IN (", p.col)
		for i, v := range p.vals {
			if i > 0 {
				q.WriteString(", ")
			}
			args = append(args, v)
			q.WriteString(s.placeholder(len(args)))
		}
		q.WriteString(")")
		return args, nil
	case opIsNull, opNotNull:
		if !isValidIdentifier(p.col) {
			return nil, fmt.Errorf("runtime: invalid column name %q", p.col)
		}
		if p.op == opIsNull {
			fmt.Fprintf(q, "%s IS NULL", p.col)
		} else {
			fmt.Fprintf(q, "%s IS NOT NULL", p.col)
		}
		return args, nil
	case opAnd, opOr:
		sep := " AND "
		if p.op == opOr {
			sep = " OR "
		}
		q.WriteString("(")
		for i, part := range p.parts {
			if i > 0 {
				q.WriteString(sep)
			}
			var err error
			args, err = s.compile(q, part, args)
			if err != nil {
				return nil, err
			}
		}
		q.WriteString(")")
		return args, nil
	}
	return nil, fmt.Errorf("runtime: unknown predicate op %d", p.op)
}

// queryRows runs the query and scans every row into the Row map form.
func (s *SQLStore) queryRows(ctx context.Context, query string, args []any, cols []string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Verify SQLStore implements Store at compile time.
var _ Store = (*SQLStore)(nil)
