package runtime

// Predicate filters rows by column comparisons. The zero value matches
// every row.
type Predicate struct {
	op    predicateOp
	col   string
	val   any
	vals  []any
	parts []Predicate
}

type predicateOp uint8

const (
	opAll predicateOp = iota
	opEq
	opNeq
	opIn
	opIsNull
	opNotNull
	opAnd
	opOr
)

// All returns a predicate matching every row.
func All() Predicate {
	return Predicate{}
}

// Eq matches rows whose column equals the value.
func Eq(col string, v any) Predicate {
	return Predicate{op: opEq, col: col, val: v}
}

// Neq matches rows whose column differs from the value.
func Neq(col string, v any) Predicate {
	return Predicate{op: opNeq, col: col, val: v}
}

// In matches rows whose column equals any of the values.
func In(col string, vs ...any) Predicate {
	return Predicate{op: opIn, col: col, vals: vs}
}

// IsNull matches rows whose column holds no value.
func IsNull(col string) Predicate {
	return Predicate{op: opIsNull, col: col}
}

// NotNull matches rows whose column holds a value.
func NotNull(col string) Predicate {
	return Predicate{op: opNotNull, col: col}
}

// And matches rows satisfying every part. With no parts it matches
// every row.
func And(ps ...Predicate) Predicate {
	switch len(ps) {
	case 0:
		return All()
	case 1:
		return ps[0]
	}
	return Predicate{op: opAnd, parts: ps}
}

// Or matches rows satisfying any part. With no parts it matches every
// row.
func Or(ps ...Predicate) Predicate {
	switch len(ps) {
	case 0:
		return All()
	case 1:
		return ps[0]
	}
	return Predicate{op: opOr, parts: ps}
}

// Zero reports whether the predicate matches every row.
func (p Predicate) Zero() bool {
	return p.op == opAll
}

// Match evaluates the predicate against an in-memory row. Fake stores
// in tests use it; SQLStore compiles predicates to SQL instead.
func (p Predicate) Match(row Row) bool {
	switch p.op {
	case opAll:
		return true
	case opEq:
		return row[p.col] == p.val
	case opNeq:
		return row[p.col] != p.val
	case opIn:
		for _, v := range p.vals {
			if row[p.col] == v {
				return true
			}
		}
		return false
	case opIsNull:
		return row[p.col] == nil
	case opNotNull:
		return row[p.col] != nil
	case opAnd:
		for _, part := range p.parts {
			if !part.Match(row) {
				return false
			}
		}
		return true
	case opOr:
		for _, part := range p.parts {
			if part.Match(row) {
				return true
			}
		}
		return false
	}
	return false
}
