package querybuilder

// Condition is one AND-ed predicate of a WHERE clause.
type Condition interface {
	render(s *statement)
}

type comparison struct {
	column   string
	operator string
	value    any
}

func (c comparison) render(s *statement) {
	s.write(c.column, " ", c.operator, " ")
	s.bind(c.value)
}

func Eq(column string, value any) Condition {
	return comparison{column: column, operator: "=", value: value}
}

func Lte(column string, value any) Condition {
	return comparison{column: column, operator: "<=", value: value}
}

type anyOf struct {
	column string
	values any
}

func (c anyOf) render(s *statement) {
	s.write(c.column, " = ANY(")
	s.bind(c.values)
	s.write(")")
}

// EqAny renders `column = ANY($n)`; values should be a driver array such as pq.Array.
func EqAny(column string, values any) Condition {
	return anyOf{column: column, values: values}
}

type nullCheck struct {
	column string
	negate bool
}

func (c nullCheck) render(s *statement) {
	if c.negate {
		s.write(c.column, " IS NOT NULL")
		return
	}
	s.write(c.column, " IS NULL")
}

func IsNull(column string) Condition {
	return nullCheck{column: column}
}

func IsNotNull(column string) Condition {
	return nullCheck{column: column, negate: true}
}

type rawExpr struct {
	sql  string
	args []any
}

func (c rawExpr) render(s *statement) {
	s.expr(c.sql, c.args)
}

// Expr is a free-form predicate; each `?` binds the next arg.
func Expr(sql string, args ...any) Condition {
	return rawExpr{sql: sql, args: args}
}
