package querybuilder

import (
	"errors"
	"strings"
)

type assignment struct {
	column string
	value  any
	raw    *rawExpr
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	from   *rawExpr
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a SQL expression; `?` markers bind args.
func (b *UpdateBuilder) SetExpr(column, sql string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: &rawExpr{sql: sql, args: args}})
	return b
}

// From adds a FROM item, e.g. an unnest() of parallel arrays for batched updates.
func (b *UpdateBuilder) From(sql string, args ...any) *UpdateBuilder {
	b.from = &rawExpr{sql: sql, args: args}
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("update: no table")
	case len(b.sets) == 0:
		return "", nil, errors.New("update: no assignments")
	}

	var s statement
	s.write("UPDATE ", b.table, " SET ")
	for i, a := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.column, " = ")
		if a.raw != nil {
			a.raw.render(&s)
			continue
		}
		s.bind(a.value)
	}
	if b.from != nil {
		s.write(" FROM ")
		b.from.render(&s)
	}
	s.where(b.where)
	s.suffix(b.suffix)
	return s.result()
}
