// Package querybuilder renders PostgreSQL statements with numbered
// placeholders. Builders are single-use and not safe for concurrent use.
package querybuilder

import (
	"strconv"
	"strings"
)

// statement accumulates SQL text and positional arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, p := range parts {
		s.sql.WriteString(p)
	}
}

// bind appends one argument and writes its placeholder.
func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteString("$")
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

// expr writes a fragment whose `?` markers are bound to args in order.
// Surplus markers are written through unchanged.
func (s *statement) expr(fragment string, args []any) {
	if len(args) == 0 {
		s.sql.WriteString(fragment)
		return
	}
	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(args) {
			s.bind(args[next])
			next++
			continue
		}
		s.sql.WriteByte(fragment[i])
	}
}

func (s *statement) list(keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	s.write(" ", keyword, " ", strings.Join(items, ", "))
}

func (s *statement) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c.render(s)
	}
}

func (s *statement) suffix(sql string) {
	if sql == "" {
		return
	}
	s.write(" ", sql)
}

func (s *statement) result() (string, []any, error) {
	return s.sql.String(), s.args, nil
}
