package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Cond is one WHERE fragment written with '?' placeholders. The builders
// rewrite placeholders to postgres $n numbering when the statement is
// rendered.
type Cond struct {
	expr string
	args []any
}

func Eq(column string, value any) Cond {
	return Cond{expr: column + " = ?", args: []any{value}}
}

func In(column string, values []any) Cond {
	if len(values) == 0 {
		return Cond{expr: "1=0"}
	}

	var buf strings.Builder
	buf.WriteString(column)
	buf.WriteString(" IN (")
	for i := range values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteByte('?')
	}
	buf.WriteByte(')')

	return Cond{expr: buf.String(), args: append([]any(nil), values...)}
}

func Expr(expr string, args ...any) Cond {
	return Cond{expr: expr, args: args}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Cond
	groupBy []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Cond) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)

	state := renderState{}
	state.writeWhere(&buf, b.where)
	if len(b.groupBy) > 0 {
		buf.WriteString(" GROUP BY ")
		buf.WriteString(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}

	return buf.String(), state.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  Cond
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL after the VALUES list, typically an
// ON CONFLICT clause. '?' placeholders in the suffix are renumbered.
func (b *InsertBuilder) Suffix(sql string, args ...any) *InsertBuilder {
	b.suffix = Cond{expr: strings.TrimSpace(sql), args: args}
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	state := renderState{args: make([]any, 0, len(b.rows)*len(b.columns))}
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteByte('(')
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			state.writePlaceholder(&buf, value)
		}
		buf.WriteByte(')')
	}

	if b.suffix.expr != "" {
		buf.WriteByte(' ')
		state.writeCond(&buf, b.suffix)
	}

	return buf.String(), state.args, nil
}

type UpdateBuilder struct {
	table string
	sets  []Cond
	where []Cond
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Cond{expr: column + " = ?", args: []any{value}})
	return b
}

// SetExpr assigns a raw expression, e.g. SetExpr("uses", "uses + 1").
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, Cond{expr: column + " = " + expr, args: args})
	return b
}

func (b *UpdateBuilder) Where(conds ...Cond) *UpdateBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var buf strings.Builder
	buf.WriteString("UPDATE ")
	buf.WriteString(b.table)
	buf.WriteString(" SET ")

	state := renderState{args: make([]any, 0, len(b.sets)+len(b.where))}
	for i, s := range b.sets {
		if i > 0 {
			buf.WriteString(", ")
		}
		state.writeCond(&buf, s)
	}
	state.writeWhere(&buf, b.where)

	return buf.String(), state.args, nil
}

type renderState struct {
	args []any
}

func (s *renderState) writePlaceholder(buf *strings.Builder, value any) {
	s.args = append(s.args, value)
	buf.WriteByte('$')
	buf.WriteString(strconv.Itoa(len(s.args)))
}

func (s *renderState) writeCond(buf *strings.Builder, c Cond) {
	next := 0
	for i := 0; i < len(c.expr); i++ {
		if c.expr[i] != '?' {
			buf.WriteByte(c.expr[i])
			continue
		}
		if next >= len(c.args) {
			buf.WriteByte('?')
			continue
		}
		s.writePlaceholder(buf, c.args[next])
		next++
	}
}

func (s *renderState) writeWhere(buf *strings.Builder, conds []Cond) {
	if len(conds) == 0 {
		return
	}
	buf.WriteString(" WHERE ")
	for i, c := range conds {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		s.writeCond(buf, c)
	}
}
