package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/koba/ormkit/internal/schema"
)

// DMLGenerator generates parameterized DML statements
type DMLGenerator struct {
	dialect Dialect
}

// NewDMLGenerator creates a new DML generator
func NewDMLGenerator(dialect Dialect) *DMLGenerator {
	return &DMLGenerator{dialect: dialect}
}

var operators = map[string]bool{
	"=":    true,
	"!=":   true,
	"<>":   true,
	">":    true,
	">=":   true,
	"<":    true,
	"<=":   true,
	"LIKE": true,
}

// Select generates a SELECT statement and its arguments.
func (g *DMLGenerator) Select(q schema.Select) (string, []any, error) {
	columns := "*"
	if len(q.Columns) > 0 {
		columns = strings.Join(g.dialect.quoteIdentifiers(q.Columns), ", ")
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", columns, g.dialect.QuoteIdentifier(q.Table))

	where, args, err := g.buildWhereClause(q.Conditions, 1)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		stmt += " WHERE " + where
	}

	switch {
	case q.Limit > 0:
		stmt += fmt.Sprintf(" LIMIT %d", q.Limit)
	case q.Offset > 0 && g.dialect == MySQL:
		stmt += " LIMIT 18446744073709551615"
	case q.Offset > 0 && g.dialect == SQLite:
		stmt += " LIMIT -1"
	}
	if q.Offset > 0 {
		stmt += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	return stmt, args, nil
}

// Insert generates an INSERT statement. Columns are emitted in sorted
// order. A non-empty returning column is appended as RETURNING, which only
// PostgreSQL needs to report generated keys.
func (g *DMLGenerator) Insert(tableName string, row schema.Row, returning string) (string, []any) {
	columns := sortedColumns(row)
	table := g.dialect.QuoteIdentifier(tableName)

	var stmt string
	if len(columns) == 0 {
		if g.dialect == MySQL {
			stmt = fmt.Sprintf("INSERT INTO %s () VALUES ()", table)
		} else {
			stmt = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
		}
	} else {
		values := make([]string, len(columns))
		for i := range columns {
			values[i] = g.dialect.Placeholder(i + 1)
		}
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table,
			strings.Join(g.dialect.quoteIdentifiers(columns), ", "),
			strings.Join(values, ", "),
		)
	}

	if returning != "" {
		stmt += " RETURNING " + g.dialect.QuoteIdentifier(returning)
	}

	args := make([]any, len(columns))
	for i, col := range columns {
		args[i] = row[col]
	}
	return stmt, args
}

// Update generates an UPDATE statement setting the columns of set for the
// rows matching conditions.
func (g *DMLGenerator) Update(tableName string, set schema.Row, conditions []schema.Condition) (string, []any, error) {
	columns := sortedColumns(set)
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("update of %s sets no columns", tableName)
	}

	var setClauses []string
	var args []any
	for i, col := range columns {
		setClauses = append(setClauses,
			fmt.Sprintf("%s = %s", g.dialect.QuoteIdentifier(col), g.dialect.Placeholder(i+1)),
		)
		args = append(args, set[col])
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s",
		g.dialect.QuoteIdentifier(tableName),
		strings.Join(setClauses, ", "),
	)

	where, whereArgs, err := g.buildWhereClause(conditions, len(args)+1)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		stmt += " WHERE " + where
	}

	return stmt, append(args, whereArgs...), nil
}

// Delete generates a DELETE statement for the rows matching conditions.
func (g *DMLGenerator) Delete(tableName string, conditions []schema.Condition) (string, []any, error) {
	stmt := fmt.Sprintf("DELETE FROM %s", g.dialect.QuoteIdentifier(tableName))

	where, args, err := g.buildWhereClause(conditions, 1)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		stmt += " WHERE " + where
	}

	return stmt, args, nil
}

func (g *DMLGenerator) buildWhereClause(conditions []schema.Condition, firstArg int) (string, []any, error) {
	var clauses []string
	var args []any

	for _, cond := range conditions {
		op := strings.ToUpper(cond.Operator)
		if op == "" {
			op = "="
		}
		if !operators[op] {
			return "", nil, fmt.Errorf("unsupported operator %q on column %s", cond.Operator, cond.Column)
		}

		col := g.dialect.QuoteIdentifier(cond.Column)
		if cond.Value == nil {
			switch op {
			case "=":
				clauses = append(clauses, fmt.Sprintf("%s IS NULL", col))
				continue
			case "!=", "<>":
				clauses = append(clauses, fmt.Sprintf("%s IS NOT NULL", col))
				continue
			}
		}

		clauses = append(clauses, fmt.Sprintf("%s %s %s", col, op, g.dialect.Placeholder(firstArg+len(args))))
		args = append(args, cond.Value)
	}

	return strings.Join(clauses, " AND "), args, nil
}

func sortedColumns(row schema.Row) []string {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
