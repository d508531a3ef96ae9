package record

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/koba/ormkit/internal/schema"
)

// Values maps column names to values.
type Values = schema.Row

// Condition is one term of a query filter. Terms are joined with AND.
type Condition = schema.Condition

func Eq(column string, v any) Condition  { return Condition{Column: column, Operator: "=", Value: v} }
func Neq(column string, v any) Condition { return Condition{Column: column, Operator: "!=", Value: v} }
func Gt(column string, v any) Condition  { return Condition{Column: column, Operator: ">", Value: v} }
func Gte(column string, v any) Condition { return Condition{Column: column, Operator: ">=", Value: v} }
func Lt(column string, v any) Condition  { return Condition{Column: column, Operator: "<", Value: v} }
func Lte(column string, v any) Condition { return Condition{Column: column, Operator: "<=", Value: v} }

func Like(column, pattern string) Condition {
	return Condition{Column: column, Operator: "LIKE", Value: pattern}
}

// Query describes a select over the table of T. Every chain method returns
// a new Query; the receiver is never modified. Nothing is sent to the
// database until All or One is called, and a Query runs at most once.
type Query[T any, PT pointer[T]] struct {
	meta   *Meta
	conds  []Condition
	fields []string
	limit  int
	offset int
	single bool
	err    error
	memo   *result[T]
}

type result[T any] struct {
	once sync.Once
	rows []*T
	err  error
}

func newQuery[T any, PT pointer[T]]() Query[T, PT] {
	meta, err := MetaOf[T, PT]()
	return Query[T, PT]{meta: meta, err: err, memo: &result[T]{}}
}

func (q Query[T, PT]) derive(change func(*Query[T, PT])) Query[T, PT] {
	if q.err != nil {
		return q
	}
	q.conds = slices.Clone(q.conds)
	q.fields = slices.Clone(q.fields)
	change(&q)
	q.memo = &result[T]{}
	return q
}

// Where adds an equality condition per entry of values. Conditions of
// repeated calls are combined with AND.
func (q Query[T, PT]) Where(values Values) Query[T, PT] {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	conds := make([]Condition, 0, len(names))
	for _, name := range names {
		conds = append(conds, Eq(name, values[name]))
	}
	return q.Filter(conds...)
}

// Filter adds conditions.
func (q Query[T, PT]) Filter(conds ...Condition) Query[T, PT] {
	return q.derive(func(q *Query[T, PT]) {
		for _, c := range conds {
			if !q.meta.HasColumn(c.Column) {
				q.err = fmt.Errorf("%s.%s: %w", q.meta.TypeName(), c.Column, ErrUnknownColumn)
				return
			}
			q.conds = append(q.conds, c)
		}
	})
}

// Pluck restricts the selected columns. Repeated calls add to the set.
func (q Query[T, PT]) Pluck(fields ...string) Query[T, PT] {
	return q.derive(func(q *Query[T, PT]) {
		for _, f := range fields {
			if !q.meta.HasColumn(f) {
				q.err = fmt.Errorf("%s.%s: %w", q.meta.TypeName(), f, ErrUnknownColumn)
				return
			}
			if !slices.Contains(q.fields, f) {
				q.fields = append(q.fields, f)
			}
		}
	})
}

func (q Query[T, PT]) Limit(n int) Query[T, PT] {
	return q.derive(func(q *Query[T, PT]) { q.limit = n })
}

func (q Query[T, PT]) Offset(n int) Query[T, PT] {
	return q.derive(func(q *Query[T, PT]) { q.offset = n })
}

// First limits the query to one row.
func (q Query[T, PT]) First() Query[T, PT] {
	return q.derive(func(q *Query[T, PT]) {
		q.limit = 1
		q.single = true
	})
}

// Single reports whether the query was narrowed with First.
func (q Query[T, PT]) Single() bool {
	return q.single
}

// Plan returns the select the query runs.
func (q Query[T, PT]) Plan() (schema.Select, error) {
	if q.err != nil {
		return schema.Select{}, q.err
	}
	columns := q.meta.Columns()
	if len(q.fields) > 0 {
		columns = slices.DeleteFunc(columns, func(c string) bool {
			return !slices.Contains(q.fields, c)
		})
	}
	return schema.Select{
		Table:      q.meta.tableName,
		Columns:    columns,
		Conditions: slices.Clone(q.conds),
		Limit:      q.limit,
		Offset:     q.offset,
	}, nil
}

// All runs the query and returns the records. Later calls return the
// first call's result.
func (q Query[T, PT]) All(ctx context.Context) ([]*T, error) {
	if q.memo == nil {
		return q.execute(ctx)
	}
	q.memo.once.Do(func() {
		q.memo.rows, q.memo.err = q.execute(ctx)
	})
	return q.memo.rows, q.memo.err
}

// One returns the first record, or a *NotFoundError.
func (q Query[T, PT]) One(ctx context.Context) (*T, error) {
	rows, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Table: q.meta.tableName}
	}
	return rows[0], nil
}

func (q Query[T, PT]) execute(ctx context.Context) ([]*T, error) {
	sel, err := q.Plan()
	if err != nil {
		return nil, err
	}
	conn, err := connectionFor(q.meta)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := conn.engine.Select(ctx, sel)
	queryDuration.WithLabelValues(sel.Table).Observe(time.Since(start).Seconds())
	queryTotal.WithLabelValues(sel.Table, resultLabel(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", sel.Table, err)
	}
	logger().DebugContext(ctx, "query", "table", sel.Table, "rows", len(rows))

	records := make([]*T, 0, len(rows))
	for _, row := range rows {
		r, err := construct[T, PT](false)
		if err != nil {
			return nil, err
		}
		if err := r.base().hydrate(row); err != nil {
			return nil, err
		}
		records = append(records, (*T)(r))
	}
	return records, nil
}
