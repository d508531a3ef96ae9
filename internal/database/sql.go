package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/koba/ormkit/internal/generator"
	"github.com/koba/ormkit/internal/schema"
)

// engine implements the statement side of Database on top of database/sql.
// The dialect types embed it and add connection and introspection.
type engine struct {
	db      *sql.DB
	dialect generator.Dialect
	ddl     *generator.DDLGenerator
	dml     *generator.DMLGenerator
}

func newEngine(dialect generator.Dialect) engine {
	return engine{
		dialect: dialect,
		ddl:     generator.NewDDLGenerator(dialect),
		dml:     generator.NewDMLGenerator(dialect),
	}
}

func (e *engine) Dialect() generator.Dialect {
	return e.dialect
}

// Close closes the connection
func (e *engine) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

func (e *engine) conn() (*sql.DB, error) {
	if e.db == nil {
		return nil, fmt.Errorf("%s database is not connected", e.dialect)
	}
	return e.db, nil
}

// Select runs q and returns the matching rows
func (e *engine) Select(ctx context.Context, q schema.Select) ([]schema.Row, error) {
	db, err := e.conn()
	if err != nil {
		return nil, err
	}

	stmt, args, err := e.dml.Select(q)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "select", "table", q.Table, "sql", stmt)

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", q.Table, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Insert inserts row into table
func (e *engine) Insert(ctx context.Context, table, pk string, row schema.Row) (any, error) {
	db, err := e.conn()
	if err != nil {
		return nil, err
	}

	if id, ok := row[pk]; ok && id != nil {
		stmt, args := e.dml.Insert(table, row, "")
		slog.DebugContext(ctx, "insert", "table", table, "sql", stmt)
		if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		return id, nil
	}

	if e.dialect == generator.Postgres && pk != "" {
		stmt, args := e.dml.Insert(table, row, pk)
		slog.DebugContext(ctx, "insert", "table", table, "sql", stmt)
		var id any
		if err := db.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		return normalizeValue(id), nil
	}

	stmt, args := e.dml.Insert(table, row, "")
	slog.DebugContext(ctx, "insert", "table", table, "sql", stmt)
	result, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return insertID(ctx, table, result), nil
}

// insertID returns the id the engine generated, or nil. Tables without an
// integer key report no id.
func insertID(ctx context.Context, table string, result sql.Result) any {
	id, err := result.LastInsertId()
	if err != nil {
		slog.DebugContext(ctx, "no insert id", "table", table, "err", err)
		return nil
	}
	return id
}

// Update sets the columns of set on the rows matching conditions
func (e *engine) Update(ctx context.Context, table string, conditions []schema.Condition, set schema.Row) (int64, error) {
	db, err := e.conn()
	if err != nil {
		return 0, err
	}

	stmt, args, err := e.dml.Update(table, set, conditions)
	if err != nil {
		return 0, err
	}
	slog.DebugContext(ctx, "update", "table", table, "sql", stmt)

	result, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", table, err)
	}
	return result.RowsAffected()
}

// Delete removes the rows matching conditions
func (e *engine) Delete(ctx context.Context, table string, conditions []schema.Condition) (int64, error) {
	db, err := e.conn()
	if err != nil {
		return 0, err
	}

	stmt, args, err := e.dml.Delete(table, conditions)
	if err != nil {
		return 0, err
	}
	slog.DebugContext(ctx, "delete", "table", table, "sql", stmt)

	result, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return result.RowsAffected()
}

// CreateTable builds a table definition with define and creates it
func (e *engine) CreateTable(ctx context.Context, name string, define func(*schema.TableBuilder)) error {
	db, err := e.conn()
	if err != nil {
		return err
	}

	b := schema.NewTableBuilder(name)
	define(b)

	stmt := e.ddl.CreateTable(b.Schema())
	slog.DebugContext(ctx, "create table", "table", name, "sql", stmt)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

// GetAllTables and HasTable are implemented per dialect; hasTable is shared.
func hasTable(ctx context.Context, d Database, name string) (bool, error) {
	tables, err := d.GetAllTables(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(tables, name), nil
}

func scanRows(rows *sql.Rows) ([]schema.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var data []schema.Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(schema.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}

		data = append(data, row)
	}

	return data, rows.Err()
}

func normalizeValue(val any) any {
	if b, ok := val.([]byte); ok {
		return string(b)
	}
	return val
}
