package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/koba/ormkit/internal/generator"
	"github.com/koba/ormkit/internal/schema"
)

// SQLite implements the Database interface for SQLite. The driver is
// modernc.org/sqlite unless built with the cgo_sqlite tag.
type SQLite struct {
	config Config
	engine
}

// NewSQLite creates a new SQLite database connection
func NewSQLite(config Config) *SQLite {
	return &SQLite{config: config, engine: newEngine(generator.SQLite)}
}

// Connect opens the database file named by Config.Database.
func (s *SQLite) Connect(ctx context.Context) error {
	db, err := sql.Open(sqliteDriverName, s.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Every connection to :memory: is a new database, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping SQLite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// GetAllTables retrieves all user table names
func (s *SQLite) GetAllTables(ctx context.Context) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

func (s *SQLite) HasTable(ctx context.Context, name string) (bool, error) {
	return hasTable(ctx, s, name)
}

// GetTableSchema retrieves the schema for a specific table
func (s *SQLite) GetTableSchema(ctx context.Context, tableName string) (*schema.TableSchema, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var createSQL string
	err = db.QueryRowContext(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&createSQL)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get table definition: %w", err)
	}

	tableSchema := &schema.TableSchema{
		Name:        tableName,
		Columns:     []schema.Column{},
		Indexes:     []schema.Index{},
		ForeignKeys: []schema.ForeignKey{},
	}

	autoIncrement := strings.Contains(strings.ToUpper(createSQL), "AUTOINCREMENT")
	columns, pk, err := s.getColumns(ctx, db, tableName, autoIncrement)
	if err != nil {
		return nil, err
	}
	tableSchema.Columns = columns

	if len(pk) > 0 {
		tableSchema.Indexes = append(tableSchema.Indexes, schema.Index{
			Name:    "PRIMARY",
			Columns: pk,
			Unique:  true,
			Primary: true,
		})
	}

	indexes, err := s.getIndexes(ctx, db, tableName)
	if err != nil {
		return nil, err
	}
	tableSchema.Indexes = append(tableSchema.Indexes, indexes...)

	foreignKeys, err := s.getForeignKeys(ctx, db, tableName)
	if err != nil {
		return nil, err
	}
	tableSchema.ForeignKeys = foreignKeys

	return tableSchema, nil
}

func (s *SQLite) getColumns(ctx context.Context, db *sql.DB, tableName string, autoIncrement bool) ([]schema.Column, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", s.dialect.QuoteIdentifier(tableName))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column
	var pk []string
	for rows.Next() {
		var col schema.Column
		var cid, notNull, pkPosition int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pkPosition); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Native = true
		col.Position = cid + 1
		col.Nullable = notNull == 0
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		if pkPosition > 0 {
			pk = append(pk, col.Name)
			col.AutoIncrement = autoIncrement && strings.EqualFold(col.Type, "INTEGER")
		}

		columns = append(columns, col)
	}

	return columns, pk, rows.Err()
}

func (s *SQLite) getIndexes(ctx context.Context, db *sql.DB, tableName string) ([]schema.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", s.dialect.QuoteIdentifier(tableName))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}

	var indexes []schema.Index
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		// The primary key is reported from table_info.
		if origin == "pk" {
			continue
		}
		indexes = append(indexes, schema.Index{Name: name, Unique: unique == 1, Type: "BTREE"})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Only one connection is open, so columns are read after index_list is closed.
	for i := range indexes {
		columns, err := s.getIndexColumns(ctx, db, indexes[i].Name)
		if err != nil {
			return nil, err
		}
		indexes[i].Columns = columns
	}

	return indexes, nil
}

func (s *SQLite) getIndexColumns(ctx context.Context, db *sql.DB, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", s.dialect.QuoteIdentifier(indexName))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get index columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("failed to scan index column: %w", err)
		}
		columns = append(columns, name.String)
	}
	return columns, rows.Err()
}

func (s *SQLite) getForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]schema.ForeignKey, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", s.dialect.QuoteIdentifier(tableName))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []schema.ForeignKey
	for rows.Next() {
		var id, seq int
		var match string
		var fk schema.ForeignKey
		if err := rows.Scan(&id, &seq, &fk.ReferencedTable, &fk.Column, &fk.ReferencedColumn, &fk.OnUpdate, &fk.OnDelete, &match); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		// SQLite does not report constraint names.
		fk.Name = fmt.Sprintf("fk_%s_%s", tableName, fk.Column)
		foreignKeys = append(foreignKeys, fk)
	}

	return foreignKeys, rows.Err()
}
