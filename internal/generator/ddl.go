package generator

import (
	"fmt"
	"strings"

	"github.com/koba/ormkit/internal/schema"
)

// DDLGenerator generates DDL statements
type DDLGenerator struct {
	dialect Dialect
}

// NewDDLGenerator creates a new DDL generator
func NewDDLGenerator(dialect Dialect) *DDLGenerator {
	return &DDLGenerator{dialect: dialect}
}

// CreateTable generates the CREATE TABLE statement for a table schema.
func (g *DDLGenerator) CreateTable(tableSchema *schema.TableSchema) string {
	var parts []string

	pk := tableSchema.PrimaryKey()
	inlinePK := g.inlinePrimaryKey(tableSchema, pk)

	// Column definitions
	for _, col := range tableSchema.Columns {
		def := g.columnDefinition(&col)
		if inlinePK != "" && col.Name == inlinePK {
			def += " PRIMARY KEY AUTOINCREMENT"
		}
		parts = append(parts, def)
	}

	// Primary key
	if pk != nil && inlinePK == "" {
		pkCols := strings.Join(g.dialect.quoteIdentifiers(pk.Columns), ", ")
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", pkCols))
	}

	// Unique constraints
	for _, idx := range tableSchema.Indexes {
		if idx.Primary || !idx.Unique {
			continue
		}
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)",
			g.dialect.QuoteIdentifier(idx.Name),
			strings.Join(g.dialect.quoteIdentifiers(idx.Columns), ", "),
		))
	}

	// Foreign keys
	for _, fk := range tableSchema.ForeignKeys {
		fkDef := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
			g.dialect.QuoteIdentifier(fk.Name),
			g.dialect.QuoteIdentifier(fk.Column),
			g.dialect.QuoteIdentifier(fk.ReferencedTable),
			g.dialect.QuoteIdentifier(fk.ReferencedColumn),
		)
		if fk.OnDelete != "" {
			fkDef += fmt.Sprintf(" ON DELETE %s", fk.OnDelete)
		}
		if fk.OnUpdate != "" {
			fkDef += fmt.Sprintf(" ON UPDATE %s", fk.OnUpdate)
		}
		parts = append(parts, fkDef)
	}

	tableName := g.dialect.QuoteIdentifier(tableSchema.Name)
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", tableName, strings.Join(parts, ",\n  "))
}

// DropTable generates a DROP TABLE statement.
func (g *DDLGenerator) DropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE %s;", g.dialect.QuoteIdentifier(tableName))
}

// SQLite only auto-increments a column declared inline as
// INTEGER PRIMARY KEY AUTOINCREMENT.
func (g *DDLGenerator) inlinePrimaryKey(tableSchema *schema.TableSchema, pk *schema.Index) string {
	if g.dialect != SQLite || pk == nil || len(pk.Columns) != 1 {
		return ""
	}
	col := tableSchema.Column(pk.Columns[0])
	if col == nil || !col.AutoIncrement {
		return ""
	}
	return col.Name
}

func (g *DDLGenerator) columnDefinition(col *schema.Column) string {
	def := g.dialect.QuoteIdentifier(col.Name) + " " + g.dialect.NativeType(col)

	if !col.Nullable {
		def += " NOT NULL"
	}

	if col.DefaultValue != nil {
		def += fmt.Sprintf(" DEFAULT %s", *col.DefaultValue)
	}

	// PostgreSQL spells auto increment as SERIAL, SQLite inline with the key.
	if col.AutoIncrement && g.dialect == MySQL {
		def += " AUTO_INCREMENT"
	}

	return def
}
