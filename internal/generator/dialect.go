package generator

import (
	"fmt"
	"strings"

	"github.com/koba/ormkit/internal/schema"
)

// Dialect selects identifier quoting, placeholders and native type
// spelling for generated SQL.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the database type names used in configuration.
func ParseDialect(dbType string) (Dialect, error) {
	switch strings.ToLower(dbType) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

func (d Dialect) QuoteIdentifier(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d Dialect) quoteIdentifiers(names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.QuoteIdentifier(name)
	}
	return quoted
}

// Placeholder returns the bind parameter for the n-th argument, counting from 1.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// NativeType spells col's type for this dialect. Native columns are
// returned unchanged.
func (d Dialect) NativeType(col *schema.Column) string {
	if col.Native {
		return col.Type
	}

	switch col.Type {
	case schema.TypeInteger:
		switch d {
		case Postgres:
			if col.AutoIncrement {
				return "SERIAL"
			}
			return "INTEGER"
		case MySQL:
			if col.Unsigned {
				return "INT UNSIGNED"
			}
			return "INT"
		}
		return "INTEGER"
	case schema.TypeBigInt:
		switch d {
		case Postgres:
			if col.AutoIncrement {
				return "BIGSERIAL"
			}
		case MySQL:
			if col.Unsigned {
				return "BIGINT UNSIGNED"
			}
		case SQLite:
			if col.AutoIncrement {
				// AUTOINCREMENT is only allowed on INTEGER PRIMARY KEY.
				return "INTEGER"
			}
		}
		return "BIGINT"
	case schema.TypeReal:
		if d == MySQL {
			return "DOUBLE"
		}
		return "REAL"
	case schema.TypeDouble:
		switch d {
		case Postgres:
			return "DOUBLE PRECISION"
		case SQLite:
			return "REAL"
		}
		return "DOUBLE"
	case schema.TypeFloat:
		switch d {
		case Postgres:
			return "REAL"
		case SQLite:
			return "FLOAT"
		}
		return "FLOAT"
	case schema.TypeText:
		return "TEXT"
	case schema.TypeVarchar:
		return "VARCHAR(255)"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeUUID:
		switch d {
		case Postgres:
			return "UUID"
		case MySQL:
			return "CHAR(36)"
		}
		return "TEXT"
	case schema.TypeTimestamp:
		if d == Postgres {
			return "TIMESTAMP"
		}
		return "DATETIME"
	}
	return strings.ToUpper(col.Type)
}
