package database

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/koba/ormkit/internal/generator"
	"github.com/koba/ormkit/internal/schema"
)

// DefaultName is the logical name of a database configured without one.
const DefaultName = "default"

// Config holds database connection configuration
type Config struct {
	Name        string `sconf:"optional" sconf-doc:"Logical name record types refer to. Default: default."`
	Type        string `sconf-doc:"Database type: mysql, postgres or sqlite."`
	Host        string `sconf:"optional" sconf-doc:"Host to connect to. Default: localhost. Ignored for sqlite."`
	Port        string `sconf:"optional" sconf-doc:"Port to connect to. Default: 3306 for mysql, 5432 for postgres."`
	Database    string `sconf-doc:"Database name, or file path for sqlite (:memory: for an in-memory database)."`
	User        string `sconf:"optional"`
	Password    string `sconf:"optional"`
	Synchronize bool   `sconf:"optional" sconf-doc:"Create missing tables for record types when they are preloaded."`
}

// Database is the SQL engine records are persisted through.
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Dialect() generator.Dialect

	Select(ctx context.Context, q schema.Select) ([]schema.Row, error)
	// Insert returns the generated value of column pk, or nil if the engine
	// did not report one.
	Insert(ctx context.Context, table, pk string, row schema.Row) (any, error)
	Update(ctx context.Context, table string, conditions []schema.Condition, set schema.Row) (int64, error)
	Delete(ctx context.Context, table string, conditions []schema.Condition) (int64, error)

	CreateTable(ctx context.Context, name string, define func(*schema.TableBuilder)) error
	HasTable(ctx context.Context, name string) (bool, error)
	GetAllTables(ctx context.Context) ([]string, error)
	GetTableSchema(ctx context.Context, tableName string) (*schema.TableSchema, error)
}

// NewDatabase creates a new database connection based on type
func NewDatabase(config Config) (Database, error) {
	dialect, err := generator.ParseDialect(config.Type)
	if err != nil {
		return nil, err
	}
	switch dialect {
	case generator.MySQL:
		return NewMySQL(config), nil
	case generator.Postgres:
		return NewPostgres(config), nil
	default:
		return NewSQLite(config), nil
	}
}

// Normalize fills in defaults and checks required fields.
func (c Config) Normalize() (Config, error) {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Type == "" {
		return Config{}, fmt.Errorf("database %s: type is required", c.Name)
	}
	dialect, err := generator.ParseDialect(c.Type)
	if err != nil {
		return Config{}, fmt.Errorf("database %s: %w", c.Name, err)
	}
	if c.Database == "" {
		return Config{}, fmt.Errorf("database %s: database name is required", c.Name)
	}
	if dialect == generator.SQLite {
		return c, nil
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		if dialect == generator.MySQL {
			c.Port = "3306"
		} else {
			c.Port = "5432"
		}
	}
	return c, nil
}

// LoadConfigFromEnv loads database configuration from environment variables
func LoadConfigFromEnv() (Config, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		return Config{}, fmt.Errorf("DB_TYPE environment variable is required")
	}

	database := os.Getenv("DB_NAME")
	if database == "" {
		return Config{}, fmt.Errorf("DB_NAME environment variable is required")
	}

	var synchronize bool
	if s := os.Getenv("DB_SYNCHRONIZE"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DB_SYNCHRONIZE %q: %w", s, err)
		}
		synchronize = v
	}

	return Config{
		Type:        dbType,
		Host:        os.Getenv("DB_HOST"),
		Port:        os.Getenv("DB_PORT"),
		Database:    database,
		User:        os.Getenv("DB_USER"),
		Password:    os.Getenv("DB_PASSWORD"),
		Synchronize: synchronize,
	}.Normalize()
}
