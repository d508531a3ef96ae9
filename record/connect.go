package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/koba/ormkit/internal/database"
	"github.com/koba/ormkit/internal/schema"
)

// Config configures one database. See database.Config.
type Config = database.Config

// Engine is the part of database.Database records need.
type Engine interface {
	Select(ctx context.Context, q schema.Select) ([]schema.Row, error)
	Insert(ctx context.Context, table, pk string, row schema.Row) (any, error)
	Update(ctx context.Context, table string, conditions []schema.Condition, set schema.Row) (int64, error)
	Delete(ctx context.Context, table string, conditions []schema.Condition) (int64, error)
	CreateTable(ctx context.Context, name string, define func(*schema.TableBuilder)) error
	HasTable(ctx context.Context, name string) (bool, error)
}

type connection struct {
	name        string
	engine      Engine
	synchronize bool

	mu     sync.Mutex
	synced map[string]bool
}

var connections = struct {
	sync.RWMutex
	byName    map[string]*connection
	connected bool
}{byName: map[string]*connection{}}

// Connect opens the configured databases. It may be called once until
// Disconnect.
func Connect(ctx context.Context, configs ...Config) error {
	if len(configs) == 0 {
		return errors.New("no database configured")
	}

	connections.Lock()
	defer connections.Unlock()
	if connections.connected {
		return ErrAlreadyConnected
	}

	opened := map[string]*connection{}
	closeOpened := func() {
		for _, c := range opened {
			if closer, ok := c.engine.(io.Closer); ok {
				closer.Close()
			}
		}
	}
	for _, cfg := range configs {
		cfg, err := cfg.Normalize()
		if err != nil {
			closeOpened()
			return err
		}
		if _, ok := opened[cfg.Name]; ok {
			closeOpened()
			return fmt.Errorf("database %s configured twice", cfg.Name)
		}
		db, err := database.NewDatabase(cfg)
		if err != nil {
			closeOpened()
			return err
		}
		if err := db.Connect(ctx); err != nil {
			closeOpened()
			return fmt.Errorf("failed to connect to database %s: %w", cfg.Name, err)
		}
		logger().InfoContext(ctx, "connected", "database", cfg.Name, "type", cfg.Type)
		opened[cfg.Name] = newConnection(cfg.Name, db, cfg.Synchronize)
	}

	for name, c := range opened {
		connections.byName[name] = c
	}
	connections.connected = true
	return nil
}

// Use registers an already opened engine under name. Disconnect closes it
// if it implements io.Closer.
func Use(name string, engine Engine, synchronize bool) {
	if name == "" {
		name = database.DefaultName
	}
	connections.Lock()
	defer connections.Unlock()
	connections.byName[name] = newConnection(name, engine, synchronize)
}

// Disconnect closes all databases.
func Disconnect() error {
	connections.Lock()
	defer connections.Unlock()

	var errs []error
	for name, c := range connections.byName {
		if closer, ok := c.engine.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database %s: %w", name, err))
			}
		}
	}
	connections.byName = map[string]*connection{}
	connections.connected = false
	return errors.Join(errs...)
}

func newConnection(name string, engine Engine, synchronize bool) *connection {
	return &connection{name: name, engine: engine, synchronize: synchronize, synced: map[string]bool{}}
}

func connected() bool {
	connections.RLock()
	defer connections.RUnlock()
	return len(connections.byName) > 0
}

// connectionFor returns the database meta's type is stored in.
func connectionFor(meta *Meta) (*connection, error) {
	connections.RLock()
	defer connections.RUnlock()

	n := len(connections.byName)
	if n == 0 {
		return nil, &NoConnectionError{}
	}
	if meta.database == "" {
		if n > 1 {
			return nil, &MultiDatabaseAmbiguityError{Type: meta.TypeName(), Databases: n}
		}
		for _, c := range connections.byName {
			return c, nil
		}
	}
	c, ok := connections.byName[meta.database]
	if !ok {
		return nil, &NoConnectionError{Database: meta.database}
	}
	return c, nil
}

// sync creates the table of meta unless it exists, after the tables it
// references on the same connection.
func (c *connection) sync(ctx context.Context, meta *Meta, visiting map[*Meta]bool) error {
	if visiting[meta] || c.isSynced(meta.tableName) {
		return nil
	}
	visiting[meta] = true

	for _, name := range meta.columns {
		def := meta.defs[name]
		if def.ForeignKey == nil {
			continue
		}
		target, err := def.ForeignKey.Target.Meta()
		if err != nil {
			return err
		}
		if tc, err := connectionFor(target); err != nil || tc != c {
			continue
		}
		if err := c.sync(ctx, target, visiting); err != nil {
			return err
		}
	}

	exists, err := c.engine.HasTable(ctx, meta.tableName)
	if err != nil {
		return fmt.Errorf("failed to check table %s: %w", meta.tableName, err)
	}
	if !exists {
		if err := createTable(ctx, c.engine, meta); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.synced[meta.tableName] = true
	c.mu.Unlock()
	return nil
}

func (c *connection) isSynced(table string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced[table]
}
