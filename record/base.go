package record

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/koba/ormkit/internal/schema"
)

// Event names a lifecycle point hooks can be registered for.
type Event string

const (
	EventSave    Event = "save"
	EventDestroy Event = "destroy"
)

// Hook runs before the engine call of its event. An error aborts the
// operation.
type Hook func(ctx context.Context) error

type ListenerID int

type listener struct {
	id   ListenerID
	hook Hook
}

// Base is embedded by every record type. It carries the per-instance state:
// loaded values, the dirty set, whether the row exists in the database and
// the registered hooks.
type Base struct {
	meta     *Meta
	typeName string
	slots    map[string]Slot
	values   map[string]any
	dirty    map[string]struct{}
	exists   bool
	// key is the primary key value of the stored row.
	key       any
	tracking  bool
	listeners map[Event][]listener
	nextID    ListenerID
}

func (b *Base) base() *Base { return b }

func (b *Base) init(typeName string) {
	b.typeName = typeName
	b.slots = map[string]Slot{}
	b.values = map[string]any{}
	b.dirty = map[string]struct{}{}
	b.listeners = map[Event][]listener{}
}

func (b *Base) sanctioned() error {
	if b.meta == nil {
		return &IllegalConstructionError{Type: b.typeName}
	}
	return nil
}

// Meta returns the metadata of the record's type, or nil for a record that
// was not built by New, Create or a query.
func (b *Base) Meta() *Meta {
	return b.meta
}

// Exists reports whether the record was loaded from or saved to the
// database.
func (b *Base) Exists() bool {
	return b.exists
}

// Dirty returns the columns assigned since the record was loaded or saved,
// sorted by name.
func (b *Base) Dirty() []string {
	names := make([]string, 0, len(b.dirty))
	for name := range b.dirty {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (b *Base) IsDirty(name string) bool {
	_, ok := b.dirty[name]
	return ok
}

func (b *Base) Loaded(name string) bool {
	_, ok := b.Get(name)
	return ok
}

// Get returns the value of column name and whether it is loaded.
func (b *Base) Get(name string) (any, bool) {
	if slot, ok := b.slots[name]; ok {
		return slot.value()
	}
	v, ok := b.values[name]
	return v, ok
}

// Set assigns column name and marks it dirty.
func (b *Base) Set(name string, v any) error {
	if err := b.sanctioned(); err != nil {
		return err
	}
	if !b.meta.HasColumn(name) {
		return fmt.Errorf("%s.%s: %w", b.meta.TypeName(), name, ErrUnknownColumn)
	}
	if err := b.load(name, v); err != nil {
		return err
	}
	b.touch(name)
	return nil
}

// Values returns the loaded columns.
func (b *Base) Values() schema.Row {
	row := schema.Row{}
	if b.meta == nil {
		return row
	}
	for _, name := range b.meta.columns {
		if v, ok := b.Get(name); ok {
			row[name] = v
		}
	}
	return row
}

// On registers hook for event. Hooks run in registration order.
func (b *Base) On(event Event, hook Hook) ListenerID {
	b.nextID++
	b.listeners[event] = append(b.listeners[event], listener{id: b.nextID, hook: hook})
	return b.nextID
}

// Off removes the given hooks of event, or all of them when no id is given.
func (b *Base) Off(event Event, ids ...ListenerID) {
	if len(ids) == 0 {
		delete(b.listeners, event)
		return
	}
	b.listeners[event] = slices.DeleteFunc(b.listeners[event], func(l listener) bool {
		return slices.Contains(ids, l.id)
	})
}

// Trigger runs the hooks of event until one fails.
func (b *Base) Trigger(ctx context.Context, event Event) error {
	for _, l := range slices.Clone(b.listeners[event]) {
		if err := l.hook(ctx); err != nil {
			return fmt.Errorf("%s hook of %s: %w", event, b.typeName, err)
		}
	}
	return nil
}

// Save inserts the record if it does not exist yet, otherwise it updates
// the dirty columns.
func (b *Base) Save(ctx context.Context) error {
	if err := b.sanctioned(); err != nil {
		return err
	}
	if err := b.Trigger(ctx, EventSave); err != nil {
		return err
	}
	conn, err := connectionFor(b.meta)
	if err != nil {
		return err
	}

	table := b.meta.tableName
	if !b.exists {
		err = b.insert(ctx, conn)
		saveTotal.WithLabelValues(table, "insert", resultLabel(err)).Inc()
	} else {
		err = b.update(ctx, conn)
		saveTotal.WithLabelValues(table, "update", resultLabel(err)).Inc()
	}
	if err != nil {
		return err
	}
	clear(b.dirty)
	return nil
}

func (b *Base) insert(ctx context.Context, conn *connection) error {
	pk := b.meta.primaryKey
	if def := b.meta.defs[pk]; def.Column.Type == TypeUUID && !b.hasValue(pk) {
		if err := b.load(pk, uuid.NewString()); err != nil {
			return err
		}
	}

	row := b.Values()
	logger().DebugContext(ctx, "insert record", "table", b.meta.tableName, "columns", len(row))
	id, err := conn.engine.Insert(ctx, b.meta.tableName, pk, row)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", b.meta.TypeName(), err)
	}
	if id != nil && !b.hasValue(pk) {
		if err := b.load(pk, id); err != nil {
			return err
		}
	}
	b.key, _ = b.Get(pk)
	b.exists = true
	return nil
}

func (b *Base) update(ctx context.Context, conn *connection) error {
	if len(b.dirty) == 0 {
		return nil
	}
	where, err := b.primaryKeyCondition()
	if err != nil {
		return err
	}

	set := schema.Row{}
	for _, name := range b.Dirty() {
		v, _ := b.Get(name)
		set[name] = v
	}
	logger().DebugContext(ctx, "update record", "table", b.meta.tableName, "columns", b.Dirty())
	if _, err := conn.engine.Update(ctx, b.meta.tableName, where, set); err != nil {
		return fmt.Errorf("failed to save %s: %w", b.meta.TypeName(), err)
	}
	if v, ok := set[b.meta.primaryKey]; ok {
		b.key = v
	}
	return nil
}

// Destroy deletes the record's row.
func (b *Base) Destroy(ctx context.Context) error {
	if err := b.sanctioned(); err != nil {
		return err
	}
	if err := b.Trigger(ctx, EventDestroy); err != nil {
		return err
	}
	conn, err := connectionFor(b.meta)
	if err != nil {
		return err
	}
	where, err := b.primaryKeyCondition()
	if err != nil {
		return err
	}

	_, err = conn.engine.Delete(ctx, b.meta.tableName, where)
	saveTotal.WithLabelValues(b.meta.tableName, "delete", resultLabel(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to destroy %s: %w", b.meta.TypeName(), err)
	}
	b.exists = false
	b.key = nil
	return nil
}

// primaryKeyCondition scopes a write to the stored row. The current key
// value is used only when the stored one is unknown, e.g. when the key
// column was not selected.
func (b *Base) primaryKeyCondition() ([]schema.Condition, error) {
	pk := b.meta.primaryKey
	v, ok := b.key, b.key != nil
	if !ok {
		v, ok = b.Get(pk)
	}
	if !ok || v == nil {
		return nil, fmt.Errorf("%s.%s: %w", b.meta.TypeName(), pk, ErrNoPrimaryKeyValue)
	}
	return []schema.Condition{Eq(pk, v)}, nil
}

func (b *Base) hasValue(name string) bool {
	v, ok := b.Get(name)
	return ok && v != nil
}

// load stores a column value without marking it dirty.
func (b *Base) load(name string, v any) error {
	if slot, ok := b.slots[name]; ok {
		return slot.load(v)
	}
	b.values[name] = v
	return nil
}

func (b *Base) unload(name string) {
	if slot, ok := b.slots[name]; ok {
		slot.unload()
		return
	}
	delete(b.values, name)
}

func (b *Base) touch(name string) {
	if b.tracking && b.meta != nil && b.meta.HasColumn(name) {
		b.dirty[name] = struct{}{}
	}
}

// hydrate replaces the record's state with a row read from the database.
// Columns missing from the row are left unloaded.
func (b *Base) hydrate(row schema.Row) error {
	var errs []error
	for _, name := range b.meta.columns {
		v, ok := row[name]
		if !ok {
			b.unload(name)
			continue
		}
		errs = append(errs, b.load(name, v))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to hydrate %s: %w", b.meta.TypeName(), err)
	}
	b.key, _ = b.Get(b.meta.primaryKey)
	b.exists = true
	clear(b.dirty)
	return nil
}
