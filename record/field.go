package record

import (
	"database/sql"
	"fmt"
	"reflect"
)

// Slot is a typed storage cell for one column. Field is the only
// implementation.
type Slot interface {
	bind(owner *Base, name string)
	load(v any) error
	unload()
	value() (any, bool)
}

// Field holds the value of one column. Set marks the column dirty on the
// record owning the field.
type Field[T any] struct {
	owner  *Base
	name   string
	val    T
	loaded bool
	null   bool
}

func (f *Field[T]) Get() T {
	return f.val
}

func (f *Field[T]) Set(v T) {
	f.val = v
	f.loaded = true
	f.null = false
	if f.owner != nil {
		f.owner.touch(f.name)
	}
}

// Loaded reports whether the field holds a value that was set or read
// from the database.
func (f *Field[T]) Loaded() bool {
	return f.loaded
}

// Null reports whether the field was loaded from or set to NULL.
func (f *Field[T]) Null() bool {
	return f.loaded && f.null
}

// Clear unloads the field, excluding it from the next insert.
func (f *Field[T]) Clear() {
	f.unload()
}

func (f *Field[T]) unload() {
	var zero T
	f.val = zero
	f.loaded = false
	f.null = false
}

func (f *Field[T]) Name() string {
	return f.name
}

func (f *Field[T]) bind(owner *Base, name string) {
	f.owner = owner
	f.name = name
}

// load stores v without marking the field dirty. Driver values are
// converted the way database/sql converts scan destinations.
func (f *Field[T]) load(v any) error {
	if t, ok := v.(T); ok {
		f.val = t
		f.loaded = true
		f.null = false
		return nil
	}
	var n sql.Null[T]
	if err := n.Scan(v); err != nil {
		return fmt.Errorf("failed to load column %s: %w", f.name, err)
	}
	f.val = n.V
	f.loaded = true
	f.null = !n.Valid
	return nil
}

// value dereferences pointer fields, so a nil *T is stored as NULL.
func (f *Field[T]) value() (any, bool) {
	if f.null {
		return nil, f.loaded
	}
	rv := reflect.ValueOf(f.val)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, f.loaded
		}
		return rv.Elem().Interface(), f.loaded
	}
	return f.val, f.loaded
}
