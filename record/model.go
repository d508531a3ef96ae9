package record

import (
	"context"
	"fmt"

	"github.com/koba/ormkit/internal/schema"
)

// New returns an empty record of type T.
func New[T any, PT pointer[T]]() (*T, error) {
	r, err := construct[T, PT](false)
	if err != nil {
		return nil, err
	}
	return (*T)(r), nil
}

// Create returns a record of type T holding values. The record is not
// saved and its dirty set is empty.
func Create[T any, PT pointer[T]](values Values) (*T, error) {
	r, err := construct[T, PT](false)
	if err != nil {
		return nil, err
	}
	b := r.base()
	for name, v := range values {
		if !b.meta.HasColumn(name) {
			return nil, fmt.Errorf("%s.%s: %w", b.meta.TypeName(), name, ErrUnknownColumn)
		}
		if err := b.load(name, v); err != nil {
			return nil, err
		}
	}
	clear(b.dirty)
	return (*T)(r), nil
}

// From returns a query over all rows of T.
func From[T any, PT pointer[T]]() Query[T, PT] {
	return newQuery[T, PT]()
}

func Where[T any, PT pointer[T]](values Values) Query[T, PT] {
	return newQuery[T, PT]().Where(values)
}

// Find returns a single-row query for the record with primary key pk.
func Find[T any, PT pointer[T]](pk any) Query[T, PT] {
	q := newQuery[T, PT]()
	if q.err != nil {
		return q
	}
	return q.Filter(Eq(q.meta.primaryKey, pk)).First()
}

// Preload defines T without running its Initialize method and, if the
// database of T synchronizes, creates the missing tables of T and of the
// record types it belongs to. Without any connection only the definition
// happens.
func Preload[T any, PT pointer[T]](ctx context.Context) error {
	meta, err := MetaOf[T, PT]()
	if err != nil {
		return err
	}
	if !connected() {
		return nil
	}
	conn, err := connectionFor(meta)
	if err != nil {
		return err
	}
	if !conn.synchronize {
		return nil
	}
	return conn.sync(ctx, meta, map[*Meta]bool{})
}

// Synthesize returns the table T maps to.
func Synthesize[T any, PT pointer[T]]() (*schema.TableSchema, error) {
	meta, err := MetaOf[T, PT]()
	if err != nil {
		return nil, err
	}
	return synthesize(meta)
}

// CreateTable creates the table of T in its database.
func CreateTable[T any, PT pointer[T]](ctx context.Context) error {
	meta, err := MetaOf[T, PT]()
	if err != nil {
		return err
	}
	conn, err := connectionFor(meta)
	if err != nil {
		return err
	}
	return createTable(ctx, conn.engine, meta)
}
