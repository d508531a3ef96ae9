package record

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below unwraps to one of these, so
// callers can test with errors.Is.
var (
	ErrIllegalConstruction    = errors.New("record not constructed by its factory")
	ErrReservedName           = errors.New("reserved name")
	ErrDuplicatePrimaryKey    = errors.New("duplicate primary key")
	ErrMissingPrimaryKey      = errors.New("missing primary key")
	ErrNoConnection           = errors.New("no connection")
	ErrUnknownColumnType      = errors.New("unknown column type")
	ErrMultiDatabaseAmbiguity = errors.New("ambiguous database")
	ErrNotFound               = errors.New("record not found")

	ErrAlreadyConnected  = errors.New("connect may only be called once")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrDuplicateColumn   = errors.New("column declared twice")
	ErrNoPrimaryKeyValue = errors.New("primary key has no value")
)

// IllegalConstructionError is returned when a record value that was not
// produced by New, Create or a query is used for persistence.
type IllegalConstructionError struct {
	Type string
}

func (e *IllegalConstructionError) Error() string {
	if e.Type == "" {
		return "record instances must be constructed with record.New or record.Create"
	}
	return fmt.Sprintf("%s instances must be constructed with record.New or record.Create", e.Type)
}

func (e *IllegalConstructionError) Unwrap() error { return ErrIllegalConstruction }

// ReservedNameError reports a column or association whose name collides
// with the surface of Base.
type ReservedNameError struct {
	Type  string
	Field string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("%s: the name %q is reserved and may not be used as a column or association", e.Type, e.Field)
}

func (e *ReservedNameError) Unwrap() error { return ErrReservedName }

type DuplicatePrimaryKeyError struct {
	Table    string
	Field    string
	Existing string
}

func (e *DuplicatePrimaryKeyError) Error() string {
	return fmt.Sprintf("table %s: cannot declare %s as primary key, %s already is", e.Table, e.Field, e.Existing)
}

func (e *DuplicatePrimaryKeyError) Unwrap() error { return ErrDuplicatePrimaryKey }

type MissingPrimaryKeyError struct {
	Table string
}

func (e *MissingPrimaryKeyError) Error() string {
	return fmt.Sprintf("no primary key was found for table %s", e.Table)
}

func (e *MissingPrimaryKeyError) Unwrap() error { return ErrMissingPrimaryKey }

type NoConnectionError struct {
	Database string // empty when no database is connected at all
}

func (e *NoConnectionError) Error() string {
	if e.Database == "" {
		return "no connection was found, call record.Connect before using records"
	}
	return fmt.Sprintf("no connection was found for database %s", e.Database)
}

func (e *NoConnectionError) Unwrap() error { return ErrNoConnection }

type UnknownColumnTypeError struct {
	Table string
	Field string
	Type  LogicalType
}

func (e *UnknownColumnTypeError) Error() string {
	return fmt.Sprintf("table %s: column %s has unknown type %q", e.Table, e.Field, e.Type)
}

func (e *UnknownColumnTypeError) Unwrap() error { return ErrUnknownColumnType }

// MultiDatabaseAmbiguityError is returned when several databases are
// connected and a record type does not name the one it lives in.
type MultiDatabaseAmbiguityError struct {
	Type      string
	Databases int
}

func (e *MultiDatabaseAmbiguityError) Error() string {
	return fmt.Sprintf("%s: %d databases are connected, but the record type does not define which one to use", e.Type, e.Databases)
}

func (e *MultiDatabaseAmbiguityError) Unwrap() error { return ErrMultiDatabaseAmbiguity }

// NotFoundError is the miss signal of single-row queries.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record not found in %s", e.Table)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
