package record

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// Record is implemented by application record types: a struct embedding
// Base whose pointer has a Define method.
type Record interface {
	Define(d *Definition)
	base() *Base
}

type pointer[T any] interface {
	*T
	Record
}

// TableNamer overrides the default table name of a record type.
type TableNamer interface {
	TableName() string
}

// DatabaseNamer names the connected database a record type is stored in.
// It is required once more than one database is connected.
type DatabaseNamer interface {
	Database() string
}

// Initializer is run on every constructed instance except the bypass
// constructions of Preload and association resolution. Lifecycle hooks
// are registered here.
type Initializer interface {
	Initialize()
}

// Type identifies a record type in the registry.
type Type struct {
	rtype  reflect.Type
	define func() (*Meta, error)
}

func typeOf[T any, PT pointer[T]]() *Type {
	return &Type{
		rtype: reflect.TypeFor[T](),
		define: func() (*Meta, error) {
			r, err := construct[T, PT](true)
			if err != nil {
				return nil, err
			}
			return r.base().meta, nil
		},
	}
}

func (t *Type) Name() string {
	return t.rtype.Name()
}

// Meta forces the definition of the type and returns its metadata.
func (t *Type) Meta() (*Meta, error) {
	return t.define()
}

// ColumnDef is the declaration behind one column of a record type.
type ColumnDef struct {
	Column Column
	// ForeignKey is set for the <field>Id column derived from a BelongsTo
	// association named Association.
	ForeignKey  *Association
	Association string
}

// Meta is the schema of a record type. It is built by the first
// construction of the type and never modified afterwards.
type Meta struct {
	rtype        reflect.Type
	tableName    string
	database     string
	primaryKey   string
	columns      []string
	defs         map[string]ColumnDef
	associations map[string]Association
}

func newMeta(rt reflect.Type, r Record) *Meta {
	m := &Meta{
		rtype:        rt,
		tableName:    defaultTableName(rt.Name()),
		defs:         map[string]ColumnDef{},
		associations: map[string]Association{},
	}
	if tn, ok := r.(TableNamer); ok {
		m.tableName = tn.TableName()
	}
	if dn, ok := r.(DatabaseNamer); ok {
		m.database = dn.Database()
	}
	return m
}

func (m *Meta) TypeName() string   { return m.rtype.Name() }
func (m *Meta) TableName() string  { return m.tableName }
func (m *Meta) Database() string   { return m.database }
func (m *Meta) PrimaryKey() string { return m.primaryKey }

// Columns returns the column names in declaration order.
func (m *Meta) Columns() []string {
	return slices.Clone(m.columns)
}

func (m *Meta) HasColumn(name string) bool {
	_, ok := m.defs[name]
	return ok
}

func (m *Meta) Definition(name string) (ColumnDef, bool) {
	def, ok := m.defs[name]
	return def, ok
}

func (m *Meta) Association(name string) (Association, bool) {
	a, ok := m.associations[name]
	return a, ok
}

func (m *Meta) addColumn(name string, def ColumnDef) {
	m.columns = append(m.columns, name)
	m.defs[name] = def
}

// defaultTableName is the snake cased plural of the type name.
func defaultTableName(typeName string) string {
	return strcase.ToSnake(inflection.Plural(typeName))
}

// Registry holds the metadata of every record type used by the process.
type Registry struct {
	mu      sync.Mutex
	entries map[reflect.Type]*entry
}

type entry struct {
	once sync.Once
	meta *Meta
	err  error
}

var registry = &Registry{entries: map[reflect.Type]*entry{}}

func (r *Registry) entry(rt reflect.Type) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[rt]
	if !ok {
		e = &entry{}
		r.entries[rt] = e
	}
	return e
}

func (r *Registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = map[reflect.Type]*entry{}
}

// Reset forgets all record metadata and closes all connections. It exists
// for test harnesses.
func Reset() error {
	registry.reset()
	return Disconnect()
}

// MetaOf returns the metadata of T, defining it if needed.
func MetaOf[T any, PT pointer[T]]() (*Meta, error) {
	return typeOf[T, PT]().Meta()
}

// construct is the only way record instances come to life. The first
// construction of a type defines its metadata; concurrent constructions
// wait for it to finish. With bypass, Initialize is not run.
func construct[T any, PT pointer[T]](bypass bool) (PT, error) {
	rt := reflect.TypeFor[T]()
	e := registry.entry(rt)

	r := PT(new(T))
	b := r.base()
	b.init(rt.Name())

	defined := false
	e.once.Do(func() {
		defined = true
		d := &Definition{meta: newMeta(rt, r), defining: true, inst: b}
		r.Define(d)
		e.meta, e.err = d.finalize()
	})
	if e.err != nil {
		return nil, e.err
	}
	if e.meta == nil {
		return nil, fmt.Errorf("definition of %s did not complete", rt.Name())
	}

	if !defined {
		b.meta = e.meta
		b.tracking = true
		d := &Definition{meta: e.meta, inst: b}
		r.Define(d)
		if d.err != nil {
			return nil, d.err
		}
	}
	b.meta = e.meta
	b.tracking = true

	if !bypass {
		if i, ok := any(r).(Initializer); ok {
			i.Initialize()
		}
	}
	return r, nil
}

var reservedNames = func() map[string]bool {
	names := map[string]bool{}
	t := reflect.TypeFor[*Base]()
	for i := 0; i < t.NumMethod(); i++ {
		names[strings.ToLower(t.Method(i).Name)] = true
	}
	return names
}()

func isReserved(name string) bool {
	return reservedNames[strings.ToLower(name)]
}
