package record

// Declaration is what a record type assigns to a named field in Define:
// a Column, an Association or a Plain value.
type Declaration interface {
	declaration()
}

// LogicalType names a column type independent of any database. Synthesis
// maps it to a TableBuilder method.
type LogicalType string

const (
	TypeIncrements LogicalType = "increments"
	TypeInteger    LogicalType = "integer"
	TypeBigInteger LogicalType = "bigInteger"
	TypeReal       LogicalType = "real"
	TypeDouble     LogicalType = "double"
	TypeFloat      LogicalType = "float"
	TypeText       LogicalType = "text"
	TypeString     LogicalType = "string"
	TypeBoolean    LogicalType = "boolean"
	TypeUUID       LogicalType = "uuid"
	TypeTimestamp  LogicalType = "timestamp"
)

// Column describes one persisted field. It is a value: declaring the same
// Column on several record types or instances shares nothing.
type Column struct {
	Type       LogicalType
	Nullable   bool
	Unique     bool
	PrimaryKey bool
	// Physical overrides the engine type, e.g. "varchar(64)".
	Physical string
}

func (Column) declaration() {}

// AssociationKind is the relationship an Association describes.
type AssociationKind int

const (
	KindBelongsTo AssociationKind = iota
	KindHasMany
	KindHasOne
)

func (k AssociationKind) String() string {
	switch k {
	case KindBelongsTo:
		return "belongsTo"
	case KindHasMany:
		return "hasMany"
	case KindHasOne:
		return "hasOne"
	}
	return "unknown"
}

// Association describes a relationship to another record type. A
// BelongsTo association adds a foreign key column named <field>Id.
type Association struct {
	Kind   AssociationKind
	Target *Type
	// Column holds the options of the derived foreign key column.
	Column Column
}

func (Association) declaration() {}

// Plain is an ordinary value assigned to an already declared column.
type Plain struct {
	Value any
}

func (Plain) declaration() {}

func IsColumn(d Declaration) bool {
	_, ok := d.(Column)
	return ok
}

func IsAssociation(d Declaration) bool {
	_, ok := d.(Association)
	return ok
}

// Option modifies a Column under construction.
type Option func(*Column)

func PrimaryKey() Option {
	return func(c *Column) { c.PrimaryKey = true }
}

func Nullable() Option {
	return func(c *Column) { c.Nullable = true }
}

func Unique() Option {
	return func(c *Column) { c.Unique = true }
}

// Physical sets the column type in the engine's own spelling.
func Physical(nativeType string) Option {
	return func(c *Column) { c.Physical = nativeType }
}

// CustomColumn declares a column of any logical type. Synthesis fails for
// types it cannot map unless Physical is given.
func CustomColumn(t LogicalType, opts ...Option) Column {
	c := Column{Type: t}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func Increments(opts ...Option) Column { return CustomColumn(TypeIncrements, opts...) }
func Integer(opts ...Option) Column    { return CustomColumn(TypeInteger, opts...) }
func BigInteger(opts ...Option) Column { return CustomColumn(TypeBigInteger, opts...) }
func Real(opts ...Option) Column       { return CustomColumn(TypeReal, opts...) }
func Double(opts ...Option) Column     { return CustomColumn(TypeDouble, opts...) }
func Text(opts ...Option) Column       { return CustomColumn(TypeText, opts...) }
func String(opts ...Option) Column     { return CustomColumn(TypeString, opts...) }
func Number(opts ...Option) Column     { return CustomColumn(TypeFloat, opts...) }
func Boolean(opts ...Option) Column    { return CustomColumn(TypeBoolean, opts...) }
func UUID(opts ...Option) Column       { return CustomColumn(TypeUUID, opts...) }
func Timestamp(opts ...Option) Column  { return CustomColumn(TypeTimestamp, opts...) }

// SQLite style aliases.
var (
	Int       = Integer
	TinyInt   = Integer
	SmallInt  = Integer
	MediumInt = Integer
	BigInt    = BigInteger
	Int2      = Integer
	Int8      = BigInteger
	Character = Text
	Varchar   = String
	Clob      = Text
	Float     = Number
)

// BelongsTo declares that the record references one T. The options apply
// to the derived foreign key column.
func BelongsTo[T any, PT pointer[T]](opts ...Option) Association {
	return Association{Kind: KindBelongsTo, Target: typeOf[T, PT](), Column: CustomColumn("", opts...)}
}

func HasMany[T any, PT pointer[T]]() Association {
	return Association{Kind: KindHasMany, Target: typeOf[T, PT]()}
}

func HasOne[T any, PT pointer[T]]() Association {
	return Association{Kind: KindHasOne, Target: typeOf[T, PT]()}
}
