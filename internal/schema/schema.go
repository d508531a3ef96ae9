package schema

// Portable column types understood by every dialect in internal/generator.
// Columns created through TableBuilder.Specific carry a native type instead.
const (
	TypeInteger   = "integer"
	TypeBigInt    = "bigint"
	TypeReal      = "real"
	TypeDouble    = "double"
	TypeFloat     = "float"
	TypeText      = "text"
	TypeVarchar   = "varchar"
	TypeBoolean   = "boolean"
	TypeUUID      = "uuid"
	TypeTimestamp = "timestamp"
)

// Column represents a database column
type Column struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Native        bool    `json:"native,omitempty"` // Type is passed to the engine verbatim
	Nullable      bool    `json:"nullable"`
	DefaultValue  *string `json:"default_value,omitempty"`
	AutoIncrement bool    `json:"auto_increment"`
	Unsigned      bool    `json:"unsigned,omitempty"`
	Position      int     `json:"position"`
}

// Index represents a database index
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
	Primary bool     `json:"primary"`
	Type    string   `json:"type,omitempty"` // e.g., BTREE, HASH
}

// ForeignKey represents a foreign key constraint
type ForeignKey struct {
	Name             string `json:"name"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
	OnDelete         string `json:"on_delete,omitempty"` // CASCADE, SET NULL, etc.
	OnUpdate         string `json:"on_update,omitempty"`
}

// TableSchema represents a complete table schema
type TableSchema struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	Indexes     []Index      `json:"indexes"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Column returns the column with the given name, or nil.
func (t *TableSchema) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKey returns the primary key index, or nil if the table has none.
func (t *TableSchema) PrimaryKey() *Index {
	for i := range t.Indexes {
		if t.Indexes[i].Primary {
			return &t.Indexes[i]
		}
	}
	return nil
}

// Row represents a single row of data, keyed by column name
type Row map[string]interface{}
