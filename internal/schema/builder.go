package schema

import "fmt"

// TableBuilder is the table-definition handle passed to the callback of
// Database.CreateTable. It accumulates a TableSchema; nothing is sent to
// the engine until the callback returns.
type TableBuilder struct {
	table *TableSchema
}

// NewTableBuilder starts the definition of table name.
func NewTableBuilder(name string) *TableBuilder {
	return &TableBuilder{
		table: &TableSchema{
			Name:        name,
			Columns:     []Column{},
			Indexes:     []Index{},
			ForeignKeys: []ForeignKey{},
		},
	}
}

// Schema returns the table defined so far.
func (b *TableBuilder) Schema() *TableSchema {
	return b.table
}

// Increments adds an auto-incrementing unsigned integer column.
func (b *TableBuilder) Increments(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeInteger, AutoIncrement: true, Unsigned: true})
}

func (b *TableBuilder) Integer(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeInteger})
}

func (b *TableBuilder) BigInteger(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeBigInt})
}

func (b *TableBuilder) Real(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeReal})
}

func (b *TableBuilder) Double(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeDouble})
}

func (b *TableBuilder) Float(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeFloat})
}

func (b *TableBuilder) Text(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeText})
}

func (b *TableBuilder) String(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeVarchar})
}

func (b *TableBuilder) Boolean(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeBoolean})
}

func (b *TableBuilder) UUID(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeUUID})
}

func (b *TableBuilder) Timestamp(name string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: TypeTimestamp})
}

// Specific adds a column whose type is given in the engine's own spelling.
func (b *TableBuilder) Specific(name, nativeType string) *ColumnBuilder {
	return b.add(Column{Name: name, Type: nativeType, Native: true})
}

// Foreign starts a foreign key constraint on column.
func (b *TableBuilder) Foreign(column string) *ForeignKeyBuilder {
	b.table.ForeignKeys = append(b.table.ForeignKeys, ForeignKey{
		Name:   fmt.Sprintf("fk_%s_%s", b.table.Name, column),
		Column: column,
	})
	return &ForeignKeyBuilder{table: b.table, index: len(b.table.ForeignKeys) - 1}
}

func (b *TableBuilder) add(col Column) *ColumnBuilder {
	col.Position = len(b.table.Columns) + 1
	b.table.Columns = append(b.table.Columns, col)
	return &ColumnBuilder{table: b.table, index: len(b.table.Columns) - 1}
}

// ColumnBuilder applies modifiers to a column added by a TableBuilder.
// Columns are NOT NULL unless Nullable is called.
type ColumnBuilder struct {
	table *TableSchema
	index int
}

func (c *ColumnBuilder) column() *Column {
	return &c.table.Columns[c.index]
}

// Primary makes the column the table's primary key.
func (c *ColumnBuilder) Primary() *ColumnBuilder {
	name := c.column().Name
	for i := range c.table.Indexes {
		if c.table.Indexes[i].Primary {
			c.table.Indexes[i].Columns = []string{name}
			return c
		}
	}
	c.table.Indexes = append(c.table.Indexes, Index{
		Name:    "PRIMARY",
		Columns: []string{name},
		Unique:  true,
		Primary: true,
	})
	return c
}

func (c *ColumnBuilder) Nullable() *ColumnBuilder {
	c.column().Nullable = true
	return c
}

func (c *ColumnBuilder) Unsigned() *ColumnBuilder {
	c.column().Unsigned = true
	return c
}

// Unique adds a single-column unique index.
func (c *ColumnBuilder) Unique() *ColumnBuilder {
	name := c.column().Name
	c.table.Indexes = append(c.table.Indexes, Index{
		Name:    fmt.Sprintf("%s_%s_unique", c.table.Name, name),
		Columns: []string{name},
		Unique:  true,
	})
	return c
}

// ForeignKeyBuilder completes a constraint started by TableBuilder.Foreign.
type ForeignKeyBuilder struct {
	table *TableSchema
	index int
}

func (f *ForeignKeyBuilder) References(column string) *ForeignKeyBuilder {
	f.table.ForeignKeys[f.index].ReferencedColumn = column
	return f
}

func (f *ForeignKeyBuilder) InTable(table string) *ForeignKeyBuilder {
	f.table.ForeignKeys[f.index].ReferencedTable = table
	return f
}

func (f *ForeignKeyBuilder) OnDelete(action string) *ForeignKeyBuilder {
	f.table.ForeignKeys[f.index].OnDelete = action
	return f
}
