package record

import (
	"context"

	"github.com/koba/ormkit/internal/schema"
)

var builders = map[LogicalType]func(*schema.TableBuilder, string) *schema.ColumnBuilder{
	TypeIncrements: (*schema.TableBuilder).Increments,
	TypeInteger:    (*schema.TableBuilder).Integer,
	TypeBigInteger: (*schema.TableBuilder).BigInteger,
	TypeReal:       (*schema.TableBuilder).Real,
	TypeDouble:     (*schema.TableBuilder).Double,
	TypeFloat:      (*schema.TableBuilder).Float,
	TypeText:       (*schema.TableBuilder).Text,
	TypeString:     (*schema.TableBuilder).String,
	TypeBoolean:    (*schema.TableBuilder).Boolean,
	TypeUUID:       (*schema.TableBuilder).UUID,
	TypeTimestamp:  (*schema.TableBuilder).Timestamp,
}

func synthesize(meta *Meta) (*schema.TableSchema, error) {
	b := schema.NewTableBuilder(meta.tableName)
	if err := buildTable(b, meta); err != nil {
		return nil, err
	}
	return b.Schema(), nil
}

// buildTable adds the columns of meta in declaration order. A foreign key
// column takes the type of the referenced primary key.
func buildTable(b *schema.TableBuilder, meta *Meta) error {
	for _, name := range meta.columns {
		def := meta.defs[name]

		var (
			cb  *schema.ColumnBuilder
			err error
		)
		if def.ForeignKey != nil {
			target, terr := def.ForeignKey.Target.Meta()
			if terr != nil {
				return terr
			}
			pk := target.defs[target.primaryKey].Column
			if pk.Type == TypeIncrements && pk.Physical == "" {
				cb = b.Integer(name).Unsigned()
			} else {
				cb, err = addColumn(b, meta, name, pk)
			}
			if err == nil {
				b.Foreign(name).References(target.primaryKey).InTable(target.tableName)
			}
		} else {
			cb, err = addColumn(b, meta, name, def.Column)
		}
		if err != nil {
			return err
		}

		if def.Column.PrimaryKey {
			cb.Primary()
		}
		if def.Column.Nullable {
			cb.Nullable()
		}
		if def.Column.Unique {
			cb.Unique()
		}
	}
	return nil
}

func addColumn(b *schema.TableBuilder, meta *Meta, name string, c Column) (*schema.ColumnBuilder, error) {
	if c.Physical != "" {
		return b.Specific(name, c.Physical), nil
	}
	build, ok := builders[c.Type]
	if !ok {
		return nil, &UnknownColumnTypeError{Table: meta.tableName, Field: name, Type: c.Type}
	}
	return build(b, name), nil
}

// createTable synthesizes meta before handing the definition to the
// engine, so engines never see a partial table.
func createTable(ctx context.Context, engine Engine, meta *Meta) error {
	if _, err := synthesize(meta); err != nil {
		return err
	}
	var buildErr error
	err := engine.CreateTable(ctx, meta.tableName, func(b *schema.TableBuilder) {
		buildErr = buildTable(b, meta)
	})
	if err != nil {
		return err
	}
	if buildErr != nil {
		return buildErr
	}
	tableCreateTotal.WithLabelValues(meta.tableName).Inc()
	logger().InfoContext(ctx, "table created", "table", meta.tableName, "type", meta.TypeName())
	return nil
}
