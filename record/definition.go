package record

import (
	"fmt"
)

// Definition receives the declarations of a record type's Define method.
// The first construction of a type runs Define in defining mode and builds
// the type's Meta from it; later constructions only bind field slots and
// apply Plain values.
//
// Define cannot return an error. The first failing declaration is kept and
// reported by the construction that ran Define.
type Definition struct {
	meta     *Meta
	defining bool
	inst     *Base
	err      error
}

// Column declares a column backed by slot. A nil slot stores the value in
// the instance, reachable through Base.Get and Base.Set.
func (d *Definition) Column(name string, slot Slot, c Column) {
	if !d.check(name) {
		return
	}
	if d.defining {
		if d.meta.HasColumn(name) {
			d.fail(fmt.Errorf("%s.%s: %w", d.meta.TypeName(), name, ErrDuplicateColumn))
			return
		}
		if c.PrimaryKey {
			if d.meta.primaryKey != "" {
				d.fail(&DuplicatePrimaryKeyError{Table: d.meta.tableName, Field: name, Existing: d.meta.primaryKey})
				return
			}
			d.meta.primaryKey = name
		}
		d.meta.addColumn(name, ColumnDef{Column: c})
	}
	if slot != nil {
		slot.bind(d.inst, name)
		d.inst.slots[name] = slot
	}
}

// Association declares a relationship. BelongsTo adds the column <name>Id
// holding the target's primary key.
func (d *Definition) Association(name string, a Association) {
	if !d.check(name) || !d.defining {
		return
	}
	if _, ok := d.meta.associations[name]; ok {
		d.fail(fmt.Errorf("%s.%s: %w", d.meta.TypeName(), name, ErrDuplicateColumn))
		return
	}
	d.meta.associations[name] = a
	if a.Kind != KindBelongsTo {
		return
	}
	fk := name + "Id"
	if !d.meta.HasColumn(fk) {
		d.meta.addColumn(fk, ColumnDef{Column: a.Column, ForeignKey: &a, Association: name})
	}
}

// Set dispatches on the kind of declaration.
func (d *Definition) Set(name string, decl Declaration) {
	switch v := decl.(type) {
	case Column:
		d.Column(name, nil, v)
	case Association:
		d.Association(name, v)
	case Plain:
		d.plain(name, v.Value)
	}
}

func (d *Definition) plain(name string, value any) {
	if d.err != nil {
		return
	}
	if !d.meta.HasColumn(name) {
		d.fail(fmt.Errorf("%s.%s: %w", d.meta.TypeName(), name, ErrUnknownColumn))
		return
	}
	if err := d.inst.load(name, value); err != nil {
		d.fail(err)
		return
	}
	if !d.defining {
		d.inst.touch(name)
	}
}

func (d *Definition) check(name string) bool {
	if d.err != nil {
		return false
	}
	if isReserved(name) {
		d.fail(&ReservedNameError{Type: d.meta.TypeName(), Field: name})
		return false
	}
	return true
}

func (d *Definition) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Definition) finalize() (*Meta, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.meta.primaryKey == "" {
		return nil, &MissingPrimaryKeyError{Table: d.meta.tableName}
	}
	logger().Debug("record type defined",
		"type", d.meta.TypeName(),
		"table", d.meta.tableName,
		"primary_key", d.meta.primaryKey,
		"columns", d.meta.columns)
	return d.meta, nil
}
