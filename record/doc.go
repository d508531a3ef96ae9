// Package record maps Go types to SQL tables.
//
// A record type embeds Base and declares its columns and associations in a
// Define method:
//
//	type User struct {
//		record.Base
//		ID   record.Field[int64]
//		Name record.Field[string]
//	}
//
//	func (u *User) Define(d *record.Definition) {
//		d.Column("id", &u.ID, record.Increments(record.PrimaryKey()))
//		d.Column("name", &u.Name, record.Text())
//		d.Association("posts", record.HasMany[Post]())
//	}
//
// The first construction of a type runs Define to build the type's Meta:
// table name, primary key and columns. This happens once per type, also
// when instances are constructed concurrently. Records must be constructed
// with New, Create or a query; other values cannot be saved.
//
// Queries are immutable descriptors. They run when All or One is called:
//
//	u, err := record.Find[User](id).One(ctx)
//
// Assigning a field through Field.Set marks it dirty. Save inserts new
// records and updates only the dirty columns of existing ones.
package record
