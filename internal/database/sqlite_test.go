package database

import (
	"context"
	"testing"

	"github.com/koba/ormkit/internal/schema"
)

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	db := NewSQLite(Config{Type: "sqlite", Database: ":memory:"})
	if err := db.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUsersAndPosts(t *testing.T, db Database) {
	t.Helper()
	ctx := context.Background()
	err := db.CreateTable(ctx, "users", func(b *schema.TableBuilder) {
		b.Increments("id").Primary()
		b.Text("name")
		b.Real("age").Nullable()
	})
	if err != nil {
		t.Fatalf("CreateTable(users) error = %v", err)
	}
	err = db.CreateTable(ctx, "posts", func(b *schema.TableBuilder) {
		b.Increments("id").Primary()
		b.String("title").Unique()
		b.Integer("userId").Unsigned()
		b.Foreign("userId").References("id").InTable("users")
	})
	if err != nil {
		t.Fatalf("CreateTable(posts) error = %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	createUsersAndPosts(t, db)

	id, err := db.Insert(ctx, "users", "id", schema.Row{"name": "jordan", "age": 5.0})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id != int64(1) {
		t.Fatalf("Insert() id = %#v, want 1", id)
	}

	rows, err := db.Select(ctx, schema.Select{
		Table:      "users",
		Columns:    []string{"id", "name"},
		Conditions: []schema.Condition{{Column: "id", Operator: "=", Value: id}},
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Select() returned %d rows, want 1", len(rows))
	}
	if rows[0]["name"] != "jordan" {
		t.Errorf("name = %#v, want jordan", rows[0]["name"])
	}
	if _, ok := rows[0]["age"]; ok {
		t.Errorf("unselected column age present in %v", rows[0])
	}

	n, err := db.Update(ctx, "users", []schema.Condition{{Column: "id", Operator: "=", Value: id}}, schema.Row{"name": "sam"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Update() affected %d rows, want 1", n)
	}

	n, err = db.Delete(ctx, "users", []schema.Condition{{Column: "name", Operator: "=", Value: "sam"}})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Delete() affected %d rows, want 1", n)
	}
}

func TestSQLiteForeignKeyEnforced(t *testing.T) {
	db := openSQLite(t)
	createUsersAndPosts(t, db)

	_, err := db.Insert(context.Background(), "posts", "id", schema.Row{"title": "hello", "userId": 42})
	if err == nil {
		t.Fatal("Insert() with dangling userId succeeded, want foreign key error")
	}
}

func TestSQLiteIntrospection(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	createUsersAndPosts(t, db)

	tables, err := db.GetAllTables(ctx)
	if err != nil {
		t.Fatalf("GetAllTables() error = %v", err)
	}
	if len(tables) != 2 || tables[0] != "posts" || tables[1] != "users" {
		t.Errorf("GetAllTables() = %v, want [posts users]", tables)
	}

	ok, err := db.HasTable(ctx, "users")
	if err != nil || !ok {
		t.Errorf("HasTable(users) = %v, %v", ok, err)
	}
	ok, err = db.HasTable(ctx, "comments")
	if err != nil || ok {
		t.Errorf("HasTable(comments) = %v, %v", ok, err)
	}

	posts, err := db.GetTableSchema(ctx, "posts")
	if err != nil {
		t.Fatalf("GetTableSchema() error = %v", err)
	}

	pk := posts.PrimaryKey()
	if pk == nil || len(pk.Columns) != 1 || pk.Columns[0] != "id" {
		t.Errorf("primary key = %+v, want [id]", pk)
	}
	if id := posts.Column("id"); id == nil || !id.AutoIncrement {
		t.Errorf("id column = %+v, want auto increment", id)
	}
	if userID := posts.Column("userId"); userID == nil || userID.Type != "INTEGER" || userID.Nullable {
		t.Errorf("userId column = %+v, want NOT NULL INTEGER", userID)
	}

	if len(posts.ForeignKeys) != 1 {
		t.Fatalf("foreign keys = %+v, want 1", posts.ForeignKeys)
	}
	fk := posts.ForeignKeys[0]
	if fk.Column != "userId" || fk.ReferencedTable != "users" || fk.ReferencedColumn != "id" {
		t.Errorf("foreign key = %+v, want userId -> users.id", fk)
	}

	var unique bool
	for _, idx := range posts.Indexes {
		if idx.Unique && !idx.Primary && len(idx.Columns) == 1 && idx.Columns[0] == "title" {
			unique = true
		}
	}
	if !unique {
		t.Errorf("indexes = %+v, want unique index on title", posts.Indexes)
	}
}

func TestNotConnected(t *testing.T) {
	db := NewSQLite(Config{Type: "sqlite", Database: ":memory:"})
	if _, err := db.Select(context.Background(), schema.Select{Table: "users"}); err == nil {
		t.Error("Select() before Connect succeeded, want error")
	}
}
