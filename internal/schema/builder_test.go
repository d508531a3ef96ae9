package schema

import (
	"slices"
	"testing"
)

func TestTableBuilder(t *testing.T) {
	b := NewTableBuilder("posts")
	b.Increments("id").Primary()
	b.String("slug").Unique()
	b.Text("body").Nullable()
	b.Specific("location", "POINT")
	b.Integer("userId").Unsigned()
	b.Foreign("userId").References("id").InTable("users").OnDelete("CASCADE")
	table := b.Schema()

	if got := len(table.Columns); got != 5 {
		t.Fatalf("got %d columns, want 5", got)
	}
	for i, c := range table.Columns {
		if c.Position != i+1 {
			t.Errorf("%s position = %d, want %d", c.Name, c.Position, i+1)
		}
	}

	tests := []struct {
		name string
		want Column
	}{
		{"id", Column{Name: "id", Type: TypeInteger, AutoIncrement: true, Unsigned: true, Position: 1}},
		{"slug", Column{Name: "slug", Type: TypeVarchar, Position: 2}},
		{"body", Column{Name: "body", Type: TypeText, Nullable: true, Position: 3}},
		{"location", Column{Name: "location", Type: "POINT", Native: true, Position: 4}},
		{"userId", Column{Name: "userId", Type: TypeInteger, Unsigned: true, Position: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Column(tt.name)
			if got == nil {
				t.Fatalf("column %s missing", tt.name)
			}
			if *got != tt.want {
				t.Errorf("column = %+v, want %+v", *got, tt.want)
			}
		})
	}

	pk := table.PrimaryKey()
	if pk == nil || pk.Name != "PRIMARY" || !slices.Equal(pk.Columns, []string{"id"}) {
		t.Errorf("primary key = %+v", pk)
	}
	if len(table.Indexes) != 2 || table.Indexes[1].Name != "posts_slug_unique" || !table.Indexes[1].Unique {
		t.Errorf("indexes = %+v", table.Indexes)
	}

	want := ForeignKey{
		Name:             "fk_posts_userId",
		Column:           "userId",
		ReferencedTable:  "users",
		ReferencedColumn: "id",
		OnDelete:         "CASCADE",
	}
	if len(table.ForeignKeys) != 1 || table.ForeignKeys[0] != want {
		t.Errorf("foreign keys = %+v", table.ForeignKeys)
	}
}

func TestPrimaryReplacesKey(t *testing.T) {
	b := NewTableBuilder("tokens")
	b.UUID("id").Primary()
	b.UUID("other").Primary()

	table := b.Schema()
	if len(table.Indexes) != 1 {
		t.Fatalf("indexes = %+v", table.Indexes)
	}
	if pk := table.PrimaryKey(); !slices.Equal(pk.Columns, []string{"other"}) {
		t.Errorf("primary key columns = %v", pk.Columns)
	}
	if table.Column("missing") != nil {
		t.Error("Column returned a missing column")
	}
}
