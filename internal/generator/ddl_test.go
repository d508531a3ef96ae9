package generator

import (
	"strings"
	"testing"

	"github.com/koba/ormkit/internal/schema"
)

func postsTable() *schema.TableSchema {
	b := schema.NewTableBuilder("posts")
	b.Increments("id").Primary()
	b.String("title").Unique()
	b.Text("body").Nullable()
	b.Integer("userId").Unsigned()
	b.Foreign("userId").References("id").InTable("users")
	return b.Schema()
}

func TestCreateTable(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		want    []string
		notWant []string
	}{
		{
			name:    "sqlite",
			dialect: SQLite,
			want: []string{
				`CREATE TABLE "posts" (`,
				`"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT`,
				`"title" VARCHAR(255) NOT NULL`,
				`"body" TEXT,`,
				`CONSTRAINT "posts_title_unique" UNIQUE ("title")`,
				`CONSTRAINT "fk_posts_userId" FOREIGN KEY ("userId") REFERENCES "users"("id")`,
			},
			notWant: []string{"PRIMARY KEY (", "AUTO_INCREMENT"},
		},
		{
			name:    "mysql",
			dialect: MySQL,
			want: []string{
				"CREATE TABLE `posts` (",
				"`id` INT UNSIGNED NOT NULL AUTO_INCREMENT",
				"`userId` INT UNSIGNED NOT NULL",
				"PRIMARY KEY (`id`)",
				"FOREIGN KEY (`userId`) REFERENCES `users`(`id`)",
			},
		},
		{
			name:    "postgres",
			dialect: Postgres,
			want: []string{
				`"id" SERIAL NOT NULL`,
				`"userId" INTEGER NOT NULL`,
				`PRIMARY KEY ("id")`,
			},
			notWant: []string{"AUTOINCREMENT", "AUTO_INCREMENT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDDLGenerator(tt.dialect).CreateTable(postsTable())
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("CreateTable() missing %q in\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("CreateTable() unexpectedly contains %q in\n%s", w, got)
				}
			}
		})
	}
}

func TestNativeTypeSpecific(t *testing.T) {
	b := schema.NewTableBuilder("t")
	b.Specific("geo", "geometry")
	col := b.Schema().Column("geo")
	for _, d := range []Dialect{MySQL, Postgres, SQLite} {
		if got := d.NativeType(col); got != "geometry" {
			t.Errorf("%s NativeType() = %q, want verbatim native type", d, got)
		}
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"mysql", MySQL, false},
		{"MySQL", MySQL, false},
		{"PostgreSQL", Postgres, false},
		{"postgres", Postgres, false},
		{"sqlite3", SQLite, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
