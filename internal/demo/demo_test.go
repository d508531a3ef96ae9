package demo

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/koba/ormkit/internal/generator"
	"github.com/koba/ormkit/record"
)

func connect(t *testing.T) context.Context {
	t.Helper()
	t.Cleanup(func() { record.Reset() })
	ctx := context.Background()
	err := record.Connect(ctx, record.Config{Type: "sqlite", Database: ":memory:", Synchronize: true})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return ctx
}

func TestTables(t *testing.T) {
	t.Cleanup(func() { record.Reset() })

	tables, err := Tables()
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	ddl := generator.NewDDLGenerator(generator.SQLite)
	posts := ddl.CreateTable(tables[1])
	for _, want := range []string{
		`CREATE TABLE "posts"`,
		`"userId" INTEGER NOT NULL`,
		`"body" TEXT,`,
		`FOREIGN KEY ("userId") REFERENCES "users"("id")`,
	} {
		if !strings.Contains(posts, want) {
			t.Errorf("DDL does not contain %s:\n%s", want, posts)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	ctx := connect(t)
	if err := Preload(ctx); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	u, err := record.Create[User](record.Values{"name": "sam"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u.Password = "secret"
	if err := u.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if u.Password != "" || u.PasswordHash.Get() == "" {
		t.Fatalf("password=%q hash=%q", u.Password, u.PasswordHash.Get())
	}

	found, err := record.Find[User](u.ID.Get()).One(ctx)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !found.CheckPassword("secret") || found.CheckPassword("guess") {
		t.Error("stored hash does not match the password")
	}
	if found.Age.Get() != nil {
		t.Errorf("age = %v, want nil", *found.Age.Get())
	}
}

func TestPostUser(t *testing.T) {
	ctx := connect(t)
	if err := Preload(ctx); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	age := 29.0
	u, err := record.Create[User](record.Values{"name": "kim"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u.Age.Set(&age)
	if err := u.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p, err := record.Create[Post](record.Values{"title": "notes"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := p.SetUser(u); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if err := p.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	author, err := p.User(ctx)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if author.Name.Get() != "kim" || author.Age.Get() == nil || *author.Age.Get() != 29 {
		t.Errorf("author = %q, age %v", author.Name.Get(), author.Age.Get())
	}
}

func TestRun(t *testing.T) {
	ctx := connect(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	if err := Run(ctx, logger); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"name=jordan", "posts=1", "password_ok=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("log does not contain %s:\n%s", want, out)
		}
	}
}
