package record

import (
	"context"
	"errors"
	"testing"
)

func connectSQLite(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { Reset() })
	err := Connect(context.Background(), Config{Type: "sqlite", Database: ":memory:", Synchronize: true})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
}

func TestSQLiteEndToEnd(t *testing.T) {
	connectSQLite(t)
	ctx := context.Background()

	if err := Preload[testPost](ctx); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	u, err := Create[testUser](Values{"name": "jordan"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := u.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	id := u.ID.Get()
	if id == 0 {
		t.Fatal("no primary key assigned")
	}

	found, err := Find[testUser](id).One(ctx)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.Name.Get() != "jordan" || len(found.Dirty()) != 0 || !found.Exists() {
		t.Errorf("found name=%q dirty=%v exists=%v", found.Name.Get(), found.Dirty(), found.Exists())
	}

	found.Age.Set(41)
	if err := found.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := Find[testUser](id).One(ctx)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if reloaded.Age.Get() != 41 || reloaded.Name.Get() != "jordan" {
		t.Errorf("reloaded age=%v name=%q", reloaded.Age.Get(), reloaded.Name.Get())
	}

	for _, title := range []string{"first", "second"} {
		p, err := Create[testPost](Values{"title": title, "userId": id})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := p.Save(ctx); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	posts, err := Where[testPost](Values{"userId": id}).All(ctx)
	if err != nil {
		t.Fatalf("Where: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if uid, _ := posts[0].Get("userId"); uid != id {
		t.Errorf("userId = %#v, want %d", uid, id)
	}

	titles, err := From[testPost]().Filter(Like("title", "s%")).Pluck("title").All(ctx)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(titles) != 1 || titles[0].Title.Get() != "second" || titles[0].Loaded("id") {
		t.Errorf("plucked %d posts", len(titles))
	}

	if err := posts[0].Destroy(ctx); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := Find[testPost](posts[0].ID.Get()).One(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find destroyed post error = %v", err)
	}
}

func TestSQLiteForeignKeyViolation(t *testing.T) {
	connectSQLite(t)
	ctx := context.Background()

	if err := Preload[testPost](ctx); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	p, err := Create[testPost](Values{"title": "orphan", "userId": int64(99)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := p.Save(ctx); err == nil {
		t.Fatal("saving a post of a missing user succeeded")
	}
}

func TestConnectTwice(t *testing.T) {
	connectSQLite(t)

	err := Connect(context.Background(), Config{Type: "sqlite", Database: ":memory:"})
	if !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect error = %v", err)
	}
}

func TestConnectInvalidConfig(t *testing.T) {
	t.Cleanup(func() { Reset() })

	if err := Connect(context.Background(), Config{Type: "oracle", Database: "x"}); err == nil {
		t.Fatal("Connect accepted an unsupported database type")
	}
	if connected() {
		t.Error("failed Connect left a connection behind")
	}
}
