package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fixedResult struct {
	id  int64
	err error
}

func (r fixedResult) LastInsertId() (int64, error) { return r.id, r.err }
func (r fixedResult) RowsAffected() (int64, error) { return 1, nil }

func TestInsertID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	if id := insertID(ctx, "users", fixedResult{id: 3}); id != int64(3) {
		t.Errorf("insertID = %#v, want 3", id)
	}

	id := insertID(ctx, "tags", fixedResult{err: errors.New("LastInsertId is not supported")})
	if id != nil {
		t.Errorf("insertID = %#v, want nil", id)
	}
	out := buf.String()
	if !strings.Contains(out, "no insert id") || !strings.Contains(out, "table=tags") || !strings.Contains(out, "not supported") {
		t.Errorf("log = %q", out)
	}
}
