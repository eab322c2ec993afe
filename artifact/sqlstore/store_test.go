package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/viant/docvec/artifact"
	"github.com/viant/docvec/engine"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := engine.Open(engine.MemoryDSN)
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := New(context.Background(), db)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

// TestStore_SaveLoadDelete exercises the basic artifact lifecycle.
func TestStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if err := s.Save(ctx, "d1", []byte("idx"), []byte("[]")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(ctx, "d1", []byte("idx2"), []byte("[1]")); err != nil {
		t.Fatalf("Save (overwrite) failed: %v", err)
	}
	idx, meta, err := s.Load(ctx, "d1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(idx) != "idx2" || string(meta) != "[1]" {
		t.Fatalf("Load = %q, %q", idx, meta)
	}
	info, err := s.Stat(ctx, "d1")
	if err != nil || !info.Complete() {
		t.Fatalf("Stat = %+v, %v", info, err)
	}

	if err := s.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, _, err := s.Load(ctx, "d1"); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("Load after delete err = %v, want ErrNotFound", err)
	}
	info, err = s.Stat(ctx, "d1")
	if err != nil || info.Exists() {
		t.Fatalf("Stat after delete = %+v, %v", info, err)
	}
}

func TestStore_IncompleteRow(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	if _, err := s.db.Exec(`INSERT INTO doc_artifacts(doc_id, "index") VALUES('half', X'0102')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, _, err := s.Load(ctx, "half"); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("Load err = %v, want ErrNotFound", err)
	}
	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 1 || !infos[0].HasIndex || infos[0].HasMetadata {
		t.Fatalf("List = %+v", infos)
	}
}

func TestStore_ListOrdered(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, id := range []string{"c", "a", "b"} {
		if err := s.Save(ctx, id, []byte("i"), []byte("m")); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}
	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 3 || infos[0].DocID != "a" || infos[2].DocID != "c" {
		t.Fatalf("List = %+v", infos)
	}
}
