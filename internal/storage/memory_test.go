package storage

import (
	"context"
	"testing"
	"time"
)

func rec(pk, sk, kind, data string) Record {
	return Record{PK: pk, SK: sk, Kind: kind, Data: []byte(data), UpdatedAt: time.Now()}
}

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Put(ctx, rec("u1", "a#1", "a", `{"v":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "u1", "a#1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || string(got.Data) != `{"v":1}` {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Miss is (nil, nil), not an error.
	missing, err := s.Get(ctx, "u1", "a#2")
	if err != nil {
		t.Fatalf("get miss: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil on miss, got %+v", missing)
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Put(ctx, rec("u1", "k", "a", `1`))
	_ = s.Put(ctx, rec("u1", "k", "a", `2`))

	got, _ := s.Get(ctx, "u1", "k")
	if string(got.Data) != `2` {
		t.Errorf("expected last write to win, got %s", got.Data)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Put(ctx, rec("u1", "k", "a", `1`))
	if err := s.Delete(ctx, "u1", "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.Get(ctx, "u1", "k")
	if got != nil {
		t.Fatalf("expected record gone, got %+v", got)
	}

	// Deleting a missing key is not an error.
	if err := s.Delete(ctx, "u1", "nope"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestMemoryStoreQueryOrderAndPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Put(ctx, rec("u1", "b#2", "b", `b2`))
	_ = s.Put(ctx, rec("u1", "a#1", "a", `a1`))
	_ = s.Put(ctx, rec("u1", "b#1", "b", `b1`))
	_ = s.Put(ctx, rec("u2", "b#9", "b", `other partition`))

	got, err := s.Query(ctx, "u1", QueryOptions{Prefix: "b#"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 || got[0].SK != "b#1" || got[1].SK != "b#2" {
		t.Fatalf("unexpected result: %+v", got)
	}

	desc, _ := s.Query(ctx, "u1", QueryOptions{Descending: true})
	if len(desc) != 3 || desc[0].SK != "b#2" || desc[2].SK != "a#1" {
		t.Fatalf("unexpected descending result: %+v", desc)
	}
}

func TestMemoryStoreScanFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Put(ctx, rec("u1", "a#1", "a", `1`))
	_ = s.Put(ctx, rec("u2", "a#2", "a", `2`))
	_ = s.Put(ctx, rec("u1", "b#1", "b", `3`))

	got, err := s.Scan(ctx, func(r Record) bool { return r.Kind == "a" })
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestMemoryStoreDetachesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Put(ctx, rec("u1", "k", "a", `abc`))
	got, _ := s.Get(ctx, "u1", "k")
	got.Data[0] = 'X'

	again, _ := s.Get(ctx, "u1", "k")
	if string(again.Data) != "abc" {
		t.Errorf("stored data mutated through returned slice: %s", again.Data)
	}
}
