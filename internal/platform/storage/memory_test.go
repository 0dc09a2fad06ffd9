package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryPutGetDelete(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	if err := db.Put(ctx, CollectionRequests, "REQ-1001", []byte(`{"id":"REQ-1001"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	doc, ok, err := db.Get(ctx, CollectionRequests, "REQ-1001")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(doc) != `{"id":"REQ-1001"}` {
		t.Fatalf("unexpected doc %s", doc)
	}

	if err := db.Delete(ctx, CollectionRequests, "REQ-1001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := db.Get(ctx, CollectionRequests, "REQ-1001"); ok {
		t.Fatal("deleted doc still present")
	}
}

func TestMemoryUnknownCollection(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	if _, err := db.GetAll(ctx, "payrolls"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
	if err := db.Put(ctx, "payrolls", "k", nil); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestMemoryCopiesOnRead(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	if err := db.Put(ctx, CollectionRequests, "REQ-1001", []byte("abc")); err != nil {
		t.Fatalf("put: %v", err)
	}
	doc, _, err := db.Get(ctx, CollectionRequests, "REQ-1001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	doc[0] = 'z'

	again, _, err := db.Get(ctx, CollectionRequests, "REQ-1001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(again) != "abc" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	if err := db.Put(ctx, CollectionRequests, "REQ-1001", []byte("a")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := db.Put(ctx, CollectionConsents, "c1", []byte("b")); err != nil {
		t.Fatalf("put: %v", err)
	}

	snap, err := TakeSnapshot(ctx, db)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored := NewMemory()
	if err := RestoreSnapshot(ctx, restored, snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	doc, ok, err := restored.Get(ctx, CollectionRequests, "REQ-1001")
	if err != nil || !ok || string(doc) != "a" {
		t.Fatalf("restored request wrong: ok=%v err=%v doc=%s", ok, err, doc)
	}
	doc, ok, err = restored.Get(ctx, CollectionConsents, "c1")
	if err != nil || !ok || string(doc) != "b" {
		t.Fatalf("restored consent wrong: ok=%v err=%v doc=%s", ok, err, doc)
	}
}
