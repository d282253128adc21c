package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestDraftStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewDraftStore(newClient(mr), time.Hour)
	ctx := context.Background()

	if err := store.SaveDraft(ctx, "a1", "s1", "first paragraph"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("draft:a1:s1") {
		t.Fatalf("expected redis key to be set")
	}
	content, ok, err := store.LoadDraft(ctx, "a1", "s1")
	if err != nil || !ok || content != "first paragraph" {
		t.Fatalf("expected draft back, got %q ok=%v err=%v", content, ok, err)
	}

	if err := store.DeleteDraft(ctx, "a1", "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("draft:a1:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok, _ := store.LoadDraft(ctx, "a1", "s1"); ok {
		t.Fatalf("expected no draft after delete")
	}
}
