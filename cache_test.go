package blockpress

import (
	"context"
	"errors"
	"testing"
	"time"
)

func setupTestCache(t *testing.T) (*Store, *ArticleCache) {
	t.Helper()
	s := setupTestStore(t)
	return s, NewArticleCache(s, time.Minute)
}

func TestCacheListPublished(t *testing.T) {
	s, cache := setupTestCache(t)
	ctx := context.Background()

	for _, r := range []map[string]any{
		testRecord("One", "one", "published"),
		testRecord("Two", "two", "published"),
		testRecord("Hidden", "hidden", "draft"),
	} {
		if _, err := s.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	docs, err := cache.ListPublished(ctx, "")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("count = %d, want 2", len(docs))
	}
}

func TestCacheTagFilter(t *testing.T) {
	s, cache := setupTestCache(t)
	ctx := context.Background()

	goPost := testRecord("Go Post", "go-post", "published")
	rustPost := testRecord("Rust Post", "rust-post", "published")
	rustPost["meta"].(map[string]any)["tags"] = []any{"Rust"}
	for _, r := range []map[string]any{goPost, rustPost} {
		if _, err := s.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// Tag matching is case-insensitive.
	docs, err := cache.ListPublished(ctx, "rust")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Meta.Slug != "rust-post" {
		t.Errorf("rust filter = %v, want [rust-post]", docs)
	}

	docs, err = cache.ListPublished(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("nonexistent filter count = %d, want 0", len(docs))
	}
}

func TestCacheTags(t *testing.T) {
	s, cache := setupTestCache(t)
	ctx := context.Background()

	a := testRecord("A", "a", "published")
	a["meta"].(map[string]any)["tags"] = []any{"Go", "Web"}
	b := testRecord("B", "b", "published")
	b["meta"].(map[string]any)["tags"] = []any{"go", "api"}
	c := testRecord("C", "c", "draft")
	c["meta"].(map[string]any)["tags"] = []any{"secret"}
	for _, r := range []map[string]any{a, b, c} {
		if _, err := s.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tags, err := cache.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	// Deduplicated, lowercased, sorted; draft tags excluded.
	want := []string{"api", "go", "web"}
	if len(tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestCacheGetBySlug(t *testing.T) {
	s, cache := setupTestCache(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, testRecord("Findable", "findable", "published")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	doc, err := cache.GetBySlug(ctx, "findable")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if doc.Meta.Title != "Findable" {
		t.Errorf("Title = %q, want %q", doc.Meta.Title, "Findable")
	}

	if _, err := cache.GetBySlug(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCacheInvalidate(t *testing.T) {
	s, cache := setupTestCache(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, testRecord("First", "first", "published")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	docs, err := cache.ListPublished(ctx, "")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("count = %d, want 1", len(docs))
	}

	// Without invalidation the cache keeps serving the old snapshot.
	if _, err := s.Create(ctx, testRecord("Second", "second", "published")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	docs, _ = cache.ListPublished(ctx, "")
	if len(docs) != 1 {
		t.Fatalf("stale count = %d, want 1", len(docs))
	}

	cache.Invalidate()
	docs, err = cache.ListPublished(ctx, "")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("post-invalidate count = %d, want 2", len(docs))
	}
}

func TestCacheServesStaleWhileRefreshing(t *testing.T) {
	s := setupTestStore(t)
	cache := NewArticleCache(s, 10*time.Millisecond)
	ctx := context.Background()

	if _, err := s.Create(ctx, testRecord("Old", "old", "published")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := cache.ListPublished(ctx, ""); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}

	if _, err := s.Create(ctx, testRecord("New", "new-post", "published")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	// The expired read returns immediately with the stale snapshot.
	docs, err := cache.ListPublished(ctx, "")
	if err != nil {
		t.Fatalf("stale read failed: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("stale read count = %d, want 1", len(docs))
	}

	// The background refresh eventually picks up the new document.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		docs, err = cache.ListPublished(ctx, "")
		if err != nil {
			t.Fatalf("refresh read failed: %v", err)
		}
		if len(docs) == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("cache never refreshed, count = %d", len(docs))
}
