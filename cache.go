package blockpress

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ourstreets/blockpress/document"
)

// ArticleCache is an in-memory cache of published documents with TTL and
// stale-while-revalidate behavior: once the TTL lapses, readers keep getting
// the stale copy while a single background refresh fetches a fresh one, so a
// slow store never stalls the public pages.
type ArticleCache struct {
	mu         sync.RWMutex
	docs       []document.Document
	bySlug     map[string]document.Document
	tags       []string
	fetched    time.Time
	refreshing bool
	ttl        time.Duration
	store      *Store
}

// NewArticleCache creates an ArticleCache backed by the given Store.
func NewArticleCache(s *Store, ttl time.Duration) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl}
}

// Invalidate clears the cache so the next read triggers a fresh load.
// Called after every save, publish, or delete.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.docs = nil
	c.bySlug = nil
	c.tags = nil
	c.mu.Unlock()
}

// load fetches published records, normalizes them, and swaps in the rebuilt
// indexes. The store query runs outside the lock so readers are never
// blocked on a slow fetch.
func (c *ArticleCache) load(ctx context.Context) error {
	records, err := c.store.ListPublished(ctx)
	if err != nil {
		return err
	}
	docs := make([]document.Document, 0, len(records))
	bySlug := make(map[string]document.Document, len(records))
	tagSet := make(map[string]struct{})
	for _, record := range records {
		doc := document.Normalize(record)
		docs = append(docs, doc)
		bySlug[doc.Meta.Slug] = doc
		for _, t := range doc.Meta.Tags {
			tagSet[normalizeTag(t)] = struct{}{}
		}
	}
	// RFC 3339 timestamps sort lexicographically, newest publish first.
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Meta.PublishedAt > docs[j].Meta.PublishedAt
	})
	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	c.mu.Lock()
	c.docs = docs
	c.bySlug = bySlug
	c.tags = tags
	c.fetched = time.Now()
	c.mu.Unlock()
	return nil
}

// ensureLoaded returns the cached documents and tags. A fresh cache is served
// directly; an expired one is served stale while one goroutine refreshes; an
// empty one is loaded synchronously.
func (c *ArticleCache) ensureLoaded(ctx context.Context) ([]document.Document, []string, error) {
	c.mu.RLock()
	docs, tags := c.docs, c.tags
	loaded := c.docs != nil
	expired := time.Since(c.fetched) >= c.ttl
	refreshing := c.refreshing
	c.mu.RUnlock()

	if loaded {
		if expired && !refreshing {
			c.refreshInBackground()
		}
		return docs, tags, nil
	}

	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	c.mu.RLock()
	docs, tags = c.docs, c.tags
	c.mu.RUnlock()
	return docs, tags, nil
}

func (c *ArticleCache) refreshInBackground() {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// A failed refresh keeps serving the stale copy; the next expired
		// read tries again.
		_ = c.load(ctx)
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()
}

// ListPublished returns published documents, optionally filtered by tag.
func (c *ArticleCache) ListPublished(ctx context.Context, tag string) ([]document.Document, error) {
	docs, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return docs, nil
	}
	normalized := normalizeTag(tag)
	var filtered []document.Document
	for _, doc := range docs {
		for _, t := range doc.Meta.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, doc)
				break
			}
		}
	}
	return filtered, nil
}

// Tags returns all unique tags across published documents, sorted.
func (c *ArticleCache) Tags(ctx context.Context) ([]string, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// GetBySlug returns a single published document by slug from the cache.
func (c *ArticleCache) GetBySlug(ctx context.Context, slug string) (document.Document, error) {
	if _, _, err := c.ensureLoaded(ctx); err != nil {
		return document.Document{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.bySlug[slug]
	if !ok {
		return document.Document{}, ErrNotFound
	}
	return doc, nil
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
