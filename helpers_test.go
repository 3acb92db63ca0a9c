package blockpress

import (
	"strings"
	"testing"

	"github.com/ourstreets/blockpress/document"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"blog", "my-post"}, "https://example.com/blog/my-post/"},
		{"https://example.com/", []string{"blog"}, "https://example.com/blog/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestFilterRelated(t *testing.T) {
	current := document.Document{ID: "1", Meta: document.Meta{Tags: []string{"Go", "web"}}}
	docs := []document.Document{
		{ID: "1", Meta: document.Meta{Tags: []string{"go"}}},
		{ID: "2", Meta: document.Meta{Tags: []string{"go", "api"}}},
		{ID: "3", Meta: document.Meta{Tags: []string{"rust"}}},
		{ID: "4", Meta: document.Meta{Tags: []string{"WEB"}}},
	}

	related := FilterRelated(current, docs)
	if len(related) != 2 {
		t.Fatalf("related count = %d, want 2", len(related))
	}
	if related[0].ID != "2" || related[1].ID != "4" {
		t.Errorf("related = [%s %s], want [2 4]", related[0].ID, related[1].ID)
	}
}

func TestArticleJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "My Site", URL: "https://example.com", Author: "Site Author"}
	doc := document.Document{
		ID: "doc-1",
		Meta: document.Meta{
			Title:       "Plain Title",
			Subtitle:    "Plain subtitle",
			Slug:        "plain-title",
			AuthorRef:   "maria",
			PublishedAt: "2026-03-01T12:00:00Z",
			Tags:        []string{"go", "web"},
			SEO:         document.SEO{Title: "SEO Title"},
		},
	}

	got := ArticleJsonLD(doc, cfg)
	for _, want := range []string{
		`"headline":"SEO Title"`,
		`"description":"Plain subtitle"`,
		`"name":"maria"`,
		`"datePublished":"2026-03-01T12:00:00Z"`,
		`"keywords":"go, web"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON-LD missing %s in %s", want, got)
		}
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "My Site", URL: "https://example.com", Description: "A site", Author: "Someone"}
	got := WebsiteJsonLD(cfg)
	for _, want := range []string{`"@type":"WebSite"`, `"name":"My Site"`, `"url":"https://example.com"`} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON-LD missing %s in %s", want, got)
		}
	}
}
