package blockpress

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/ourstreets/blockpress/document"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// FilterRelated finds published documents sharing at least one tag with current.
func FilterRelated(current document.Document, docs []document.Document) []document.Document {
	tagSet := make(map[string]struct{})
	for _, t := range current.Meta.Tags {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []document.Document
	for _, d := range docs {
		if d.ID == current.ID {
			continue
		}
		for _, t := range d.Meta.Tags {
			tag := strings.ToLower(strings.TrimSpace(t))
			if _, ok := tagSet[tag]; ok {
				related = append(related, d)
				break
			}
		}
	}
	return related
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ArticleJsonLD returns a JSON-LD string for an Article schema. Per-document
// SEO overrides win over the document title and site defaults.
func ArticleJsonLD(doc document.Document, cfg SiteConfig) string {
	headline := doc.Meta.Title
	if doc.Meta.SEO.Title != "" {
		headline = doc.Meta.SEO.Title
	}
	description := doc.Meta.Subtitle
	if doc.Meta.SEO.Description != "" {
		description = doc.Meta.SEO.Description
	}
	docURL := BuildURL(cfg.URL, "blog", doc.Meta.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    headline,
		"description": description,
		"url":         docURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   docURL,
		},
	}
	if doc.Meta.PublishedAt != "" {
		data["datePublished"] = doc.Meta.PublishedAt
	}
	if doc.Meta.UpdatedAt != "" {
		data["dateModified"] = doc.Meta.UpdatedAt
	}
	author := doc.Meta.AuthorRef
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	image := doc.Meta.SEO.OGImage
	if image == "" {
		image = doc.Meta.CoverImage
	}
	if image != "" {
		data["image"] = image
	}
	if len(doc.Meta.Tags) > 0 {
		data["keywords"] = strings.Join(doc.Meta.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
