package document

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Normalize converts an arbitrary, possibly partial or differently-shaped
// input into a well-formed Document. It is total: malformed input is absorbed
// by field defaults, never an error. Records from the backing store arrive in
// a loosely-typed shape (field naming may vary, snake_case alternates
// included) and this is the only permitted consumer of that raw shape.
//
// Normalize is idempotent on its own output, modulo block identifiers that
// had to be regenerated because the input carried none.
func Normalize(input any) Document {
	m := asMap(input)

	doc := Document{
		ID:     stringField(m, "id"),
		Blocks: []Block{},
	}
	if doc.ID == "" {
		doc.ID = NewID
	}

	meta := asMap(field(m, "meta"))
	doc.Meta.Title = stringField(meta, "title")
	doc.Meta.Subtitle = stringField(meta, "subtitle")
	doc.Meta.AuthorRef = stringField(meta, "author_ref", "authorRef", "author")
	doc.Meta.CoverImage = stringField(meta, "cover_image", "coverImage")
	doc.Meta.Tags = stringSlice(field(meta, "tags"))
	doc.Meta.Categories = stringSlice(field(meta, "categories"))
	doc.Meta.Status = parseStatus(stringField(meta, "status"))
	doc.Meta.PublishedAt = stringField(meta, "published_at", "publishedAt")
	doc.Meta.UpdatedAt = stringField(meta, "updated_at", "updatedAt")

	doc.Meta.Slug = stringField(meta, "slug")
	if doc.Meta.Slug == "" {
		doc.Meta.Slug = Slugify(doc.Meta.Title)
	}

	seo := asMap(field(meta, "seo"))
	doc.Meta.SEO = SEO{
		Title:       stringField(seo, "title"),
		Description: stringField(seo, "description"),
		OGImage:     stringField(seo, "og_image", "ogImage"),
	}

	doc.Layout.Preset = parseLayout(layoutValue(m))

	if raw, ok := field(m, "blocks").([]any); ok {
		for _, el := range raw {
			doc.Blocks = append(doc.Blocks, normalizeBlock(el))
		}
	}

	doc.Recompute()
	return doc
}

// NormalizeJSON decodes raw JSON and normalizes the result. Broken JSON
// yields the empty-document template rather than an error.
func NormalizeJSON(data []byte) Document {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Normalize(nil)
	}
	return Normalize(v)
}

func normalizeBlock(input any) Block {
	m := asMap(input)
	b := Block{
		ID:   stringField(m, "id"),
		Type: BlockType(strings.ToLower(strings.TrimSpace(stringField(m, "type")))),
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Type == "" {
		b.Type = BlockRichText
	}
	// Unknown non-empty types are preserved so the renderer can show its
	// unknown-block marker instead of dropping the author's content.
	if props, ok := field(m, "props").(map[string]any); ok {
		b.Props = CopyProps(props)
	} else {
		b.Props = map[string]any{}
	}
	return b
}

func parseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(StatusPublished):
		return StatusPublished
	case string(StatusScheduled):
		return StatusScheduled
	default:
		return StatusDraft
	}
}

func parseLayout(s string) LayoutPreset {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LayoutClassic):
		return LayoutClassic
	case string(LayoutTechGuide):
		return LayoutTechGuide
	case string(LayoutMagazineRail):
		return LayoutMagazineRail
	default:
		return LayoutDefault
	}
}

// layoutValue accepts both {"layout":{"preset":"classic"}} and the flat
// {"layout":"classic"} shape older records used.
func layoutValue(m map[string]any) string {
	switch v := field(m, "layout").(type) {
	case map[string]any:
		return stringField(v, "preset")
	case string:
		return v
	default:
		return ""
	}
}

// asMap coerces input to a string-keyed map. Typed values (Document, structs,
// json.RawMessage) are round-tripped through JSON; anything else yields an
// empty map.
func asMap(input any) map[string]any {
	switch v := input.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case json.RawMessage:
		var out map[string]any
		if err := json.Unmarshal(v, &out); err != nil || out == nil {
			return map[string]any{}
		}
		return out
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return map[string]any{}
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil || out == nil {
			return map[string]any{}
		}
		return out
	}
}

func field(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// stringField returns the first non-empty string among the alias keys,
// coercing scalar values so a numeric id still comes through.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := coerceString(field(m, key)); s != "" {
			return s
		}
	}
	return ""
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, e := range t {
			if s := strings.TrimSpace(coerceString(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
