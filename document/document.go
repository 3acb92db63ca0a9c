// Package document defines the block-based document model: an aggregate of
// metadata, a layout selection, and an ordered sequence of typed content
// blocks. All internal code operates on these types; loosely-typed records
// from storage pass through Normalize first.
package document

import (
	"time"

	"github.com/google/uuid"
)

// NewID is the sentinel identifier for a document that has never been saved.
const NewID = "new"

// Status is the publication state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
)

// LayoutPreset selects the macro page composition for an article.
type LayoutPreset string

const (
	LayoutDefault      LayoutPreset = "default"
	LayoutClassic      LayoutPreset = "classic"
	LayoutTechGuide    LayoutPreset = "tech-guide"
	LayoutMagazineRail LayoutPreset = "magazine-rail"
)

// BlockType tags the variant of a content block.
type BlockType string

const (
	BlockHero     BlockType = "hero"
	BlockImage    BlockType = "image"
	BlockLead     BlockType = "lead"
	BlockRichText BlockType = "richtext"
	BlockCode     BlockType = "code"
	BlockQuote    BlockType = "quote"
	BlockCallout  BlockType = "callout"
	BlockDivider  BlockType = "divider"
	BlockVideo    BlockType = "video"
)

// SEO holds per-document overrides for search/OpenGraph metadata.
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OGImage     string `json:"og_image"`
}

// Meta is the document's descriptive metadata. ReadingTime is derived from
// the block sequence and must only be written by a recompute step.
type Meta struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	AuthorRef   string   `json:"author_ref"`
	Slug        string   `json:"slug"`
	CoverImage  string   `json:"cover_image"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
	ReadingTime int      `json:"reading_time"`
	Status      Status   `json:"status"`
	PublishedAt string   `json:"published_at"`
	UpdatedAt   string   `json:"updated_at"`
	SEO         SEO      `json:"seo"`
}

// Layout carries the preset selection. A struct rather than a bare string so
// layout options can grow without reshaping stored records.
type Layout struct {
	Preset LayoutPreset `json:"preset"`
}

// Block is one independently editable content unit. Props is owned by the
// block; blocks never share a props map.
type Block struct {
	ID    string         `json:"id"`
	Type  BlockType      `json:"type"`
	Props map[string]any `json:"props"`
}

// Document is the aggregate root: identity, metadata, layout, and the ordered
// block sequence. Block order is the sole flow signal within an article.
type Document struct {
	ID     string  `json:"id"`
	Meta   Meta    `json:"meta"`
	Layout Layout  `json:"layout"`
	Blocks []Block `json:"blocks"`
}

// New returns the empty document template used when creating a post.
func New() Document {
	return Document{
		ID: NewID,
		Meta: Meta{
			Status:    StatusDraft,
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Layout: Layout{Preset: LayoutDefault},
		Blocks: []Block{},
	}
}

// NewBlock returns a fresh block of the given type with default props and a
// generated identity.
func NewBlock(t BlockType) Block {
	return Block{
		ID:    uuid.NewString(),
		Type:  t,
		Props: DefaultProps(t),
	}
}

// DefaultProps returns the starting props for a block type. The returned map
// is always freshly allocated.
func DefaultProps(t BlockType) map[string]any {
	switch t {
	case BlockHero:
		return map[string]any{"url": "", "alt": "", "credit": ""}
	case BlockImage:
		return map[string]any{"url": "", "alt": "", "caption": ""}
	case BlockLead:
		return map[string]any{"content": ""}
	case BlockCode:
		return map[string]any{"language": "", "filename": "", "code": ""}
	case BlockQuote:
		return map[string]any{"text": "", "attribution": ""}
	case BlockCallout:
		return map[string]any{"variant": "info", "text": ""}
	case BlockDivider:
		return map[string]any{"style": "solid"}
	case BlockVideo:
		return map[string]any{"url": "", "caption": ""}
	default:
		return map[string]any{"content": ""}
	}
}

// KnownBlockType reports whether t is one of the closed block variants.
func KnownBlockType(t BlockType) bool {
	switch t {
	case BlockHero, BlockImage, BlockLead, BlockRichText, BlockCode,
		BlockQuote, BlockCallout, BlockDivider, BlockVideo:
		return true
	}
	return false
}

// Clone returns a deep copy of the block, including its props map.
func (b Block) Clone() Block {
	return Block{ID: b.ID, Type: b.Type, Props: CopyProps(b.Props)}
}

// Clone returns a deep copy of the document. Mutating the copy never touches
// the original's blocks or props.
func (d Document) Clone() Document {
	out := d
	out.Meta.Tags = append([]string(nil), d.Meta.Tags...)
	out.Meta.Categories = append([]string(nil), d.Meta.Categories...)
	out.Blocks = make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return out
}

// FindBlock returns the index of the block with the given id, or -1.
func (d Document) FindBlock(id string) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Recompute refreshes all derived metadata from the block sequence. Any
// mutation of Blocks leaves the document inconsistent until this runs.
func (d *Document) Recompute() {
	d.Meta.ReadingTime = ReadingTime(d.Blocks)
}

// CopyProps deep-copies a props map so no two blocks alias storage. Nested
// maps and slices coming from JSON decoding are copied recursively.
func CopyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyProps(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
