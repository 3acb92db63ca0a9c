package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplate(t *testing.T) {
	doc := New()
	assert.Equal(t, NewID, doc.ID)
	assert.Equal(t, StatusDraft, doc.Meta.Status)
	assert.Equal(t, LayoutDefault, doc.Layout.Preset)
	assert.Empty(t, doc.Blocks)
	assert.NotEmpty(t, doc.Meta.UpdatedAt)
}

func TestNewBlockIdentityAndDefaults(t *testing.T) {
	a := NewBlock(BlockCode)
	b := NewBlock(BlockCode)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, map[string]any{"language": "", "filename": "", "code": ""}, a.Props)

	// Default props are never shared between blocks.
	a.Props["language"] = "go"
	assert.Equal(t, "", b.Props["language"])
}

func TestDefaultPropsPerType(t *testing.T) {
	for _, bt := range []BlockType{
		BlockHero, BlockImage, BlockLead, BlockRichText, BlockCode,
		BlockQuote, BlockCallout, BlockDivider, BlockVideo,
	} {
		props := DefaultProps(bt)
		require.NotNil(t, props, "type %s", bt)
	}
	assert.Equal(t, "info", DefaultProps(BlockCallout)["variant"])
	assert.Equal(t, "solid", DefaultProps(BlockDivider)["style"])
}

func TestCloneIsDeep(t *testing.T) {
	doc := New()
	doc.Meta.Tags = []string{"news"}
	doc.Blocks = []Block{{
		ID:   "b1",
		Type: BlockRichText,
		Props: map[string]any{
			"content": "original",
			"nested":  map[string]any{"k": "v"},
			"list":    []any{"one"},
		},
	}}

	clone := doc.Clone()
	clone.Meta.Tags[0] = "changed"
	clone.Blocks[0].Props["content"] = "changed"
	clone.Blocks[0].Props["nested"].(map[string]any)["k"] = "changed"
	clone.Blocks[0].Props["list"].([]any)[0] = "changed"

	assert.Equal(t, "news", doc.Meta.Tags[0])
	assert.Equal(t, "original", doc.Blocks[0].Props["content"])
	assert.Equal(t, "v", doc.Blocks[0].Props["nested"].(map[string]any)["k"])
	assert.Equal(t, "one", doc.Blocks[0].Props["list"].([]any)[0])
}

func TestFindBlock(t *testing.T) {
	doc := Document{Blocks: []Block{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, 1, doc.FindBlock("b"))
	assert.Equal(t, -1, doc.FindBlock("missing"))
}

func TestKnownBlockType(t *testing.T) {
	assert.True(t, KnownBlockType(BlockQuote))
	assert.False(t, KnownBlockType(BlockType("hologram")))
}
