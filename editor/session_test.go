package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourstreets/blockpress/document"
	"github.com/ourstreets/blockpress/draft"
)

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := NewSession(newFakeBackend(), draft.NewMemoryStore(), nil, opts...)
	t.Cleanup(s.Close)
	return s
}

func blockIDs(d document.Document) []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.ID
	}
	return ids
}

func TestSetTitleDerivesSlug(t *testing.T) {
	s := newTestSession(t)

	s.SetTitle("Hello, World!")
	doc := s.Document()
	assert.Equal(t, "Hello, World!", doc.Meta.Title)
	assert.Equal(t, "hello-world", doc.Meta.Slug)

	s.SetTitle("Second Title")
	assert.Equal(t, "second-title", s.Document().Meta.Slug)
}

func TestSetSlugLatchesManualEdit(t *testing.T) {
	s := newTestSession(t)

	s.SetTitle("Hello, World!")
	s.SetSlug("Custom Slug")
	assert.Equal(t, "custom-slug", s.Document().Meta.Slug)

	// Title edits after a manual slug edit leave the slug alone.
	s.SetTitle("New Title")
	doc := s.Document()
	assert.Equal(t, "New Title", doc.Meta.Title)
	assert.Equal(t, "custom-slug", doc.Meta.Slug)
}

func TestMutationsMarkDirtyAndRecompute(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.State().Dirty, "fresh session starts clean")

	id := s.AddBlock(document.BlockRichText)
	s.UpdateBlockProps(id, map[string]any{"content": "some words to read here"})

	st := s.State()
	assert.True(t, st.Dirty)
	assert.Equal(t, 1, st.Document.Meta.ReadingTime)
	assert.NotEmpty(t, st.Document.Meta.UpdatedAt)
}

func TestAddBlockSelectsAndOpensInspector(t *testing.T) {
	s := newTestSession(t)

	id := s.AddBlock(document.BlockQuote)
	st := s.State()
	require.Len(t, st.Document.Blocks, 1)
	assert.Equal(t, id, st.SelectedBlock)
	assert.Equal(t, PanelInspector, st.Panel)
	assert.Equal(t, document.BlockQuote, st.Document.Blocks[0].Type)
	assert.Equal(t, document.DefaultProps(document.BlockQuote), st.Document.Blocks[0].Props)
}

func TestUpdateBlockPropsMissingIDIsNoop(t *testing.T) {
	s := newTestSession(t)
	s.AddBlock(document.BlockRichText)
	before := s.Document()

	s.UpdateBlockProps("nope", map[string]any{"content": "x"})
	assert.Equal(t, before.Blocks, s.Document().Blocks)
}

func TestUpdateBlockPropsTargetsOnlyThatBlock(t *testing.T) {
	s := newTestSession(t)
	a := s.AddBlock(document.BlockRichText)
	b := s.AddBlock(document.BlockRichText)

	props := map[string]any{"content": "alpha"}
	s.UpdateBlockProps(a, props)

	doc := s.Document()
	assert.Equal(t, "alpha", doc.Blocks[doc.FindBlock(a)].Props["content"])
	assert.Equal(t, "", doc.Blocks[doc.FindBlock(b)].Props["content"])

	// The caller's map is copied, not aliased.
	props["content"] = "mutated"
	assert.Equal(t, "alpha", s.Document().Blocks[0].Props["content"])
}

func TestDuplicateBlock(t *testing.T) {
	s := newTestSession(t)
	a := s.AddBlock(document.BlockRichText)
	c := s.AddBlock(document.BlockCode)
	s.UpdateBlockProps(a, map[string]any{"content": "original"})

	dup := s.DuplicateBlock(a)
	require.NotEmpty(t, dup)

	doc := s.Document()
	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, []string{a, dup, c}, blockIDs(doc), "copy lands immediately after the source")
	assert.NotEqual(t, a, dup)
	assert.Equal(t, "original", doc.Blocks[1].Props["content"])

	// Deep copy: editing the duplicate never touches the original.
	s.UpdateBlockProps(dup, map[string]any{"content": "changed"})
	doc = s.Document()
	assert.Equal(t, "original", doc.Blocks[0].Props["content"])
	assert.Equal(t, "changed", doc.Blocks[1].Props["content"])

	assert.Empty(t, s.DuplicateBlock("missing"))
	assert.Len(t, s.Document().Blocks, 3)
}

func TestDeleteBlock(t *testing.T) {
	s := newTestSession(t)
	a := s.AddBlock(document.BlockRichText)
	b := s.AddBlock(document.BlockQuote)

	s.SelectBlock(a)
	s.DeleteBlock(a)

	st := s.State()
	require.Len(t, st.Document.Blocks, 1)
	assert.Equal(t, b, st.Document.Blocks[0].ID)
	assert.Empty(t, st.SelectedBlock, "deleting the selected block clears selection")

	// Deleting an unselected block keeps the selection.
	c := s.AddBlock(document.BlockCode)
	s.SelectBlock(c)
	s.DeleteBlock(b)
	assert.Equal(t, c, s.State().SelectedBlock)
}

func TestMoveBlock(t *testing.T) {
	s := newTestSession(t)
	a := s.AddBlock(document.BlockRichText)
	b := s.AddBlock(document.BlockQuote)
	c := s.AddBlock(document.BlockCode)

	s.MoveBlock(c, a)
	assert.Equal(t, []string{c, a, b}, blockIDs(s.Document()))

	// One-way operation: moving back does not restore the original order.
	s.MoveBlock(a, c)
	assert.Equal(t, []string{a, c, b}, blockIDs(s.Document()))

	// No-ops: equal ids, missing source, missing target.
	before := blockIDs(s.Document())
	s.MoveBlock(a, a)
	s.MoveBlock("missing", b)
	s.MoveBlock(b, "missing")
	assert.Equal(t, before, blockIDs(s.Document()))
}

func TestBlockCountConservedAcrossOps(t *testing.T) {
	s := newTestSession(t)
	a := s.AddBlock(document.BlockRichText)
	b := s.AddBlock(document.BlockQuote)
	c := s.AddBlock(document.BlockCode)

	s.MoveBlock(a, c)
	s.MoveBlock(c, b)
	s.ReorderBlock(1, DirectionDown)
	s.MoveBlock(b, a)
	assert.Len(t, s.Document().Blocks, 3)

	dup := s.DuplicateBlock(b)
	assert.Len(t, s.Document().Blocks, 4)
	s.DeleteBlock(dup)
	assert.Len(t, s.Document().Blocks, 3)
}

func TestReorderBlockBoundaries(t *testing.T) {
	s := newTestSession(t)
	a := s.AddBlock(document.BlockRichText)
	b := s.AddBlock(document.BlockQuote)

	s.ReorderBlock(0, DirectionUp)
	assert.Equal(t, []string{a, b}, blockIDs(s.Document()), "reorder up at index 0 is a no-op")

	s.ReorderBlock(1, DirectionDown)
	assert.Equal(t, []string{a, b}, blockIDs(s.Document()), "reorder down at the end is a no-op")

	s.ReorderBlock(5, DirectionUp)
	assert.Equal(t, []string{a, b}, blockIDs(s.Document()), "out-of-range index is a no-op")

	s.ReorderBlock(0, DirectionDown)
	assert.Equal(t, []string{b, a}, blockIDs(s.Document()))
	s.ReorderBlock(1, DirectionUp)
	assert.Equal(t, []string{a, b}, blockIDs(s.Document()))
}

func TestUpdateMetaFields(t *testing.T) {
	s := newTestSession(t)

	s.UpdateMeta("subtitle", "A closer look")
	s.UpdateMeta("authorRef", "jordan")
	s.UpdateMeta("tags", "news, community ,")
	s.UpdateMeta("categories", []any{"updates", "impact"})
	s.UpdateMeta("seoDescription", "What we learned")
	s.UpdateMeta("unknown-field", "ignored")

	doc := s.Document()
	assert.Equal(t, "A closer look", doc.Meta.Subtitle)
	assert.Equal(t, "jordan", doc.Meta.AuthorRef)
	assert.Equal(t, []string{"news", "community"}, doc.Meta.Tags)
	assert.Equal(t, []string{"updates", "impact"}, doc.Meta.Categories)
	assert.Equal(t, "What we learned", doc.Meta.SEO.Description)
}

func TestUpdateMetaStatusStampsPublishedAtOnce(t *testing.T) {
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSession(t, WithClock(func() time.Time { return stamp }))

	s.UpdateMeta("status", "PUBLISHED")
	doc := s.Document()
	assert.Equal(t, document.StatusPublished, doc.Meta.Status)
	assert.Equal(t, "2026-03-01T12:00:00Z", doc.Meta.PublishedAt)

	// Re-entering published never rewrites the original timestamp.
	s.UpdateMeta("status", "draft")
	s.UpdateMeta("status", "published")
	assert.Equal(t, "2026-03-01T12:00:00Z", s.Document().Meta.PublishedAt)
}

func TestUpdateLayout(t *testing.T) {
	s := newTestSession(t)
	s.UpdateLayout("preset", "MAGAZINE-RAIL")
	assert.Equal(t, document.LayoutMagazineRail, s.Document().Layout.Preset)

	s.UpdateLayout("columns", "2")
	assert.Equal(t, document.LayoutMagazineRail, s.Document().Layout.Preset)
}

func TestSelectionDoesNotDirty(t *testing.T) {
	s := newTestSession(t)
	s.SelectBlock("whatever")
	s.SetPanel(PanelSettings)
	s.SetViewport(ViewportMobile)

	st := s.State()
	assert.False(t, st.Dirty)
	assert.Equal(t, PanelSettings, st.Panel)
	assert.Equal(t, ViewportMobile, st.Viewport)
}
