// Package editor hosts the in-memory editing session for one document: the
// mutation operations, autosave orchestration, and persistence against the
// backing store. A session owns the authoritative document between loads and
// saves; everything else renders from snapshots of it.
package editor

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ourstreets/blockpress/document"
	"github.com/ourstreets/blockpress/draft"
)

// PanelTab identifies the active side-panel view in the console.
type PanelTab string

const (
	PanelContent   PanelTab = "content"
	PanelInspector PanelTab = "inspector"
	PanelSettings  PanelTab = "settings"
)

// Viewport is one of the fixed preview width presets.
type Viewport string

const (
	ViewportMobile  Viewport = "mobile"
	ViewportTablet  Viewport = "tablet"
	ViewportDesktop Viewport = "desktop"
)

// Direction moves a block toward the start ("up") or end ("down") of the
// sequence.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// DefaultDebounce is the quiet period after the last mutation before an
// autosave write fires.
const DefaultDebounce = time.Second

// Session owns one document during an editing session. All mutation methods
// are safe for concurrent use; the mutex keeps handler mutations and the
// autosave timer from interleaving.
type Session struct {
	mu         sync.Mutex
	doc        document.Document
	selected   string
	panel      PanelTab
	viewport   Viewport
	dirty      bool
	saving     bool
	lastSaved  time.Time
	slugEdited bool
	timer      *time.Timer

	backend  Backend
	drafts   draft.Store
	logger   *zap.Logger
	debounce time.Duration
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the autosave debounce window (tests shrink it).
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithClock overrides the session's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session over the given backend and draft store. Call
// Open before editing to hydrate the starting document.
func NewSession(backend Backend, drafts draft.Store, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		doc:      document.New(),
		panel:    PanelContent,
		viewport: ViewportDesktop,
		backend:  backend,
		drafts:   drafts,
		logger:   logger,
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State is a read snapshot of the session for the console API.
type State struct {
	Document      document.Document `json:"document"`
	Dirty         bool              `json:"dirty"`
	Saving        bool              `json:"saving"`
	SelectedBlock string            `json:"selected_block"`
	Panel         PanelTab          `json:"panel"`
	Viewport      Viewport          `json:"viewport"`
	LastSavedAt   string            `json:"last_saved_at"`
}

// Document returns a deep copy of the current document.
func (s *Session) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// State returns a snapshot of the document and session flags.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Document:      s.doc.Clone(),
		Dirty:         s.dirty,
		Saving:        s.saving,
		SelectedBlock: s.selected,
		Panel:         s.panel,
		Viewport:      s.viewport,
	}
	if !s.lastSaved.IsZero() {
		st.LastSavedAt = s.lastSaved.UTC().Format(time.RFC3339)
	}
	return st
}

// SelectBlock records the selected block id. Selection is session state, not
// a document mutation, so it never dirties the document.
func (s *Session) SelectBlock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// SetPanel switches the active side-panel tab.
func (s *Session) SetPanel(tab PanelTab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = tab
}

// SetViewport switches the preview width preset.
func (s *Session) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
}

// touch marks the document dirty after a mutation: derived fields are
// recomputed, the update stamp refreshed, and the autosave timer re-armed so
// only the most recent mutation's timer fires.
func (s *Session) touch() {
	s.doc.Recompute()
	s.doc.Meta.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	s.dirty = true
	s.armAutosave()
}

// SetTitle updates the title and, unless the slug has been manually edited
// this session, re-derives the slug from it.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Meta.Title = title
	if !s.slugEdited {
		s.doc.Meta.Slug = document.Slugify(title)
	}
	s.touch()
}

// SetSlug stores a slugified version of the input and latches manual-edit
// mode for the rest of the session: later title edits leave the slug alone.
func (s *Session) SetSlug(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slugEdited = true
	s.doc.Meta.Slug = document.Slugify(slug)
	s.touch()
}

// UpdateMeta edits one metadata field by name. Title and slug edits route
// through their dedicated paths so the slug latch applies; unknown fields are
// ignored.
func (s *Session) UpdateMeta(fieldName string, value any) {
	switch fieldName {
	case "title":
		s.SetTitle(toString(value))
		return
	case "slug":
		s.SetSlug(toString(value))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch fieldName {
	case "subtitle":
		s.doc.Meta.Subtitle = toString(value)
	case "authorRef":
		s.doc.Meta.AuthorRef = toString(value)
	case "coverImage":
		s.doc.Meta.CoverImage = toString(value)
	case "tags":
		s.doc.Meta.Tags = toStringSlice(value)
	case "categories":
		s.doc.Meta.Categories = toStringSlice(value)
	case "status":
		s.applyStatus(toString(value))
	case "publishedAt":
		s.doc.Meta.PublishedAt = toString(value)
	case "seoTitle":
		s.doc.Meta.SEO.Title = toString(value)
	case "seoDescription":
		s.doc.Meta.SEO.Description = toString(value)
	case "seoOgImage":
		s.doc.Meta.SEO.OGImage = toString(value)
	default:
		return
	}
	s.touch()
}

// UpdateLayout edits a layout field by name. Only the preset exists today.
func (s *Session) UpdateLayout(fieldName string, value any) {
	if fieldName != "preset" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Layout.Preset = document.LayoutPreset(strings.ToLower(toString(value)))
	s.touch()
}

// applyStatus transitions the document status. Entering published stamps the
// publish timestamp, and only if it is not already set; this is the single
// mutation path that writes it. Callers hold the lock.
func (s *Session) applyStatus(value string) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(document.StatusPublished):
		s.doc.Meta.Status = document.StatusPublished
		if s.doc.Meta.PublishedAt == "" {
			s.doc.Meta.PublishedAt = s.now().UTC().Format(time.RFC3339)
		}
	case string(document.StatusScheduled):
		s.doc.Meta.Status = document.StatusScheduled
	case string(document.StatusDraft):
		s.doc.Meta.Status = document.StatusDraft
	}
}

// AddBlock appends a new block with type-appropriate default props, selects
// it, and switches the side panel to the inspector. Returns the new block id.
func (s *Session) AddBlock(t document.BlockType) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := document.NewBlock(t)
	s.doc.Blocks = append(s.doc.Blocks, b)
	s.selected = b.ID
	s.panel = PanelInspector
	s.touch()
	return b.ID
}

// UpdateBlockProps replaces the targeted block's props object. The new props
// are deep-copied so the caller's map is never aliased into the document.
// A missing block id is a silent no-op.
func (s *Session) UpdateBlockProps(blockID string, props map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.FindBlock(blockID)
	if i < 0 {
		return
	}
	s.doc.Blocks[i].Props = document.CopyProps(props)
	s.touch()
}

// DuplicateBlock inserts a deep copy with a fresh identity immediately after
// the original. No-op when the id is not found.
func (s *Session) DuplicateBlock(blockID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.FindBlock(blockID)
	if i < 0 {
		return ""
	}
	dup := s.doc.Blocks[i].Clone()
	dup.ID = document.NewBlock(dup.Type).ID
	s.doc.Blocks = append(s.doc.Blocks, document.Block{})
	copy(s.doc.Blocks[i+2:], s.doc.Blocks[i+1:])
	s.doc.Blocks[i+1] = dup
	s.touch()
	return dup.ID
}

// DeleteBlock removes the block and clears the selection if it pointed at it.
func (s *Session) DeleteBlock(blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.FindBlock(blockID)
	if i < 0 {
		return
	}
	s.doc.Blocks = append(s.doc.Blocks[:i], s.doc.Blocks[i+1:]...)
	if s.selected == blockID {
		s.selected = ""
	}
	s.touch()
}

// MoveBlock removes the source block and reinserts it immediately before the
// target's current position. Missing ids or source == target are no-ops.
// Note this is a one-way operation: MoveBlock(a, b) then MoveBlock(b, a) does
// not restore the original order once more than two blocks exist.
func (s *Session) MoveBlock(sourceID, targetID string) {
	if sourceID == targetID {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.doc.FindBlock(sourceID)
	if src < 0 || s.doc.FindBlock(targetID) < 0 {
		return
	}
	moved := s.doc.Blocks[src]
	s.doc.Blocks = append(s.doc.Blocks[:src], s.doc.Blocks[src+1:]...)
	dst := s.doc.FindBlock(targetID)
	s.doc.Blocks = append(s.doc.Blocks, document.Block{})
	copy(s.doc.Blocks[dst+1:], s.doc.Blocks[dst:])
	s.doc.Blocks[dst] = moved
	s.touch()
}

// ReorderBlock swaps the block at index with its neighbor in the given
// direction. Out-of-range indexes and sequence boundaries are no-ops.
func (s *Session) ReorderBlock(index int, dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Blocks) {
		return
	}
	j := index + 1
	if dir == DirectionUp {
		j = index - 1
	}
	if j < 0 || j >= len(s.doc.Blocks) {
		return
	}
	s.doc.Blocks[index], s.doc.Blocks[j] = s.doc.Blocks[j], s.doc.Blocks[index]
	s.touch()
}

// Close cancels any pending autosave timer. The draft entry, if one was
// written, stays behind for the next session to hydrate from.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAutosave()
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return trimNonEmpty(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return trimNonEmpty(out)
	case string:
		return trimNonEmpty(strings.Split(t, ","))
	default:
		return nil
	}
}

func trimNonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
