package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ourstreets/blockpress/document"
	"github.com/ourstreets/blockpress/draft"
)

// Backend is the editor's view of the backing store. Records cross this
// boundary in the store's loosely-typed shape; only document.Normalize may
// interpret them. Create is used when the document identity is the "new"
// sentinel, Update otherwise.
type Backend interface {
	Load(ctx context.Context, id string) (map[string]any, error)
	Create(ctx context.Context, record map[string]any) (map[string]any, error)
	Update(ctx context.Context, id string, record map[string]any) (map[string]any, error)
}

// Open hydrates the session's starting document. A draft store entry under
// the document's key wins over the backing store: it is normalized, becomes
// the working document, and the session starts dirty so the author is warned
// about unsaved state. Returns whether a draft was restored.
//
// A failed backing-store load is surfaced, but the session falls back to the
// empty template so editing is never blocked.
func (s *Session) Open(ctx context.Context, docID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, err := s.drafts.Get(draft.Key(docID)); err == nil {
		s.doc = document.NormalizeJSON(data)
		s.dirty = true
		s.logger.Info("session restored from draft", zap.String("doc_id", s.doc.ID))
		return true, nil
	} else if !errors.Is(err, draft.ErrNotFound) {
		// Draft store trouble is best-effort territory: log and move on.
		s.logger.Warn("read draft", zap.Error(err))
	}

	if docID == "" || docID == document.NewID {
		s.doc = document.New()
		return false, nil
	}

	record, err := s.backend.Load(ctx, docID)
	if err != nil {
		s.doc = document.New()
		return false, fmt.Errorf("load document %s: %w", docID, err)
	}
	s.doc = document.Normalize(record)
	return false, nil
}

// Save persists the current document to the backing store and reconciles the
// session with the store's canonical copy: the response is normalized and
// replaces the in-memory document, the dirty flag clears, the save timestamp
// is recorded, and the draft entry is removed. Any pending autosave is
// canceled first so a stale local write cannot land after the save.
//
// On failure the document and dirty flag are untouched and the draft entry
// stays, ready for retry by a new explicit action.
func (s *Session) Save(ctx context.Context) (document.Document, error) {
	return s.save(ctx, nil)
}

// Publish is Save with a status patch merged into the outgoing payload:
// status becomes published and the publish timestamp is stamped if unset.
// Publishing an already-published document keeps its original timestamp.
// On success the returned document carries the slug for the public location.
func (s *Session) Publish(ctx context.Context) (document.Document, error) {
	return s.save(ctx, func(d *document.Document) {
		d.Meta.Status = document.StatusPublished
		if d.Meta.PublishedAt == "" {
			d.Meta.PublishedAt = s.now().UTC().Format(time.RFC3339)
		}
	})
}

func (s *Session) save(ctx context.Context, patch func(*document.Document)) (document.Document, error) {
	s.mu.Lock()
	s.cancelAutosave()
	outgoing := s.doc.Clone()
	if patch != nil {
		patch(&outgoing)
	}
	id := s.doc.ID
	payload := toRecord(outgoing)
	s.saving = true
	s.mu.Unlock()

	var (
		record map[string]any
		err    error
	)
	if id == document.NewID {
		record, err = s.backend.Create(ctx, payload)
	} else {
		record, err = s.backend.Update(ctx, id, payload)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}

	s.doc = document.Normalize(record)
	s.dirty = false
	s.lastSaved = s.now()
	if err := s.drafts.Remove(draft.Key(id)); err != nil {
		s.logger.Warn("clear draft after save", zap.Error(err))
	}
	return s.doc.Clone(), nil
}

// Discard drops the draft entry and unsaved-state flag. Used when the author
// confirms leaving without saving.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAutosave()
	s.dirty = false
	return s.drafts.Remove(draft.Key(s.doc.ID))
}

// toRecord serializes a document into the loosely-typed record shape the
// backend accepts.
func toRecord(d document.Document) map[string]any {
	data, err := json.Marshal(d)
	if err != nil {
		return map[string]any{}
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return map[string]any{}
	}
	return record
}
