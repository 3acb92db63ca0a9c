package editor

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ourstreets/blockpress/draft"
)

// armAutosave schedules a draft write after the debounce window. The previous
// timer is stopped first, so only the most recent mutation's timer fires.
// Callers hold the session lock. Loading a document never arms the timer, so
// an unmodified load cannot re-persist itself.
func (s *Session) armAutosave() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.autosave)
}

// cancelAutosave stops any pending draft write. Callers hold the session
// lock. An explicit save calls this so a stale local write cannot resurrect
// content the save already superseded.
func (s *Session) cancelAutosave() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// autosave serializes the document into the draft store. Autosave is
// best-effort: failures are logged and never surfaced to the author.
func (s *Session) autosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	data, err := json.Marshal(s.doc)
	if err != nil {
		s.logger.Warn("autosave: marshal draft", zap.Error(err))
		return
	}
	key := draft.Key(s.doc.ID)
	if err := s.drafts.Put(key, data); err != nil {
		s.logger.Warn("autosave: write draft",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	s.logger.Debug("autosave: draft written",
		zap.String("key", key),
		zap.Int("bytes", len(data)))
}
