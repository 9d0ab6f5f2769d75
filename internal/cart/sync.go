package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/arkfood/ordering-backend/internal/notify"
	"github.com/arkfood/ordering-backend/pkg/enums"
	"github.com/arkfood/ordering-backend/pkg/kv"
)

// Watch follows the KV change feed for this cart's key and reloads on
// changes written by other clients of the same session. Changes carrying
// this store's own origin are skipped so a client does not reload its own
// writes. Blocks until ctx is cancelled or the feed closes.
func (s *Store) Watch(ctx context.Context) error {
	changes, err := s.kv.Watch(ctx, s.key)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if change.Origin != "" && change.Origin == s.origin {
				continue
			}
			s.reloadAndAnnounce(ctx, "external_change")
		}
	}
}

// Resync refreshes memory from storage when the stored state is recent
// enough to trust, typically on a client regaining focus. Stale state
// outside the resync window is left alone.
func (s *Store) Resync(ctx context.Context) {
	savedAt, ok := s.storedSavedAt(ctx)
	if !ok {
		return
	}
	if s.now().Sub(savedAt) > s.cfg.ResyncWindow {
		return
	}
	s.reloadAndAnnounce(ctx, "resync")
}

// HasUnsavedChanges reports whether the in-memory cart holds items that
// storage may not reflect: either nothing is stored, or the stored state
// is older than the dirty threshold.
func (s *Store) HasUnsavedChanges(ctx context.Context) bool {
	s.mu.Lock()
	empty := len(s.items) == 0
	s.mu.Unlock()
	if empty {
		return false
	}

	savedAt, ok := s.storedSavedAt(ctx)
	if !ok {
		return true
	}
	return s.now().Sub(savedAt) > s.cfg.DirtyAfter
}

func (s *Store) reloadAndAnnounce(ctx context.Context, trigger string) {
	s.mu.Lock()
	s.reloadLocked(ctx, trigger)
	loaded := len(s.items) > 0
	s.emitLocked(ctx, Event{Type: EventReloaded})
	s.mu.Unlock()

	if loaded && trigger == "external_change" {
		s.notify(ctx, enums.NoticeInfo, notify.MsgCartLoaded)
	}
}

func (s *Store) storedSavedAt(ctx context.Context) (time.Time, bool) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if err != kv.ErrNotFound && s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, s.sessionID), "reading stored cart state failed")
		}
		return time.Time{}, false
	}

	var state struct {
		SavedAt time.Time `json:"savedAt"`
	}
	if err := json.Unmarshal(raw, &state); err != nil || state.SavedAt.IsZero() {
		return time.Time{}, false
	}
	return state.SavedAt, true
}
