// Package feed holds the ordered list of media items presented one per screen
// and the loaders that fill it from a manifest.
package feed

import (
	"errors"
	"sync"

	"feedplay/pkg/types"
)

// ErrAlreadyLoaded is returned by Replace once the store holds items.
var ErrAlreadyLoaded = errors.New("feed already loaded")

// Store is an append-only ordered list of media items. Existing items are
// never reordered or removed; Append only adds videos whose ID is new.
type Store struct {
	mu    sync.RWMutex
	items []types.MediaItem
	ids   map[int]struct{}
}

func NewStore() *Store {
	return &Store{ids: make(map[int]struct{})}
}

// Replace performs the initial load. It fails when the store is not empty.
func (s *Store) Replace(videos []types.Video) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) > 0 {
		return 0, ErrAlreadyLoaded
	}
	return s.appendLocked(videos), nil
}

// Append adds the videos not seen before and returns how many were added.
func (s *Store) Append(videos []types.Video) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(videos)
}

func (s *Store) appendLocked(videos []types.Video) int {
	added := 0
	for _, v := range videos {
		if _, dup := s.ids[v.ID]; dup {
			continue
		}
		s.ids[v.ID] = struct{}{}
		s.items = append(s.items, types.MediaItem{
			Index:     len(s.items),
			ID:        v.ID,
			Locator:   v.Video,
			Caption:   v.Description,
			Thumbnail: v.Thum,
			Duration:  v.Duration,
		})
		added++
	}
	return added
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// At returns the item at index i.
func (s *Store) At(i int) (types.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.items) {
		return types.MediaItem{}, false
	}
	return s.items[i], true
}

// Items returns a copy of all items.
func (s *Store) Items() []types.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.MediaItem, len(s.items))
	copy(out, s.items)
	return out
}

// Lookup returns the first item with locator.
func (s *Store) Lookup(locator string) (types.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.Locator == locator {
			return it, true
		}
	}
	return types.MediaItem{}, false
}
