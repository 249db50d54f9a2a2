// Package exclusion tracks the names that must never have a live instance. The set is persisted
// as a JSON string array under a fixed key after every mutation.
package exclusion

import (
	"encoding/json"
	"errors"
	"sort"

	"chart-workspace/internal/storage"

	"github.com/rs/zerolog"
)

// StorageKey is the durable key holding the excluded names.
const StorageKey = "workspace.removedNames"

// Set is the exclusion set. It is mutated only from the main thread.
type Set struct {
	names map[string]struct{}
	store storage.KV
	log   zerolog.Logger
}

// Load reads the stored names (malformed or missing data counts as empty), merges defaults, and
// writes the merged set back so the defaults survive later sessions. store may be nil.
func Load(store storage.KV, defaults []string, log zerolog.Logger) *Set {
	s := &Set{
		names: make(map[string]struct{}),
		store: store,
		log:   log.With().Str("component", "exclusion").Logger(),
	}
	if store != nil {
		data, err := store.Get(StorageKey)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			s.log.Warn().Err(err).Msg("read excluded names; starting empty")
		default:
			var saved []any
			if err := json.Unmarshal(data, &saved); err != nil {
				s.log.Warn().Err(err).Msg("stored excluded names malformed; ignoring")
			}
			for _, v := range saved {
				if name, ok := v.(string); ok {
					s.names[name] = struct{}{}
				}
			}
		}
	}
	for _, d := range defaults {
		s.names[d] = struct{}{}
	}
	s.persist()
	return s
}

// Has reports whether name is excluded.
func (s *Set) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of excluded names.
func (s *Set) Len() int { return len(s.names) }

// Names returns the excluded names sorted.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Add excludes name and reports whether the set changed.
func (s *Set) Add(name string) bool {
	if s.Has(name) {
		return false
	}
	s.names[name] = struct{}{}
	s.persist()
	return true
}

// Remove restores name and reports whether the set changed. The persisted copy is rewritten
// either way, matching the restore contract.
func (s *Set) Remove(name string) bool {
	_, had := s.names[name]
	delete(s.names, name)
	s.persist()
	return had
}

// Clear restores every name.
func (s *Set) Clear() {
	s.names = make(map[string]struct{})
	s.persist()
}

func (s *Set) persist() {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(s.Names())
	if err != nil {
		s.log.Warn().Err(err).Msg("encode excluded names")
		return
	}
	if err := s.store.Put(StorageKey, data); err != nil {
		s.log.Warn().Err(err).Msg("persist excluded names")
	}
}
