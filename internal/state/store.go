// Package state holds the shared run state observed by the renderer:
// an application-level stage plus one entry per supervised download.
package state

import (
	"sort"
	"sync"
)

// Stage is the coarse application phase shown in the view's banner.
type Stage int

const (
	StageInitializing Stage = iota
	StageFetching
	StageProcessing
	StageDraining
	StageDone
)

// Store maps target identity to its download entry. Many concurrent
// readers take snapshots; each entry has a single writer (its supervisor
// task), so the store's lock only guards insertion and iteration.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	stage    Stage
	stageURL string
}

// Snapshot is a point-in-time copy of the whole store.
type Snapshot struct {
	Stage    Stage
	StageURL string
	Entries  []EntrySnapshot
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Add registers a new entry for the given target URL, keyed by its
// identity. If an entry for the same identity already exists the existing
// entry is returned and added is false; the store never holds two entries
// for one identity.
func (s *Store) Add(url, referer, title, kind string) (entry *Entry, added bool) {
	id := Identity(url)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[id]; ok {
		return existing, false
	}

	entry = &Entry{
		id:      id,
		url:     url,
		referer: referer,
		kind:    kind,
		title:   title,
		status:  StatusPending,
	}
	s.entries[id] = entry
	return entry, true
}

func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) SetStageFetching(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageDraining {
		return
	}
	s.stage = StageFetching
	s.stageURL = url
}

func (s *Store) SetStageProcessing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageDraining {
		return
	}
	s.stage = StageProcessing
	s.stageURL = ""
}

func (s *Store) SetStageDraining() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = StageDraining
	s.stageURL = ""
}

// SetStageDone marks the run complete. Draining wins over a racing
// completion so the banner never flips back while children are reaped.
func (s *Store) SetStageDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageDraining {
		return
	}
	s.stage = StageDone
	s.stageURL = ""
}

func (s *Store) Stage() (Stage, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage, s.stageURL
}

// AllTerminal reports whether every entry reached a terminal state.
// True for an empty store.
func (s *Store) AllTerminal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if !e.Status().Terminal() {
			return false
		}
	}
	return true
}

// AnyFailed reports whether at least one entry ended Failed. It decides
// the process exit code.
func (s *Store) AnyFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Status() == StatusFailed {
			return true
		}
	}
	return false
}

// Snapshot copies the store for a concurrent reader, entries sorted by
// display title so the rendered list is stable across refreshes.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	entries := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	stage, stageURL := s.stage, s.stageURL
	s.mu.RUnlock()

	snap := Snapshot{Stage: stage, StageURL: stageURL}
	snap.Entries = make([]EntrySnapshot, 0, len(entries))
	for _, e := range entries {
		snap.Entries = append(snap.Entries, e.Snapshot())
	}
	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].DisplayTitle() < snap.Entries[j].DisplayTitle()
	})
	return snap
}
