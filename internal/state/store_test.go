package state

import "testing"

func TestStoreDedupe(t *testing.T) {
	s := NewStore()

	e1, added := s.Add("https://vimeo.com/111", "", "First", "player")
	if !added {
		t.Fatal("first Add reported duplicate")
	}

	// Same identity through canonicalization: fragment and case differ.
	e2, added := s.Add("HTTPS://vimeo.com/111#t=1", "", "Again", "player")
	if added {
		t.Error("duplicate Add reported new entry")
	}
	if e1 != e2 {
		t.Error("duplicate Add returned a different entry")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreAllTerminalAndAnyFailed(t *testing.T) {
	s := NewStore()
	if !s.AllTerminal() {
		t.Error("empty store is not AllTerminal")
	}

	e1, _ := s.Add("https://vimeo.com/111", "", "", "player")
	e2, _ := s.Add("https://vimeo.com/222", "", "", "player")

	if s.AllTerminal() {
		t.Error("AllTerminal true with pending entries")
	}

	e1.Finish(StatusFinished, "")
	if s.AllTerminal() {
		t.Error("AllTerminal true with one entry still pending")
	}
	if s.AnyFailed() {
		t.Error("AnyFailed true without failures")
	}

	e2.Finish(StatusFailed, "boom")
	if !s.AllTerminal() {
		t.Error("AllTerminal false with all entries terminal")
	}
	if !s.AnyFailed() {
		t.Error("AnyFailed false with a failed entry")
	}
}

func TestStoreStageDrainingWins(t *testing.T) {
	s := NewStore()

	s.SetStageFetching("https://vimeo.com/showcase/1")
	if stage, url := s.Stage(); stage != StageFetching || url != "https://vimeo.com/showcase/1" {
		t.Fatalf("stage = %v %q", stage, url)
	}

	s.SetStageDraining()

	// A racing resolver or a completing pipeline must not flip the
	// banner away from draining.
	s.SetStageProcessing()
	s.SetStageFetching("https://vimeo.com/showcase/2")
	s.SetStageDone()

	if stage, _ := s.Stage(); stage != StageDraining {
		t.Errorf("stage = %v, want draining", stage)
	}
}

func TestStoreSnapshotSorted(t *testing.T) {
	s := NewStore()
	s.Add("https://vimeo.com/3", "", "Charlie", "player")
	s.Add("https://vimeo.com/1", "", "Alpha", "player")
	s.Add("https://vimeo.com/2", "", "Bravo", "player")

	snap := s.Snapshot()
	if len(snap.Entries) != 3 {
		t.Fatalf("snapshot has %d entries, want 3", len(snap.Entries))
	}
	want := []string{"Alpha", "Bravo", "Charlie"}
	for i, e := range snap.Entries {
		if e.Title != want[i] {
			t.Errorf("entry %d title = %q, want %q", i, e.Title, want[i])
		}
	}
}
