package state

import "sync"

// Progress is one parsed progress update from the downloader's output.
// Fields the parser could not extract from the current line are left at
// their zero value and do not overwrite previously known values.
type Progress struct {
	Percent      float64
	PercentKnown bool
	Size         string
	Speed        string
	ETA          string
	Frag         int
	FragTotal    int
}

// Entry is the mutable lifecycle record for one resolved target.
//
// Each entry is written by exactly one supervisor task for the lifetime of
// its process; the mutex exists only so concurrent snapshot readers see
// consistent field sets, not to arbitrate writers.
type Entry struct {
	mu sync.Mutex

	id      string
	url     string
	referer string
	kind    string

	title        string
	status       Status
	pid          int
	percent      float64
	percentKnown bool
	size         string
	speed        string
	eta          string
	frag         int
	fragTotal    int
	lastLine     string
	outputFile   string
	detail       string
}

// EntrySnapshot is an immutable copy of an Entry for the renderer.
type EntrySnapshot struct {
	ID           string
	URL          string
	Referer      string
	Kind         string
	Title        string
	Status       Status
	PID          int
	Percent      float64
	PercentKnown bool
	Size         string
	Speed        string
	ETA          string
	Frag         int
	FragTotal    int
	LastLine     string
	OutputFile   string
	Detail       string
}

func (e *Entry) ID() string      { return e.id }
func (e *Entry) URL() string     { return e.url }
func (e *Entry) Referer() string { return e.referer }

func (e *Entry) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Entry) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = title
}

// SetRunning records the spawned process. Ignored once terminal, so a
// late spawn racing a shutdown cannot resurrect a cancelled entry.
func (e *Entry) SetRunning(pid int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.Terminal() {
		return
	}
	e.status = StatusRunning
	e.pid = pid
}

// UpdateLine retains the most recent raw output line for diagnostics.
// Only the latest line is kept, bounding memory for long downloads.
func (e *Entry) UpdateLine(line string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastLine = line
}

// UpdateProgress applies a parsed progress update. Updates arrive in output
// order from the single owning reader, so later calls never carry stale data.
func (e *Entry) UpdateProgress(p Progress) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.Terminal() {
		return
	}
	if p.PercentKnown {
		e.percent = p.Percent
		e.percentKnown = true
	}
	if p.Size != "" {
		e.size = p.Size
	}
	if p.Speed != "" {
		e.speed = p.Speed
	}
	if p.ETA != "" {
		e.eta = p.ETA
	}
	if p.FragTotal > 0 {
		e.frag = p.Frag
		e.fragTotal = p.FragTotal
	}
}

func (e *Entry) SetOutputFile(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outputFile = path
}

// Finish moves the entry into a terminal state. The first terminal state
// wins; later calls are ignored and report false.
func (e *Entry) Finish(status Status, detail string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.Terminal() {
		return false
	}
	e.status = status
	e.detail = detail
	return true
}

// LastLine returns the most recent raw output line.
func (e *Entry) LastLine() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastLine
}

// Snapshot copies the entry for a concurrent reader.
func (e *Entry) Snapshot() EntrySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EntrySnapshot{
		ID:           e.id,
		URL:          e.url,
		Referer:      e.referer,
		Kind:         e.kind,
		Title:        e.title,
		Status:       e.status,
		PID:          e.pid,
		Percent:      e.percent,
		PercentKnown: e.percentKnown,
		Size:         e.size,
		Speed:        e.speed,
		ETA:          e.eta,
		Frag:         e.frag,
		FragTotal:    e.fragTotal,
		LastLine:     e.lastLine,
		OutputFile:   e.outputFile,
		Detail:       e.detail,
	}
}

// DisplayTitle is the title when known, else the URL.
func (s EntrySnapshot) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}
