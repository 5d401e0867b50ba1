// Package download spawns and supervises one external downloader process
// per resolved target, with bounded concurrency and a cooperative
// interrupt-then-kill shutdown.
package download

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/showcase-dl/showcase-dl/internal/resolve"
	"github.com/showcase-dl/showcase-dl/internal/state"
	"github.com/showcase-dl/showcase-dl/internal/telemetry"
)

// Options configures a Supervisor.
type Options struct {
	// Bin is the downloader executable, resolved via PATH lookup.
	Bin string
	// OutputTemplate is passed through to the downloader when non-empty.
	OutputTemplate string
	// ExtraArgs are caller-supplied downloader arguments, appended after
	// the built-in ones.
	ExtraArgs []string
	// MaxConcurrent bounds simultaneously running child processes.
	// Zero or negative means unlimited.
	MaxConcurrent int
	// Grace is how long Shutdown waits after interrupting children
	// before force-killing the stragglers.
	Grace time.Duration
}

// procRecord tracks one live child process. exited is closed by the
// owning task after the entry reached its terminal state, so a closed
// channel implies the entry is settled.
type procRecord struct {
	proc   *os.Process
	exited chan struct{}
}

// Supervisor consumes resolved targets and runs one downloader process
// per accepted target.
type Supervisor struct {
	store  *state.Store
	opts   Options
	log    zerolog.Logger
	tracer trace.Tracer

	mu          sync.Mutex
	draining    bool
	procs       map[string]*procRecord
	interrupted map[string]bool
	killed      map[string]bool
}

func New(store *state.Store, opts Options, log zerolog.Logger) *Supervisor {
	if opts.Bin == "" {
		opts.Bin = "yt-dlp"
	}
	if opts.Grace <= 0 {
		opts.Grace = 5 * time.Second
	}
	return &Supervisor{
		store:       store,
		opts:        opts,
		log:         log.With().Str("component", "download").Logger(),
		tracer:      telemetry.Tracer("download"),
		procs:       make(map[string]*procRecord),
		interrupted: make(map[string]bool),
		killed:      make(map[string]bool),
	}
}

// Run drains the target channel, spawning one downloader per accepted
// target with at most MaxConcurrent running at once. It returns after
// the channel is closed and every spawned task has settled.
func (s *Supervisor) Run(ctx context.Context, targets <-chan resolve.Target) {
	g := new(errgroup.Group)
	if s.opts.MaxConcurrent > 0 {
		g.SetLimit(s.opts.MaxConcurrent)
	}

	for t := range targets {
		if s.isDraining() {
			s.log.Info().Str("url", t.URL).Msg("shutdown in progress, dropping target")
			continue
		}

		entry, added := s.store.Add(t.URL, t.Referer, t.Title, string(t.Kind))
		if !added {
			s.log.Debug().Str("url", t.URL).Str("id", entry.ID()).
				Msg("duplicate target, already tracked")
			continue
		}
		s.log.Info().Str("url", t.URL).Str("id", entry.ID()).Msg("target accepted")

		g.Go(func() error {
			s.download(ctx, entry)
			return nil
		})
	}

	g.Wait() // tasks never return errors; failures live on the entries
}

func (s *Supervisor) isDraining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draining
}

// download runs one child process to completion and settles its entry.
func (s *Supervisor) download(ctx context.Context, entry *state.Entry) {
	ctx, span := s.tracer.Start(ctx, "download",
		trace.WithAttributes(attribute.String("target.url", entry.URL())))
	defer span.End()

	args := BuildArgs(entry.URL(), entry.Referer(), s.opts.OutputTemplate, s.opts.ExtraArgs)
	cmd := exec.Command(s.opts.Bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.fail(entry, span, fmt.Sprintf("stdout pipe: %v", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.fail(entry, span, fmt.Sprintf("stderr pipe: %v", err))
		return
	}

	// Spawn under the lock so a concurrent Shutdown either sees this
	// process in the table or prevents it from starting at all.
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		entry.Finish(state.StatusCancelled, "shutdown requested before start")
		span.SetStatus(codes.Ok, "cancelled before start")
		return
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		s.fail(entry, span, fmt.Sprintf("spawn %s %s: %v", s.opts.Bin, strings.Join(args, " "), err))
		return
	}
	rec := &procRecord{proc: cmd.Process, exited: make(chan struct{})}
	s.procs[entry.ID()] = rec
	s.mu.Unlock()

	entry.SetRunning(cmd.Process.Pid)
	span.SetAttributes(attribute.Int("proc.pid", cmd.Process.Pid))
	s.log.Info().Str("id", entry.ID()).Int("pid", cmd.Process.Pid).
		Str("bin", s.opts.Bin).Strs("args", args).Msg("downloader started")

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		s.consumeOutput(entry, bufio.NewScanner(stdout))
	}()
	go func() {
		defer readers.Done()
		s.consumeOutput(entry, bufio.NewScanner(stderr))
	}()
	readers.Wait()

	waitErr := cmd.Wait()

	s.mu.Lock()
	delete(s.procs, entry.ID())
	wasInterrupted := s.interrupted[entry.ID()]
	wasKilled := s.killed[entry.ID()]
	s.mu.Unlock()

	status, detail := classifyExit(waitErr, wasInterrupted, wasKilled)
	if status == state.StatusFailed && detail == "" {
		detail = lastLineDetail(entry, waitErr)
	}
	entry.Finish(status, detail)

	switch status {
	case state.StatusFinished:
		span.SetStatus(codes.Ok, "")
		s.log.Info().Str("id", entry.ID()).Msg("download finished")
	case state.StatusCancelled:
		span.SetStatus(codes.Ok, "cancelled")
		s.log.Info().Str("id", entry.ID()).Msg("download cancelled")
	default:
		span.SetStatus(codes.Error, detail)
		s.log.Error().Str("id", entry.ID()).Str("detail", detail).Msg("download failed")
	}

	close(rec.exited)
}

func (s *Supervisor) fail(entry *state.Entry, span trace.Span, detail string) {
	entry.Finish(state.StatusFailed, detail)
	span.SetStatus(codes.Error, detail)
	s.log.Error().Str("id", entry.ID()).Str("detail", detail).Msg("download failed")
}

// consumeOutput applies each output line to the entry. stdout and stderr
// share this path: yt-dlp routes some progress to stderr depending on
// version and flags.
func (s *Supervisor) consumeOutput(entry *state.Entry, sc *bufio.Scanner) {
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		entry.UpdateLine(line)

		if strings.HasPrefix(line, "ERROR:") {
			s.log.Error().Str("id", entry.ID()).Str("line", line).Msg("downloader error output")
		} else {
			s.log.Trace().Str("id", entry.ID()).Str("line", line).Msg("downloader output")
		}

		u := ParseLine(line)
		if u.HasProgress {
			entry.UpdateProgress(u.Progress)
		}
		if u.OutputFile != "" {
			entry.SetOutputFile(u.OutputFile)
		}
	}
}

// Shutdown stops admission, interrupts every live child, waits up to the
// grace window for them to exit on their own, then force-kills the rest.
// It returns once every previously live entry is terminal. Safe to call
// more than once; later calls wait for the same drain.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	alreadyDraining := s.draining
	s.draining = true
	s.store.SetStageDraining()

	live := make(map[string]*procRecord, len(s.procs))
	for id, rec := range s.procs {
		live[id] = rec
	}
	if !alreadyDraining {
		for id, rec := range live {
			s.interrupted[id] = true
			if err := rec.proc.Signal(os.Interrupt); err != nil {
				s.log.Warn().Str("id", id).Err(err).Msg("interrupt failed, killing")
				s.killed[id] = true
				_ = rec.proc.Kill()
			}
		}
	}
	s.mu.Unlock()

	s.log.Info().Int("live", len(live)).Dur("grace", s.opts.Grace).Msg("shutdown: draining")

	deadline := time.NewTimer(s.opts.Grace)
	defer deadline.Stop()

	for _, rec := range live {
		select {
		case <-rec.exited:
		case <-deadline.C:
			s.killStragglers(live)
			// Kill guarantees exit, so these waits are bounded.
			for _, r := range live {
				<-r.exited
			}
			s.log.Info().Msg("shutdown: drained after force kill")
			return
		}
	}
	s.log.Info().Msg("shutdown: drained")
}

func (s *Supervisor) killStragglers(live map[string]*procRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range live {
		select {
		case <-rec.exited:
		default:
			s.log.Warn().Str("id", id).Msg("grace expired, force killing")
			s.killed[id] = true
			_ = rec.proc.Kill()
		}
	}
}

// lastLineDetail builds the failure detail from the exit error and the
// most recent output line, which for yt-dlp usually names the cause.
func lastLineDetail(entry *state.Entry, waitErr error) string {
	detail := "downloader failed"
	if waitErr != nil {
		detail = waitErr.Error()
	}
	if last := entry.LastLine(); last != "" {
		detail = detail + ": " + last
	}
	return detail
}
