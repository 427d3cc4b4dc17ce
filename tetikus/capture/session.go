package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"kafji.net/tetikus/inputevent"
	"kafji.net/tetikus/logging"
)

var slog = logging.New("tetikus/capture")

var ErrAlreadyActive = errors.New("capture session is already active")

// Source is the system-wide mouse hook as the session sees it. The inputs
// channel closes when delivery ends; Err explains why. Stop must guarantee
// no further events are delivered once the channel has closed.
type Source interface {
	Inputs() <-chan inputevent.Event
	Err() error
	Stop()
}

// RecordWriter persists enriched records. csvlog.Writer is the production
// implementation.
type RecordWriter interface {
	Write(Record)
	Close()
}

// Thresholds are the enricher settings a session starts with.
type Thresholds struct {
	NearClickMS int
	CombatCPS   float64
}

// Options wires a session's collaborators. StartSource and OpenLog are
// required; Clock defaults to time.Now.
type Options struct {
	StartSource func() Source
	OpenLog     func(path string) (RecordWriter, error)
	Clock       func() time.Time
}

// Session owns one Start-to-Stop capture interval, bound to exactly one log
// file. Idle -> Active on Start, Active -> Idle on Stop, nothing in between.
type Session struct {
	startSource func() Source
	openLog     func(path string) (RecordWriter, error)
	clock       func() time.Time

	mu        sync.Mutex
	active    bool
	logPath   string
	startedAt time.Time
	startMS   int64
	enricher  *Enricher
	source    Source
	writer    RecordWriter
	done      chan struct{}

	// written by the consume goroutine before done closes, read after
	counts tally
}

func NewSession(opts Options) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		startSource: opts.StartSource,
		openLog:     opts.OpenLog,
		clock:       clock,
	}
}

// Start opens the log at path and begins capturing. The log is opened before
// any state is mutated, so an open failure leaves the session Idle.
func (s *Session) Start(path string, th Thresholds, coordsEnabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrAlreadyActive
	}

	w, err := s.openLog(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	s.writer = w
	s.source = s.startSource()
	s.enricher = NewEnricher(th.NearClickMS, th.CombatCPS, coordsEnabled)
	s.logPath = path
	s.startedAt = s.clock()
	s.startMS = s.startedAt.UnixMilli()
	s.counts = tally{}
	s.done = make(chan struct{})
	s.active = true

	go s.consume(s.source, s.writer, s.done)

	return nil
}

// consume is the single owner of the capture path: it receives raw events in
// arrival order, enriches them, and writes each record before taking the
// next. File order, queue order, and arrival order are therefore identical.
func (s *Session) consume(src Source, w RecordWriter, done chan struct{}) {
	defer close(done)

	var counts tally
	for ev := range src.Inputs() {
		now := s.clock()
		sinceStart := now.UnixMilli() - s.startMS
		if sinceStart < 0 {
			sinceStart = 0
		}

		var rec Record
		switch v := ev.(type) {
		case inputevent.MouseClick:
			rec = s.enricher.EnrichClick(v, now, sinceStart)
		case inputevent.MouseScroll:
			rec = s.enricher.EnrichScroll(v, now, sinceStart)
		default:
			continue
		}
		w.Write(rec)
		counts.add(rec)
	}
	if err := src.Err(); err != nil {
		slog.Warn("input source stopped", "error", err)
	}
	s.counts = counts
}

// Stop tears the input subscription down, waits for in-flight events to
// land, closes the log, and writes the session summary. Stopping an idle
// session is a no-op. The caller picks a fresh path for the next session.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	src, done := s.source, s.done
	s.mu.Unlock()

	src.Stop()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		// lost the race against another Stop
		return
	}
	s.writer.Close()

	stoppedAt := s.clock()
	sum := Summary{
		LogPath:       s.logPath,
		StartedAt:     s.startedAt,
		StoppedAt:     stoppedAt,
		DurationMS:    stoppedAt.UnixMilli() - s.startMS,
		Events:        s.counts.events,
		Clicks:        s.counts.clicks,
		Wheels:        s.counts.wheels,
		NearClicks:    s.counts.nearClicks,
		CombatRecords: s.counts.combat,
	}
	if err := writeSummary(summaryPath(s.logPath), sum); err != nil {
		slog.Warn("failed to write session summary", "error", err)
	}

	s.active = false
	s.writer = nil
	s.source = nil
	s.enricher = nil
}

// Active reports whether a capture interval is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Elapsed returns the time since Start, zero when idle.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return 0
	}
	return s.clock().Sub(s.startedAt)
}

// CPS returns the current left-click rate, zero when idle.
func (s *Session) CPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enricher == nil {
		return 0
	}
	return s.enricher.CPS(s.clock().UnixMilli())
}

// SetNearClickMS applies a new near-click window to the active session,
// effective on the next event. No-op when idle.
func (s *Session) SetNearClickMS(ms int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enricher != nil {
		s.enricher.SetNearClickMS(ms)
	}
}

// SetCombatCPS applies a new combat threshold to the active session.
func (s *Session) SetCombatCPS(cps float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enricher != nil {
		s.enricher.SetCombatCPS(cps)
	}
}

// SetCoordsEnabled toggles coordinate capture on the active session.
func (s *Session) SetCoordsEnabled(flag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enricher != nil {
		s.enricher.SetCoordsEnabled(flag)
	}
}

type tally struct {
	events     int
	clicks     int
	wheels     int
	nearClicks int
	combat     int
}

func (t *tally) add(rec Record) {
	t.events++
	if rec.IsWheel() {
		t.wheels++
	} else {
		t.clicks++
	}
	if rec.NearClick {
		t.nearClicks++
	}
	if rec.Combat == Combat {
		t.combat++
	}
}
