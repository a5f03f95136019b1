// Package scheduler decides when extraction re-runs against a document that
// updates incrementally. It collapses bursts of mutation events into one
// debounced scan and holds results back while a response is still streaming.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/navigation"
	"github.com/jonesrussell/chatscrape/internal/pipeline"
	"github.com/jonesrussell/chatscrape/internal/target"
)

// State is the scheduler's position in its scan lifecycle.
type State string

const (
	// StateIdle means no scan is owed.
	StateIdle State = "idle"
	// StatePending means a scan is owed once the debounce window closes.
	StatePending State = "pending"
	// StateSettling means a scan ran while a response was streaming and a
	// re-scan is armed.
	StateSettling State = "settling"
)

// DefaultMaxSettleRetries bounds how often a settling scan re-arms before
// the result is emitted regardless of the streaming signal.
const DefaultMaxSettleRetries = 5

// Provider supplies the current document snapshot. A nil snapshot means no
// document is available and the scan degrades to a no-op.
type Provider interface {
	Current() *dom.Snapshot
}

// Consumer receives each completed, non-streaming scan batch.
type Consumer func(domain.ScanBatch)

// ResetFunc is signalled when a conversation switch invalidates accumulated
// downstream state.
type ResetFunc func(conversationKey string)

// Timing overrides one target's scheduler constants.
type Timing struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Settle   time.Duration `mapstructure:"settle"`
}

// Config tunes the scheduler.
type Config struct {
	// MaxSettleRetries bounds the settle loop.
	MaxSettleRetries int `mapstructure:"max_settle_retries"`
	// RescanCron optionally schedules periodic full rescans (cron spec).
	// Empty disables them.
	RescanCron string `mapstructure:"rescan_cron"`
	// TimingOverrides replaces per-target debounce/settle constants.
	TimingOverrides map[string]Timing `mapstructure:"timing_overrides"`
}

type eventKind int

const (
	evDocumentChanged eventKind = iota
	evAddressChanged
	evForceScan
)

type event struct {
	kind eventKind
	url  string
}

// Scheduler runs the idle/pending/settling state machine on a single
// goroutine; one logical scan executes to completion before the next is
// considered.
type Scheduler struct {
	log      logger.Interface
	cfg      Config
	pipe     *pipeline.Pipeline
	provider Provider
	detector *navigation.SwitchDetector

	strategies []target.Strategy
	active     target.Strategy

	consumer Consumer
	onReset  ResetFunc

	events chan event
	done   chan struct{}

	mu            sync.RWMutex
	state         State
	settleRetries int
	cron          *cron.Cron
}

// New creates a scheduler. The consumer is required; onReset may be nil.
func New(
	log logger.Interface,
	cfg Config,
	pipe *pipeline.Pipeline,
	provider Provider,
	strategies []target.Strategy,
	consumer Consumer,
	onReset ResetFunc,
) *Scheduler {
	if cfg.MaxSettleRetries <= 0 {
		cfg.MaxSettleRetries = DefaultMaxSettleRetries
	}
	return &Scheduler{
		log:        log.WithComponent("scheduler"),
		cfg:        cfg,
		pipe:       pipe,
		provider:   provider,
		detector:   navigation.NewSwitchDetector(log),
		strategies: strategies,
		consumer:   consumer,
		onReset:    onReset,
		events:     make(chan event, 64),
		done:       make(chan struct{}),
		state:      StateIdle,
	}
}

// Start launches the event loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.RescanCron != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(s.cfg.RescanCron, s.ScanNow); err != nil {
			return err
		}
		s.cron.Start()
	}

	go s.run(ctx)
	return nil
}

// Stop shuts the scheduler down and waits for the loop to exit.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	close(s.events)
	<-s.done
}

// DocumentChanged signals that the rendered document mutated.
func (s *Scheduler) DocumentChanged() {
	s.send(event{kind: evDocumentChanged})
}

// AddressChanged signals a navigation event.
func (s *Scheduler) AddressChanged(url string) {
	s.send(event{kind: evAddressChanged, url: url})
}

// ScanNow requests an immediate, non-debounced scan.
func (s *Scheduler) ScanNow() {
	s.send(event{kind: evForceScan})
}

func (s *Scheduler) send(ev event) {
	defer func() {
		// Sending after Stop closed the channel is a benign race during
		// shutdown; drop the event.
		_ = recover()
	}()
	select {
	case s.events <- ev:
	default:
		s.log.Warn("event queue full, dropping event", "kind", ev.kind)
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			s.handleEvent(ev, timer)
		case <-timer.C:
			s.scan(timer)
		}
	}
}

func (s *Scheduler) handleEvent(ev event, timer *time.Timer) {
	switch ev.kind {
	case evDocumentChanged:
		s.ensureActive()
		s.arm(timer, s.debounce())
	case evAddressChanged:
		s.handleAddress(ev.url, timer)
	case evForceScan:
		s.stopTimer(timer)
		s.scan(timer)
	}
}

// handleAddress re-selects the active strategy for the new address and asks
// the switch detector whether accumulated state must go. A switch forces an
// immediate non-debounced scan; an ordinary navigation event only debounces.
func (s *Scheduler) handleAddress(url string, timer *time.Timer) {
	s.active = target.Select(url, s.strategies)
	if s.active == nil {
		// No matching target: the pipeline is inert for this document.
		s.setState(StateIdle)
		s.stopTimer(timer)
		return
	}

	if s.detector.Observe(s.active, url) {
		if s.onReset != nil {
			s.onReset(s.detector.Current())
		}
		s.stopTimer(timer)
		s.scan(timer)
		return
	}
	s.arm(timer, s.debounce())
}

// scan runs one pipeline pass. A streaming document arms the settle timer
// instead of emitting; the settle loop is bounded, after which the latest
// batch is emitted regardless.
func (s *Scheduler) scan(timer *time.Timer) {
	snap := s.provider.Current()
	if snap == nil || s.activeFor(snap) == nil {
		s.setState(StateIdle)
		s.settleRetries = 0
		return
	}

	batch := s.pipe.Run(s.active, snap)

	if s.active.IsStreaming(snap) && s.settleRetries < s.cfg.MaxSettleRetries {
		s.settleRetries++
		s.rearmSettle(timer, s.settle())
		s.log.Debug("response still streaming, settling",
			"retry", s.settleRetries,
			"settle", s.settle(),
		)
		return
	}

	s.settleRetries = 0
	s.setState(StateIdle)
	s.consumer(batch)
}

// ensureActive resolves the active strategy from the current snapshot when
// navigation events have not established one yet.
func (s *Scheduler) ensureActive() {
	if s.active != nil {
		return
	}
	if snap := s.provider.Current(); snap != nil {
		s.active = target.Select(snap.URL, s.strategies)
	}
}

func (s *Scheduler) activeFor(snap *dom.Snapshot) target.Strategy {
	if s.active == nil {
		s.active = target.Select(snap.URL, s.strategies)
	}
	return s.active
}

func (s *Scheduler) debounce() time.Duration {
	if s.active == nil {
		// No active target yet; a conservative default until one resolves.
		return 500 * time.Millisecond
	}
	desc := s.active.Descriptor()
	if t, ok := s.cfg.TimingOverrides[desc.Name]; ok && t.Debounce > 0 {
		return t.Debounce
	}
	return desc.Debounce
}

func (s *Scheduler) settle() time.Duration {
	desc := s.active.Descriptor()
	if t, ok := s.cfg.TimingOverrides[desc.Name]; ok && t.Settle > 0 {
		return t.Settle
	}
	return desc.Settle
}

// arm moves the scheduler to pending and (re)starts the debounce window. A
// newly armed timer supersedes a pending scan; a fresh event during a settle
// wait starts a new burst.
func (s *Scheduler) arm(timer *time.Timer, d time.Duration) {
	s.settleRetries = 0
	s.setState(StatePending)
	s.stopTimer(timer)
	timer.Reset(d)
}

// rearmSettle keeps the scheduler settling and restarts the settle wait.
func (s *Scheduler) rearmSettle(timer *time.Timer, d time.Duration) {
	s.setState(StateSettling)
	s.stopTimer(timer)
	timer.Reset(d)
}

func (s *Scheduler) stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// CurrentState returns the scheduler state, for observability.
func (s *Scheduler) CurrentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
