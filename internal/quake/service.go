package quake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/quakewatch/quakewatch/internal/observability"
)

// DefaultRefreshInterval is how often the feed is re-fetched.
const DefaultRefreshInterval = 5 * time.Minute

// Threshold bounds. The slider and the API clamp to this range.
const (
	MinThreshold = 0.0
	MaxThreshold = 8.0
)

// Provider fetches one feed snapshot. Implementations must not retry
// internally; retry is an explicit caller action.
type Provider interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
}

// ServiceConfig holds configuration for the state controller.
type ServiceConfig struct {
	// Provider is the feed source (required).
	Provider Provider

	// Logger for controller operations.
	Logger zerolog.Logger

	// RefreshInterval between automatic fetches (optional, default 5m).
	RefreshInterval time.Duration

	// Clock is the time source (optional, real clock by default).
	// Tests inject a fake for deterministic ticks.
	Clock clockwork.Clock

	// Metrics instruments (optional).
	Metrics *observability.Metrics
}

// View is an atomic copy of the controller state handed to the render layer.
type View struct {
	// Events is the last known good snapshot, oldest error unaffected.
	Events []Event

	// LastUpdated is the upstream generation timestamp of that snapshot
	// in epoch milliseconds, nil until the first successful fetch.
	LastUpdated *int64

	// Loading is true while a fetch is in flight.
	Loading bool

	// ErrorMessage describes the most recent failed fetch, empty when
	// the last attempt succeeded or one is about to be retried.
	ErrorMessage string

	// Threshold is the current minimum displayed magnitude.
	Threshold float64
}

// Service owns the feed state: the last good snapshot, the loading and
// error flags, and the magnitude threshold. All four axes are mutated
// only through Refresh and SetThreshold, always under one lock, so a
// reader never observes a partially applied transition.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	interval time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics

	mu          sync.Mutex
	events      []Event
	lastUpdated *int64
	loading     bool
	errMessage  string
	threshold   float64

	// Fetches are tagged with a monotonic sequence number and a
	// completion older than the last applied one is discarded, so an
	// overlapping manual retry cannot be overridden by a slower fetch
	// that started earlier.
	nextSeq     uint64
	lastApplied uint64
	completed   bool
}

// NewService creates a new state controller. Events start empty and
// lastUpdated unset; nothing is fetched until Refresh or Run is called.
func NewService(cfg ServiceConfig) *Service {
	interval := cfg.RefreshInterval
	if interval == 0 {
		interval = DefaultRefreshInterval
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		interval: interval,
		clock:    clock,
		metrics:  cfg.Metrics,
		events:   []Event{},
	}
}

// Refresh performs one fetch cycle. It is the single entry point for the
// initial load, the periodic timer and the manual retry action, and it
// never suppresses an overlapping fetch. Failures are converted into
// state, never returned: stale events stay visible, the error message is
// set, and a later retry clears it.
func (s *Service) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.loading = true
	s.errMessage = ""
	s.mu.Unlock()

	start := s.clock.Now()
	snapshot, err := s.provider.FetchSnapshot(ctx)
	elapsed := s.clock.Since(start)

	if s.metrics != nil {
		s.metrics.FetchDuration.Observe(elapsed.Seconds())
	}

	s.apply(seq, snapshot, err)
}

// apply commits a fetch completion to the four state axes atomically.
func (s *Service) apply(seq uint64, snapshot *Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.lastApplied {
		// A fetch that started later already finished; this result is stale.
		s.count("stale")
		s.logger.Debug().Uint64("seq", seq).Msg("discarding out-of-order fetch result")
		return
	}
	s.lastApplied = seq
	s.loading = false
	s.completed = true

	if err != nil {
		s.errMessage = err.Error()
		s.count(fetchOutcome(err))
		s.logger.Warn().Err(err).Uint64("seq", seq).Msg("feed refresh failed, keeping stale snapshot")
		return
	}

	s.events = snapshot.Events
	generated := snapshot.GeneratedAt
	s.lastUpdated = &generated
	s.errMessage = ""
	s.count("success")
	if s.metrics != nil {
		s.metrics.EventCount.Set(float64(len(snapshot.Events)))
	}
	s.logger.Info().
		Int("events", len(snapshot.Events)).
		Int64("generated_at", generated).
		Uint64("seq", seq).
		Msg("feed snapshot applied")
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.FetchesTotal.WithLabelValues(outcome).Inc()
	}
}

func fetchOutcome(err error) string {
	var netErr *NetworkError
	var httpErr *HTTPError
	var parseErr *ParseError
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "error"
	}
}

// Run fetches once immediately and then on every tick of the refresh
// interval until ctx is canceled. The ticker is released on return, so
// tearing down the controller leaves no orphaned timer.
func (s *Service) Run(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.ControllerRunning.Set(1)
		defer s.metrics.ControllerRunning.Set(0)
	}

	s.logger.Info().Dur("interval", s.interval).Msg("refresh loop started")
	s.Refresh(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("refresh loop stopped")
			return
		case <-ticker.Chan():
			s.Refresh(ctx)
		}
	}
}

// SetThreshold updates the minimum displayed magnitude, clamped to
// [MinThreshold, MaxThreshold], and returns the value actually stored.
// Changing the threshold triggers no network activity.
func (s *Service) SetThreshold(v float64) float64 {
	if v < MinThreshold {
		v = MinThreshold
	}
	if v > MaxThreshold {
		v = MaxThreshold
	}
	s.mu.Lock()
	s.threshold = v
	s.mu.Unlock()
	return v
}

// Threshold returns the current minimum displayed magnitude.
func (s *Service) Threshold() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threshold
}

// CurrentView returns an atomic copy of all state axes. The events slice
// is replaced wholesale on refresh and never mutated in place, so sharing
// it with readers is safe.
func (s *Service) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Events:       s.events,
		LastUpdated:  s.lastUpdated,
		Loading:      s.loading,
		ErrorMessage: s.errMessage,
		Threshold:    s.threshold,
	}
}

// FilteredEvents applies the magnitude filter to the current snapshot
// using the given threshold.
func (s *Service) FilteredEvents(threshold float64) []Event {
	s.mu.Lock()
	events := s.events
	s.mu.Unlock()
	return Filter(events, threshold)
}

// CheckReadiness returns nil once at least one fetch attempt has
// completed, successfully or not; failures are recoverable by retry and
// should not keep the service out of rotation.
func (s *Service) CheckReadiness(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completed {
		return errors.New("no feed fetch has completed yet")
	}
	return nil
}
