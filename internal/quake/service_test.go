package quake_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakewatch/quakewatch/internal/observability"
	"github.com/quakewatch/quakewatch/internal/quake"
)

// fakeProvider returns queued results in call order and can block each
// fetch until the test releases it.
type fakeProvider struct {
	mu       sync.Mutex
	results  []fetchResult
	calls    int
	started  chan struct{}
	release  chan struct{}
	blocking bool
}

type fetchResult struct {
	snapshot *quake.Snapshot
	err      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (p *fakeProvider) queue(snapshot *quake.Snapshot, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, fetchResult{snapshot: snapshot, err: err})
}

func (p *fakeProvider) FetchSnapshot(_ context.Context) (*quake.Snapshot, error) {
	p.mu.Lock()
	idx := p.calls
	p.calls++
	blocking := p.blocking
	p.mu.Unlock()

	p.started <- struct{}{}
	if blocking {
		<-p.release
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if idx >= len(p.results) {
		return &quake.Snapshot{Events: []quake.Event{}}, nil
	}
	r := p.results[idx]
	return r.snapshot, r.err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newService(t *testing.T, p quake.Provider, opts ...func(*quake.ServiceConfig)) *quake.Service {
	t.Helper()
	cfg := quake.ServiceConfig{
		Provider: p,
		Metrics:  observability.NewMetricsForTesting(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return quake.NewService(cfg)
}

func snapshotWith(generatedAt int64, ids ...string) *quake.Snapshot {
	events := make([]quake.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, quake.Event{ID: id})
	}
	return &quake.Snapshot{Events: events, GeneratedAt: generatedAt}
}

func drain(p *fakeProvider, n int) {
	for i := 0; i < n; i++ {
		<-p.started
	}
}

func TestService_InitialState(t *testing.T) {
	svc := newService(t, newFakeProvider())

	view := svc.CurrentView()
	assert.Empty(t, view.Events)
	assert.Nil(t, view.LastUpdated)
	assert.False(t, view.Loading)
	assert.Empty(t, view.ErrorMessage)
	assert.Zero(t, view.Threshold)

	assert.Error(t, svc.CheckReadiness(context.Background()))
}

func TestService_RefreshSuccess(t *testing.T) {
	provider := newFakeProvider()
	provider.queue(snapshotWith(1724900000000, "a", "b"), nil)
	svc := newService(t, provider)

	svc.Refresh(context.Background())
	drain(provider, 1)

	view := svc.CurrentView()
	require.Len(t, view.Events, 2)
	require.NotNil(t, view.LastUpdated)
	assert.Equal(t, int64(1724900000000), *view.LastUpdated)
	assert.False(t, view.Loading)
	assert.Empty(t, view.ErrorMessage)

	assert.NoError(t, svc.CheckReadiness(context.Background()))
}

func TestService_RefreshFailureKeepsStaleData(t *testing.T) {
	provider := newFakeProvider()
	provider.queue(snapshotWith(100, "a"), nil)
	provider.queue(nil, &quake.HTTPError{Status: 500})
	svc := newService(t, provider)

	svc.Refresh(context.Background())
	svc.Refresh(context.Background())
	drain(provider, 2)

	view := svc.CurrentView()
	require.Len(t, view.Events, 1, "stale snapshot must survive a failed fetch")
	assert.Equal(t, "a", view.Events[0].ID)
	require.NotNil(t, view.LastUpdated)
	assert.Equal(t, int64(100), *view.LastUpdated)
	assert.Equal(t, "feed returned status 500", view.ErrorMessage)
	assert.False(t, view.Loading)
}

func TestService_RefreshClearsErrorOnSuccess(t *testing.T) {
	provider := newFakeProvider()
	provider.queue(nil, &quake.NetworkError{Err: context.DeadlineExceeded})
	provider.queue(snapshotWith(200, "a"), nil)
	svc := newService(t, provider)

	svc.Refresh(context.Background())
	view := svc.CurrentView()
	assert.NotEmpty(t, view.ErrorMessage)

	svc.Refresh(context.Background())
	drain(provider, 2)

	view = svc.CurrentView()
	assert.Empty(t, view.ErrorMessage)
	assert.Len(t, view.Events, 1)
}

func TestService_LoadingFlagDuringFetch(t *testing.T) {
	provider := newFakeProvider()
	provider.blocking = true
	provider.queue(snapshotWith(100, "a"), nil)
	svc := newService(t, provider)

	done := make(chan struct{})
	go func() {
		svc.Refresh(context.Background())
		close(done)
	}()

	<-provider.started
	assert.True(t, svc.CurrentView().Loading)

	close(provider.release)
	<-done
	assert.False(t, svc.CurrentView().Loading)
}

func TestService_RetryWhileLoadingStillFetches(t *testing.T) {
	// An overlapping manual retry is never suppressed.
	provider := newFakeProvider()
	provider.blocking = true
	svc := newService(t, provider)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Refresh(context.Background())
		}()
	}

	<-provider.started
	<-provider.started
	assert.Equal(t, 2, provider.callCount())

	close(provider.release)
	wg.Wait()
}

func TestService_OutOfOrderCompletionDiscarded(t *testing.T) {
	// Fetch A starts first but finishes last; its result must not override
	// the snapshot applied by the younger fetch B.
	provider := newFakeProvider()
	provider.blocking = true
	provider.queue(snapshotWith(100, "old"), nil)
	provider.queue(snapshotWith(200, "new"), nil)
	svc := newService(t, provider)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Refresh(context.Background()) // fetch A
	}()
	<-provider.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Refresh(context.Background()) // fetch B
	}()
	<-provider.started

	// Whichever order the two completions land in, the end state must be
	// fetch B's snapshot: either B applies last, or A arrives after B and
	// is discarded as out of order.
	close(provider.release)
	wg.Wait()

	view := svc.CurrentView()
	require.Len(t, view.Events, 1)
	assert.Equal(t, "new", view.Events[0].ID)
	require.NotNil(t, view.LastUpdated)
	assert.Equal(t, int64(200), *view.LastUpdated)
}

func TestService_SetThresholdClamps(t *testing.T) {
	svc := newService(t, newFakeProvider())

	assert.Equal(t, 2.5, svc.SetThreshold(2.5))
	assert.Equal(t, 2.5, svc.Threshold())

	assert.Equal(t, quake.MaxThreshold, svc.SetThreshold(11))
	assert.Equal(t, quake.MinThreshold, svc.SetThreshold(-3))
}

func TestService_FilteredEvents(t *testing.T) {
	provider := newFakeProvider()
	m := 5.2
	provider.queue(&quake.Snapshot{
		Events: []quake.Event{
			{ID: "a", Magnitude: &m},
			{ID: "b", Magnitude: nil},
		},
		GeneratedAt: 100,
	}, nil)
	svc := newService(t, provider)
	svc.Refresh(context.Background())
	drain(provider, 1)

	filtered := svc.FilteredEvents(2.0)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].ID)
}

func TestService_RunRefreshesOnTick(t *testing.T) {
	provider := newFakeProvider()
	clock := clockwork.NewFakeClock()
	svc := newService(t, provider, func(cfg *quake.ServiceConfig) {
		cfg.Clock = clock
		cfg.RefreshInterval = 5 * time.Minute
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	// Initial fetch fires immediately.
	<-provider.started
	assert.Equal(t, 1, provider.callCount())

	// Each interval tick triggers exactly one more fetch.
	clock.BlockUntil(1)
	clock.Advance(5 * time.Minute)
	<-provider.started
	assert.Equal(t, 2, provider.callCount())

	clock.BlockUntil(1)
	clock.Advance(5 * time.Minute)
	<-provider.started
	assert.Equal(t, 3, provider.callCount())

	// Tearing down the controller releases the ticker.
	cancel()
	<-done
}
