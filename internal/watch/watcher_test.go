package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzansipay/wallet/internal/request"
	"github.com/mzansipay/wallet/internal/request/rules"
)

// scriptedGetter returns one scripted result per fetch, then repeats the last.
type scriptedGetter struct {
	mu      sync.Mutex
	script  []fetchResult
	fetches int
}

type fetchResult struct {
	status rules.Status
	err    error
}

func (g *scriptedGetter) Get(ctx context.Context, id string) (*request.PaymentRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.fetches
	if idx >= len(g.script) {
		idx = len(g.script) - 1
	}
	g.fetches++

	r := g.script[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &request.PaymentRequest{ID: id, Status: r.status}, nil
}

func (g *scriptedGetter) fetchCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetches
}

// recorder collects observations thread-safely.
type recorder struct {
	mu      sync.Mutex
	updates []fetchResult
}

func (r *recorder) onUpdate(req *request.PaymentRequest, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.updates = append(r.updates, fetchResult{err: err})
		return
	}
	r.updates = append(r.updates, fetchResult{status: req.Status})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func TestWatchStopsOnTerminalStatus(t *testing.T) {
	getter := &scriptedGetter{script: []fetchResult{
		{status: rules.StatusActive},
		{status: rules.StatusActive},
		{status: rules.StatusCompleted},
	}}
	rec := &recorder{}

	w := New(getter, Options{Interval: 10 * time.Millisecond})
	stop := w.Watch(context.Background(), "req-1", rec.onUpdate)
	defer stop()

	require.Eventually(t, func() bool { return rec.count() == 3 }, time.Second, 5*time.Millisecond)

	// No further fetch after the terminal observation.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, getter.fetchCount())
	assert.Equal(t, 3, rec.count())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, rules.StatusActive, rec.updates[0].status)
	assert.Equal(t, rules.StatusActive, rec.updates[1].status)
	assert.Equal(t, rules.StatusCompleted, rec.updates[2].status)
}

func TestWatchStopPreventsFurtherFetches(t *testing.T) {
	getter := &scriptedGetter{script: []fetchResult{{status: rules.StatusActive}}}
	rec := &recorder{}

	w := New(getter, Options{Interval: 50 * time.Millisecond})
	stop := w.Watch(context.Background(), "req-1", rec.onUpdate)

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, time.Millisecond)
	stop()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, getter.fetchCount())
	assert.Equal(t, 1, rec.count())
}

func TestWatchStopIsIdempotent(t *testing.T) {
	getter := &scriptedGetter{script: []fetchResult{{status: rules.StatusCompleted}}}
	rec := &recorder{}

	w := New(getter, Options{Interval: 10 * time.Millisecond})
	stop := w.Watch(context.Background(), "req-1", rec.onUpdate)

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, time.Millisecond)

	// Safe after natural termination, and safe repeatedly.
	stop()
	stop()
}

func TestWatchStopFromInsideCallback(t *testing.T) {
	getter := &scriptedGetter{script: []fetchResult{{status: rules.StatusActive}}}

	var mu sync.Mutex
	count := 0
	var stop func()
	ready := make(chan struct{})

	w := New(getter, Options{Interval: 5 * time.Millisecond})
	stop = w.Watch(context.Background(), "req-1", func(req *request.PaymentRequest, err error) {
		<-ready
		mu.Lock()
		count++
		mu.Unlock()
		stop()
	})
	close(ready)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, time.Second, time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, getter.fetchCount())
}

func TestWatchRetriesAfterFailure(t *testing.T) {
	getter := &scriptedGetter{script: []fetchResult{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{status: rules.StatusCompleted},
	}}
	rec := &recorder{}

	w := New(getter, Options{Interval: 10 * time.Millisecond})
	stop := w.Watch(context.Background(), "req-1", rec.onUpdate)
	defer stop()

	require.Eventually(t, func() bool { return rec.count() == 3 }, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Error(t, rec.updates[0].err)
	assert.Error(t, rec.updates[1].err)
	assert.Equal(t, rules.StatusCompleted, rec.updates[2].status)
}

func TestWatchMaxFailuresCutoff(t *testing.T) {
	getter := &scriptedGetter{script: []fetchResult{{err: errors.New("gone")}}}
	rec := &recorder{}

	w := New(getter, Options{Interval: 5 * time.Millisecond, MaxFailures: 3})
	stop := w.Watch(context.Background(), "req-1", rec.onUpdate)
	defer stop()

	require.Eventually(t, func() bool { return rec.count() == 3 }, time.Second, time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, getter.fetchCount())
}

func TestWatchContextCancellation(t *testing.T) {
	getter := &scriptedGetter{script: []fetchResult{{status: rules.StatusActive}}}
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	w := New(getter, Options{Interval: 20 * time.Millisecond})
	stop := w.Watch(ctx, "req-1", rec.onUpdate)
	defer stop()

	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, time.Millisecond)
	cancel()

	fetched := getter.fetchCount()
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, getter.fetchCount(), fetched+1)
}
