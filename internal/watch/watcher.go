// Package watch polls a single payment request until it reaches a terminal
// state, surfacing every observation to a subscriber.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/mzansipay/wallet/internal/request"
)

// DefaultInterval is the polling cadence used when Options leaves it unset.
const DefaultInterval = 3 * time.Second

// Getter fetches the current state of a request. *request.Service satisfies it.
type Getter interface {
	Get(ctx context.Context, id string) (*request.PaymentRequest, error)
}

// UpdateFunc receives every observation. Exactly one argument is non-nil.
type UpdateFunc func(req *request.PaymentRequest, err error)

// Options tunes a watcher.
type Options struct {
	// Interval between the settlement of one fetch and the start of the next.
	Interval time.Duration
	// MaxFailures stops the watch after this many consecutive fetch failures.
	// Zero keeps the original retry-forever behavior.
	MaxFailures int
}

// Watcher observes requests through a Getter.
type Watcher struct {
	getter Getter
	opts   Options
}

// New creates a watcher. Unset options take defaults.
func New(getter Getter, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Watcher{getter: getter, opts: opts}
}

// Watch starts polling the request and returns a stop function.
//
// The first fetch happens immediately. After a successful fetch onUpdate is
// invoked with the snapshot; polling stops once the status is terminal. After
// a failed fetch onUpdate is invoked with the error and polling continues,
// bounded only by Options.MaxFailures. The interval timer is armed only after
// the previous fetch settles, so fetches never overlap.
//
// The stop function is idempotent, is a no-op after natural termination, and
// may be called from inside onUpdate.
func (w *Watcher) Watch(ctx context.Context, id string, onUpdate UpdateFunc) (stop func()) {
	stopCh := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() { close(stopCh) })
	}

	go w.run(ctx, id, onUpdate, stopCh)
	return stop
}

func (w *Watcher) run(ctx context.Context, id string, onUpdate UpdateFunc, stopCh <-chan struct{}) {
	timer := time.NewTimer(0) // fire the first fetch immediately
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		req, err := w.getter.Get(ctx, id)

		// A stop issued while the fetch was in flight wins over its result.
		select {
		case <-stopCh:
			return
		default:
		}

		if err != nil {
			failures++
			onUpdate(nil, err)
			if w.opts.MaxFailures > 0 && failures >= w.opts.MaxFailures {
				return
			}
			timer.Reset(w.opts.Interval)
			continue
		}

		failures = 0
		onUpdate(req, nil)
		if req.Status.Terminal() {
			return
		}
		timer.Reset(w.opts.Interval)
	}
}
