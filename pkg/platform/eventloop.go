package platform

import (
	"context"
	"sync"

	"github.com/go-drift/notification/pkg/errors"
)

// Loop is a single-threaded coordinator: callbacks posted to it run one at a
// time, in posting order, on the goroutine that calls Run. Posting never
// blocks, so hosts may post from their own goroutines and handlers may post
// from inside the loop.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

// NewLoop creates an idle loop. Call Run to start processing.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues a callback. It returns false if the loop has been closed or
// the callback is nil.
func (l *Loop) Post(callback func()) bool {
	if callback == nil {
		return false
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, callback)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Install registers the loop as the platform dispatch function.
func (l *Loop) Install() {
	RegisterDispatch(func(callback func()) { l.Post(callback) })
}

// Close stops accepting callbacks. Run returns once the callbacks already
// queued have run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes callbacks until ctx is done or the loop is closed and
// drained. It returns ctx.Err() when the context ended the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			callback, ok := l.next()
			if !ok {
				break
			}
			l.run(callback)
		}

		l.mu.Lock()
		done := l.closed && len(l.queue) == 0
		l.mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	callback := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return callback, true
}

func (l *Loop) run(callback func()) {
	defer errors.Recover("platform.Loop")
	callback()
}
