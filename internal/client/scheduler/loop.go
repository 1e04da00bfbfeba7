// Package scheduler runs client state changes on a single cooperative loop.
//
// All state mutation happens inside closures executed one at a time by the
// loop goroutine. Blocking work, such as a remote call, is spawned as a Task
// that runs off the loop and hands its reconciliation back to it. Tasks that
// share a key supersede each other: spawning a new one cancels the previous
// token and the previous result is discarded when it arrives.
package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Task performs blocking work off the loop. The returned closure, when
// non-nil, is executed on the loop unless the task was superseded,
// cancelled, or the loop stopped in the meantime.
type Task func(ctx context.Context) (reconcile func())

type token struct {
	id     string
	key    string
	cancel context.CancelFunc
}

// Loop is a single-goroutine event loop with cancellable tasks.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []func()
	closed  bool
	current map[string]*token

	wake    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	pending sync.WaitGroup
}

// New starts a Loop. Call Stop to release it.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		logger:  logger,
		current: make(map[string]*token),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post queues fn for execution on the loop. It reports false when the loop
// has already stopped.
func (l *Loop) Post(fn func()) bool {
	l.pending.Add(1)
	if !l.enqueue(func() {
		defer l.pending.Done()
		fn()
	}) {
		l.pending.Done()
		return false
	}
	return true
}

// Spawn runs task in its own goroutine under a fresh cancellation token and
// returns the token id. An empty key gives the task a token of its own;
// otherwise any earlier task with the same key is cancelled and its result
// dropped.
func (l *Loop) Spawn(key string, task Task) string {
	ctx, cancel := context.WithCancel(l.ctx)
	tok := &token{id: uuid.NewString(), key: key, cancel: cancel}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		cancel()
		return tok.id
	}
	if key != "" {
		if prev, ok := l.current[key]; ok {
			prev.cancel()
			l.logger.Debug("task superseded", slog.String("key", key), slog.String("task", prev.id))
		}
		l.current[key] = tok
	}
	l.mu.Unlock()

	l.pending.Add(1)
	go func() {
		reconcile := task(ctx)
		posted := l.enqueue(func() {
			defer l.pending.Done()
			defer cancel()
			if !l.release(tok) || ctx.Err() != nil {
				l.logger.Debug("discarding stale task result", slog.String("key", key), slog.String("task", tok.id))
				return
			}
			if reconcile != nil {
				reconcile()
			}
		})
		if !posted {
			cancel()
			l.pending.Done()
		}
	}()
	return tok.id
}

// Cancel cancels the in-flight task registered under key, if any.
func (l *Loop) Cancel(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tok, ok := l.current[key]; ok {
		tok.cancel()
		delete(l.current, key)
	}
}

// InFlight reports whether a task registered under key has not completed.
func (l *Loop) InFlight(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.current[key]
	return ok
}

// Wait blocks until every posted closure and spawned task has finished,
// including work they schedule in turn.
func (l *Loop) Wait() {
	l.pending.Wait()
}

// Stop cancels outstanding tasks, stops the loop goroutine and drops queued
// closures. It is safe to call more than once but must not be called from
// the loop itself.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.stopped
		return
	}
	l.closed = true
	for key, tok := range l.current {
		tok.cancel()
		delete(l.current, key)
	}
	l.mu.Unlock()

	l.cancel()
	<-l.stopped

	l.mu.Lock()
	dropped := l.queue
	l.queue = nil
	l.mu.Unlock()
	for range dropped {
		l.pending.Done()
	}
}

// release clears tok from the key registry and reports whether it was
// still the current token for its key.
func (l *Loop) release(tok *token) bool {
	if tok.key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current[tok.key] != tok {
		return false
	}
	delete(l.current, tok.key)
	return true
}

func (l *Loop) enqueue(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		if l.ctx.Err() != nil {
			return
		}
		if fn, ok := l.next(); ok {
			fn()
			continue
		}
		select {
		case <-l.wake:
		case <-l.ctx.Done():
			return
		}
	}
}
