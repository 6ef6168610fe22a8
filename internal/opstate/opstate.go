// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opstate tracks long-running user operations (search, export).
// Each operation is a small state machine with a busy flag that rejects
// re-entrant calls and is always cleared when the work finishes.
package opstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/healthdash/pkg/types"
)

// ErrBusy is returned when an operation is started while it is running.
var ErrBusy = errors.New("operation already in progress")

// State is the lifecycle position of an operation.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Snapshot is a point-in-time view of an operation.
type Snapshot struct {
	Name    string
	State   State
	Phase   string
	Err     error
	Started time.Time
	Ended   time.Time
}

// Busy reports whether the operation was running at snapshot time.
func (s Snapshot) Busy() bool { return s.State == StateRunning }

// Observer is notified of every state or phase change.
type Observer func(Snapshot)

// Operation is one named operation. The zero value is not usable; use New.
type Operation struct {
	name string
	sem  *semaphore.Weighted

	mu        sync.Mutex
	snap      Snapshot
	observers []Observer
	notices   *Notices
	now       func() time.Time
}

// New creates an idle operation that publishes notices to n (may be nil).
func New(name string, n *Notices) *Operation {
	return &Operation{
		name:    name,
		sem:     semaphore.NewWeighted(1),
		snap:    Snapshot{Name: name, State: StateIdle},
		notices: n,
		now:     time.Now,
	}
}

// Name returns the operation name.
func (o *Operation) Name() string { return o.name }

// Observe registers fn for state changes.
func (o *Operation) Observe(fn Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Snapshot returns the current state.
func (o *Operation) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Busy reports whether the operation is running.
func (o *Operation) Busy() bool {
	return o.Snapshot().Busy()
}

// Run executes fn if the operation is idle, otherwise returns ErrBusy
// without disturbing the running call. The operation moves to running,
// then to succeeded or failed, then back to idle before Run returns. The
// busy flag is released even when fn panics. A failure publishes one error
// notice.
func (o *Operation) Run(ctx context.Context, fn func(ctx context.Context, phase func(string)) error) (err error) {
	if !o.sem.TryAcquire(1) {
		return ErrBusy
	}
	defer o.sem.Release(1)

	o.transition(func(s *Snapshot) {
		*s = Snapshot{Name: o.name, State: StateRunning, Started: o.now()}
	})

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", o.name, r)
		}
		o.transition(func(s *Snapshot) {
			s.Ended = o.now()
			s.Phase = ""
			s.Err = err
			s.State = StateSucceeded
			if err != nil {
				s.State = StateFailed
			}
		})
		if err != nil {
			o.notices.Push(types.Notice{Level: types.NoticeError, Message: errorMessage(o.name, err)})
		}
		o.transition(func(s *Snapshot) { s.State = StateIdle })
	}()

	return fn(ctx, func(phase string) {
		o.transition(func(s *Snapshot) { s.Phase = phase })
	})
}

func (o *Operation) transition(update func(*Snapshot)) {
	o.mu.Lock()
	update(&o.snap)
	snap := o.snap
	observers := append([]Observer(nil), o.observers...)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func errorMessage(name string, err error) string {
	if errors.Is(err, context.Canceled) {
		return name + " cancelled"
	}
	return name + " failed: " + err.Error()
}

// Notices is a bounded FIFO of user-facing notices, the toast queue.
type Notices struct {
	mu    sync.Mutex
	items []types.Notice
	limit int
}

// NewNotices creates a queue keeping at most limit notices; older ones are
// dropped first. limit <= 0 keeps 50.
func NewNotices(limit int) *Notices {
	if limit <= 0 {
		limit = 50
	}
	return &Notices{limit: limit}
}

// Push appends n. A nil queue discards it.
func (q *Notices) Push(n types.Notice) {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if over := len(q.items) - q.limit; over > 0 {
		q.items = append(q.items[:0:0], q.items[over:]...)
	}
}

// Info, Success, Warn and Error push a notice of that level.
func (q *Notices) Info(msg string)    { q.Push(types.Notice{Level: types.NoticeInfo, Message: msg}) }
func (q *Notices) Success(msg string) { q.Push(types.Notice{Level: types.NoticeSuccess, Message: msg}) }
func (q *Notices) Warn(msg string)    { q.Push(types.Notice{Level: types.NoticeWarning, Message: msg}) }
func (q *Notices) Error(msg string)   { q.Push(types.Notice{Level: types.NoticeError, Message: msg}) }

// Drain returns and clears all queued notices.
func (q *Notices) Drain() []types.Notice {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued notices.
func (q *Notices) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
