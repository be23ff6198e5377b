package html2pdf

import (
	"fmt"
	"runtime"
	"sync"
)

// Scope is a capability to spawn background goroutines with defined
// lifetime rules. A bounded scope (from Scoped) joins everything it spawned
// before the enclosing call returns; a detached scope (from Detached)
// spawns free-running goroutines. Backends are written once against Scope
// and work under either.
type Scope interface {
	// Go starts fn on its own goroutine under the scope's lifetime rules.
	Go(fn func())
}

// boundedScope tracks every spawned goroutine so Scoped can join them all
// before returning.
type boundedScope struct {
	wg sync.WaitGroup
}

func (s *boundedScope) Go(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// Scoped runs fn with a scope bound to this call. Every goroutine spawned
// through the scope is joined before Scoped returns, on success, error, and
// panic paths alike. Use it when a conversion happens inside a known block
// and background work must not outlive it.
func Scoped(fn func(Scope) error) error {
	s := &boundedScope{}
	defer s.wg.Wait()
	return fn(s)
}

// detachedScope spawns free-running goroutines with no join point.
type detachedScope struct{}

func (detachedScope) Go(fn func()) { go fn() }

// Detached returns a scope whose goroutines have no enclosing join point;
// they run until their task finishes. Outcomes remain retrievable through
// the Job returned by Spawn. Use it from library entry points that have no
// surrounding Scoped call.
func Detached() Scope { return detachedScope{} }

// PanicError wraps a panic recovered from a spawned job, together with the
// goroutine stack captured at the point of the panic. It surfaces at Join
// as an ordinary error instead of crashing the joining goroutine.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("background job panicked: %v\n\n%s", e.Value, e.Stack)
}

func newPanicError(v any) *PanicError {
	// 8 KiB holds most stack traces; runtime.Stack truncates gracefully
	// if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: string(buf[:n])}
}

// Job owns the eventual outcome of one spawned background task: either the
// task's value or its failure. The outcome is consumed by a single Join.
type Job[T any] struct {
	ch chan outcome[T]
}

type outcome[T any] struct {
	val T
	err error
}

// Spawn runs task on a goroutine obtained from scope and returns a Job
// holding its eventual outcome. A panicking task is captured as a
// *PanicError rather than crashing the process.
func Spawn[T any](scope Scope, task func() (T, error)) *Job[T] {
	j := &Job[T]{ch: make(chan outcome[T], 1)}
	scope.Go(func() {
		defer func() {
			if v := recover(); v != nil {
				var zero T
				j.ch <- outcome[T]{zero, newPanicError(v)}
			}
		}()
		v, err := task()
		j.ch <- outcome[T]{v, err}
	})
	return j
}

// Join blocks until the task finishes and returns its outcome. The outcome
// is consumed exactly once: call Join at most once per Job.
func (j *Job[T]) Join() (T, error) {
	o := <-j.ch
	return o.val, o.err
}
