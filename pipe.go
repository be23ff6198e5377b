package html2pdf

import "io"

// Stream bridges a producer to a consumer running on another goroutine
// through an in-process pipe. The producer writes on its own goroutine
// while the consumer reads until EOF. Writes block until the consumer
// drains earlier data, so a whole document is never buffered in memory and
// flow control falls out of the pipe's own semantics; no extra lock guards
// the bridge.
type Stream[R any] struct {
	pw     *io.PipeWriter
	job    *Job[R]
	closed bool
}

// StreamTo creates a fresh pipe, spawns consumer through scope with the
// read end, and returns a Stream wrapping the write end. When the consumer
// returns, the read end is closed with the consumer's error so a producer
// still blocked in Write is released even if the consumer stopped reading
// early.
func StreamTo[R any](scope Scope, consumer func(io.Reader) (R, error)) *Stream[R] {
	pr, pw := io.Pipe()
	job := Spawn(scope, func() (v R, err error) {
		defer func() { _ = pr.CloseWithError(err) }()
		return consumer(pr)
	})
	return &Stream[R]{pw: pw, job: job}
}

// Write sends bytes to the consumer, blocking until it accepts them. After
// the consumer has returned, Write reports the consumer's error.
func (s *Stream[R]) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

// Close closes the write end without retrieving the consumer's outcome. A
// consumer blocked in read observes EOF and may run to completion
// unobserved; its result is discarded. Callers wanting the outcome must use
// Join instead. Close after Join is a no-op.
func (s *Stream[R]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.pw.Close()
}

// Join closes the write end, then waits for the consumer and returns its
// outcome. The order is load-bearing: the consumer's final read only
// returns once it observes EOF, which requires the write end to be closed,
// so joining before closing would deadlock.
func (s *Stream[R]) Join() (R, error) {
	_ = s.Close()
	return s.job.Join()
}
