package html2pdf

import (
	"bytes"
	"fmt"
	"io"
)

// Sink accepts a document's bytes through ordinary writes, followed by
// exactly one Complete call that finishes the conversion and yields the
// destination the output was written through. A completed sink rejects
// further writes and a second Complete with ErrSinkCompleted.
//
// Distinct backends produce distinct concrete sink types; interface
// dispatch lets callers consume any of them uniformly.
type Sink interface {
	io.Writer

	// Complete finishes the conversion exactly once. Its result, or
	// failure, is definitive — the sink must not be used afterwards.
	Complete() (WriterSource, error)
}

// utf8BOM is the byte-order mark many document sources prepend and most
// converters reject.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// stripBOM removes a single leading UTF-8 byte-order mark, if present.
func stripBOM(doc []byte) []byte {
	return bytes.TrimPrefix(doc, utf8BOM)
}

// BufferSink accumulates the whole document in memory and converts it
// synchronously on Complete. Suited to backends whose conversion step needs
// the full document at once.
type BufferSink struct {
	buf     bytes.Buffer
	out     WriterSource
	convert func(doc []byte, w io.Writer) error
	done    bool
}

// NewBufferSink returns a sink that, on Complete, strips a single leading
// UTF-8 BOM and feeds the remaining bytes to convert along with a writer
// acquired from out.
func NewBufferSink(out WriterSource, convert func(doc []byte, w io.Writer) error) *BufferSink {
	return &BufferSink{out: out, convert: convert}
}

func (s *BufferSink) Write(p []byte) (int, error) {
	if s.done {
		return 0, ErrSinkCompleted
	}
	return s.buf.Write(p)
}

// Complete converts the buffered document and returns the destination.
func (s *BufferSink) Complete() (WriterSource, error) {
	if s.done {
		return nil, ErrSinkCompleted
	}
	s.done = true

	w, err := s.out.Writer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriterUnavailable, err)
	}
	if err := s.convert(stripBOM(s.buf.Bytes()), w); err != nil {
		return nil, err
	}
	return s.out, nil
}

// StreamSink feeds bytes through a pipe to a consumer spawned at
// construction, so conversion happens incrementally as the document
// arrives.
type StreamSink struct {
	stream *Stream[WriterSource]
	done   bool
}

// NewStreamSink spawns consumer through scope and returns a sink whose
// writes stream straight to it. The consumer reads the document from r
// until EOF and returns the destination it wrote the output through.
func NewStreamSink(scope Scope, consumer func(r io.Reader) (WriterSource, error)) *StreamSink {
	return &StreamSink{stream: StreamTo(scope, consumer)}
}

func (s *StreamSink) Write(p []byte) (int, error) {
	if s.done {
		return 0, ErrSinkCompleted
	}
	return s.stream.Write(p)
}

// Complete closes the stream's write end, waits for the consumer, and
// returns its result.
func (s *StreamSink) Complete() (WriterSource, error) {
	if s.done {
		return nil, ErrSinkCompleted
	}
	s.done = true
	return s.stream.Join()
}

// Abandon closes the write end without waiting for the consumer, which may
// run to completion unobserved; its result is discarded. Abandon after
// Complete is a no-op.
func (s *StreamSink) Abandon() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.stream.Close()
}

// MapError wraps s in a sink that forwards writes unmodified and transforms
// the error returned by Complete through f. Successful results pass through
// untouched.
func MapError(s Sink, f func(error) error) Sink {
	return &mapErrorSink{inner: s, f: f}
}

type mapErrorSink struct {
	inner Sink
	f     func(error) error
}

func (m *mapErrorSink) Write(p []byte) (int, error) { return m.inner.Write(p) }

func (m *mapErrorSink) Complete() (WriterSource, error) {
	out, err := m.inner.Complete()
	if err != nil {
		return nil, m.f(err)
	}
	return out, nil
}

// MapOutput wraps s in a sink that forwards writes unmodified and
// transforms the destination returned by a successful Complete through f,
// which may itself fail; that failure surfaces as the sink's own.
func MapOutput(s Sink, f func(WriterSource) (WriterSource, error)) Sink {
	return &mapOutputSink{inner: s, f: f}
}

type mapOutputSink struct {
	inner Sink
	f     func(WriterSource) (WriterSource, error)
}

func (m *mapOutputSink) Write(p []byte) (int, error) { return m.inner.Write(p) }

func (m *mapOutputSink) Complete() (WriterSource, error) {
	out, err := m.inner.Complete()
	if err != nil {
		return nil, err
	}
	return m.f(out)
}
