package html2pdf

import "io"

// WriterSource yields short-lived handles to the real output destination.
// Several backends only discover or finalize the true destination after
// part of the conversion has run, and the same logical destination may be
// borrowed by a background goroutine and later by the caller, so the
// concrete writer is obtained on demand rather than up front.
//
// A handle is valid for one acquisition: finish with it before the next
// Writer call and never retain it. Nothing enforces exclusivity beyond
// this rule; two concurrently held handles to the same destination would
// interleave their writes.
type WriterSource interface {
	// Writer returns a handle to the destination, or an error if the
	// destination cannot currently be produced.
	Writer() (io.Writer, error)
}

// singleWriter hands out transient handles to one already-owned writer.
type singleWriter struct {
	w io.Writer
}

// NewWriterSource wraps an already-owned writer. Every acquisition yields
// the same underlying writer.
func NewWriterSource(w io.Writer) WriterSource {
	return &singleWriter{w: w}
}

func (s *singleWriter) Writer() (io.Writer, error) { return s.w, nil }

// WriterSourceFunc adapts a factory function to WriterSource; the function
// is invoked on every acquisition. Use it for destinations that must be
// freshly obtained or reconstructed each time, such as a resource that only
// exists after setup completes.
type WriterSourceFunc func() (io.Writer, error)

func (f WriterSourceFunc) Writer() (io.Writer, error) { return f() }
