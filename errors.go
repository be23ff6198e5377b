package html2pdf

import "errors"

// Sentinel errors for the conversion core.
var (
	// ErrSinkCompleted reports a protocol violation: writing to a sink
	// whose Complete has already run, or completing it a second time.
	ErrSinkCompleted = errors.New("sink already completed")

	// ErrWriterUnavailable wraps failures to acquire a writer handle from
	// a WriterSource.
	ErrWriterUnavailable = errors.New("output writer unavailable")

	// ErrConversion is the root error for backend conversion failures.
	// Adapters wrap it so callers can match any conversion failure with
	// errors.Is regardless of backend.
	ErrConversion = errors.New("conversion failed")
)
