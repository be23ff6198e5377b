package html2pdf

import "io"

// Backend starts conversions. It is the whole contract between the core
// and an adapter: Start returns a Sink that accepts the raw document bytes
// and, when completed, performs its conversion-specific action exactly once
// — a subprocess invocation, a browser round trip, an in-process
// computation — then returns the populated destination or a descriptive
// failure. The core defines no file format and no command-line surface;
// those belong to the adapters.
type Backend interface {
	// Start begins one conversion. Background work runs on goroutines
	// obtained from scope; the finished output is written through out.
	Start(scope Scope, out WriterSource) (Sink, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(scope Scope, out WriterSource) (Sink, error)

func (f BackendFunc) Start(scope Scope, out WriterSource) (Sink, error) {
	return f(scope, out)
}

// Convert runs one whole conversion: it starts backend inside a bounded
// scope, writes doc into the sink, and completes it, with the converted
// output written to w. Convenience for callers holding the document in
// memory; streaming callers should drive the Sink themselves.
func Convert(backend Backend, doc []byte, w io.Writer) error {
	return Scoped(func(scope Scope) error {
		sink, err := backend.Start(scope, NewWriterSource(w))
		if err != nil {
			return err
		}
		if _, err := sink.Write(doc); err != nil {
			return err
		}
		_, err = sink.Complete()
		return err
	})
}
