// Package html2pdf provides a pluggable facade for HTML to PDF conversion.
//
// Callers write a document's bytes into a [Sink] and complete it to obtain
// the converted output; the actual conversion is delegated to one of
// several interchangeable backends (headless Chrome, external CLI tools, an
// in-process layout engine). The package itself implements no document
// format: it owns the plumbing every backend shares — goroutine scopes,
// deferred output writers, and a pipe-based streaming bridge with a strict
// completion protocol.
//
// # Quick Start
//
// For a whole document held in memory, use the one-shot helper:
//
//	var out bytes.Buffer
//	err := html2pdf.Convert(chromepdf.New(), htmlBytes, &out)
//
// # The Sink Protocol
//
// A backend's Start returns a [Sink]. Write zero or more byte chunks, then
// call Complete exactly once; its result (or failure) is definitive:
//
//	err := html2pdf.Scoped(func(scope html2pdf.Scope) error {
//	    sink, err := backend.Start(scope, html2pdf.NewWriterSource(&out))
//	    if err != nil {
//	        return err
//	    }
//	    if _, err := io.Copy(sink, document); err != nil {
//	        return err
//	    }
//	    _, err = sink.Complete()
//	    return err
//	})
//
// Completing a sink twice, or writing after completion, fails with
// [ErrSinkCompleted].
//
// # Scopes
//
// Background conversion work runs on goroutines obtained from a [Scope].
// [Scoped] bounds their lifetime to one call: every spawned goroutine is
// joined before Scoped returns. [Detached] spawns free-running goroutines
// for library entry points that have no enclosing block to tie work to.
//
// # Streaming
//
// Streaming backends bridge the caller to a background consumer through
// [StreamTo]. The pipe applies backpressure, so a large document is never
// buffered wholesale; the write end is always closed before the consumer
// is joined, which is what keeps the final read from deadlocking.
//
// # Backends
//
// Conversion backends live in sibling packages: chromepdf (headless Chrome
// via go-rod), wkhtml (wkhtmltopdf subprocess), weasyprint (WeasyPrint
// subprocess), and minpdf (pure Go, no external tools). The markdown
// package wraps any of them with a Markdown front-end.
package html2pdf
