// Package weasyprint converts HTML to PDF by invoking the WeasyPrint
// command line tool (a Python install: pip install weasyprint). The
// document streams to the tool's stdin and the PDF streams from its stdout
// to the destination. WeasyPrint honors CSS paged-media rules, which makes
// it the backend of choice for print stylesheets.
package weasyprint

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/process"
)

// Compile-time interface check.
var _ html2pdf.Backend = (*Backend)(nil)

// Sentinel errors for tool invocation failures.
var (
	ErrNotInstalled = errors.New("weasyprint not found in PATH")
	ErrTimedOut     = errors.New("weasyprint timed out")
)

// DefaultPath is the tool binary looked up in PATH.
const DefaultPath = "weasyprint"

// defaultTimeout bounds one conversion. WeasyPrint lays pages out in
// Python and is noticeably slower than the other backends.
const defaultTimeout = 120 * time.Second

// Backend converts HTML to PDF through a WeasyPrint subprocess per
// conversion. It is stateless and safe for concurrent use.
type Backend struct {
	path    string
	args    []string
	timeout time.Duration
}

// Option configures a Backend.
type Option func(*Backend)

// WithPath overrides the tool binary (name in PATH or absolute path).
func WithPath(path string) Option {
	return func(b *Backend) { b.path = path }
}

// WithArgs appends extra command line arguments, e.g. "--media-type", "print".
func WithArgs(args ...string) Option {
	return func(b *Backend) { b.args = append(b.args, args...) }
}

// WithTimeout bounds one conversion; on expiry the tool's process group is
// killed. Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("weasyprint: WithTimeout duration must be positive")
	}
	return func(b *Backend) { b.timeout = d }
}

// New creates a Backend with default configuration.
func New(opts ...Option) *Backend {
	b := &Backend{
		path:    DefaultPath,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// buildArgs assembles the tool's argv: options, then "- -" to read HTML
// from stdin and write the PDF to stdout.
func (b *Backend) buildArgs() []string {
	return append(append([]string{}, b.args...), "-", "-")
}

// Start begins one conversion. The tool's presence is checked up front so
// a missing install fails before any bytes are written.
func (b *Backend) Start(scope html2pdf.Scope, out html2pdf.WriterSource) (html2pdf.Sink, error) {
	path, err := exec.LookPath(b.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}

	return html2pdf.NewStreamSink(scope, func(r io.Reader) (html2pdf.WriterSource, error) {
		w, err := out.Writer()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", html2pdf.ErrWriterUnavailable, err)
		}
		if err := process.Run(path, b.buildArgs(), b.timeout, r, w); err != nil {
			if errors.Is(err, process.ErrTimedOut) {
				return nil, fmt.Errorf("%w: %v", ErrTimedOut, err)
			}
			return nil, fmt.Errorf("%w: %v", html2pdf.ErrConversion, err)
		}
		return out, nil
	}), nil
}
