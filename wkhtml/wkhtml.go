// Package wkhtml converts HTML to PDF by invoking the wkhtmltopdf command
// line tool. The document streams to the tool's stdin as it is written and
// the PDF streams from its stdout to the destination, so nothing is
// buffered wholesale. wkhtmltopdf must be installed separately.
package wkhtml

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
	ErrNotInstalled = errors.New("wkhtmltopdf not found in PATH")
	ErrTimedOut     = errors.New("wkhtmltopdf timed out")
)

// DefaultPath is the tool binary looked up in PATH.
const DefaultPath = "wkhtmltopdf"

// defaultTimeout bounds one conversion.
const defaultTimeout = 60 * time.Second

// Backend converts HTML to PDF through a wkhtmltopdf subprocess per
// conversion. It is stateless and safe for concurrent use.
type Backend struct {
	path    string
	args    []string
	quiet   bool
	timeout time.Duration
}

// Option configures a Backend.
type Option func(*Backend)

// WithPath overrides the tool binary (name in PATH or absolute path).
func WithPath(path string) Option {
	return func(b *Backend) { b.path = path }
}

// WithArgs appends extra command line arguments, e.g. "--page-size", "A4".
func WithArgs(args ...string) Option {
	return func(b *Backend) { b.args = append(b.args, args...) }
}

// WithQuiet controls the --quiet flag (default on, suppressing the tool's
// progress output so stderr carries only real diagnostics).
func WithQuiet(quiet bool) Option {
	return func(b *Backend) { b.quiet = quiet }
}

// WithTimeout bounds one conversion; on expiry the tool's process group is
// killed. Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("wkhtml: WithTimeout duration must be positive")
	}
	return func(b *Backend) { b.timeout = d }
}

// New creates a Backend with default configuration.
func New(opts ...Option) *Backend {
	b := &Backend{
		path:    DefaultPath,
		quiet:   true,
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
	var args []string
	if b.quiet {
		args = append(args, "--quiet")
	}
	args = append(args, b.args...)
	return append(args, "-", "-")
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
