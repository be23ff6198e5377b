// Package chromepdf converts HTML to PDF with headless Chrome over the
// DevTools protocol, via go-rod. Rod downloads a managed Chromium on first
// run if no browser is found; set ROD_NO_SANDBOX=1 in containers and
// ROD_BROWSER_BIN to pin a specific binary.
package chromepdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	html2pdf "github.com/alnah/go-html2pdf"
)

// Compile-time interface checks.
var (
	_ html2pdf.Backend = (*Backend)(nil)
	_ Renderer         = (*rodRenderer)(nil)
)

// Sentinel errors for PDF rendering failures.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// defaultTimeout bounds one page load plus print.
const defaultTimeout = 30 * time.Second

// Renderer abstracts the browser round trip to enable testing without
// Chrome.
type Renderer interface {
	// Render opens the HTML document and returns the printed PDF bytes.
	Render(html []byte, settings *PageSettings) ([]byte, error)

	// Close releases the browser.
	Close() error
}

// Backend converts HTML to PDF through a reusable headless Chrome
// instance. Create with New, use as an html2pdf.Backend, and Close when
// done to release the browser.
type Backend struct {
	settings *PageSettings
	timeout  time.Duration
	renderer Renderer
}

// Option configures a Backend.
type Option func(*Backend)

// WithPageSettings sets the page size, orientation, and margins. Settings
// are validated at Start.
func WithPageSettings(s *PageSettings) Option {
	return func(b *Backend) { b.settings = s }
}

// WithTimeout bounds each page load and print. It applies to the built-in
// browser renderer regardless of option order; custom renderers manage
// their own deadlines.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("chromepdf: WithTimeout duration must be positive")
	}
	return func(b *Backend) { b.timeout = d }
}

// WithRenderer replaces the browser renderer (for tests).
func WithRenderer(r Renderer) Option {
	if r == nil {
		panic("chromepdf: nil Renderer in WithRenderer")
	}
	return func(b *Backend) { b.renderer = r }
}

// New creates a Backend with default configuration. The browser is
// connected lazily on the first conversion. The renderer is constructed
// after options are applied so the configured timeout always reaches it.
func New(opts ...Option) *Backend {
	b := &Backend{
		settings: DefaultPageSettings(),
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		b.renderer = &rodRenderer{timeout: b.timeout}
	}
	return b
}

// Start begins one conversion. Chrome needs the whole document before it
// can print, so the returned sink buffers in memory and performs the
// browser round trip on Complete.
func (b *Backend) Start(_ html2pdf.Scope, out html2pdf.WriterSource) (html2pdf.Sink, error) {
	if err := b.settings.Validate(); err != nil {
		return nil, err
	}
	settings := b.settings
	if settings == nil {
		settings = DefaultPageSettings()
	}

	return html2pdf.NewBufferSink(out, func(doc []byte, w io.Writer) error {
		pdf, err := b.renderer.Render(doc, settings)
		if err != nil {
			return fmt.Errorf("%w: %v", html2pdf.ErrConversion, err)
		}
		_, err = w.Write(pdf)
		return err
	}), nil
}

// Close releases the browser.
func (b *Backend) Close() error {
	return b.renderer.Close()
}

// rodRenderer drives headless Chrome through go-rod, reusing one browser
// connection across conversions.
type rodRenderer struct {
	timeout time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

// connect returns the shared browser, connecting on first use. Callers
// hold r.mu.
func (r *rodRenderer) connect() (*rod.Browser, error) {
	if r.browser != nil {
		return r.browser, nil
	}
	browser := rod.New()
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	return browser, nil
}

// Render loads the document from a temp file and prints it to PDF with the
// requested page geometry.
func (r *rodRenderer) Render(html []byte, settings *PageSettings) ([]byte, error) {
	tmpPath, cleanup, err := writeTempHTML(html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	r.mu.Lock()
	defer r.mu.Unlock()

	browser, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	if err := page.Timeout(r.timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	width, height := settings.paperDimensions()
	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(settings.Margin),
		MarginBottom:    floatPtr(settings.Margin),
		MarginLeft:      floatPtr(settings.Margin),
		MarginRight:     floatPtr(settings.Margin),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close disconnects the shared browser, if one was ever connected.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

// writeTempHTML creates a temporary file with the HTML document.
// Returns the file path and a cleanup function to remove the file.
func writeTempHTML(html []byte) (path string, cleanup func(), err error) {
	tmpFile, err := os.CreateTemp("", "go-html2pdf-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := tmpFile.Write(html); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}
	return path, cleanup, nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
