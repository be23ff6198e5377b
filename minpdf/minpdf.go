// Package minpdf converts HTML to PDF entirely in process.
//
// The layout model is intentionally minimal: tags are stripped, text is
// wrapped into lines of a single built-in font, and pages are emitted
// directly as PDF objects. It needs no browser and no external tool, which
// makes it the fallback backend and the one used in tests. For faithful
// rendering use the chromepdf, wkhtml, or weasyprint backends instead.
package minpdf

import (
	"fmt"
	"io"

	html2pdf "github.com/alnah/go-html2pdf"
)

// Compile-time interface check.
var _ html2pdf.Backend = (*Backend)(nil)

// Backend converts HTML to PDF using the built-in layout engine.
type Backend struct{}

// New returns the in-process backend. It is stateless and safe for
// concurrent use.
func New() *Backend { return &Backend{} }

// Start begins one conversion. The whole document is needed before layout
// can run, so the returned sink buffers in memory and converts on Complete.
func (b *Backend) Start(_ html2pdf.Scope, out html2pdf.WriterSource) (html2pdf.Sink, error) {
	return html2pdf.NewBufferSink(out, func(doc []byte, w io.Writer) error {
		lines := extractText(doc)
		if err := writePDF(w, lines); err != nil {
			return fmt.Errorf("%w: %v", html2pdf.ErrConversion, err)
		}
		return nil
	}), nil
}
