// Package markdown wraps any html2pdf backend with a Markdown front-end:
// the sink accepts Markdown, converts it to a standalone HTML5 document
// with goldmark (GFM, footnotes, syntax highlighting), and feeds the HTML
// into the wrapped backend's sink.
package markdown

import (
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	html2pdf "github.com/alnah/go-html2pdf"
)

// Compile-time interface checks.
var (
	_ html2pdf.Backend = (*Backend)(nil)
	_ html2pdf.Sink    = (*frontendSink)(nil)
)

// ErrRender indicates Markdown to HTML conversion failed.
var ErrRender = errors.New("markdown rendering failed")

// utf8BOM is stripped from the buffered source before rendering; goldmark
// would otherwise treat a BOM-prefixed heading as paragraph text.
const utf8BOM = "\xEF\xBB\xBF"

// htmlTemplate wraps goldmark's fragment output in a complete HTML5
// document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document</title>
</head>
<body>
%s
</body>
</html>`

// Backend converts Markdown by rendering it to HTML and delegating the
// PDF conversion to an inner backend.
type Backend struct {
	inner html2pdf.Backend
	md    goldmark.Markdown
	css   string
}

// Option configures a Backend.
type Option func(*Backend)

// WithCSS injects a stylesheet into the generated HTML's head.
func WithCSS(css string) Option {
	return func(b *Backend) { b.css = css }
}

// New wraps inner with the Markdown front-end, configured with GFM
// extensions and class-based syntax highlighting.
func New(inner html2pdf.Backend, opts ...Option) *Backend {
	if inner == nil {
		panic("markdown: nil inner backend")
	}
	b := &Backend{
		inner: inner,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,      // Tables, strikethrough, autolinks, task lists
				extension.Footnote, // [^1] footnotes
				highlighting.NewHighlighting(
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true), // CSS classes, styled by the injected stylesheet
					),
				),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(), // Treat newlines as <br>
				html.WithXHTML(),     // Self-closing tags
			),
		),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start begins one conversion by starting the inner backend and wrapping
// its sink. Markdown is written into the returned sink; the rendered HTML
// reaches the inner sink at Complete, since goldmark needs the whole
// source.
func (b *Backend) Start(scope html2pdf.Scope, out html2pdf.WriterSource) (html2pdf.Sink, error) {
	inner, err := b.inner.Start(scope, out)
	if err != nil {
		return nil, err
	}
	return &frontendSink{backend: b, inner: inner}, nil
}

// frontendSink buffers Markdown and forwards rendered HTML to the inner
// sink on Complete.
type frontendSink struct {
	backend *Backend
	inner   html2pdf.Sink
	buf     strings.Builder
	done    bool
}

func (s *frontendSink) Write(p []byte) (int, error) {
	if s.done {
		return 0, html2pdf.ErrSinkCompleted
	}
	return s.buf.Write(p)
}

// Complete renders the buffered Markdown, writes the HTML document into
// the inner sink, and completes it.
func (s *frontendSink) Complete() (html2pdf.WriterSource, error) {
	if s.done {
		return nil, html2pdf.ErrSinkCompleted
	}
	s.done = true

	doc, err := s.backend.render(strings.TrimPrefix(s.buf.String(), utf8BOM))
	if err != nil {
		return nil, err
	}
	if _, err := s.inner.Write([]byte(doc)); err != nil {
		return nil, err
	}
	return s.inner.Complete()
}

// render converts Markdown source to a standalone HTML5 document with the
// backend's stylesheet injected.
func (b *Backend) render(source string) (string, error) {
	var body strings.Builder
	if err := b.md.Convert([]byte(source), &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	doc := fmt.Sprintf(htmlTemplate, body.String())
	return injectCSS(doc, b.css), nil
}

// injectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
func injectCSS(htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could close the <style> block
// prematurely.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
