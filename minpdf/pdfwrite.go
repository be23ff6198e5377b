package minpdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Page geometry in PDF points (US Letter).
const (
	pageWidth    = 612
	pageHeight   = 792
	pageMargin   = 72
	bodyFontSize = 11
	lineLeading  = 14
)

// linesPerPage is derived from the printable height.
const linesPerPage = (pageHeight - 2*pageMargin) / lineLeading

// writePDF lays the text lines out into pages and emits a complete PDF
// document: catalog, page tree, one Type1 Helvetica font, one content
// stream per page, cross-reference table and trailer.
func writePDF(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		lines = []string{""}
	}

	var pages [][]string
	for start := 0; start < len(lines); start += linesPerPage {
		end := min(start+linesPerPage, len(lines))
		pages = append(pages, lines[start:end])
	}

	// Object numbering: 1 catalog, 2 page tree, 3 font, then for each
	// page a page object followed by its content stream.
	pageObj := func(i int) int { return 4 + 2*i }
	contentObj := func(i int) int { return 5 + 2*i }
	objCount := 3 + 2*len(pages)

	var buf bytes.Buffer
	offsets := make([]int, objCount+1)

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")

	var kids strings.Builder
	for i := range pages {
		fmt.Fprintf(&kids, "%d 0 R ", pageObj(i))
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.TrimSpace(kids.String()), len(pages)))

	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, page := range pages {
		writeObj(pageObj(i), fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, contentObj(i)))

		stream := contentStream(page)
		writeObj(contentObj(i), fmt.Sprintf(
			"<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= objCount; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		objCount+1, xrefOffset)

	_, err := w.Write(buf.Bytes())
	return err
}

// contentStream renders one page's lines as a PDF text object.
func contentStream(lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BT\n/F1 %d Tf\n%d TL\n%d %d Td\n",
		bodyFontSize, lineLeading, pageMargin, pageHeight-pageMargin-bodyFontSize)
	for _, line := range lines {
		fmt.Fprintf(&b, "(%s) Tj T*\n", escapeString(line))
	}
	b.WriteString("ET\n")
	return b.String()
}

// escapeString escapes the characters with meaning inside PDF literal
// strings. Bytes outside Latin-1 are emitted as-is; the built-in font
// renders what it can.
func escapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
