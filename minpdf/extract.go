package minpdf

import (
	"html"
	"strings"
)

// Layout limits for the built-in engine.
const (
	// maxLineChars approximates the glyph count that fits one line of
	// Helvetica at bodyFontSize inside the page margins.
	maxLineChars = 88
)

// blockTags force a line break when opened or closed.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"ul": true, "ol": true, "table": true, "section": true,
	"article": true, "header": true, "footer": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "hr": true,
}

// hiddenTags have their entire content dropped.
var hiddenTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
}

// extractText strips markup from an HTML document and returns wrapped text
// lines ready for layout. Entity references are decoded; whitespace inside
// a paragraph collapses to single spaces.
func extractText(doc []byte) []string {
	var (
		paras   []string
		current strings.Builder
		hidden  string // name of the hidden tag being skipped, if any
	)

	flush := func() {
		text := collapseSpaces(html.UnescapeString(current.String()))
		current.Reset()
		if text != "" {
			paras = append(paras, text)
		}
	}

	s := string(doc)
	for i := 0; i < len(s); {
		if s[i] != '<' {
			if hidden == "" {
				current.WriteByte(s[i])
			}
			i++
			continue
		}

		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			// Unterminated tag: treat the rest as text.
			if hidden == "" {
				current.WriteString(s[i:])
			}
			break
		}
		name, closing := tagName(s[i+1 : i+end])
		i += end + 1

		switch {
		case hidden != "":
			if closing && name == hidden {
				hidden = ""
			}
		case hiddenTags[name]:
			if !closing {
				hidden = name
			}
		case blockTags[name]:
			flush()
		default:
			// Inline tag: word boundary, not a paragraph break.
			current.WriteByte(' ')
		}
	}
	flush()

	var lines []string
	for _, p := range paras {
		lines = append(lines, wrapLine(p, maxLineChars)...)
	}
	return lines
}

// tagName extracts the lowercase element name from raw tag innards,
// reporting whether it is a closing tag.
func tagName(raw string) (name string, closing bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "/") {
		closing = true
		raw = raw[1:]
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '/' {
			raw = raw[:i]
			break
		}
	}
	return strings.ToLower(raw), closing
}

// collapseSpaces trims the text and squeezes runs of whitespace into single
// spaces.
func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// wrapLine greedily wraps text at word boundaries. A single word longer
// than width is hard-broken rather than overflowing the page.
func wrapLine(text string, width int) []string {
	var (
		lines   []string
		current string
	)
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
