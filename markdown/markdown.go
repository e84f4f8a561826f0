// Package markdown converts model output (loosely formatted Markdown) into
// HTML for printing/PDF and into plain text for .txt export.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	// NoContentHTMLPrefix marks the HTML returned when nothing could be rendered.
	NoContentHTMLPrefix = "<p>Tidak ada konten"
	NoContentHTML       = NoContentHTMLPrefix + " RPP yang dapat ditampilkan.</p>"

	// NoContentMarker is contained in the plain text returned when nothing could be rendered.
	NoContentMarker = "Tidak ada konten RPP"
	NoContentText   = NoContentMarker + " yang dapat diekspor."
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

var (
	openFenceRe = regexp.MustCompile("^```[A-Za-z]*$")
	omittedRe   = regexp.MustCompile(`<!-- raw HTML omitted -->`)
)

// Clean normalises line endings and drops a code fence wrapping the whole
// document, which models tend to add despite being told not to.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) >= 2 && openFenceRe.MatchString(strings.TrimSpace(lines[0])) &&
		strings.TrimSpace(lines[len(lines)-1]) == "```" {
		s = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return s
}

// ToHTML renders s as an HTML fragment. It never fails: blank or
// unrenderable input yields NoContentHTML.
func ToHTML(s string) string {
	src := Clean(s)
	if src == "" {
		return NoContentHTML
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return NoContentHTML
	}
	out := strings.TrimSpace(buf.String())
	if strings.TrimSpace(omittedRe.ReplaceAllString(out, "")) == "" {
		return NoContentHTML
	}
	return normalizeForPrint(out)
}

// ToPlainText strips Markdown markers from s. Blank input yields NoContentText.
func ToPlainText(s string) string {
	src := []byte(Clean(s))
	if len(src) == 0 {
		return NoContentText
	}
	doc := md.Parser().Parse(text.NewReader(src))
	var blocks []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if b := blockText(c, src); b != "" {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		return NoContentText
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

var (
	tableOpenRe = regexp.MustCompile(`<table>`)
	cellOpenRe  = regexp.MustCompile(`<(t[hd])(\s+style="[^"]*")?>`)
)

// Print renderers ignore most stylesheet defaults for tables, so borders and
// padding are written onto the elements.
func normalizeForPrint(html string) string {
	html = tableOpenRe.ReplaceAllString(html, `<table style="border-collapse:collapse;width:100%;margin:0.8em 0;">`)
	html = cellOpenRe.ReplaceAllStringFunc(html, func(tag string) string {
		parts := cellOpenRe.FindStringSubmatch(tag)
		style := "border:1px solid #94a3b8;padding:6px 8px;vertical-align:top;"
		if parts[2] != "" {
			existing := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(parts[2]), `style="`), `"`)
			style = existing + ";" + style
		}
		return "<" + parts[1] + ` style="` + style + `">`
	})
	return html
}
