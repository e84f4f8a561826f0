package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	bullet     = "•"
	listIndent = "  "
	ruleLine   = "========================================"
)

// blockText flattens one block node. The result has no trailing newline.
func blockText(n ast.Node, src []byte) string {
	switch n := n.(type) {
	case *ast.Heading:
		return strings.TrimSpace(inlineText(n, src))
	case *ast.Paragraph, *ast.TextBlock:
		return strings.TrimSpace(inlineText(n, src))
	case *ast.List:
		return listText(n, src)
	case *ast.ThematicBreak:
		return ruleLine
	case *ast.FencedCodeBlock:
		return codeText(n.Lines(), src)
	case *ast.CodeBlock:
		return codeText(n.Lines(), src)
	case *ast.Blockquote:
		return indentLines(childBlocks(n, src, "\n"), listIndent)
	case *east.Table:
		return tableText(n, src)
	case *ast.HTMLBlock:
		return ""
	default:
		return childBlocks(n, src, "\n\n")
	}
}

func childBlocks(n ast.Node, src []byte, sep string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

func listText(l *ast.List, src []byte) string {
	var lines []string
	i := 0
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := bullet
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d.", l.Start+i)
		}
		i++

		var parts []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if t := blockText(c, src); t != "" {
				parts = append(parts, t)
			}
		}
		body := strings.Join(parts, "\n")
		if body == "" {
			lines = append(lines, marker)
			continue
		}
		first, rest, hasRest := strings.Cut(body, "\n")
		lines = append(lines, marker+" "+first)
		if hasRest {
			lines = append(lines, indentLines(rest, listIndent))
		}
	}
	return strings.Join(lines, "\n")
}

func tableText(t *east.Table, src []byte) string {
	var rows []string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(inlineText(cell, src)))
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}

func codeText(lines *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// inlineText concatenates the text of n's inline children, dropping markup.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	writeInline(&b, n, src)
	return b.String()
}

func writeInline(b *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.CodeSpan:
			writeRaw(b, c, src)
		case *ast.Text:
			if c.IsRaw() {
				b.Write(c.Segment.Value(src))
			} else {
				b.Write(unescape(c.Segment.Value(src)))
			}
			if c.HardLineBreak() || c.SoftLineBreak() {
				b.WriteString("\n")
			}
		case *ast.String:
			if c.IsCode() || c.IsRaw() {
				b.Write(c.Value)
			} else {
				b.Write(unescape(c.Value))
			}
		case *ast.AutoLink:
			b.Write(c.Label(src))
		case *ast.RawHTML:
			// dropped
		case *east.TaskCheckBox:
			if c.IsChecked {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		default:
			writeInline(b, c, src)
		}
	}
}

// writeRaw copies code span text as written.
func writeRaw(b *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
		case *ast.String:
			b.Write(c.Value)
		}
	}
}

// unescape resolves backslash escapes and character references the way the
// HTML renderer does.
func unescape(v []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(v)))
}
