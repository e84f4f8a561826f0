package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SectionContent is one node of the outline rebuilt from a plan's headings.
type SectionContent struct {
	Title        string           `json:"title"`
	Level        int              `json:"level"`
	ContentLines []string         `json:"content_lines"`
	SubSections  []SectionContent `json:"sub_sections,omitempty"`
}

type outlineNode struct {
	title    string
	level    int
	lines    []string
	children []*outlineNode
}

// BuildOutline nests the document's top-level blocks under their headings.
// Content before the first heading lands in an untitled level-0 section.
// The result is always a tree; nil for blank input.
func BuildOutline(s string) []SectionContent {
	src := []byte(Clean(s))
	if len(src) == 0 {
		return nil
	}
	doc := md.Parser().Parse(text.NewReader(src))

	root := &outlineNode{level: -1}
	var lead *outlineNode
	stack := []*outlineNode{root}
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if h, ok := c.(*ast.Heading); ok {
			for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			n := &outlineNode{title: strings.TrimSpace(inlineText(h, src)), level: h.Level}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
			continue
		}
		body := blockText(c, src)
		if body == "" {
			continue
		}
		cur := stack[len(stack)-1]
		if cur == root {
			if lead == nil {
				lead = &outlineNode{level: 0}
				root.children = append([]*outlineNode{lead}, root.children...)
			}
			cur = lead
		}
		cur.lines = append(cur.lines, strings.Split(body, "\n")...)
	}
	return toSections(root.children)
}

func toSections(nodes []*outlineNode) []SectionContent {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]SectionContent, 0, len(nodes))
	for _, n := range nodes {
		lines := n.lines
		if lines == nil {
			lines = []string{}
		}
		out = append(out, SectionContent{
			Title:        n.title,
			Level:        n.level,
			ContentLines: lines,
			SubSections:  toSections(n.children),
		})
	}
	return out
}
