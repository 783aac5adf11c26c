// Package textutil flattens analyzer-provided markdown into plain text.
package textutil

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// PlainText renders markdown source as plain text. Inline markup (emphasis,
// code spans, links) is dropped and only its text is kept. Blocks are
// separated by a single newline; fenced code is kept verbatim.
func PlainText(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []string
	walkBlocks(doc, src, &blocks)
	return strings.Join(blocks, "\n")
}

func walkBlocks(n ast.Node, source []byte, blocks *[]string) {
	switch node := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		if s := strings.TrimSpace(extractText(node, source)); s != "" {
			*blocks = append(*blocks, s)
		}
		return
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		if s := strings.TrimRight(blockLines(node, source), "\n"); s != "" {
			*blocks = append(*blocks, s)
		}
		return
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		walkBlocks(child, source, blocks)
	}
}

func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		default:
			buf.WriteString(extractText(child, source))
		}
	}
	return buf.String()
}

func blockLines(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}
