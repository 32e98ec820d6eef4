package acquire

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/resumeforge/internal/resume"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// acquireMarkdown walks the goldmark AST: every heading and text block
// becomes its own line(s), and link destinations become hyperlinks.
func acquireMarkdown(src []byte) resume.RawDocument {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var out bytes.Buffer
	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			inlineText(&out, node, src, &links)
			out.WriteByte('\n')
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				out.Write(seg.Value(src))
			}
			out.WriteByte('\n')
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return resume.RawDocument{Text: strings.TrimSpace(out.String()), Links: links}
}

// inlineText writes the visible text of n's inline children, keeping
// line breaks, and records link destinations.
func inlineText(buf *bytes.Buffer, n ast.Node, src []byte, links *[]string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			if t.AutoLinkType == ast.AutoLinkURL {
				*links = append(*links, string(t.URL(src)))
			}
			buf.Write(t.Label(src))
		case *ast.Link:
			*links = append(*links, string(t.Destination))
			inlineText(buf, t, src, links)
		default:
			inlineText(buf, c, src, links)
		}
	}
}
