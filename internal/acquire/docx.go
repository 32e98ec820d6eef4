package acquire

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/resumeforge/internal/resume"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

func acquireDOCX(data []byte) (resume.RawDocument, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return resume.RawDocument{}, resume.Errorf(resume.KindUnsupportedFormat, err, "unreadable docx")
	}

	var text strings.Builder
	var links []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		t, paraLinks := docxParagraph(doc, para)
		links = append(links, paraLinks...)
		if t == "" {
			continue
		}
		text.WriteString(t)
		text.WriteString("\n")
	}
	return resume.RawDocument{Text: text.String(), Links: links}, nil
}

// docxParagraph returns the text of a paragraph and any absolute URLs in
// its hyperlink targets or its text.
func docxParagraph(doc *docx.Docx, para *docx.Paragraph) (string, []string) {
	var buf strings.Builder
	var links []string
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(&buf, c)
		case *docx.Hyperlink:
			if target, err := doc.ReferTarget(c.ID); err == nil {
				links = append(links, urlPattern.FindAllString(target, -1)...)
			}
			var link strings.Builder
			writeRun(&link, &c.Run)
			if link.Len() == 0 {
				link.WriteString(c.Run.InstrText)
			}
			buf.WriteString(link.String())
		}
	}
	t := strings.TrimSpace(buf.String())
	links = append(links, urlPattern.FindAllString(t, -1)...)
	return t, links
}

func writeRun(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
}
