// Package acquire turns uploaded resume bytes into plain text, hyperlinks
// and the first embedded image.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// Format is a supported input format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// extensionFormats resolves formats whose content sniffs ambiguously:
// text-based formats all look like text/plain, and a DOCX can look like a
// bare zip archive.
var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".txt":      FormatText,
}

// Detect sniffs the content type of data. The filename extension breaks
// ties where the sniffed type alone is ambiguous.
func Detect(data []byte, filename string) (Format, error) {
	mt := mimetype.Detect(data)
	byExt := extensionFormats[strings.ToLower(filepath.Ext(filename))]

	switch {
	case mt.Is("application/pdf"):
		return FormatPDF, nil
	case mt.Is(docxMIME):
		return FormatDOCX, nil
	case mt.Is("application/zip") && byExt == FormatDOCX:
		return FormatDOCX, nil
	case mt.Is("text/html"):
		return FormatHTML, nil
	case mt.Is("text/plain"):
		if byExt == FormatMarkdown || byExt == FormatHTML {
			return byExt, nil
		}
		return FormatText, nil
	}
	return "", resume.Errorf(resume.KindUnsupportedFormat, nil, "%s (%s)", filename, mt.String())
}

// Options configures the external tools used by the PDF tiers.
type Options struct {
	ScratchDir    string
	PdftotextPath string
	PdftoppmPath  string
	OCR           OCR // nil disables the OCR tier
}

// Acquirer extracts text from uploaded documents. It holds no per-document
// state and is safe for concurrent use.
type Acquirer struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options, log *slog.Logger) *Acquirer {
	if opts.PdftotextPath == "" {
		opts.PdftotextPath = "pdftotext"
	}
	if opts.PdftoppmPath == "" {
		opts.PdftoppmPath = "pdftoppm"
	}
	return &Acquirer{opts: opts, log: log}
}

// Acquire extracts a RawDocument from data. Empty text is not an error;
// the caller decides what to do with an empty document. Unrecognized
// content fails with an unsupported_format error.
func (a *Acquirer) Acquire(ctx context.Context, data []byte, filename string) (resume.RawDocument, error) {
	format, err := Detect(data, filename)
	if err != nil {
		return resume.RawDocument{}, err
	}

	var doc resume.RawDocument
	switch format {
	case FormatPDF:
		doc, err = a.acquirePDF(ctx, data)
	case FormatDOCX:
		doc, err = acquireDOCX(data)
	case FormatHTML:
		doc, err = acquireHTML(data)
	case FormatMarkdown:
		doc = acquireMarkdown(data)
	default:
		doc = resume.RawDocument{Text: string(data)}
	}
	if err != nil {
		return resume.RawDocument{}, fmt.Errorf("acquire %s: %w", format, err)
	}

	doc.Text = norm.NFC.String(doc.Text)
	doc.Links = normalizeLinks(doc.Links)
	if strings.TrimSpace(doc.Text) == "" {
		a.log.Warn("no text extracted", "file", filename, "format", format, "kind", resume.KindAcquisitionEmpty)
	}
	return doc, nil
}

// normalizeLinks keeps absolute URIs, strips trailing slashes, and returns
// them deduplicated in sorted order.
func normalizeLinks(links []string) []string {
	set := map[string]bool{}
	for _, l := range links {
		l = strings.TrimRight(strings.TrimSpace(l), "/")
		if l == "" {
			continue
		}
		u, err := url.Parse(l)
		if err != nil || !u.IsAbs() {
			continue
		}
		set[l] = true
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
