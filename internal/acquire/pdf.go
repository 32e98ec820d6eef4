package acquire

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// minTierChars is the amount of text below which the next tier is tried.
const minTierChars = 50

// ocrDPI is the rasterization resolution for the OCR tier.
const ocrDPI = 200

func enough(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= minTierChars
}

// acquirePDF runs the text tiers in order: embedded text layer, layout-aware
// pdftotext, then OCR over rasterized pages. Links always come from the
// annotation layer and the image from the first embedded raster.
func (a *Acquirer) acquirePDF(ctx context.Context, data []byte) (resume.RawDocument, error) {
	var doc resume.RawDocument

	text, links, err := textLayer(data)
	if err != nil {
		a.log.Warn("pdf text layer failed", "error", err)
	}
	doc.Text = text
	doc.Links = links
	doc.Image = firstImage(data, a.log)

	if enough(doc.Text) {
		return doc, nil
	}

	// The remaining tiers shell out and need the document on disk.
	dir, err := os.MkdirTemp(a.opts.ScratchDir, "acquire-*")
	if err != nil {
		return doc, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return doc, fmt.Errorf("write scratch pdf: %w", err)
	}

	layout, err := a.pdftotext(ctx, path)
	if err != nil {
		a.log.Warn("pdftotext failed", "error", err)
	} else if enough(layout) || len(strings.TrimSpace(layout)) > len(strings.TrimSpace(doc.Text)) {
		doc.Text = layout
	}
	if enough(doc.Text) {
		return doc, nil
	}

	if a.opts.OCR == nil {
		a.log.Debug("ocr tier disabled")
		return doc, nil
	}
	scanned, err := a.ocrPages(ctx, path, dir)
	if err != nil {
		a.log.Warn("ocr tier failed", "error", err)
		return doc, nil
	}
	if strings.TrimSpace(scanned) != "" {
		doc.Text = strings.TrimSpace(doc.Text + "\n" + scanned)
	}
	return doc, nil
}

// textLayer reads the embedded text and URI link annotations of every
// page. The pdf library panics on some malformed inputs, so panics are
// turned into errors.
func textLayer(data []byte) (text string, links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open pdf: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		links = append(links, pageLinks(page)...)

		pt, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(pt)
	}
	return buf.String(), links, nil
}

func pageLinks(page pdflib.Page) []string {
	var out []string
	annots := page.V.Key("Annots")
	for j := 0; j < annots.Len(); j++ {
		annot := annots.Index(j)
		if annot.Key("Subtype").Name() != "Link" {
			continue
		}
		if uri := annot.Key("A").Key("URI").RawString(); uri != "" {
			out = append(out, uri)
		}
	}
	return out
}

func (a *Acquirer) pdftotext(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, a.opts.PdftotextPath, "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// ocrPages rasterizes every page into dir and recognizes each image in
// page order.
func (a *Acquirer) ocrPages(ctx context.Context, path, dir string) (string, error) {
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, a.opts.PdftoppmPath, "-r", fmt.Sprint(ocrDPI), "-png", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(out), 200))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", fmt.Errorf("list rasterized pages: %w", err)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(pages)

	var parts []string
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read page image: %w", err)
		}
		t, err := a.opts.OCR.RecognizeImage(img)
		if err != nil {
			return "", fmt.Errorf("recognize %s: %w", filepath.Base(p), err)
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, "\n"), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
