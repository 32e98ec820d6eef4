package acquire

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/resumeforge/internal/resume"
)

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Jane Doe")
	doc.AddParagraph().AddText("EXPERIENCE:")
	doc.AddParagraph().AddText("Acme Corp - Engineer")
	doc.AddParagraph().AddLink("GitHub profile", "https://github.com/janedoe/")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestAcquire_DOCX(t *testing.T) {
	data := buildDOCX(t)

	format, err := Detect(data, "cv.docx")
	if err != nil || format != FormatDOCX {
		t.Fatalf("expected docx, got %q (%v)", format, err)
	}

	doc, err := testAcquirer(t).Acquire(context.Background(), data, "cv.docx")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	for _, want := range []string{"Jane Doe", "EXPERIENCE:", "Acme Corp - Engineer"} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("expected %q in text %q", want, doc.Text)
		}
	}
	if len(doc.Links) != 1 || doc.Links[0] != "https://github.com/janedoe" {
		t.Errorf("expected normalized hyperlink target, got %v", doc.Links)
	}
}

func TestAcquire_DOCXCorrupt(t *testing.T) {
	// A truncated archive is rejected.
	data := buildDOCX(t)
	_, err := testAcquirer(t).Acquire(context.Background(), data[:len(data)/2], "cv.docx")
	if resume.KindOf(err) != resume.KindUnsupportedFormat {
		t.Fatalf("expected unsupported_format for a truncated docx, got %v", err)
	}
}
