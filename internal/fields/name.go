package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

var namePattern = regexp.MustCompile(`^[A-Z][a-zA-Z’'-]+(?:\s+[A-Z][a-zA-Z’'-]+){0,3}$`)

const (
	nameScanLines = 10
	nerScanLines  = 50
)

// Recognizer finds person names in free text.
type Recognizer interface {
	Persons(text string) ([]string, error)
}

// ProseRecognizer is a Recognizer backed by prose's English NER model.
// The model is loaded once and only read afterwards, so a recognizer is
// safe for concurrent use.
type ProseRecognizer struct {
	model *prose.Model
}

// NewProseRecognizer loads the tagger and entity model. Loading takes a
// noticeable fraction of a second; construct one at startup and share it.
func NewProseRecognizer() (*ProseRecognizer, error) {
	warm, err := prose.NewDocument("", prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("load ner model: %w", err)
	}
	return &ProseRecognizer{model: warm.Model}, nil
}

func (r *ProseRecognizer) document(text string) (*prose.Document, error) {
	return prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.UsingModel(r.model),
	)
}

func (r *ProseRecognizer) Persons(text string) ([]string, error) {
	doc, err := r.document(text)
	if err != nil {
		return nil, fmt.Errorf("ner: %w", err)
	}
	var out []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			out = append(out, ent.Text)
		}
	}
	return out, nil
}

// Name returns the first of the leading lines that looks like a Title-Case
// personal name. If none does, the first PERSON entity found by ner in the
// opening lines is returned. ner may be nil.
func Name(lines []string, ner Recognizer) string {
	for i, ln := range lines {
		if i >= nameScanLines {
			break
		}
		if namePattern.MatchString(ln) {
			return ln
		}
	}
	if ner == nil || len(lines) == 0 {
		return ""
	}

	head := lines
	if len(head) > nerScanLines {
		head = head[:nerScanLines]
	}
	persons, err := ner.Persons(strings.Join(head, " "))
	if err != nil || len(persons) == 0 {
		return ""
	}
	return strings.TrimSpace(persons[0])
}
