//go:build ocr

package acquire

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCR recognizes text in a page image.
type OCR interface {
	RecognizeImage(img []byte) (string, error)
}

// Tesseract runs page recognition through gosseract. A gosseract client is
// not safe for concurrent use, so each call gets its own.
type Tesseract struct {
	language string
}

// NewOCR returns a Tesseract-backed recognizer for language (e.g. "eng").
func NewOCR(language string) (OCR, error) {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}, nil
}

func (t *Tesseract) RecognizeImage(img []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}
