//go:build !ocr

package acquire

import "errors"

// ErrOCRNotEnabled is returned by NewOCR when the binary was built without
// the "ocr" tag. Rebuild with -tags ocr (requires Tesseract) to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// OCR recognizes text in a page image.
type OCR interface {
	RecognizeImage(img []byte) (string, error)
}

// NewOCR reports that OCR is unavailable in this build.
func NewOCR(language string) (OCR, error) {
	return nil, ErrOCRNotEnabled
}
