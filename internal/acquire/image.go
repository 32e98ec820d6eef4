package acquire

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var errImageFound = errors.New("image found")

// firstImage returns the bytes of the first raster image embedded in any
// page, or nil. Extraction problems are logged and treated as no image.
func firstImage(data []byte, log *slog.Logger) (img []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("image extraction panic", "error", r)
			img = nil
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	err := api.ExtractImages(bytes.NewReader(data), nil, func(m model.Image, _ bool, _ int) error {
		b, err := io.ReadAll(m)
		if err != nil || len(b) == 0 {
			return nil
		}
		img = b
		return errImageFound
	}, conf)
	if err != nil && !errors.Is(err, errImageFound) {
		log.Debug("image extraction failed", "error", err)
	}
	return img
}
