package render

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Chrome prints HTML to PDF with a headless Chromium. Every call launches
// its own browser so calls share nothing.
type Chrome struct {
	Bin string // empty lets rod locate or download a browser
}

func (c *Chrome) Name() string { return "chrome" }

func (c *Chrome) Render(ctx context.Context, html string, dir string) ([]byte, error) {
	path, err := writeHTML(dir, html)
	if err != nil {
		return nil, err
	}

	l := launcher.New().Context(ctx).Headless(true).NoSandbox(true)
	if c.Bin != "" {
		l = l.Bin(c.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	defer browser.Close()

	fileURL := (&url.URL{Scheme: "file", Path: path}).String()
	page, err := browser.Page(proto.TargetCreateTarget{URL: fileURL})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return data, nil
}
