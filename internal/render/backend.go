package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Backend turns one HTML document into PDF bytes. Implementations keep no
// state between calls; dir is a scratch directory owned by the caller that
// also holds any local assets the HTML references.
type Backend interface {
	Name() string
	Render(ctx context.Context, html string, dir string) ([]byte, error)
}

// NewBackend returns the backend named by name ("wkhtmltopdf" or "chrome").
// bin overrides the executable path; empty uses the default lookup.
func NewBackend(name, bin string) (Backend, error) {
	switch name {
	case "", "wkhtmltopdf":
		if bin == "" {
			bin = "wkhtmltopdf"
		}
		return &Wkhtmltopdf{Path: bin}, nil
	case "chrome":
		return &Chrome{Bin: bin}, nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", name)
	}
}

// Wkhtmltopdf shells out to the wkhtmltopdf binary.
type Wkhtmltopdf struct {
	Path string
}

func (w *Wkhtmltopdf) Name() string { return "wkhtmltopdf" }

func (w *Wkhtmltopdf) Render(ctx context.Context, html string, dir string) ([]byte, error) {
	in, err := writeHTML(dir, html)
	if err != nil {
		return nil, err
	}
	out := strings.TrimSuffix(in, ".html") + ".pdf"

	cmd := exec.CommandContext(ctx, w.Path,
		"--quiet",
		"--enable-local-file-access",
		"--encoding", "utf-8",
		"--page-size", "A4",
		"--margin-top", "0", "--margin-bottom", "0",
		"--margin-left", "0", "--margin-right", "0",
		in, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("wkhtmltopdf: %w: %s", err, truncate(stderr.String(), 300))
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read wkhtmltopdf output: %w", err)
	}
	return data, nil
}

// writeHTML stores html under a fresh name in dir so concurrent calls on
// the same directory never collide.
func writeHTML(dir, html string) (string, error) {
	f, err := os.CreateTemp(dir, "page-*.html")
	if err != nil {
		return "", fmt.Errorf("create html file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(html); err != nil {
		return "", fmt.Errorf("write html file: %w", err)
	}
	return filepath.Clean(f.Name()), nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
