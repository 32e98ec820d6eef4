package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/resumeforge/internal/acquire"
	"github.com/dgallion1/resumeforge/internal/assemble"
	"github.com/dgallion1/resumeforge/internal/enrich"
	"github.com/dgallion1/resumeforge/internal/pipeline"
	"github.com/dgallion1/resumeforge/internal/resume"
	"github.com/dgallion1/resumeforge/internal/store"
)

type pdfStub struct{}

func (pdfStub) Render(_ context.Context, docID string, _ resume.Record) ([]byte, resume.Plan, error) {
	return []byte("%PDF-1.4 " + docID), resume.Plan{}, nil
}

func testProcessor(t *testing.T, outDir string) *pipeline.Processor {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := assemble.NewValidator()
	if err != nil {
		t.Fatal(err)
	}
	fs, err := store.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}
	return pipeline.NewProcessor(pipeline.Deps{
		Acquirer:  acquire.New(acquire.Options{ScratchDir: t.TempDir()}, log),
		Enricher:  enrich.NewClient(enrich.Offline{}, nil, time.Second, log),
		Validator: v,
		Renderer:  pdfStub{},
		Store:     fs,
	}, pipeline.Options{BatchConcurrency: 2}, log)
}

func TestConvert_OneLinePerInput(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	good := filepath.Join(in, "cv.md")
	bad := filepath.Join(in, "blob.bin")
	missing := filepath.Join(in, "missing.pdf")
	os.WriteFile(good, []byte("# Jane Doe\n\n## Skills\n\nGo, SQL\n"), 0o644)
	os.WriteFile(bad, []byte{0, 1, 2, 0xff}, 0o644)

	var buf bytes.Buffer
	err := convert(context.Background(), testProcessor(t, out), out, []string{good, missing, bad}, &buf)
	if err != nil {
		t.Fatalf("expected success when one file converts, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	fields := strings.Split(lines[0], "\t")
	if fields[0] != good || !strings.HasPrefix(fields[1], out) {
		t.Errorf("unexpected success line %q", lines[0])
	}
	if _, err := os.Stat(fields[1]); err != nil {
		t.Errorf("expected output file: %v", err)
	}
	if !strings.HasPrefix(lines[1], missing+"\terror\tinternal") {
		t.Errorf("unexpected missing-file line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], bad+"\terror\t"+string(resume.KindUnsupportedFormat)) {
		t.Errorf("unexpected unsupported line %q", lines[2])
	}
}

func TestConvert_AllFailed(t *testing.T) {
	out := t.TempDir()
	var buf bytes.Buffer
	err := convert(context.Background(), testProcessor(t, out), out, []string{filepath.Join(out, "nope.txt")}, &buf)
	if !errors.Is(err, errAllFailed) {
		t.Fatalf("expected errAllFailed, got %v", err)
	}
}

func TestConvertCmd_RequiresFiles(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"convert"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error without input files")
	}
}

func TestConvertCmd_Flags(t *testing.T) {
	cmd := newConvertCmd(func() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) })
	for _, name := range []string{"offline", "out", "verify-fit"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
}
