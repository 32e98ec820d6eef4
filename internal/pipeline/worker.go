package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/resumeforge/internal/assemble"
	"github.com/dgallion1/resumeforge/internal/enrich"
	"github.com/dgallion1/resumeforge/internal/fields"
	"github.com/dgallion1/resumeforge/internal/render"
	"github.com/dgallion1/resumeforge/internal/resume"
	"github.com/dgallion1/resumeforge/internal/segment"
	"github.com/dgallion1/resumeforge/internal/store"
)

// Acquirer turns uploaded bytes into raw text, links and an image.
type Acquirer interface {
	Acquire(ctx context.Context, data []byte, filename string) (resume.RawDocument, error)
}

// Enricher turns a prompt into a parsed enrichment payload.
type Enricher interface {
	Enrich(ctx context.Context, prompt string) (map[string]any, error)
}

// Renderer lays out a record as a PDF.
type Renderer interface {
	Render(ctx context.Context, docID string, rec resume.Record) ([]byte, resume.Plan, error)
}

// Deps are the process-wide collaborators shared by every document.
type Deps struct {
	Acquirer  Acquirer
	NER       fields.Recognizer // optional
	Enricher  Enricher
	Validator *assemble.Validator
	Renderer  Renderer
	Store     store.Store
}

// Options tunes a Processor.
type Options struct {
	EnrichRetries    int
	BatchConcurrency int
	ResultPrefix     string // prepended to document ids to form pdf_url
}

// Processor converts one document at a time; it holds no per-document
// state and is safe for concurrent use.
type Processor struct {
	deps    Deps
	opts    Options
	backoff func(attempt int) time.Duration
	log     *slog.Logger
}

func NewProcessor(deps Deps, opts Options, log *slog.Logger) *Processor {
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 1
	}
	if opts.EnrichRetries < 0 {
		opts.EnrichRetries = 0
	}
	if opts.ResultPrefix == "" {
		opts.ResultPrefix = "/api/result/"
	}
	return &Processor{deps: deps, opts: opts, backoff: Backoff, log: log}
}

// Process runs the full conversion for a job and records the outcome on
// it. The returned error is the same failure, typed as *resume.Error where
// the kind is known.
func (p *Processor) Process(ctx context.Context, job *Job) (*Result, error) {
	log := p.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)
	defer job.releaseFileData()

	res, err := p.process(ctx, job, log)
	if err != nil {
		f := NewFailure(job.Filename, err)
		log.Error("conversion failed", "kind", f.Error.Kind, "error", err, "payload", truncate(f.Error.Payload, 200))
		job.Fail(f)
		return nil, err
	}
	job.Complete(res)
	log.Info("conversion complete", "pages", res.Pages, "fitting", res.FittingCount)
	return res, nil
}

func (p *Processor) process(ctx context.Context, job *Job, log *slog.Logger) (*Result, error) {
	data := job.FileData()

	// Phase 1: Acquire
	job.SetStatus(StatusAcquiring, "acquiring")
	doc, err := p.deps.Acquirer.Acquire(ctx, data, job.Filename)
	if err != nil {
		return nil, err
	}

	// Phase 2: Segment and recognize local fields
	job.SetStatus(StatusSegmenting, "segmenting")
	lines, headings := segment.Segment(doc.Text)
	sections := segment.Sections(lines, headings)
	local := assemble.Local(doc, lines, sections, p.deps.NER)
	log.Debug("segmented", "lines", len(lines), "headings", len(headings))

	// Phase 3: Enrich
	job.SetStatus(StatusEnriching, "enriching")
	prompt := enrich.BuildPrompt(sections, segment.Other(lines, headings))
	payload, err := p.enrich(ctx, prompt, log)
	if err != nil {
		return nil, err
	}

	// Phase 4: Assemble and validate
	job.SetStatus(StatusAssembling, "assembling")
	rec, err := assemble.Assemble(local, payload, p.deps.Validator)
	if err != nil {
		return nil, err
	}

	// Phase 5: Render
	job.SetStatus(StatusRendering, "rendering")
	pdf, plan, err := p.deps.Renderer.Render(ctx, job.DocID, rec)
	if err != nil {
		return nil, err
	}
	pages, err := render.PageCount(pdf)
	if err != nil {
		log.Warn("could not count output pages", "error", err)
	}

	// Phase 6: Store
	job.SetStatus(StatusStoring, "storing")
	if err := p.deps.Store.Put(ctx, job.DocID, pdf); err != nil {
		return nil, resume.Errorf(resume.KindStorageFailure, err, "store output")
	}

	return &Result{
		ID:           job.DocID,
		FileName:     job.Filename,
		PDFURL:       p.opts.ResultPrefix + job.DocID,
		Pages:        pages,
		FittingCount: plan.Fitting,
		Plan:         plan,
		ContentHash:  ContentHashHex(data),
	}, nil
}

// enrich calls the enricher, retrying retryable failures with backoff.
func (p *Processor) enrich(ctx context.Context, prompt string, log *slog.Logger) (map[string]any, error) {
	for attempt := 0; ; attempt++ {
		payload, err := p.deps.Enricher.Enrich(ctx, prompt)
		if err == nil || !IsRetryable(err) || attempt >= p.opts.EnrichRetries {
			return payload, err
		}
		log.Warn("retryable enrichment error", "attempt", attempt, "error", err)
		select {
		case <-time.After(p.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Outcome is the per-document result of a batch.
type Outcome struct {
	FileName string
	Result   *Result
	Err      error
}

// RunBatch converts jobs in parallel, at most BatchConcurrency at a time.
// One document's failure never affects another. Documents not yet started
// when ctx is cancelled fail with kind cancelled; started documents run to
// completion under their own timeouts. Outcomes keep input order.
func (p *Processor) RunBatch(ctx context.Context, jobs []*Job) []Outcome {
	out := make([]Outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(p.opts.BatchConcurrency)

	for i, job := range jobs {
		g.Go(func() error {
			out[i].FileName = job.Filename
			if err := ctx.Err(); err != nil {
				cerr := resume.Errorf(resume.KindCancelled, err, "not started before cancellation")
				job.Fail(NewFailure(job.Filename, cerr))
				job.releaseFileData()
				out[i].Err = cerr
				return nil
			}
			out[i].Result, out[i].Err = p.Process(context.WithoutCancel(ctx), job)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Succeeded counts outcomes without an error.
func Succeeded(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// ErrNoFiles is returned when a batch has nothing to convert.
var ErrNoFiles = errors.New("no files")

// CheckBatch validates a batch before it is run.
func CheckBatch(jobs []*Job, maxFiles int) error {
	if len(jobs) == 0 {
		return ErrNoFiles
	}
	if maxFiles > 0 && len(jobs) > maxFiles {
		return fmt.Errorf("too many files: %d > %d", len(jobs), maxFiles)
	}
	return nil
}
