// Package render lays a resume record out as a PDF: a first page with a
// sidebar holding as many jobs as fit, followed by full-width continuation
// pages for the rest.
package render

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// Options configures a Renderer.
type Options struct {
	ScratchDir string        // parent of per-document scratch dirs, empty for os.TempDir
	Timeout    time.Duration // bound on every backend call
	VerifyFit  bool          // render every prefix to check the search assumption
}

// Renderer is safe for concurrent use; all per-document state lives in
// Render.
type Renderer struct {
	backend Backend
	tmpl    *templates
	opts    Options
	log     *slog.Logger
}

func New(backend Backend, opts Options, log *slog.Logger) (*Renderer, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Renderer{backend: backend, tmpl: tmpl, opts: opts, log: log}, nil
}

// Backend returns the name of the configured backend.
func (r *Renderer) Backend() string { return r.backend.Name() }

// probed is one memoized first-page render.
type probed struct {
	pdf   []byte
	pages int
}

// Render produces the final PDF for rec. docID names the scratch
// directory, which is removed before Render returns.
func (r *Renderer) Render(ctx context.Context, docID string, rec resume.Record) ([]byte, resume.Plan, error) {
	var plan resume.Plan
	dir, err := os.MkdirTemp(r.opts.ScratchDir, "render-"+docID+"-")
	if err != nil {
		return nil, plan, resume.Errorf(resume.KindRenderingFailure, err, "create scratch dir")
	}
	defer os.RemoveAll(dir)

	log := r.log.With("doc_id", docID, "backend", r.backend.Name())
	first := r.firstPageView(rec, dir, log)
	jobs := rec.Sections.Experience
	plan.Total = len(jobs)

	cache := map[int]probed{}
	renderFirst := func(ctx context.Context, m int) (probed, error) {
		if p, ok := cache[m]; ok {
			return p, nil
		}
		view := first
		view.Experience = jobs[:m]
		pdf, err := r.renderHTML(ctx, firstPageTemplate, view, dir)
		if err != nil {
			return probed{}, err
		}
		pages, err := PageCount(pdf)
		if err != nil {
			return probed{}, resume.Errorf(resume.KindRenderingFailure, err, "count first-page pages")
		}
		p := probed{pdf: pdf, pages: pages}
		cache[m] = p
		return p, nil
	}

	fit, err := Fit(ctx, len(jobs), func(ctx context.Context, m int) (int, error) {
		p, err := renderFirst(ctx, m)
		return p.pages, err
	})
	if err != nil {
		return nil, plan, r.failure(err, "fit first page")
	}
	plan.Fitting = fit.Fitting
	plan.Probes = fit.Probes

	if r.opts.VerifyFit {
		ok, counts, err := CheckMonotone(ctx, len(jobs), func(ctx context.Context, m int) (int, error) {
			p, err := renderFirst(ctx, m)
			return p.pages, err
		})
		if err != nil {
			return nil, plan, r.failure(err, "verify fit")
		}
		plan.Verified, plan.Monotonic = true, ok
		if !ok {
			log.Warn("first-page page count decreases as jobs are added", "counts", counts, "fitting", plan.Fitting)
		}
	}

	head, err := renderFirst(ctx, fit.Fitting)
	if err != nil {
		return nil, plan, r.failure(err, "render first page")
	}
	if head.pages != 1 {
		plan.Overflow = true
		log.Warn("first page overflows even without jobs", "pages", head.pages)
	}

	docs := [][]byte{head.pdf}
	rest := continuation{
		Experience: jobs[fit.Fitting:],
		Skills:     rec.Sections.Skills,
		Misc:       rec.Sections.Misc,
	}
	if !rest.empty() {
		tail, err := r.renderHTML(ctx, continuationTemplate, rest, dir)
		if err != nil {
			return nil, plan, r.failure(err, "render continuation")
		}
		docs = append(docs, tail)
	}

	out, err := Merge(docs...)
	if err != nil {
		return nil, plan, resume.Errorf(resume.KindRenderingFailure, err, "merge pages")
	}
	log.Info("rendered", "fitting", plan.Fitting, "total", plan.Total, "probes", plan.Probes, "parts", len(docs))
	return out, plan, nil
}

func (r *Renderer) firstPageView(rec resume.Record, dir string, log *slog.Logger) firstPage {
	view := firstPage{
		FullName:   rec.FullName,
		CurrentJob: rec.CurrentJob,
		Contact:    rec.Contact,
		Education:  rec.Sections.Education,
		References: nonEmptyLines(rec.Sections.References),
	}
	if strings.TrimSpace(rec.Sections.AboutMe) != "" {
		view.AboutMe = r.tmpl.markdown(rec.Sections.AboutMe)
	}
	if len(rec.Image) > 0 {
		path, err := writePhoto(rec.Image, dir)
		if err != nil {
			log.Warn("photo skipped", "error", err)
		} else {
			view.Photo = filepath.Base(path)
		}
	}
	return view
}

// renderHTML executes a template and hands it to the backend under the
// configured timeout.
func (r *Renderer) renderHTML(ctx context.Context, name string, data any, dir string) ([]byte, error) {
	html, err := r.tmpl.execute(name, data)
	if err != nil {
		return nil, resume.Errorf(resume.KindRenderingFailure, err, "template %s", name)
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	pdf, err := r.backend.Render(ctx, html, dir)
	if err != nil {
		return nil, resume.Errorf(resume.KindRenderingFailure, err, "%s backend", r.backend.Name())
	}
	return pdf, nil
}

// failure keeps typed errors and classifies anything else as a rendering
// failure.
func (r *Renderer) failure(err error, what string) error {
	if resume.KindOf(err) == resume.KindRenderingFailure || resume.KindOf(err) == resume.KindCancelled {
		return err
	}
	return resume.Errorf(resume.KindRenderingFailure, err, "%s", what)
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
