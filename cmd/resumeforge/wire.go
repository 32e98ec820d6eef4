package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/resumeforge/internal/acquire"
	"github.com/dgallion1/resumeforge/internal/assemble"
	"github.com/dgallion1/resumeforge/internal/config"
	"github.com/dgallion1/resumeforge/internal/enrich"
	"github.com/dgallion1/resumeforge/internal/fields"
	"github.com/dgallion1/resumeforge/internal/pipeline"
	"github.com/dgallion1/resumeforge/internal/render"
	"github.com/dgallion1/resumeforge/internal/store"
)

// app holds the process-wide collaborators built once from configuration.
type app struct {
	processor *pipeline.Processor
	enricher  *enrich.Client
	results   store.Store
	closers   []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{}

	var ocr acquire.OCR
	if cfg.OCREnabled {
		var err error
		ocr, err = acquire.NewOCR(cfg.OCRLanguage)
		if errors.Is(err, acquire.ErrOCRNotEnabled) {
			log.Info("ocr tier disabled", "reason", err)
		} else if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
	}
	acq := acquire.New(acquire.Options{
		ScratchDir:    cfg.ScratchDir,
		PdftotextPath: cfg.PdftotextPath,
		PdftoppmPath:  cfg.PdftoppmPath,
		OCR:           ocr,
	}, log)

	provider, err := enrich.NewProvider(ctx, enrich.ProviderConfig{
		Name:    cfg.EnrichProvider,
		APIKey:  cfg.EnrichAPIKey(),
		Model:   cfg.EnrichModel(),
		BaseURL: cfg.EnrichBaseURL(),
	})
	if err != nil {
		return nil, err
	}
	if c, ok := provider.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}

	var cache enrich.Cache
	if cfg.RedisAddr != "" {
		rc, err := enrich.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("enrichment cache: %w", err)
		}
		cache = rc
		a.closers = append(a.closers, rc.Close)
	}
	a.enricher = enrich.NewClient(provider, cache, cfg.EnrichTimeout, log)

	validator, err := assemble.NewValidator()
	if err != nil {
		a.Close()
		return nil, err
	}

	bin := cfg.WkhtmltopdfPath
	if cfg.RenderBackend == "chrome" {
		bin = cfg.ChromeBin
	}
	backend, err := render.NewBackend(cfg.RenderBackend, bin)
	if err != nil {
		a.Close()
		return nil, err
	}
	renderer, err := render.New(backend, render.Options{
		ScratchDir: cfg.ScratchDir,
		Timeout:    cfg.RenderTimeout,
		VerifyFit:  cfg.RenderVerifyFit,
	}, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.results, err = store.New(ctx, store.Config{
		Backend:        cfg.StoreBackend,
		OutputDir:      cfg.OutputDir,
		MinIOEndpoint:  cfg.MinIOEndpoint,
		MinIOAccessKey: cfg.MinIOAccessKey,
		MinIOSecretKey: cfg.MinIOSecretKey,
		MinIOBucket:    cfg.MinIOBucket,
		MinIOSecure:    cfg.MinIOSecure,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("output store: %w", err)
	}

	ner, err := fields.NewProseRecognizer()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.processor = pipeline.NewProcessor(pipeline.Deps{
		Acquirer:  acq,
		NER:       ner,
		Enricher:  a.enricher,
		Validator: validator,
		Renderer:  renderer,
		Store:     a.results,
	}, pipeline.Options{
		EnrichRetries:    cfg.EnrichRetries,
		BatchConcurrency: cfg.BatchConcurrency,
	}, log)

	log.Info("pipeline ready",
		"provider", a.enricher.Provider(),
		"model", a.enricher.Model(),
		"cache", cache != nil,
		"render_backend", renderer.Backend(),
		"store", a.results.Name(),
	)
	return a, nil
}
