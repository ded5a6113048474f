package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/receipts-collator/internal/common"
)

const (
	MethodPdftotext = "pdftotext"
	MethodReader    = "pdf-reader"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Fallback  bool   // use the pure-Go reader when pdftotext fails
	Validate  bool   // run a relaxed pdfcpu validation before extracting
}

type Result struct {
	Pages     [][]string
	PageCount int
	Method    string
	Duration  time.Duration
	Warnings  []string
}

// Lines flattens all pages into document order.
func (r Result) Lines() []string {
	var out []string
	for _, p := range r.Pages {
		out = append(out, p...)
	}
	return out
}

type Extractor struct {
	cfg    Config
	runner Runner
	reader func(ctx context.Context, path string) (string, int, error)
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner swaps the command runner, mainly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func withReader(fn func(ctx context.Context, path string) (string, int, error)) Option {
	return func(e *Extractor) { e.reader = fn }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, reader: readText, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig maps the application extract settings onto an Extractor.
func FromConfig(c common.ExtractConfig, logger *slog.Logger) *Extractor {
	return NewExtractor(Config{Pdftotext: c.Pdftotext, Fallback: c.Fallback, Validate: c.Validate}, logger)
}

// Extract returns the trimmed, non-blank lines of every page in path.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	e.logger.Debug("pdftext.extract.start", "path", path)

	var res Result
	if e.cfg.Validate {
		n, err := e.validate(path)
		if err != nil {
			e.logger.Warn("pdftext.validate.failed", "path", path, "error", err)
			res.Warnings = append(res.Warnings, err.Error())
		} else {
			res.PageCount = n
		}
	}

	text, pages, method, warns, err := e.extractText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("pdftext.extract.failed", "path", path, "error", err, "elapsed_ms", res.Duration.Milliseconds())
		return res, common.ExtractionError(path, err)
	}

	res.Method = method
	res.Pages = Normalize(text)
	if res.PageCount == 0 {
		res.PageCount = pages
	}
	e.logger.Info("pdftext.extract.ok",
		"path", path,
		"method", method,
		"pages", res.PageCount,
		"lines", len(res.Lines()),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) validate(path string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, fmt.Errorf("validate: %w", err)
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

func (e *Extractor) extractText(ctx context.Context, path string) (text string, pages int, method string, warnings []string, err error) {
	text, pages, warnings, err = e.pdfToText(ctx, path)
	if err == nil {
		return text, pages, MethodPdftotext, warnings, nil
	}
	if !e.cfg.Fallback || ctx.Err() != nil {
		return "", 0, "", warnings, err
	}

	e.logger.Warn("pdftext.fallback", "path", path, "error", err)
	warnings = append(warnings, fmt.Sprintf("pdftotext: %v", err))
	text, pages, rerr := e.reader(ctx, path)
	if rerr != nil {
		return "", 0, "", warnings, errors.Join(err, rerr)
	}
	return text, pages, MethodReader, warnings, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		var warns []string
		if s := strings.TrimSpace(string(errb)); s != "" {
			warns = append(warns, s)
		}
		return "", 0, warns, err
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	return text, pages, nil, nil
}
