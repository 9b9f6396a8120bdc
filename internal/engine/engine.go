// Package engine runs a set of configured inspections over a set of parsed
// units, in parallel, and returns detached, ordered findings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/chris-regnier/jinspect/internal/cache"
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/hierarchy"
	"github.com/chris-regnier/jinspect/internal/inspect"
	"github.com/chris-regnier/jinspect/internal/tree"
)

// Selection enables one inspection with its settings.
type Selection struct {
	Name     string
	Settings inspect.Settings
}

// Result is the outcome of Analyze.
type Result struct {
	Findings  []diag.Finding
	Units     int
	Runs      int
	CacheHits int
	Duration  time.Duration
}

// Engine analyzes units with the inspections of a registry. It holds no
// per-analysis state and may be shared.
type Engine struct {
	registry *inspect.Registry
	logger   *slog.Logger
	jobs     int
	cache    cache.Manager
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithJobs bounds the number of concurrent inspection runs. Zero or less
// means GOMAXPROCS.
func WithJobs(n int) Option {
	return func(e *Engine) { e.jobs = n }
}

// WithCache enables result caching.
func WithCache(c cache.Manager) Option {
	return func(e *Engine) { e.cache = c }
}

// New creates an Engine over registry.
func New(registry *inspect.Registry, opts ...Option) *Engine {
	e := &Engine{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.jobs <= 0 {
		e.jobs = runtime.GOMAXPROCS(0)
	}
	return e
}

type task struct {
	unit *tree.Unit
	insp *inspect.Inspection
	sel  Selection
}

// Analyze runs every selection over every non-library unit. All library and
// source units take part in type resolution.
//
// Every selection is validated before any traversal starts; configuration
// errors are joined and returned with no findings. On cancellation the
// findings of completed runs are returned together with the context error.
func (e *Engine) Analyze(ctx context.Context, units []*tree.Unit, selections []Selection) (*Result, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "analyze")
	defer span.End()

	resolver := hierarchy.NewResolver(hierarchy.NewIndex(units...), hierarchy.WithLogger(e.logger))
	env := inspect.Env{Hierarchy: resolver, Logger: e.logger}

	insps, err := e.validate(env, selections)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid configuration")
		return nil, err
	}

	var sources []*tree.Unit
	digests := make([]string, 0, len(units))
	for _, u := range units {
		digests = append(digests, u.Digest)
		if u.Library {
			continue
		}
		if u.HasErrors {
			e.logger.Warn("analyzing unit with syntax errors", "file", u.Path)
		}
		sources = append(sources, u)
	}

	var tasks []task
	for _, u := range sources {
		for i, sel := range selections {
			tasks = append(tasks, task{unit: u, insp: insps[i], sel: sel})
		}
	}
	span.SetAttributes(
		attribute.Int("jinspect.units", len(sources)),
		attribute.Int("jinspect.inspections", len(selections)),
	)
	e.logger.Debug("starting analysis", "units", len(sources), "inspections", len(selections), "jobs", e.jobs)

	results := make([][]diag.Finding, len(tasks))
	hits := make([]bool, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs)
	for i, t := range tasks {
		g.Go(func() error {
			fs, hit, err := e.runTask(gctx, env, digests, t)
			results[i] = fs
			hits[i] = hit
			return err
		})
	}
	runErr := g.Wait()

	res := &Result{Units: len(sources), Runs: len(tasks)}
	for i := range results {
		res.Findings = append(res.Findings, results[i]...)
		if hits[i] {
			res.CacheHits++
		}
	}
	diag.SortFindings(res.Findings)
	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("jinspect.findings", len(res.Findings)),
		attribute.Int("jinspect.cache_hits", res.CacheHits),
	)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		return res, runErr
	}
	e.logger.Info("analysis complete",
		"units", res.Units,
		"findings", len(res.Findings),
		"cache_hits", res.CacheHits,
		"duration", res.Duration)
	return res, nil
}

// validate resolves every selection and builds a throwaway visitor for it,
// so that all configuration errors surface before any work starts.
func (e *Engine) validate(env inspect.Env, selections []Selection) ([]*inspect.Inspection, error) {
	insps := make([]*inspect.Inspection, len(selections))
	var errs []error
	for i, sel := range selections {
		insp, ok := e.registry.Get(sel.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", inspect.ErrUnknownInspection, sel.Name))
			continue
		}
		if _, _, err := inspect.Prepare(insp, env, sel.Settings); err != nil {
			errs = append(errs, err)
			continue
		}
		// Every option, read or not, ends up in the cache key.
		if _, err := e.cacheKey(insp, sel, "", nil).Hash(); err != nil {
			errs = append(errs, &inspect.ConfigError{Inspection: sel.Name, Err: err})
			continue
		}
		insps[i] = insp
	}
	return insps, errors.Join(errs...)
}

func (e *Engine) runTask(ctx context.Context, env inspect.Env, digests []string, t task) ([]diag.Finding, bool, error) {
	ctx, span := tracer.Start(ctx, "inspect unit")
	defer span.End()
	span.SetAttributes(
		attribute.String("jinspect.inspection", t.insp.Name),
		attribute.String("jinspect.file", t.unit.Path),
	)

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	key := e.cacheKey(t.insp, t.sel, t.unit.Digest, digests)
	if e.cache != nil && t.unit.Digest != "" {
		entry, err := e.cache.Get(ctx, key)
		if err == nil {
			fs := relocate(entry.Findings, t.unit.Path)
			recordRun(ctx, t.insp.Name, 0, len(fs), true, nil)
			span.SetAttributes(attribute.Bool("jinspect.cache.hit", true))
			return fs, true, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			e.logger.Warn("cache lookup failed", "file", t.unit.Path, "inspection", t.insp.Name, "err", err)
		}
	}

	start := time.Now()
	ds, err := inspect.Run(ctx, t.insp, env, t.sel.Settings, t.unit.Root)
	fs := make([]diag.Finding, len(ds))
	for i, d := range ds {
		fs[i] = d.Flatten(t.unit.Path)
	}
	recordRun(ctx, t.insp.Name, time.Since(start), len(fs), false, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fs, false, err
	}

	if e.cache != nil && t.unit.Digest != "" {
		if putErr := e.cache.Put(ctx, &cache.Entry{Key: key, Findings: fs}); putErr != nil {
			e.logger.Warn("cache store failed", "file", t.unit.Path, "inspection", t.insp.Name, "err", putErr)
		}
	}
	return fs, false, nil
}

func (e *Engine) cacheKey(insp *inspect.Inspection, sel Selection, unit string, digests []string) cache.Key {
	return cache.Key{
		Unit:       unit,
		Units:      digests,
		Inspection: insp.Name,
		Severity:   string(sel.Settings.Severity),
		Options:    insp.Defaults.With(sel.Settings.Options),
	}
}

// relocate points cached findings at path; identical content may live at a
// different path than when it was cached.
func relocate(fs []diag.Finding, path string) []diag.Finding {
	out := make([]diag.Finding, len(fs))
	for i, f := range fs {
		f.Location.Path = path
		if len(f.Related) > 0 {
			rel := make([]diag.Location, len(f.Related))
			for j, r := range f.Related {
				r.Path = path
				rel[j] = r
			}
			f.Related = rel
		}
		if f.Fix != nil {
			fix := *f.Fix
			fix.Target.Path = path
			f.Fix = &fix
		}
		out[i] = f
	}
	return out
}
