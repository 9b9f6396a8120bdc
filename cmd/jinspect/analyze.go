package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chris-regnier/jinspect/internal/cache"
	"github.com/chris-regnier/jinspect/internal/config"
	"github.com/chris-regnier/jinspect/internal/engine"
	"github.com/chris-regnier/jinspect/internal/evaluator"
	"github.com/chris-regnier/jinspect/internal/input"
	"github.com/chris-regnier/jinspect/internal/inspect"
	"github.com/chris-regnier/jinspect/internal/javaparse"
	"github.com/chris-regnier/jinspect/internal/output"
	"github.com/chris-regnier/jinspect/internal/sarif"
	"github.com/chris-regnier/jinspect/internal/store"
	"github.com/chris-regnier/jinspect/internal/telemetry"
	"github.com/chris-regnier/jinspect/internal/tree"
)

var (
	flagFiles       []string
	flagDir         string
	flagConfig      string
	flagLibraries   []string
	flagInspections []string
	flagFormat      string
	flagOutput      string
	flagRego        string
	flagJobs        int
	flagCacheDir    string
	flagNoStore     bool
)

func init() {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run inspections over Java sources",
		RunE:  runAnalyze,
	}

	analyzeCmd.Flags().StringSliceVar(&flagFiles, "files", nil, "Java files to analyze")
	analyzeCmd.Flags().StringVar(&flagDir, "dir", "", "Directory to analyze")
	analyzeCmd.Flags().StringVar(&flagConfig, "config", "", "Project config file (default .jinspect/jinspect.yaml or .toml)")
	analyzeCmd.Flags().StringSliceVar(&flagLibraries, "library", nil, "Library source directories used for type resolution only")
	analyzeCmd.Flags().StringSliceVar(&flagInspections, "inspection", nil, "Run only these inspections")
	analyzeCmd.Flags().StringVar(&flagFormat, "format", "", "Output format: json, sarif, markdown, pretty (default: pretty on a terminal, json otherwise)")
	analyzeCmd.Flags().StringVar(&flagOutput, "output", ".jinspect/results", "Directory for stored results")
	analyzeCmd.Flags().StringVar(&flagRego, "rego", ".jinspect/rego", "Rego gate policy file or directory")
	analyzeCmd.Flags().IntVar(&flagJobs, "jobs", 0, "Concurrent inspection runs (default from config, then one per CPU)")
	analyzeCmd.Flags().StringVar(&flagCacheDir, "cache", "", "Result cache directory (default from config; empty disables)")
	analyzeCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "Don't persist SARIF and verdict")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	logger := slog.Default()

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Engine.Jobs = flagJobs
	}
	if flagCacheDir != "" {
		cfg.Engine.CacheDir = flagCacheDir
	}
	cfg.Engine.LibraryPaths = append(cfg.Engine.LibraryPaths, flagLibraries...)
	if cfg.Telemetry.ServiceVersion == "" || cfg.Telemetry.ServiceVersion == "dev" {
		cfg.Telemetry.ServiceVersion = version
	}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown error", "err", err)
		}
	}()

	h := input.NewHandler(input.WithLogger(logger), input.WithSkipDirs("target", "build", "out"))
	var artifacts []input.Artifact
	var inputScope string
	switch {
	case len(flagFiles) > 0:
		artifacts, err = h.ReadFiles(ctx, flagFiles)
		inputScope = "files"
	case flagDir != "":
		artifacts, err = h.ReadDirectory(ctx, flagDir)
		inputScope = "directory"
	case len(args) > 0:
		artifacts, err = h.ReadPaths(ctx, args)
		inputScope = "paths"
	default:
		return fmt.Errorf("specify --files, --dir, or paths to analyze")
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if len(artifacts) == 0 {
		logger.Warn("no Java sources found")
	}

	libraries, err := h.ReadPaths(ctx, cfg.Engine.LibraryPaths)
	if err != nil {
		return fmt.Errorf("reading library sources: %w", err)
	}

	parser := javaparse.New(javaparse.WithLogger(logger))
	units, err := parseAll(ctx, logger, parser, artifacts, false, cfg.Engine.Jobs)
	if err != nil {
		return err
	}
	libUnits, err := parseAll(ctx, logger, parser, libraries, true, cfg.Engine.Jobs)
	if err != nil {
		return err
	}

	registry := inspect.DefaultRegistry()
	opts := []engine.Option{engine.WithLogger(logger), engine.WithJobs(cfg.Engine.Jobs)}
	if c := buildCache(cfg.Engine, logger); c != nil {
		opts = append(opts, engine.WithCache(c))
	}
	eng := engine.New(registry, opts...)

	plan := selections(cfg, flagInspections)
	start := time.Now()
	res, err := eng.Analyze(ctx, append(units, libUnits...), plan)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	sarifLog := buildSARIF(registry, plan, res, inputScope, start)

	id := ""
	var fs *store.FileStore
	if !flagNoStore {
		fs = store.NewFileStore(flagOutput)
		if id, err = fs.WriteSARIF(ctx, sarifLog); err != nil {
			return fmt.Errorf("storing SARIF: %w", err)
		}
	}

	eval, err := evaluator.NewEvaluator(ctx, flagRego)
	if err != nil {
		return fmt.Errorf("creating evaluator: %w", err)
	}
	verdict, err := eval.Evaluate(ctx, sarifLog)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}
	if fs != nil {
		if err := fs.WriteVerdict(ctx, id, verdict); err != nil {
			return fmt.Errorf("storing verdict: %w", err)
		}
	}

	data, err := render(flagFormat, &output.AnalysisOutput{
		ID:       id,
		Verdict:  verdict,
		SARIFLog: sarifLog,
		Stats: &output.Stats{
			Units:     res.Units,
			Runs:      res.Runs,
			CacheHits: res.CacheHits,
			Duration:  res.Duration,
		},
	})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// buildCache layers memory over the disk and remote tiers that are
// configured. It returns nil when neither is.
func buildCache(cfg config.EngineConfig, logger *slog.Logger) cache.Manager {
	var persistent cache.Manager
	if cfg.CacheDir != "" {
		persistent = cache.NewDisk(cfg.CacheDir)
	}
	if cfg.RemoteCache.URL != "" {
		remote := cache.NewRemote(cfg.RemoteCache.URL, cache.WithToken(cfg.RemoteCache.Token))
		if persistent == nil {
			persistent = remote
		} else {
			persistent = cache.NewMultiTier(persistent, remote, logger)
		}
	}
	if persistent == nil {
		return nil
	}
	return cache.NewMultiTier(cache.NewMemory(), persistent, logger)
}

// parseAll parses artifacts concurrently, preserving their order. Files the
// parser refuses by policy, too large or not UTF-8, are logged and skipped.
func parseAll(ctx context.Context, logger *slog.Logger, p *javaparse.Parser, artifacts []input.Artifact, library bool, jobs int) ([]*tree.Unit, error) {
	units := make([]*tree.Unit, len(artifacts))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, a := range artifacts {
		g.Go(func() error {
			u, err := p.Parse(ctx, a.Path, a.Content)
			switch {
			case errors.Is(err, javaparse.ErrFileTooLarge), errors.Is(err, javaparse.ErrInvalidContent):
				logger.Warn("skipping file", "path", a.Path, "err", err)
				return nil
			case err != nil:
				return fmt.Errorf("parsing %s: %w", a.Path, err)
			}
			u.Library = library
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := units[:0]
	for _, u := range units {
		if u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func buildSARIF(registry *inspect.Registry, plan []engine.Selection, res *engine.Result, scope string, start time.Time) *sarif.Log {
	enabled := make(map[string]bool, len(plan))
	for _, s := range plan {
		enabled[s.Name] = true
	}
	a := sarif.NewAssembler(version)
	for _, insp := range registry.All() {
		a.AddRules(sarif.Rule(insp, enabled[insp.Name]))
	}
	inspections := make([]string, 0, len(plan))
	for _, s := range plan {
		inspections = append(inspections, s.Name)
	}
	return a.
		AddResults(sarif.FromFindings(res.Findings)).
		WithInvocation(start, start.Add(res.Duration), true).
		WithProperty("jinspect/inputScope", scope).
		WithProperty("jinspect/inspections", strings.Join(inspections, ",")).
		WithProperty("jinspect/cacheHits", res.CacheHits).
		Build()
}
