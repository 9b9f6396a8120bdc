package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/chris-regnier/jinspect/internal/config"
	"github.com/chris-regnier/jinspect/internal/input"
	"github.com/chris-regnier/jinspect/internal/inspect"
	"github.com/chris-regnier/jinspect/internal/javaparse"
)

const counterSource = `package demo;

public class Counter {
    private int count;

    public synchronized void increment() {
        count++;
    }

    public int a() {
        return count;
    }
}
`

func TestSelections(t *testing.T) {
	cfg := config.SystemDefaults()
	sel := selections(cfg, nil)
	if len(sel) != 3 {
		t.Fatalf("expected 3 default selections, got %d", len(sel))
	}
	for i := 1; i < len(sel); i++ {
		if sel[i-1].Name > sel[i].Name {
			t.Errorf("selections not sorted: %s before %s", sel[i-1].Name, sel[i].Name)
		}
	}

	only := selections(cfg, []string{inspect.ForEachName, "no-such-inspection"})
	if len(only) != 2 || only[0].Name != inspect.ForEachName {
		t.Fatalf("unexpected explicit selections: %+v", only)
	}
	if only[0].Settings.Severity != "note" {
		t.Errorf("expected configured severity, got %q", only[0].Settings.Severity)
	}
	if only[1].Settings.Severity != "" {
		t.Errorf("unknown inspection should carry no severity")
	}
}

func TestAnalyzeCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("JINSPECT_TELEMETRY_ENABLED", "false")

	work := t.TempDir()
	src := filepath.Join(work, "src", "Counter.java")
	if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte(counterSource), 0644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(work, "jinspect.yaml")
	if err := os.WriteFile(cfgPath, []byte("engine:\n  jobs: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	results := filepath.Join(work, "results")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"analyze", "--quiet",
		"--dir", filepath.Join(work, "src"),
		"--config", cfgPath,
		"--format", "json",
		"--output", results,
		"--rego", filepath.Join(work, "no-rego"),
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var report struct {
		ID       string `json:"id"`
		Decision string `json:"decision"`
		Findings []struct {
			Inspection string `json:"inspection"`
			Path       string `json:"path"`
		} `json:"findings"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	if report.Decision != "review" {
		t.Errorf("expected review decision, got %q", report.Decision)
	}
	got := make(map[string]bool)
	for _, f := range report.Findings {
		got[f.Inspection] = true
		if f.Path != src {
			t.Errorf("unexpected path %q", f.Path)
		}
	}
	for _, want := range []string{inspect.SyncAccessName, inspect.MethodNamingName} {
		if !got[want] {
			t.Errorf("expected a %s finding, got %+v", want, report.Findings)
		}
	}
	if report.ID == "" {
		t.Fatal("expected stored result id")
	}
	if _, err := os.Stat(filepath.Join(results, report.ID, "verdict.json")); err != nil {
		t.Errorf("expected stored verdict: %v", err)
	}

	stdout.Reset()
	rootCmd.SetArgs([]string{"results", "list", "--output", results})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("results list failed: %v", err)
	}
	if want := report.ID + "  review\n"; stdout.String() != want {
		t.Errorf("results list = %q, want %q", stdout.String(), want)
	}

	stdout.Reset()
	rootCmd.SetArgs([]string{"results", "prune", "--keep", "0", "--output", results})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("results prune failed: %v", err)
	}
	if stdout.String() != "removed 1 runs\n" {
		t.Errorf("results prune = %q", stdout.String())
	}
}

func TestCacheDir(t *testing.T) {
	if dir, err := cacheDir("/tmp/explicit"); err != nil || dir != "/tmp/explicit" {
		t.Errorf("cacheDir(explicit) = %q, %v", dir, err)
	}
}

func TestBuildCache(t *testing.T) {
	if c := buildCache(config.EngineConfig{}, nil); c != nil {
		t.Errorf("expected no cache when nothing is configured, got %T", c)
	}
	c := buildCache(config.EngineConfig{
		CacheDir:    t.TempDir(),
		RemoteCache: config.RemoteCacheConfig{URL: "http://127.0.0.1:1"},
	}, nil)
	if c == nil {
		t.Fatal("expected a cache")
	}
}

func TestParseAllSkipsOversizedFiles(t *testing.T) {
	small := "class A {}"
	artifacts := []input.Artifact{
		{Path: "Big.java", Content: []byte(counterSource)},
		{Path: "A.java", Content: []byte(small)},
	}
	p := javaparse.New(javaparse.WithMaxFileSize(int64(len(small))))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	units, err := parseAll(context.Background(), logger, p, artifacts, false, 2)
	if err != nil {
		t.Fatalf("parseAll: %v", err)
	}
	if len(units) != 1 || units[0].Path != "A.java" {
		t.Fatalf("expected only A.java parsed, got %d units", len(units))
	}
}
