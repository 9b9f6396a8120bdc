package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-regnier/jinspect/internal/cache"
	"github.com/chris-regnier/jinspect/internal/diag"
	"github.com/chris-regnier/jinspect/internal/inspect"
	"github.com/chris-regnier/jinspect/internal/tree"
)

func counterUnit(path, digest string) *tree.Unit {
	class := tree.New(tree.KindClass, "Counter").Append(
		tree.New(tree.KindField, "count").WithType("int"),
		tree.New(tree.KindMethod, "increment").WithModifiers(tree.ModSynchronized).Append(
			tree.New(tree.KindBlock, "").Append(tree.New(tree.KindAccess, "count")),
		),
		tree.New(tree.KindMethod, "a").Append(
			tree.New(tree.KindBlock, "").Append(tree.New(tree.KindAccess, "count")),
		),
	)
	root := tree.New(tree.KindUnit, path).Append(class)
	tree.Number(root)
	return &tree.Unit{Path: path, Root: root, Digest: digest}
}

func allSelections() []Selection {
	return []Selection{
		{Name: inspect.SyncAccessName},
		{Name: inspect.MethodNamingName},
	}
}

func TestAnalyze(t *testing.T) {
	e := New(inspect.DefaultRegistry(), WithJobs(2))
	units := []*tree.Unit{counterUnit("B.java", "b"), counterUnit("A.java", "a")}

	res, err := e.Analyze(context.Background(), units, allSelections())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Units)
	assert.Equal(t, 4, res.Runs)
	require.Len(t, res.Findings, 4)

	// Ordered by path, then position.
	assert.Equal(t, "A.java", res.Findings[0].Location.Path)
	assert.Equal(t, inspect.SyncAccessName, res.Findings[0].Inspection)
	assert.Equal(t, inspect.MethodNamingName, res.Findings[1].Inspection)
	assert.Equal(t, "Instance method name 'a' is too short", res.Findings[1].Message)
	assert.Equal(t, "B.java", res.Findings[2].Location.Path)
}

func TestAnalyzeSkipsLibraryUnits(t *testing.T) {
	e := New(inspect.DefaultRegistry())
	lib := counterUnit("Lib.java", "lib")
	lib.Library = true

	res, err := e.Analyze(context.Background(), []*tree.Unit{lib}, allSelections())
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
	assert.Equal(t, 0, res.Units)
}

func TestAnalyzeValidatesBeforeRunning(t *testing.T) {
	e := New(inspect.DefaultRegistry())
	sels := []Selection{
		{Name: "no-such-inspection"},
		{Name: inspect.MethodNamingName, Settings: inspect.Settings{Options: inspect.Options{"pattern": "("}}},
	}
	res, err := e.Analyze(context.Background(), []*tree.Unit{counterUnit("A.java", "a")}, sels)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, inspect.ErrUnknownInspection))
	assert.True(t, errors.Is(err, inspect.ErrInvalidConfiguration))
}

func TestAnalyzeSeverityOverride(t *testing.T) {
	e := New(inspect.DefaultRegistry())
	sels := []Selection{{Name: inspect.SyncAccessName, Settings: inspect.Settings{Severity: diag.SevError}}}
	res, err := e.Analyze(context.Background(), []*tree.Unit{counterUnit("A.java", "a")}, sels)
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, diag.SevError, res.Findings[0].Severity)
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := New(inspect.DefaultRegistry())
	res, err := e.Analyze(ctx, []*tree.Unit{counterUnit("A.java", "a")}, allSelections())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Findings)
}

func TestAnalyzeUsesCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	e := New(inspect.DefaultRegistry(), WithCache(c))

	first, err := e.Analyze(ctx, []*tree.Unit{counterUnit("A.java", "same")}, allSelections())
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)

	// Same content at a different path is answered from the cache.
	second, err := e.Analyze(ctx, []*tree.Unit{counterUnit("Moved.java", "same")}, allSelections())
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	require.Len(t, second.Findings, len(first.Findings))
	for _, f := range second.Findings {
		assert.Equal(t, "Moved.java", f.Location.Path)
	}

	// Different options miss.
	sels := []Selection{{Name: inspect.MethodNamingName, Settings: inspect.Settings{Options: inspect.Options{"min_length": 1}}}}
	third, err := e.Analyze(ctx, []*tree.Unit{counterUnit("A.java", "same")}, sels)
	require.NoError(t, err)
	assert.Equal(t, 0, third.CacheHits)
	assert.Empty(t, third.Findings)
}

func TestAnalyzeRejectsUnencodableOptions(t *testing.T) {
	e := New(inspect.DefaultRegistry(), WithCache(cache.NewMemory()))
	sels := []Selection{{
		Name:     inspect.SyncAccessName,
		Settings: inspect.Settings{Options: inspect.Options{"unused": math.NaN()}},
	}}
	res, err := e.Analyze(context.Background(), []*tree.Unit{counterUnit("A.java", "a")}, sels)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, inspect.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), inspect.SyncAccessName)
}
