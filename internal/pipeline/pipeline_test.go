package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/argmap/internal/graph"
	"github.com/ppiankov/argmap/internal/model"
)

const sampleYAML = `title: Sample argument
goals: [root]
claims:
  - id: p1
    text: First premise
    score: 5
  - id: p2
    text: Second premise
    baseCost: 2
  - id: root
    text: Conclusion
  - id: orphan
    text: Unused claim
    score: 1
implications:
  - id: i1
    premises: [p1, p2]
    conclusion: root
    combinator: and
`

func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))
	return path
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	return cfg
}

func claimCost(t *testing.T, r *model.Report, id string) model.ClaimCost {
	t.Helper()
	for _, c := range r.Claims {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("claim %s not in report", id)
	return model.ClaimCost{}
}

func TestLoadDocument_YAMLAndJSON(t *testing.T) {
	path := writeSample(t, "graph.yaml")

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "Sample argument", doc.Title)
	assert.Equal(t, []string{"root"}, doc.Goals)
	assert.Len(t, doc.Claims, 4)
	assert.Equal(t, model.CombinatorAnd, doc.Implications[0].Combinator)

	jsonPath := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, SaveDocument(jsonPath, doc))

	again, err := LoadDocument(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestLoadDocument_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"claims":[{"id":"a","scroe":3}]}`), 0644))

	_, err := LoadDocument(path)
	assert.Error(t, err)
}

func TestSaveDocument_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yml")
	doc := &model.Document{Claims: []model.Claim{{ID: "a"}}}

	require.NoError(t, SaveDocument(path, doc))
	require.NoError(t, SaveDocument(path, doc))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEvaluateFile(t *testing.T) {
	path := writeSample(t, "graph.yaml")
	p := NewPipeline(testConfig(), nil)

	report, err := p.EvaluateFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Sample argument", report.Subject)
	assert.Equal(t, path, report.SourcePath)
	assert.Equal(t, []string{"root"}, report.Goals)

	root := claimCost(t, report, "root")
	assert.InDelta(t, 3.0, float64(root.Cost), 1e-9)
	assert.InDelta(t, 0.125, root.Probability, 1e-9)
	assert.Equal(t, "i1", root.Source)
	assert.Equal(t, "direct", claimCost(t, report, "p1").Source)

	assert.Equal(t, model.Summary{Claims: 4, Implications: 1}, report.Summary)
	assert.True(t, report.Validation.Valid())
}

func TestEvaluate_ReportsUnsupportedAndCycles(t *testing.T) {
	doc := &model.Document{
		Claims: []model.Claim{{ID: "A"}, {ID: "B"}, {ID: "axiom", Axiomatic: true}},
		Implications: []model.Implication{
			{ID: "i-a", Premises: []string{"B"}, Conclusion: "A", Combinator: model.CombinatorAnd},
			{ID: "i-b", Premises: []string{"A"}, Conclusion: "B", Combinator: model.CombinatorAnd},
		},
	}
	store, err := graph.Load(doc)
	require.NoError(t, err)

	report, err := NewPipeline(testConfig(), nil).Evaluate(context.Background(), store, "cyclic")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.Unsupported)
	assert.Equal(t, 1, report.Summary.Certain)
	assert.Equal(t, 1, report.Summary.Cycles)
	assert.Equal(t, 1, report.Summary.Warnings)
	assert.Equal(t, "∞ (P = 0)", claimCost(t, report, "A").Display)
	assert.Equal(t, "-∞ (P = 1)", claimCost(t, report, "axiom").Display)
}

func TestEvaluate_UsesCache(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache = model.CacheConfig{Enabled: true, Dir: t.TempDir()}
	p := NewPipeline(cfg, nil)

	path := writeSample(t, "graph.yaml")
	store, err := p.LoadFile(path)
	require.NoError(t, err)

	first, err := p.Evaluate(context.Background(), store, "s")
	require.NoError(t, err)
	second, err := p.Evaluate(context.Background(), store, "s")
	require.NoError(t, err)

	assert.True(t, first.EvaluatedAt.Equal(second.EvaluatedAt), "second evaluation should come from the cache")
	assert.InDelta(t, float64(claimCost(t, first, "root").Cost), float64(claimCost(t, second, "root").Cost), 1e-12)

	stats, ok := p.CacheStats()
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	_, _, err = store.AddClaim(model.Claim{ID: "new"})
	require.NoError(t, err)
	third, err := p.Evaluate(context.Background(), store, "s")
	require.NoError(t, err)
	assert.Len(t, third.Claims, 5)
	assert.Equal(t, store.Snapshot().Revision(), third.Revision)
}

func TestCacheStats_NoLayeredCache(t *testing.T) {
	_, ok := NewPipeline(testConfig(), nil).CacheStats()
	assert.False(t, ok)
}

func TestEvaluate_CanceledContext(t *testing.T) {
	store := graph.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(testConfig(), nil).Evaluate(ctx, store, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanup(t *testing.T) {
	p := NewPipeline(testConfig(), nil)

	t.Run("dry run keeps file", func(t *testing.T) {
		path := writeSample(t, "graph.yaml")
		removed, err := p.Cleanup(path, nil, false)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, sampleYAML, string(data))
	})

	t.Run("write removes orphan", func(t *testing.T) {
		path := writeSample(t, "graph.yaml")
		removed, err := p.Cleanup(path, nil, true)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		doc, err := LoadDocument(path)
		require.NoError(t, err)
		assert.Len(t, doc.Claims, 3)
		assert.Equal(t, "Sample argument", doc.Title)
		assert.Equal(t, []string{"root"}, doc.Goals)
	})

	t.Run("unknown goal", func(t *testing.T) {
		path := writeSample(t, "graph.yaml")
		_, err := p.Cleanup(path, []string{"ghost"}, true)
		assert.True(t, errors.Is(err, graph.ErrUnknownGoal))
	})

	t.Run("no goals", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "g.json")
		require.NoError(t, SaveDocument(path, &model.Document{Claims: []model.Claim{{ID: "a"}}}))
		_, err := p.Cleanup(path, nil, false)
		assert.ErrorIs(t, err, graph.ErrNoGoals)
	})
}

func TestRenderer(t *testing.T) {
	path := writeSample(t, "graph.yaml")
	report, err := NewPipeline(testConfig(), nil).EvaluateFile(context.Background(), path)
	require.NoError(t, err)

	t.Run("markdown with footer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRenderer(true).WriteMarkdown(&buf, report))
		md := buf.String()
		assert.Contains(t, md, "# Sample argument")
		assert.Contains(t, md, "| root | Conclusion | - | 3.000 (P = 0.1250) | i1 |")
		assert.Contains(t, md, "No structural problems found.")
		assert.Contains(t, md, "not whether it is true")
	})

	t.Run("markdown without footer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRenderer(false).WriteMarkdown(&buf, report))
		assert.NotContains(t, buf.String(), "not whether it is true")
	})

	t.Run("json", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "report.json")
		require.NoError(t, NewRenderer(false).RenderJSON(report, out))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"subject": "Sample argument"`)
	})

	t.Run("summary", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewRenderer(false)
		r.SetOutput(&buf)
		r.RenderSummary(report)
		assert.True(t, strings.Contains(buf.String(), "root"))
		assert.Contains(t, buf.String(), "Claims:        4")
	})
}
