package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/argmap/internal/cache"
	"github.com/ppiankov/argmap/internal/graph"
	"github.com/ppiankov/argmap/internal/logging"
	"github.com/ppiankov/argmap/internal/model"
	"github.com/ppiankov/argmap/internal/score"
	"github.com/ppiankov/argmap/internal/validate"
)

// Pipeline orchestrates load, propagation, validation and reporting
type Pipeline struct {
	propagator *score.Propagator
	validator  *validate.Validator
	renderer   *Renderer
	cache      cache.Cache
	log        *logging.Logger
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration.
// A nil logger discards diagnostics.
func NewPipeline(cfg *model.Config, log *logging.Logger) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if log == nil {
		log = logging.Nop()
	}

	propagator := score.NewPropagator(score.OptionsFromConfig(cfg.Engine))
	return &Pipeline{
		propagator: propagator,
		validator:  validate.NewValidator(propagator),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		cache:      cache.New(cfg.Cache),
		log:        log,
		config:     cfg,
	}
}

// Renderer returns the pipeline's report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Validator returns the structural validator bound to the pipeline's engine settings
func (p *Pipeline) Validator() *validate.Validator {
	return p.validator
}

// LoadFile reads a document and builds a store from it
func (p *Pipeline) LoadFile(path string) (*graph.Store, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	store, err := graph.Load(doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	p.log.Debug("graph loaded", "path", path, "claims", len(doc.Claims), "implications", len(doc.Implications))
	return store, nil
}

// EvaluateFile loads and evaluates one graph file
func (p *Pipeline) EvaluateFile(ctx context.Context, path string) (*model.Report, error) {
	store, err := p.LoadFile(path)
	if err != nil {
		return nil, err
	}

	subject := store.Title()
	if subject == "" {
		subject = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	report, err := p.Evaluate(ctx, store, subject)
	if err != nil {
		return nil, err
	}
	report.SourcePath = path
	return report, nil
}

// Evaluate computes costs and validation for the store's current snapshot.
// Reports are cached by a hash of the graph content and engine settings.
func (p *Pipeline) Evaluate(ctx context.Context, store *graph.Store, subject string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := store.Snapshot()
	goals := store.Goals()

	doc := snap.Document()
	doc.Title = subject
	doc.Goals = goals
	key, keyErr := p.cacheKey(&doc)
	if keyErr == nil {
		if report, ok := p.cached(key); ok {
			report.Revision = snap.Revision()
			return report, nil
		}
	}

	start := time.Now()
	result := p.propagator.Calculate(snap)
	validation := p.validator.ValidateWithCycles(snap, result.Cycles)
	report := buildReport(snap, result, validation, subject, goals)

	p.log.Debug("graph evaluated",
		"subject", subject,
		"revision", snap.Revision(),
		"claims", report.Summary.Claims,
		"cycles", report.Summary.Cycles,
		"elapsed", time.Since(start))

	if keyErr == nil {
		p.store(key, report)
	}
	return report, nil
}

// Cleanup removes everything unreachable from the goals in a graph file.
// Empty goals fall back to the document's goals. When write is false the file is untouched.
func (p *Pipeline) Cleanup(path string, goals []string, write bool) (int, error) {
	store, err := p.LoadFile(path)
	if err != nil {
		return 0, err
	}
	if len(goals) == 0 {
		goals = store.Goals()
	}

	removed, _, err := store.Cleanup(goals)
	if err != nil {
		return 0, fmt.Errorf("cleanup %s: %w", path, err)
	}

	if write && removed > 0 {
		doc := store.Document()
		if err := SaveDocument(path, &doc); err != nil {
			return 0, err
		}
	}
	p.log.Info("cleanup finished", "path", path, "removed", removed, "written", write && removed > 0)
	return removed, nil
}

// CacheStats reports lookups against the layered cache; ok is false for other cache kinds
func (p *Pipeline) CacheStats() (stats cache.Stats, ok bool) {
	layered, ok := p.cache.(*cache.LayeredCache)
	if !ok {
		return cache.Stats{}, false
	}
	return layered.Stats(), true
}

// RenderReport writes the requested outputs and prints the terminal summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}

func (p *Pipeline) cacheKey(doc *model.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	engine := p.config.Engine
	return cache.Key(data, engine.BaseCostMode, strconv.FormatFloat(engine.EvidenceWeight, 'g', -1, 64)), nil
}

func (p *Pipeline) cached(key string) (*model.Report, bool) {
	data, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		p.log.Warn("discarding unreadable cache entry", "key", key, "error", err)
		_ = p.cache.Delete(key)
		return nil, false
	}
	p.log.Debug("cache hit", "key", key)
	return &report, true
}

func (p *Pipeline) store(key string, report *model.Report) {
	data, err := json.Marshal(report)
	if err != nil {
		p.log.Warn("report not cacheable", "error", err)
		return
	}
	if err := p.cache.Set(key, data, 0); err != nil {
		p.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// buildReport assembles the per-claim costs and summary counts
func buildReport(snap *graph.Snapshot, result *score.Result, validation model.ValidationReport, subject string, goals []string) *model.Report {
	report := &model.Report{
		Subject:     subject,
		EvaluatedAt: time.Now().UTC(),
		Revision:    snap.Revision(),
		Goals:       goals,
		Claims:      make([]model.ClaimCost, 0, snap.NumClaims()),
		Validation:  validation,
	}

	for _, id := range snap.ClaimIDs() {
		claim, _ := snap.Claim(id)
		cost := result.Cost(id)
		report.Claims = append(report.Claims, model.ClaimCost{
			ID:          id,
			Text:        claim.Text,
			Score:       claim.Score,
			Cost:        cost,
			Probability: cost.Probability(),
			Display:     cost.String(),
			Source:      result.Sources[id],
		})

		switch {
		case cost.IsCertain():
			report.Summary.Certain++
		case cost.IsImpossible():
			report.Summary.Unsupported++
		}
	}

	report.Summary.Claims = snap.NumClaims()
	report.Summary.Implications = snap.NumImplications()
	report.Summary.Errors = len(validation.Errors)
	report.Summary.Warnings = len(validation.Warnings)
	report.Summary.Cycles = len(result.Cycles)
	return report
}
