package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/argmap/internal/model"
)

// Evaluator evaluates one graph file
type Evaluator interface {
	EvaluateFile(ctx context.Context, path string) (*model.Report, error)
}

// EvalJob evaluates a single graph file
type EvalJob struct {
	Path      string
	Evaluator Evaluator
}

// Execute runs the evaluation
func (j *EvalJob) Execute(ctx context.Context) Result {
	start := time.Now()
	report, err := j.Evaluator.EvaluateFile(ctx, j.Path)
	return &EvalResult{
		Path:    j.Path,
		Report:  report,
		Error:   err,
		Elapsed: time.Since(start),
	}
}

// EvalResult is the outcome of one graph file evaluation
type EvalResult struct {
	Path    string
	Report  *model.Report
	Error   error
	Elapsed time.Duration
}

// GetError returns the evaluation error
func (r *EvalResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates many graph files concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// ProcessFiles evaluates the files and returns results in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*EvalResult {
	if len(paths) == 0 {
		return []*EvalResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&EvalJob{
			Path:      path,
			Evaluator: b.evaluator,
		})
	}

	results := pool.Wait()

	out := make([]*EvalResult, len(paths))
	for i, result := range results {
		if result == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &EvalResult{Path: paths[i], Error: fmt.Errorf("not evaluated: %w", err)}
			continue
		}
		out[i] = result.(*EvalResult)
	}
	return out
}

// ProcessList reads graph paths from a list file and evaluates them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*EvalResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths), nil
}

// ReadPathsFromFile reads graph file paths (one per line).
// Relative paths resolve against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		line = filepath.Clean(line)

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// IsGraphFile reports whether a path has a graph document extension
func IsGraphFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// ExpandPaths replaces each directory argument with the graph files it
// directly contains, sorted by name. File arguments are kept as given.
func ExpandPaths(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && IsGraphFile(e.Name()) {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(files)
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
