// Package batch processes contract files from a directory, writing one
// JSON result per input file.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/skriv/kontrakt/internal/extract"
	"github.com/skriv/kontrakt/internal/keyword"
	"github.com/skriv/kontrakt/internal/pipeline"
	"github.com/skriv/kontrakt/internal/storage"
)

// Runner parses every matching file in an input directory and writes the
// extracted document next to it in the output directory. Files are processed
// sequentially with a pause between them so the extraction endpoint is not
// hammered.
type Runner struct {
	parser     *pipeline.Parser
	extractor  *extract.Extractor
	storage    storage.Storage
	clauses    keyword.ClauseIndex
	outputDir  string
	delay      time.Duration
	extensions []string
	logger     *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStorage also persists each parsed contract.
func WithStorage(store storage.Storage) RunnerOption {
	return func(r *Runner) { r.storage = store }
}

// WithClauseIndex also indexes clauses of each parsed contract.
func WithClauseIndex(idx keyword.ClauseIndex) RunnerOption {
	return func(r *Runner) { r.clauses = idx }
}

// WithDelay sets the pause between processed files.
func WithDelay(d time.Duration) RunnerOption {
	return func(r *Runner) { r.delay = d }
}

// WithExtensions restricts which files are picked up (empty = defaults).
func WithExtensions(exts []string) RunnerOption {
	return func(r *Runner) { r.extensions = exts }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a batch runner writing results to outputDir.
func NewRunner(parser *pipeline.Parser, outputDir string, opts ...RunnerOption) *Runner {
	r := &Runner{
		parser:     parser,
		extractor:  extract.NewExtractor(),
		outputDir:  outputDir,
		delay:      2 * time.Second,
		extensions: []string{".txt", ".md", ".pdf", ".docx", ".xlsx"},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Processed int
	Failed    int
	Skipped   int
}

// Run processes all matching files under inputDir. A failed file is logged
// and skipped; the run continues with the next file.
func (r *Runner) Run(ctx context.Context, inputDir string) (*Summary, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	sum := &Summary{}
	first := true
	for _, e := range entries {
		if e.IsDir() || !r.matchExtension(e.Name()) {
			sum.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if !first && r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return sum, ctx.Err()
			}
		}
		first = false

		path := filepath.Join(inputDir, e.Name())
		if err := r.ProcessFile(ctx, path); err != nil {
			r.logger.Warn("batch: file failed", zap.String("path", path), zap.Error(err))
			sum.Failed++
			continue
		}
		sum.Processed++
	}
	r.logger.Info("batch run complete",
		zap.Int("processed", sum.Processed),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// ProcessFile extracts text from one file, parses it, and writes
// <name>.json to the output directory.
func (r *Runner) ProcessFile(ctx context.Context, path string) error {
	text, err := r.extractor.Extract(path)
	if err != nil {
		return fmt.Errorf("text extraction: %w", err)
	}

	doc, err := r.parser.Parse(ctx, text)
	if err != nil {
		return err
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	if r.storage != nil {
		rec := &storage.ContractRecord{ID: doc.ID, Name: filepath.Base(path), Document: doc}
		if err := r.storage.SaveContract(ctx, rec); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}
	}
	if r.clauses != nil {
		if err := r.clauses.IndexContract(ctx, doc.ID, keyword.ClausesFromDocument(doc)); err != nil {
			r.logger.Warn("batch: clause indexing failed", zap.String("path", path), zap.Error(err))
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".json"
	out := filepath.Join(r.outputDir, name)
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	r.logger.Debug("batch: file processed", zap.String("input", path), zap.String("output", out))
	return nil
}

func (r *Runner) matchExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if len(r.extensions) == 0 {
		return true
	}
	for _, e := range r.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
