// Package pipeline drives the contract-extraction pipeline: concurrent
// facet extraction against the Oracle, result merging, and normalization.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/skriv/kontrakt/internal/models"
	"github.com/skriv/kontrakt/internal/oracle"
	"github.com/skriv/kontrakt/internal/section"
	"github.com/skriv/kontrakt/pkg/utils"
)

// FacetResult is the tagged outcome of one facet extraction: either raw JSON
// text or an error. Failures collapse to skeletons only at merge time, so
// partial-failure handling stays explicit.
type FacetResult struct {
	Raw string
	Err error
}

// Orchestrator issues one independent extraction request per facet.
type Orchestrator struct {
	oracle oracle.Oracle
	tables section.Tables
	logger *zap.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger sets a logger for per-facet diagnostics.
func WithOrchestratorLogger(l *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator. tables may be nil to use the
// default facet keyword tables.
func NewOrchestrator(orc oracle.Oracle, tables section.Tables, opts ...OrchestratorOption) *Orchestrator {
	if tables == nil {
		tables = section.DefaultTables()
	}
	o := &Orchestrator{oracle: orc, tables: tables}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ExtractAll runs all facet extractions concurrently and returns one result
// per facet. A facet's failure never affects the others; each goroutine
// writes to its own slot. In-flight calls are not cancelled beyond ctx.
func (o *Orchestrator) ExtractAll(ctx context.Context, paragraphs []models.Paragraph) map[section.Facet]FacetResult {
	results := make([]FacetResult, len(section.Facets))
	var wg sync.WaitGroup
	for i, facet := range section.Facets {
		wg.Add(1)
		go func(i int, facet section.Facet) {
			defer wg.Done()
			results[i] = o.extractFacet(ctx, facet, paragraphs)
		}(i, facet)
	}
	wg.Wait()

	out := make(map[section.Facet]FacetResult, len(section.Facets))
	for i, facet := range section.Facets {
		out[facet] = results[i]
	}
	return out
}

// extractFacet runs a single facet extraction and recovers prose-wrapped JSON.
func (o *Orchestrator) extractFacet(ctx context.Context, facet section.Facet, paragraphs []models.Paragraph) FacetResult {
	input := section.Render(o.tables.Select(paragraphs, facet))
	response, err := o.oracle.Invoke(ctx, facetInstructions[facet], input)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("facet extraction failed", zap.String("facet", string(facet)), zap.Error(err))
		}
		return FacetResult{Err: fmt.Errorf("facet %s: %w", facet, err)}
	}
	raw, err := usableJSON(response)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("facet returned unusable JSON", zap.String("facet", string(facet)), zap.Error(err))
		}
		return FacetResult{Err: fmt.Errorf("facet %s: %w", facet, err)}
	}
	return FacetResult{Raw: raw}
}

// ExtractMonolithic runs one extraction call covering the whole document with
// the combined instruction. Used as the pipeline-level fallback when the
// facet strategy is unusable.
func (o *Orchestrator) ExtractMonolithic(ctx context.Context, paragraphs []models.Paragraph) (string, error) {
	response, err := o.oracle.Invoke(ctx, monolithicInstruction, section.Render(paragraphs))
	if err != nil {
		return "", fmt.Errorf("monolithic extraction: %w", err)
	}
	raw, err := usableJSON(response)
	if err != nil {
		return "", fmt.Errorf("monolithic extraction: %w", err)
	}
	return raw, nil
}

// usableJSON returns a parseable JSON object from response, tolerating prose
// wrapped around the object.
func usableJSON(response string) (string, error) {
	if json.Valid([]byte(response)) {
		return response, nil
	}
	if inner := oracle.ExtractJSON(response); inner != "" && json.Valid([]byte(inner)) {
		return inner, nil
	}
	return "", fmt.Errorf("response is not usable JSON: %q", utils.Truncate(response, errSnippetLen))
}

const errSnippetLen = 120
