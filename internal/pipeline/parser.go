package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skriv/kontrakt/internal/models"
	"github.com/skriv/kontrakt/internal/normalize"
	"github.com/skriv/kontrakt/internal/oracle"
	"github.com/skriv/kontrakt/internal/section"
	"github.com/skriv/kontrakt/internal/segment"
)

// Input errors, rejected before any Oracle call.
var (
	ErrEmptyText    = errors.New("contract text is empty")
	ErrTextTooLarge = errors.New("contract text exceeds the size limit")
)

// DefaultMaxTextBytes caps raw input size when no limit is configured.
const DefaultMaxTextBytes = 512 * 1024

// Parser is the pipeline entry point: segmentation, facet extraction with
// two-tier fallback, merging, and normalization.
type Parser struct {
	orch         *Orchestrator
	normalizer   *normalize.Normalizer
	maxTextBytes int
	logger       *zap.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets a logger for pipeline diagnostics.
func WithLogger(l *zap.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = l
		p.orch.logger = l
	}
}

// WithMaxTextBytes overrides the raw input size limit.
func WithMaxTextBytes(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxTextBytes = n
		}
	}
}

// WithFacetTables overrides the facet keyword tables.
func WithFacetTables(t section.Tables) ParserOption {
	return func(p *Parser) {
		if t != nil {
			p.orch.tables = t
		}
	}
}

// WithCategoryTable overrides the category inference table.
func WithCategoryTable(t normalize.CategoryTable) ParserOption {
	return func(p *Parser) {
		if t != nil {
			p.normalizer = normalize.New(t)
		}
	}
}

// NewParser creates a parser over the given Oracle.
func NewParser(orc oracle.Oracle, opts ...ParserOption) *Parser {
	p := &Parser{
		orch:         NewOrchestrator(orc, nil),
		normalizer:   normalize.New(nil),
		maxTextBytes: DefaultMaxTextBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs the full pipeline on raw contract text and returns a validated
// document. Per-facet failures degrade to empty sections; if the facet
// strategy is unusable as a whole, one monolithic extraction call is tried;
// if that also fails the error surfaces with the Oracle's diagnostic.
func (p *Parser) Parse(ctx context.Context, text string) (*models.ContractDocument, error) {
	if len(text) == 0 {
		return nil, ErrEmptyText
	}
	if len(text) > p.maxTextBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTextTooLarge, len(text), p.maxTextBytes)
	}
	paragraphs := segment.Segment(text)
	if len(paragraphs) == 0 {
		return nil, ErrEmptyText
	}

	raw, err := p.extractFacets(ctx, paragraphs)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("facet strategy unusable, falling back to monolithic extraction", zap.Error(err))
		}
		raw, err = p.extractMonolithic(ctx, paragraphs)
		if err != nil {
			return nil, fmt.Errorf("contract extraction failed: %w", err)
		}
	}
	return p.normalizer.Document(raw, paragraphs, text)
}

// extractFacets runs the facet strategy. It returns an error only when the
// strategy as a whole is unusable, i.e. every facet failed; individual
// failures are absorbed as skeletons by the merge.
func (p *Parser) extractFacets(ctx context.Context, paragraphs []models.Paragraph) (map[string]interface{}, error) {
	results := p.orch.ExtractAll(ctx, paragraphs)
	failed := 0
	var lastErr error
	for _, r := range results {
		if r.Err != nil {
			failed++
			lastErr = r.Err
		}
	}
	if failed == len(results) {
		return nil, fmt.Errorf("all facets failed: %w", lastErr)
	}
	return Merge(results), nil
}

func (p *Parser) extractMonolithic(ctx context.Context, paragraphs []models.Paragraph) (map[string]interface{}, error) {
	raw, err := p.orch.ExtractMonolithic(ctx, paragraphs)
	if err != nil {
		return nil, err
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("monolithic extraction: decode: %w", err)
	}
	return decoded, nil
}
