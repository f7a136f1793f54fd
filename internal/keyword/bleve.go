// Package keyword provides the Bleve implementation of ClauseIndex.
package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// clauseDoc is the shape stored in the index, one per contract clause.
type clauseDoc struct {
	ContractID  string `json:"contractId"`
	ProvisionID string `json:"provisionId"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
}

// BleveIndex implements ClauseIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// If the path already exists, the existing index is opened and reused.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps Cyrillic terms intact.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("contractId", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("provisionId", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	im.AddDocumentMapping("clause", docMapping)
	im.DefaultType = "clause"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexContract indexes all clauses of a contract in one batch.
// Previously indexed clauses for the same contract are replaced.
func (b *BleveIndex) IndexContract(ctx context.Context, contractID string, clauses []Clause) error {
	if err := b.DeleteContract(ctx, contractID); err != nil {
		return err
	}

	batch := b.index.NewBatch()
	for _, c := range clauses {
		doc := clauseDoc{
			ContractID:  contractID,
			ProvisionID: c.ProvisionID,
			Title:       c.Title,
			Content:     c.Content,
			Category:    c.Category,
		}
		if err := batch.Index(contractID+"/"+c.ProvisionID, doc); err != nil {
			return fmt.Errorf("failed to batch clause: %w", err)
		}
	}
	return b.index.Batch(batch)
}

// DeleteContract removes all indexed clauses of a contract.
func (b *BleveIndex) DeleteContract(ctx context.Context, contractID string) error {
	q := bleve.NewTermQuery(contractID)
	q.SetField("contractId")
	req := bleve.NewSearchRequest(q)
	req.Size = 10000
	results, err := b.index.Search(req)
	if err != nil {
		return fmt.Errorf("failed to find contract clauses: %w", err)
	}

	batch := b.index.NewBatch()
	for _, hit := range results.Hits {
		batch.Delete(hit.ID)
	}
	return b.index.Batch(batch)
}

// Search runs a match query over clause titles and content and returns up to limit hits.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*ClauseHit, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"*"}
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]*ClauseHit, len(results.Hits))
	for i, hit := range results.Hits {
		h := &ClauseHit{Score: hit.Score}
		if v, ok := hit.Fields["contractId"].(string); ok {
			h.ContractID = v
		}
		if v, ok := hit.Fields["provisionId"].(string); ok {
			h.ProvisionID = v
		}
		if v, ok := hit.Fields["title"].(string); ok {
			h.Title = v
		}
		if v, ok := hit.Fields["content"].(string); ok {
			h.Content = v
		}
		if v, ok := hit.Fields["category"].(string); ok {
			h.Category = v
		}
		out[i] = h
	}
	return out, nil
}

// DocCount returns the total number of indexed clauses.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
