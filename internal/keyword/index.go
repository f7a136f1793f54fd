// Package keyword provides a Bleve-backed full-text index over contract clauses.
package keyword

import (
	"context"
	"fmt"

	"github.com/skriv/kontrakt/internal/models"
)

// ClauseHit is a single clause search result.
type ClauseHit struct {
	ContractID  string  `json:"contractId"`
	ProvisionID string  `json:"provisionId"`
	Title       string  `json:"title,omitempty"`
	Content     string  `json:"content,omitempty"`
	Category    string  `json:"category,omitempty"`
	Score       float64 `json:"score"`
}

// ClauseIndex defines full-text search over stored contract clauses.
type ClauseIndex interface {
	IndexContract(ctx context.Context, contractID string, clauses []Clause) error
	DeleteContract(ctx context.Context, contractID string) error
	Search(ctx context.Context, query string, limit int) ([]*ClauseHit, error)
	DocCount() (uint64, error)
	Close() error
}

// Clause is one indexable unit of a contract.
type Clause struct {
	ProvisionID string
	Title       string
	Content     string
	Category    string
}

// ClausesFromDocument flattens a parsed contract into indexable clauses.
// Key provisions carry their category; payment obligations and states are
// indexed under their own IDs so clause search covers the whole document.
func ClausesFromDocument(doc *models.ContractDocument) []Clause {
	if doc == nil {
		return nil
	}
	clauses := make([]Clause, 0, len(doc.KeyProvisions)+len(doc.PaymentObligations)+len(doc.PossibleStates))
	for _, kp := range doc.KeyProvisions {
		clauses = append(clauses, Clause{
			ProvisionID: kp.ID,
			Title:       kp.Title,
			Content:     kp.Content,
			Category:    kp.Category,
		})
	}
	for _, po := range doc.PaymentObligations {
		clauses = append(clauses, Clause{
			ProvisionID: po.ID,
			Title:       "платёжное обязательство",
			Content:     fmt.Sprintf("%s платит %s %v %s", po.Payer, po.Recipient, po.Amount.Value, po.Amount.Currency),
			Category:    "оплата",
		})
	}
	for _, st := range doc.PossibleStates {
		clauses = append(clauses, Clause{
			ProvisionID: st.ID,
			Title:       st.Label,
			Content:     st.Description,
		})
	}
	return clauses
}
