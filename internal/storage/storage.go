// Package storage defines the persistence interface for parsed contracts.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/skriv/kontrakt/internal/models"
)

// ErrNotFound is returned when a contract does not exist in the store.
var ErrNotFound = errors.New("contract not found")

// ContractRecord is a stored contract together with its bookkeeping fields.
type ContractRecord struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Document  *models.ContractDocument `json:"document"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// ContractSummary is a listing entry without the document body.
type ContractSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number,omitempty"`
	Date      string    `json:"date,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Storage defines contract persistence operations.
type Storage interface {
	SaveContract(ctx context.Context, rec *ContractRecord) error
	GetContract(ctx context.Context, id string) (*ContractRecord, error)
	DeleteContract(ctx context.Context, id string) error
	ListContracts(ctx context.Context, offset, limit int) ([]*ContractSummary, error)
	CountContracts(ctx context.Context) (int64, error)
	Close() error
}

// Summarize builds a listing entry from a full record.
func Summarize(rec *ContractRecord) *ContractSummary {
	s := &ContractSummary{
		ID:        rec.ID,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Document != nil {
		s.Number = rec.Document.ContractState.Number
		s.Date = rec.Document.ContractState.Date
		s.Subject = rec.Document.ContractState.Subject
	}
	return s
}
