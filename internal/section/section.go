// Package section selects facet-relevant paragraph subsets for extraction.
package section

import (
	"fmt"
	"strings"

	"github.com/skriv/kontrakt/internal/models"
)

// Facet is one semantic slice of the contract-extraction task.
type Facet string

const (
	FacetMetadata    Facet = "metadata"
	FacetPayments    Facet = "payments"
	FacetObligations Facet = "obligations"
	FacetStates      Facet = "states"
)

// Facets lists all facets in a fixed order.
var Facets = []Facet{FacetMetadata, FacetPayments, FacetObligations, FacetStates}

// minMatches is the threshold below which the fallback selection is used,
// so the extraction service always receives enough context.
const minMatches = 3

// fallbackShare is the share of leading paragraphs returned by the fallback.
const fallbackShare = 0.30

// Tables maps each facet to its keyword list. Matching is lowercase
// substring containment. Passed as configuration so the lists are
// independently testable and extensible.
type Tables map[Facet][]string

// DefaultTables returns the built-in facet keyword lists.
func DefaultTables() Tables {
	return Tables{
		FacetMetadata: {
			"договор", "контракт", "соглашение", "заключили", "именуем",
			"город", "дата", "предмет", "реквизиты", "стороны",
		},
		FacetPayments: {
			"оплат", "платеж", "платёж", "стоимость", "цена", "сумма",
			"рубл", "аванс", "предоплат", "расчет", "расчёт", "счет", "счёт",
			"вознаграждени", "пеня", "неустойк",
		},
		FacetObligations: {
			"обязан", "обязуется", "обязательств", "вправе", "право",
			"ответственност", "гарантир", "должен", "должн", "выполн",
			"оказа", "передать", "принять",
		},
		FacetStates: {
			"срок", "этап", "расторж", "прекращ", "действи", "вступает",
			"исполнени", "приемк", "приёмк", "сдач", "заверш", "продлен",
		},
	}
}

// Select returns the ordered subsequence of paragraphs whose lowercased text
// contains at least one keyword of the facet. If fewer than three paragraphs
// match, the first max(3, 30% of total) paragraphs are returned instead so
// that facets do not starve when the contract's phrasing misses the keyword
// heuristics.
func (t Tables) Select(paragraphs []models.Paragraph, facet Facet) []models.Paragraph {
	keywords := t[facet]
	var matched []models.Paragraph
	for _, p := range paragraphs {
		lower := strings.ToLower(p.Text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, p)
				break
			}
		}
	}
	if len(matched) >= minMatches {
		return matched
	}
	n := int(float64(len(paragraphs)) * fallbackShare)
	if n < minMatches {
		n = minMatches
	}
	if n > len(paragraphs) {
		n = len(paragraphs)
	}
	return paragraphs[:n]
}

// Render formats paragraphs for the extraction service, each prefixed with
// an explicit paragraph-id marker for downstream cross-referencing.
func Render(paragraphs []models.Paragraph) string {
	var b strings.Builder
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("[%s] %s", p.ID, p.Text))
	}
	return b.String()
}
