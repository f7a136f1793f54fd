// Package cli provides CLI output utilities for Kontrakt.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/skriv/kontrakt/internal/models"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteDocument writes an extracted contract to w in the given format.
func WriteDocument(w io.Writer, doc *models.ContractDocument, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	writeDocumentText(w, doc)
	return nil
}

func writeDocumentText(w io.Writer, doc *models.ContractDocument) {
	meta := doc.ContractState
	fmt.Fprintf(w, "Договор")
	if meta.Number != "" {
		fmt.Fprintf(w, " № %s", meta.Number)
	}
	if meta.Date != "" {
		fmt.Fprintf(w, " от %s", meta.Date)
	}
	fmt.Fprintln(w)
	if meta.Subject != "" {
		fmt.Fprintf(w, "Предмет: %s\n", meta.Subject)
	}
	if len(meta.Parties) > 0 {
		fmt.Fprintf(w, "Стороны: %s\n", strings.Join(meta.Parties, "; "))
	}
	if meta.TotalAmount != nil {
		fmt.Fprintf(w, "Сумма: %v %s\n", meta.TotalAmount.Value, meta.TotalAmount.Currency)
	}

	if len(doc.KeyProvisions) > 0 {
		fmt.Fprintf(w, "\nКлючевые положения (%d):\n", len(doc.KeyProvisions))
		for _, kp := range doc.KeyProvisions {
			fmt.Fprintf(w, "  [%s] %s\n", kp.Category, kp.Title)
			fmt.Fprintf(w, "      %s\n", Truncate(kp.Content, 160))
		}
	}
	if len(doc.PaymentObligations) > 0 {
		fmt.Fprintf(w, "\nПлатёжные обязательства (%d):\n", len(doc.PaymentObligations))
		for _, po := range doc.PaymentObligations {
			fmt.Fprintf(w, "  %s -> %s: %v %s (%s)\n",
				po.Payer, po.Recipient, po.Amount.Value, po.Amount.Currency, po.Amount.Kind)
		}
	}
	if len(doc.PossibleStates) > 0 {
		fmt.Fprintf(w, "\nСостояния договора (%d):\n", len(doc.PossibleStates))
		for _, st := range doc.PossibleStates {
			fmt.Fprintf(w, "  %s", st.Label)
			if len(st.Tasks) > 0 {
				fmt.Fprintf(w, " (задач: %d)", len(st.Tasks))
			}
			fmt.Fprintln(w)
		}
	}
}

// WriteRiskAnalysis writes a risk analysis to w in the given format.
func WriteRiskAnalysis(w io.Writer, analysis *models.RiskAnalysis, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}
	fmt.Fprintf(w, "Уровень риска: %s (оценка %.0f/100)\n", analysis.Level, analysis.Score)
	if analysis.Summary != "" {
		fmt.Fprintf(w, "%s\n", analysis.Summary)
	}
	if len(analysis.Risks) > 0 {
		fmt.Fprintln(w, "\nРиски:")
		for _, r := range analysis.Risks {
			fmt.Fprintf(w, "  [%s/%s] %s\n", r.Type, r.Severity, Truncate(r.Description, 160))
		}
	}
	if len(analysis.Recommendations) > 0 {
		fmt.Fprintln(w, "\nРекомендации:")
		for _, rec := range analysis.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	return nil
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
