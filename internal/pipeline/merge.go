package pipeline

import (
	"encoding/json"

	"github.com/skriv/kontrakt/internal/section"
)

// facetKeys maps each facet to the document section it owns. Facets write
// disjoint sections, so merging needs no conflict resolution; this mapping
// must stay disjoint if facets are added or changed.
var facetKeys = map[section.Facet]string{
	section.FacetMetadata:    "contractState",
	section.FacetObligations: "keyProvisions",
	section.FacetPayments:    "paymentObligations",
	section.FacetStates:      "possibleStates",
}

// skeleton returns the empty-but-schema-valid value substituted for a facet
// that failed to produce usable data.
func skeleton(facet section.Facet) interface{} {
	if facet == section.FacetMetadata {
		return map[string]interface{}{}
	}
	return []interface{}{}
}

// Merge combines per-facet results into one unified raw document. A failed
// or undecodable facet contributes its empty skeleton, so its section is
// present (not absent) in the merged document.
func Merge(results map[section.Facet]FacetResult) map[string]interface{} {
	merged := make(map[string]interface{}, len(facetKeys))
	for facet, key := range facetKeys {
		merged[key] = facetPayload(results[facet], facet, key)
	}
	return merged
}

// facetPayload extracts the facet's section from its raw JSON, degrading to
// the skeleton when the facet errored or its payload is missing.
func facetPayload(result FacetResult, facet section.Facet, key string) interface{} {
	if result.Err != nil || result.Raw == "" {
		return skeleton(facet)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(result.Raw), &decoded); err != nil {
		return skeleton(facet)
	}
	if payload, ok := decoded[key]; ok && payload != nil {
		return payload
	}
	// The metadata facet sometimes returns the attributes object directly
	// instead of nesting it under contractState.
	if facet == section.FacetMetadata && len(decoded) > 0 {
		return decoded
	}
	return skeleton(facet)
}
