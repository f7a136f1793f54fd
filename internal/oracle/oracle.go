// Package oracle provides the client for the external natural-language
// extraction service. The service is opaque and fallible: given an
// instruction and a text fragment it returns a string that is expected, but
// not guaranteed, to be JSON approximating a requested schema.
package oracle

import "context"

// Oracle is the minimal interface the pipeline uses to call the extraction
// service. Timeout policy lives in the implementation, not in callers.
type Oracle interface {
	Invoke(ctx context.Context, systemInstruction, inputText string) (string, error)
}
