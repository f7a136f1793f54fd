package riskcache

import "fmt"

const keyPrefix = "risk:"

// Fingerprint builds the cache key for a risk-analysis request. The clause
// text is reduced to a simple rolling string hash; collisions are an
// accepted low-probability risk, not a security property.
func Fingerprint(clauseText, provisionID, category string) string {
	return fmt.Sprintf("%s%s:%s:%x", keyPrefix, provisionID, category, hash(clauseText))
}

// hash is a djb2-style rolling hash over the UTF-8 bytes of s.
func hash(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}
