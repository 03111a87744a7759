package cachefs

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var cacheKeyPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// GenerateCacheKey derives a 32 lowercase hex character key from a set of
// (k, v) pairs: sort by key, concatenate "k1=v1&k2=v2&...", hash with a fast
// 64-bit non-cryptographic hash, and format as 32 hex digits (the 16 digits
// of the hash, zero-padded in the upper half) per spec §4.1. Sorting first
// makes the key insensitive to caller-supplied pair order.
func GenerateCacheKey(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
	}

	sum := xxhash.Sum64String(b.String())
	return pad32(sum)
}

func pad32(sum uint64) string {
	// 16 hex digits from the hash, zero-padded to 32 total, matching
	// spec's "32 hex chars ... upper half padded with zeros".
	return fmt.Sprintf("%032x", sum)
}

// ValidateCacheKey reports whether key is exactly 32 lowercase hex digits.
// Callers must validate externally supplied keys before trusting them
// (spec §4.1).
func ValidateCacheKey(key string) bool {
	return cacheKeyPattern.MatchString(key)
}
