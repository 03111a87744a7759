package pipeline

import (
	"strings"
	"unicode"
)

// qualityProcessingAvailable mirrors the Rust reference's compile-time
// cargo-feature gate for quality scoring (spec §4.4 step 2): Go has no
// equivalent conditional-compilation story for a single boolean, so this
// stays a package-level const, flippable in a test build to exercise the
// "feature absent" branch.
const qualityProcessingAvailable = true

// scoreQuality computes a heuristic quality_score in [0,1] from content and
// metadata completeness: longer, well-formed, metadata-rich results score
// higher. This is a simple linear blend, not a model — there is no
// corpus-supplied quality-scoring library, so it is implemented directly.
func scoreQuality(content string, hasTitle bool, tableCount int) float64 {
	if content == "" {
		return 0
	}

	length := len(content)
	lengthScore := float64(length) / 2000
	if lengthScore > 1 {
		lengthScore = 1
	}

	printable, total := 0, 0
	for _, r := range content {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	printableRatio := 1.0
	if total > 0 {
		printableRatio = float64(printable) / float64(total)
	}

	wordCount := len(strings.Fields(content))
	structureScore := 0.0
	if wordCount > 0 {
		structureScore = 1
	}

	metadataScore := 0.0
	if hasTitle {
		metadataScore += 0.5
	}
	if tableCount > 0 {
		metadataScore += 0.5
	}

	score := 0.4*lengthScore + 0.3*printableRatio + 0.2*structureScore + 0.1*metadataScore
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
